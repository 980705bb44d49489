package db

import (
	"context"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoDatabase *mongo.Database

// ConnectMongo establishes a connection to the legacy MongoDB archive.
// The archive predates the Supabase migration and is only read nowadays,
// by cmd/archive-migrate.
func ConnectMongo() {
	ctx := context.Background()

	opts := options.Client().ApplyURI(os.Getenv("MONGO_URI"))
	mongoClient, err := mongo.Connect(ctx, opts)

	if err != nil {
		println("mongo.Connect failed")
		fmt.Println(err)

		return
	}

	mongoDatabase = mongoClient.Database("nevis_legacy")
}

// GetMongoDB returns the legacy MongoDB database
func GetMongoDB() *mongo.Database {
	return mongoDatabase
}
