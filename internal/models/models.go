package models

import "time"

// User mirrors a Supabase auth user inside the application schema. The ID is
// the auth.users UUID; the row carries what the app owns about the account
// (tier, credit balance, Stripe linkage).
type User struct {
	ID               string  `gorm:"primaryKey" json:"id"`
	Email            string  `gorm:"column:email" json:"email"`
	Tier             string  `gorm:"column:tier;default:free" json:"tier"`
	Credits          int     `gorm:"column:credits;default:0" json:"credits"`
	StripeCustomerID *string `gorm:"column:stripe_customer_id" json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (User) TableName() string { return "users" }

// BrandProfile is the reusable description of a business that prompts are
// built from. Most fields come out of website analysis and can be edited
// afterwards.
type BrandProfile struct {
	ID               string   `gorm:"primaryKey" json:"id"`
	UserID           string   `gorm:"column:user_id;index" json:"user_id"`
	BusinessName     string   `gorm:"column:business_name" json:"business_name"`
	BusinessType     string   `gorm:"column:business_type" json:"business_type"`
	Industry         string   `gorm:"column:industry" json:"industry"`
	Location         string   `gorm:"column:location" json:"location"`
	WebsiteURL       string   `gorm:"column:website_url" json:"website_url"`
	Description      string   `gorm:"column:description" json:"description"`
	Services         string   `gorm:"column:services" json:"services"`
	TargetAudience   string   `gorm:"column:target_audience" json:"target_audience"`
	ValueProposition string   `gorm:"column:value_proposition" json:"value_proposition"`
	CallsToAction    []string `gorm:"column:calls_to_action;serializer:json" json:"calls_to_action"`
	ContactEmail     string   `gorm:"column:contact_email" json:"contact_email"`
	ContactPhone     string   `gorm:"column:contact_phone" json:"contact_phone"`

	SocialLinks map[string]string `gorm:"column:social_links;serializer:json" json:"social_links"`
	BrandColors []string          `gorm:"column:brand_colors;serializer:json" json:"brand_colors"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BrandProfile) TableName() string { return "brand_profiles" }

// GeneratedPost is one produced piece of content, text or image.
type GeneratedPost struct {
	ID           string  `gorm:"primaryKey" json:"id"`
	UserID       string  `gorm:"column:user_id;index" json:"user_id"`
	BrandID      *string `gorm:"column:brand_id;index" json:"brand_id,omitempty"`
	Kind         string  `gorm:"column:kind" json:"kind"`
	Prompt       string  `gorm:"column:prompt" json:"prompt"`
	Content      string  `gorm:"column:content" json:"content"`
	ImageURL     *string `gorm:"column:image_url" json:"image_url,omitempty"`
	ModelUsed    string  `gorm:"column:model_used" json:"model_used"`
	ProviderUsed string  `gorm:"column:provider_used" json:"provider_used"`
	Revision     string  `gorm:"column:revision" json:"revision"`
	CreditsSpent int     `gorm:"column:credits_spent" json:"credits_spent"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (GeneratedPost) TableName() string { return "generated_posts" }

// Payment records a settled Stripe checkout. StripeEventID is unique so a
// replayed webhook can never grant credits twice.
type Payment struct {
	ID              string `gorm:"primaryKey" json:"id"`
	UserID          string `gorm:"column:user_id;index" json:"user_id"`
	StripeSessionID string `gorm:"column:stripe_session_id;uniqueIndex" json:"stripe_session_id"`
	StripeEventID   string `gorm:"column:stripe_event_id;uniqueIndex" json:"stripe_event_id"`
	AmountCents     int64  `gorm:"column:amount_cents" json:"amount_cents"`
	Currency        string `gorm:"column:currency" json:"currency"`
	CreditsGranted  int    `gorm:"column:credits_granted" json:"credits_granted"`
	Status          string `gorm:"column:status" json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

// CreditTransaction is the append-only ledger behind users.credits.
type CreditTransaction struct {
	ID           string `gorm:"primaryKey" json:"id"`
	UserID       string `gorm:"column:user_id;index" json:"user_id"`
	Delta        int    `gorm:"column:delta" json:"delta"`
	BalanceAfter int    `gorm:"column:balance_after" json:"balance_after"`
	Reason       string `gorm:"column:reason" json:"reason"`
	Reference    string `gorm:"column:reference" json:"reference"`

	CreatedAt time.Time `json:"created_at"`
}

func (CreditTransaction) TableName() string { return "credit_transactions" }

// LegacyPost represents a post document in the pre-Supabase Mongo archive.
type LegacyPost struct {
	ID        string `json:"_id" bson:"_id"`
	UserID    string `json:"user_id" bson:"user_id"`
	Caption   string `json:"caption" bson:"caption"`
	ImageURL  string `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Platform  string `json:"platform,omitempty" bson:"platform,omitempty"`
	CreatedAt int64  `json:"created_at" bson:"created_at"`
	Migrated  bool   `json:"migrated,omitempty" bson:"migrated,omitempty"`
}
