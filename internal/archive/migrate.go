package archive

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nevisai/platform/internal/models"
)

// Source produces legacy documents and flags them done.
type Source interface {
	Unmigrated(limit int) ([]models.LegacyPost, error)
	MarkMigrated(ids []string) error
}

// Sink writes converted posts. Reports false when the id already existed.
type Sink interface {
	ImportPost(ctx context.Context, post *models.GeneratedPost) (bool, error)
}

// Stats counts one migration run.
type Stats struct {
	Scanned  int
	Imported int
	Skipped  int
	Failed   int
}

type Migrator struct {
	source    Source
	sink      Sink
	batchSize int
	dryRun    bool
}

func NewMigrator(source Source, sink Sink, batchSize int, dryRun bool) *Migrator {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Migrator{source: source, sink: sink, batchSize: batchSize, dryRun: dryRun}
}

// ConvertLegacyPost maps an archive document onto a generated_posts row. The
// document id carries over, which is what makes reruns idempotent. The
// legacy platform field has no Postgres column and is dropped.
func ConvertLegacyPost(legacy models.LegacyPost) *models.GeneratedPost {
	post := &models.GeneratedPost{
		ID:           legacy.ID,
		UserID:       legacy.UserID,
		Kind:         "text",
		Content:      legacy.Caption,
		ProviderUsed: "legacy",
		CreatedAt:    time.Unix(legacy.CreatedAt, 0).UTC(),
	}
	if legacy.ImageURL != "" {
		post.Kind = "image"
		url := legacy.ImageURL
		post.ImageURL = &url
	}
	return post
}

// Run copies unmigrated documents in batches until the archive is drained.
// In dry-run mode only the first batch is previewed, since nothing gets
// flagged and the next fetch would return the same documents.
func (m *Migrator) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	for {
		batch, err := m.source.Unmigrated(m.batchSize)
		if err != nil {
			return stats, fmt.Errorf("fetch archive batch: %w", err)
		}
		if len(batch) == 0 {
			return stats, nil
		}
		stats.Scanned += len(batch)

		if m.dryRun {
			for _, legacy := range batch {
				post := ConvertLegacyPost(legacy)
				log.Printf("[dry-run] would import post %s (user %s, kind %s)", post.ID, post.UserID, post.Kind)
			}
			return stats, nil
		}

		var done []string
		for _, legacy := range batch {
			imported, err := m.sink.ImportPost(ctx, ConvertLegacyPost(legacy))
			if err != nil {
				log.Printf("Import of archive post %s failed: %v", legacy.ID, err)
				stats.Failed++
				continue
			}
			if imported {
				stats.Imported++
			} else {
				stats.Skipped++
			}
			done = append(done, legacy.ID)
		}

		if err := m.source.MarkMigrated(done); err != nil {
			return stats, fmt.Errorf("mark archive batch migrated: %w", err)
		}

		// Nothing flagged means the next fetch would hand back the same
		// batch forever.
		if len(done) == 0 {
			return stats, fmt.Errorf("no progress in a batch of %d, aborting", len(batch))
		}
	}
}
