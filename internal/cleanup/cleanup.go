// Package cleanup enforces the media retention window. Posts older than the
// cutoff are swept in batches: storage objects go first through a bounded
// worker pool, then the rows. A post whose media could not be deleted keeps
// its row so the next sweep retries it.
package cleanup

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nevisai/platform/internal/models"
)

// Store pages and deletes expired post rows.
type Store interface {
	OlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.GeneratedPost, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// Remover deletes uploaded media behind a post.
type Remover interface {
	Delete(ctx context.Context, paths ...string) error
	ObjectPath(publicURL string) (string, bool)
}

// Stats summarizes one sweep.
type Stats struct {
	PostsDeleted   int64
	ObjectsDeleted int
	MediaErrors    int
}

type Service struct {
	store     Store
	uploads   Remover
	retention time.Duration
	batchSize int
	workers   int
	now       func() time.Time
}

func NewService(store Store, uploads Remover, retentionDays int) *Service {
	return &Service{
		store:     store,
		uploads:   uploads,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		batchSize: 200,
		workers:   4,
		now:       time.Now,
	}
}

// Run sweeps everything past the retention window and reports what it
// removed.
func (s *Service) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	cutoff := s.now().Add(-s.retention)

	for {
		batch, err := s.store.OlderThan(ctx, cutoff, s.batchSize)
		if err != nil {
			return stats, fmt.Errorf("list expired posts: %w", err)
		}
		if len(batch) == 0 {
			return stats, nil
		}

		deletable, objects, failed := s.deleteMedia(ctx, batch)
		stats.ObjectsDeleted += objects
		stats.MediaErrors += failed

		n, err := s.store.DeleteByIDs(ctx, deletable)
		if err != nil {
			return stats, fmt.Errorf("delete expired posts: %w", err)
		}
		stats.PostsDeleted += n

		// A batch that made no progress would come straight back from the
		// next fetch; leave it for the next scheduled sweep.
		if n == 0 {
			log.Printf("Cleanup stopping: %d expired posts kept after media errors", len(batch))
			return stats, nil
		}
	}
}

// deleteMedia removes the storage objects of a batch through s.workers
// goroutines and returns the ids whose posts are now safe to drop.
func (s *Service) deleteMedia(ctx context.Context, batch []models.GeneratedPost) (ids []string, objects, failed int) {
	type outcome struct {
		id      string
		removed bool
		ok      bool
	}

	jobs := make(chan models.GeneratedPost, len(batch))
	results := make(chan outcome, len(batch))

	workers := s.workers
	if workers > len(batch) {
		workers = len(batch)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for post := range jobs {
				out := outcome{id: post.ID, ok: true}
				if post.ImageURL != nil {
					if path, ok := s.uploads.ObjectPath(*post.ImageURL); ok {
						if err := s.uploads.Delete(ctx, path); err != nil {
							log.Printf("Cleanup could not delete media of post %s: %v", post.ID, err)
							out.ok = false
						} else {
							out.removed = true
						}
					}
				}
				results <- out
			}
		}()
	}

	for _, post := range batch {
		jobs <- post
	}
	close(jobs)
	wg.Wait()
	close(results)

	for out := range results {
		if !out.ok {
			failed++
			continue
		}
		if out.removed {
			objects++
		}
		ids = append(ids, out.id)
	}
	return ids, objects, failed
}

// RunJob is the cron entrypoint; it logs outcomes instead of returning them.
func (s *Service) RunJob() {
	start := time.Now()
	stats, err := s.Run(context.Background())
	if err != nil {
		log.Printf("Cleanup run failed after %s: %v (deleted %d posts, %d objects first)",
			time.Since(start).Round(time.Millisecond), err, stats.PostsDeleted, stats.ObjectsDeleted)
		return
	}
	log.Printf("Cleanup run finished in %s: %d posts and %d storage objects deleted, %d media errors",
		time.Since(start).Round(time.Millisecond), stats.PostsDeleted, stats.ObjectsDeleted, stats.MediaErrors)
}
