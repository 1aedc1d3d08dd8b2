// Package store persists generated charts so they can be fetched by ID.
//
// The Store interface has three implementations:
//   - MemoryStore: in-process map for tests and single-instance servers
//   - FileStore: JSON files under a config directory for the CLI
//   - MongoStore: MongoDB collection for shared deployments
//
// IDs are random UUIDs assigned on Save. Get and Delete report NOT_FOUND for
// unknown IDs and INVALID_INPUT for strings that are not UUIDs.
//
//	s := store.NewMemoryStore()
//	id, err := s.Save(ctx, c)
//	back, err := s.Get(ctx, id)
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/errors"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Store is the interface for chart storage backends.
type Store interface {
	// Save stores a chart, assigning an ID and creation time when unset.
	// The returned ID is also written to c.ID.
	Save(ctx context.Context, c *chart.Chart) (string, error)

	// Get retrieves a chart by ID.
	Get(ctx context.Context, id string) (*chart.Chart, error)

	// Delete removes a chart.
	Delete(ctx context.Context, id string) error

	// List returns summaries of the most recent charts, newest first.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Entry summarizes a stored chart without its geometry.
type Entry struct {
	ID         string    `json:"id" bson:"_id"`
	Projection string    `json:"projection" bson:"projection"`
	Lines      int       `json:"lines" bson:"lines"`
	Points     int       `json:"points" bson:"points"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

func entryOf(c *chart.Chart) Entry {
	return Entry{
		ID:         c.ID,
		Projection: c.Projection,
		Lines:      len(c.Lines),
		Points:     c.PointCount(),
		CreatedAt:  c.CreatedAt,
	}
}

// prepare assigns the ID and timestamp of a chart about to be saved.
func prepare(c *chart.Chart, clock clockwork.Clock) error {
	if c == nil {
		return errors.New(errors.ErrCodeInvalidInput, "chart is nil")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	} else if err := errors.ValidateChartID(c.ID); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = clock.Now().UTC()
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "chart %s not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
