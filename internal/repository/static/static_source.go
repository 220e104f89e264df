package static

import (
	"context"
	"time"

	"github.com/braincoral/reefplan/internal/domain/models"
)

// Source serves a fixed, in-memory set of inventory rows. It backs the
// mock-data planning mode and tests.
type Source struct {
	rows []models.BatchRow
}

// NewSource copies the provided rows into a static source. A nil slice
// yields an empty inventory, which is a valid starting point: the recovery
// pass then plans the entire production order from scratch.
func NewSource(rows []models.BatchRow) *Source {
	copied := make([]models.BatchRow, len(rows))
	copy(copied, rows)
	return &Source{rows: copied}
}

// FetchBatches returns the stored rows regardless of tenant or date.
func (s *Source) FetchBatches(ctx context.Context, tenant string, asOf *time.Time) ([]models.BatchRow, error) {
	rows := make([]models.BatchRow, len(s.rows))
	copy(rows, s.rows)
	return rows, nil
}
