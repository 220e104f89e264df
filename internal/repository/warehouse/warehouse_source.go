package warehouse

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/braincoral/reefplan/internal/domain/models"
	warehouseclient "github.com/braincoral/reefplan/pkg/clients/warehouse"
)

// Source adapts the warehouse API client into a planner batch source,
// dropping rows with no remaining stock.
type Source struct {
	client warehouseclient.Client
	logger *zap.Logger
}

// NewSource wraps a warehouse client.
func NewSource(client warehouseclient.Client, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{client: client, logger: logger}
}

// FetchBatches returns the tenant's inventory rows that still carry stock.
func (s *Source) FetchBatches(ctx context.Context, tenant string, asOf *time.Time) ([]models.BatchRow, error) {
	rows, err := s.client.FetchBatches(ctx, tenant, asOf)
	if err != nil {
		return nil, err
	}

	kept := rows[:0]
	skipped := 0
	for _, row := range rows {
		if row.CurrentQuantity <= 0 && row.CurrentFSPlugCount <= 0 {
			skipped++
			continue
		}
		kept = append(kept, row)
	}

	if skipped > 0 {
		s.logger.Debug("dropped empty inventory rows", zap.Int("skipped", skipped))
	}
	s.logger.Info("fetched warehouse inventory", zap.String("tenant", tenant), zap.Int("rows", len(kept)))
	return kept, nil
}
