package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/braincoral/reefplan/internal/config"
	"github.com/braincoral/reefplan/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Expected sheet columns, left to right.
const (
	colBatchID = iota
	colSpecies
	colAlteration
	colQuantity
	colLocationType
	colPlugCount
	colStartDate
	colOutplantDate
)

// Source reads inventory rows from a manually maintained Google Sheet. It
// serves facilities that track stock outside the warehouse; historical
// as-of reads are not available from a sheet.
type Source struct {
	service       *sheetsapi.Service
	spreadsheetID string
	readRange     string
	logger        *zap.Logger
}

// NewSource builds a Google Sheets backed batch source.
func NewSource(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &Source{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		readRange:     cfg.ReadRange,
		logger:        logger,
	}, nil
}

// FetchBatches reads the configured range and parses each row into a batch
// row. Rows that cannot be parsed fail the fetch; the planner must never
// run on a partially read inventory.
func (s *Source) FetchBatches(ctx context.Context, tenant string, asOf *time.Time) ([]models.BatchRow, error) {
	if asOf != nil {
		return nil, fmt.Errorf("sheet source cannot serve historical inventory for %s", asOf.Format(dateLayout))
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", s.readRange, err)
	}

	rows := make([]models.BatchRow, 0, len(resp.Values))
	for i, raw := range resp.Values {
		row, err := parseRow(raw)
		if err != nil {
			return nil, fmt.Errorf("sheet row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}

	s.logger.Info("fetched sheet inventory", zap.String("tenant", tenant), zap.Int("rows", len(rows)))
	return rows, nil
}

func parseRow(raw []interface{}) (models.BatchRow, error) {
	if len(raw) <= colStartDate {
		return models.BatchRow{}, fmt.Errorf("expected at least %d columns, got %d", colStartDate+1, len(raw))
	}

	quantity, err := parseInt(raw[colQuantity])
	if err != nil {
		return models.BatchRow{}, fmt.Errorf("quantity: %w", err)
	}
	plugs, err := parseInt(raw[colPlugCount])
	if err != nil {
		return models.BatchRow{}, fmt.Errorf("plug count: %w", err)
	}
	startDate, err := parseDate(raw[colStartDate])
	if err != nil {
		return models.BatchRow{}, fmt.Errorf("start date: %w", err)
	}

	row := models.BatchRow{
		BatchID:             fmt.Sprint(raw[colBatchID]),
		Species:             fmt.Sprint(raw[colSpecies]),
		Alteration:          fmt.Sprint(raw[colAlteration]),
		CurrentQuantity:     quantity,
		CurrentLocationType: fmt.Sprint(raw[colLocationType]),
		CurrentFSPlugCount:  plugs,
		StartDate:           startDate,
	}

	if len(raw) > colOutplantDate && fmt.Sprint(raw[colOutplantDate]) != "" {
		outplant, err := parseDate(raw[colOutplantDate])
		if err != nil {
			return models.BatchRow{}, fmt.Errorf("outplant date: %w", err)
		}
		row.OutplantDate = &outplant
	}

	return row, nil
}

func parseDate(value interface{}) (time.Time, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}

func parseInt(value interface{}) (int, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return 0, nil
	}
	return strconv.Atoi(str)
}
