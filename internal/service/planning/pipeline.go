package planning

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/braincoral/reefplan/internal/domain/models"
)

// BatchSource supplies the raw inventory rows a plan starts from. asOf nil
// means the facility's current state.
type BatchSource interface {
	FetchBatches(ctx context.Context, tenant string, asOf *time.Time) ([]models.BatchRow, error)
}

// PlanStore persists flattened production plans append-only and serves
// them back for compliance review.
type PlanStore interface {
	SavePlan(ctx context.Context, records []models.PlanRecord) error
	ListPlanNames(ctx context.Context) ([]string, error)
	LoadPlan(ctx context.Context, name string) ([]models.PlanRecord, error)
}

// Service runs the full planning pipeline: fetch inventory, map it to
// batches, forecast, derive the shortfall, plan its recovery and merge the
// two passes into the unified series.
type Service struct {
	source BatchSource
	store  PlanStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a planning service instance.
func NewService(source BatchSource, store PlanStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, store: store, logger: logger, now: time.Now}
}

// RunRequest parameterizes one pipeline run. Nil ProductionOrder and
// FarmConfig fall back to the tenant defaults; a zero StartDate means
// today.
type RunRequest struct {
	Tenant          string
	Days            int
	ProductionOrder map[string]int
	FarmConfig      *models.FarmConfig
	StartDate       time.Time
	AsOf            *time.Time
	NoOutplantStart *time.Time
	NoOutplantEnd   *time.Time
	Seed            int64
}

// RunResult carries the three series a run produces. Unified is the
// externally visible deliverable; the two passes ride along for charting.
type RunResult struct {
	Tenant    string                  `json:"tenant"`
	StartedAt time.Time               `json:"started_at"`
	Forecast  models.SimulationResult `json:"forecast"`
	Recovery  models.SimulationResult `json:"recovery"`
	Unified   models.SimulationResult `json:"unified"`
}

// Run executes the pipeline. Mapping failures on any inventory row abort
// the run immediately.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if req.Tenant == "" {
		return nil, errors.New("tenant is required")
	}
	if req.Days < 1 {
		return nil, fmt.Errorf("forecast horizon must be at least 1 day, got %d", req.Days)
	}

	cfg := models.DefaultFarmConfig(req.Tenant)
	if req.FarmConfig != nil {
		cfg = *req.FarmConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	order := req.ProductionOrder
	if order == nil {
		order = models.DefaultProductionOrder(req.Tenant)
	}
	if len(order) == 0 {
		return nil, errors.New("production order must name at least one species")
	}

	startDate := req.StartDate
	if startDate.IsZero() {
		now := s.now().UTC()
		startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	window, err := outplantWindow(startDate, req.NoOutplantStart, req.NoOutplantEnd)
	if err != nil {
		return nil, err
	}

	rows, err := s.source.FetchBatches(ctx, req.Tenant, req.AsOf)
	if err != nil {
		return nil, fmt.Errorf("fetch inventory rows: %w", err)
	}

	inventory := make([]*models.Batch, 0, len(rows))
	for _, row := range rows {
		batch, err := row.ToBatch(cfg, startDate)
		if err != nil {
			return nil, fmt.Errorf("map inventory row: %w", err)
		}
		inventory = append(inventory, batch)
	}

	s.logger.Info("running production plan",
		zap.String("tenant", req.Tenant),
		zap.Int("days", req.Days),
		zap.Int("batches", len(inventory)),
		zap.Time("start_date", startDate))

	farm := NewFarm(FarmParams{
		Inventory:        inventory,
		Config:           cfg,
		ProductionOrder:  order,
		NoOutplantWindow: window,
		Seed:             req.Seed,
	}, s.logger.Named("farm"))

	desired := 0
	for _, target := range order {
		desired += target
	}

	forecast := farm.Forecast(req.Days, order, desired)
	shortfalls := finalShortfalls(forecast, order)
	recovery := farm.PlanFuture(req.Days, shortfalls, forecast.Capacity)
	unified := MergeResults(forecast, recovery)

	return &RunResult{
		Tenant:    req.Tenant,
		StartedAt: startDate,
		Forecast:  forecast,
		Recovery:  recovery,
		Unified:   unified,
	}, nil
}

// RunAndSave runs the pipeline and persists the unified series under the
// given plan name.
func (s *Service) RunAndSave(ctx context.Context, name string, req RunRequest) (*RunResult, error) {
	if name == "" {
		return nil, errors.New("plan name is required")
	}

	result, err := s.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	records := FlattenPlan(name, s.now().UTC(), result)
	if err := s.store.SavePlan(ctx, records); err != nil {
		return nil, fmt.Errorf("save plan %q: %w", name, err)
	}

	s.logger.Info("plan saved", zap.String("plan", name), zap.Int("records", len(records)))
	return result, nil
}

// ListPlans returns the names of saved production plans.
func (s *Service) ListPlans(ctx context.Context) ([]string, error) {
	return s.store.ListPlanNames(ctx)
}

// LoadPlan returns the flattened records of one saved plan.
func (s *Service) LoadPlan(ctx context.Context, name string) ([]models.PlanRecord, error) {
	return s.store.LoadPlan(ctx, name)
}

// FlattenPlan turns a unified result into persistable rows: per day, one
// overall totals row, one overall additions row, and a totals/additions
// pair per species in sorted order.
func FlattenPlan(name string, savedAt time.Time, result *RunResult) []models.PlanRecord {
	base := models.PlanRecord{
		PlanName:  name,
		Tenant:    result.Tenant,
		StartedAt: result.StartedAt,
		SavedAt:   savedAt,
	}

	var records []models.PlanRecord
	for day := range result.Unified.Totals {
		totals := result.Unified.Totals[day]
		changes := result.Unified.Changes[day]

		overallTotals := base
		overallTotals.Day = day
		overallTotals.Type = models.RecordOverallTotals
		overallTotals.BS = totals.Overall.BS
		overallTotals.MF = totals.Overall.MF
		overallTotals.FS = totals.Overall.FS
		overallTotals.OP = totals.Overall.OP
		overallTotals.SF = totals.Overall.SF
		records = append(records, overallTotals)

		overallAdds := base
		overallAdds.Day = day
		overallAdds.Type = models.RecordOverallAdditions
		overallAdds.BS = changes.Overall.BS
		overallAdds.MF = changes.Overall.MF
		overallAdds.FS = changes.Overall.FS
		overallAdds.OP = changes.Overall.OP
		records = append(records, overallAdds)

		for _, species := range sortedSpecies(totals.Species) {
			t := totals.Species[species]
			row := base
			row.Day = day
			row.Type = models.RecordSpeciesTotals
			row.Species = species
			row.BS, row.MF, row.FS, row.OP, row.SF = t.BS, t.MF, t.FS, t.OP, t.SF
			records = append(records, row)

			c := changes.Species[species]
			row = base
			row.Day = day
			row.Type = models.RecordSpeciesAdditions
			row.Species = species
			row.BS, row.MF, row.FS, row.OP = c.BS, c.MF, c.FS, c.OP
			records = append(records, row)
		}
	}
	return records
}

// finalShortfalls reads the per-species shortfall off the forecast's last
// day. A species that never shows up in the forecast is short its whole
// target.
func finalShortfalls(forecast models.SimulationResult, order map[string]int) map[string]int {
	shortfalls := make(map[string]int, len(order))
	var last *models.DayTotals
	if len(forecast.Totals) > 0 {
		last = &forecast.Totals[len(forecast.Totals)-1]
	}
	for species, target := range order {
		shortfalls[species] = target
		if last == nil {
			continue
		}
		if totals, ok := last.Species[species]; ok {
			shortfalls[species] = totals.SF
		}
	}
	return shortfalls
}

func outplantWindow(startDate time.Time, from, to *time.Time) (*models.DayWindow, error) {
	if from == nil || to == nil {
		return nil, nil
	}
	if to.Before(*from) {
		return nil, errors.New("no-outplant window end precedes its start")
	}
	return &models.DayWindow{
		Start: int(from.Sub(startDate).Hours() / 24),
		End:   int(to.Sub(startDate).Hours() / 24),
	}, nil
}

func sortedSpecies[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
