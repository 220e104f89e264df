package planning

import (
	"reflect"
	"testing"

	"github.com/braincoral/reefplan/internal/domain/models"
)

func testConfig() models.FarmConfig {
	return models.FarmConfig{
		NumProdTanks:           27,
		ProdTankCapacity:       1000,
		NumBroodstockTanks:     6,
		BroodstockTankCapacity: 100,
		StageCapacities:        models.StageCounts{BS: 1000, MF: 300, FS: 300, OP: 1000},
		DefaultBSQuantity:      100,
		MaxBatchQuantity:       100,
		Cycles:                 models.CycleDays{BS: 28, MF: 30, FS: 90},
		Mortality:              models.MortalityRates{BS: 0.05, MF: 0.1, FS: 0.05},
	}
}

func bsBatch(id, species string, quantity int, cfg models.FarmConfig) *models.Batch {
	return models.NewBatch(id, species, quantity, models.StageBroodstock, 0, cfg.Cycles, cfg.Mortality)
}

func makeCapacity(days, prod, broodstock int, stage models.StageCounts) []models.DayCapacity {
	capacity := make([]models.DayCapacity, days)
	for i := range capacity {
		capacity[i] = models.DayCapacity{Prod: prod, Broodstock: broodstock, Stage: stage}
	}
	return capacity
}

func TestForecastSingleBatchTransition(t *testing.T) {
	cfg := testConfig()
	order := map[string]int{"ACER": 5000}
	farm := NewFarm(FarmParams{
		Inventory:       []*models.Batch{bsBatch("B-1", "ACER", 100, cfg)},
		Config:          cfg,
		ProductionOrder: order,
		Seed:            1,
	}, nil)

	result := farm.Forecast(30, order, 5000)

	if got := result.Totals[27].Overall; got.BS != 100 || got.MF != 0 {
		t.Errorf("day 27 totals BS=%d MF=%d, want 100/0", got.BS, got.MF)
	}
	if got := result.Totals[28].Overall; got.BS != 0 || got.MF != 100 {
		t.Errorf("day 28 totals BS=%d MF=%d, want 0/100", got.BS, got.MF)
	}
	if got := result.Changes[28].Overall.MF; got != 100 {
		t.Errorf("day 28 changes MF=%d, want 100", got)
	}
	if got := result.Changes[27].Overall.MF; got != 0 {
		t.Errorf("day 27 changes MF=%d, want 0", got)
	}
	if got := result.Totals[29].Overall.SF; got != 5000 {
		t.Errorf("final shortfall=%d, want 5000", got)
	}
	if got := result.Changes[28].Species["ACER"].MF; got != 100 {
		t.Errorf("day 28 ACER changes MF=%d, want 100", got)
	}
}

func TestForecastBlocksOnExhaustedStageCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.StageCapacities.MF = 50
	order := map[string]int{"ACER": 5000}
	farm := NewFarm(FarmParams{
		Inventory:       []*models.Batch{bsBatch("B-1", "ACER", 100, cfg)},
		Config:          cfg,
		ProductionOrder: order,
		Seed:            1,
	}, nil)

	result := farm.Forecast(30, order, 5000)

	for day := 0; day < 30; day++ {
		if got := result.Totals[day].Overall.BS; got != 100 {
			t.Fatalf("day %d totals BS=%d, want 100 (transition should never fire)", day, got)
		}
	}
}

func TestForecastFirstComeFirstServed(t *testing.T) {
	cfg := testConfig()
	cfg.StageCapacities.MF = 100
	order := map[string]int{"ACER": 5000}

	inventory := []*models.Batch{
		bsBatch("B-1", "ACER", 40, cfg),
		bsBatch("B-2", "ACER", 40, cfg),
		bsBatch("B-3", "ACER", 40, cfg),
	}
	farm := NewFarm(FarmParams{Inventory: inventory, Config: cfg, ProductionOrder: order, Seed: 1}, nil)

	result := farm.Forecast(30, order, 5000)

	// Daily MF allowance is 100: the first two listed batches win on day 28,
	// the third waits for the next day's allowance.
	if got := result.Changes[28].Overall.MF; got != 80 {
		t.Fatalf("day 28 changes MF=%d, want 80", got)
	}
	snap := result.Inventory[28]
	if snap["B-1"].Stage != models.StageMicrofragment || snap["B-2"].Stage != models.StageMicrofragment {
		t.Error("first two batches should have transitioned on day 28")
	}
	if snap["B-3"].Stage != models.StageBroodstock {
		t.Errorf("third batch stage=%s, want BS on day 28", snap["B-3"].Stage)
	}
	if got := result.Changes[29].Overall.MF; got != 40 {
		t.Errorf("day 29 changes MF=%d, want 40", got)
	}
}

func TestForecastConservesQuantity(t *testing.T) {
	cfg := testConfig()
	order := map[string]int{"ACER": 5000, "PAST": 7000}
	inventory := []*models.Batch{
		bsBatch("B-1", "ACER", 100, cfg),
		models.NewBatch("B-2", "PAST", 240, models.StageMicrofragment, -20, cfg.Cycles, cfg.Mortality),
		models.NewBatch("B-3", "ACER", 80, models.StageFusionStructure, -85, cfg.Cycles, cfg.Mortality),
	}
	total := 100 + 240 + 80

	farm := NewFarm(FarmParams{Inventory: inventory, Config: cfg, ProductionOrder: order, Seed: 1}, nil)
	result := farm.Forecast(120, order, 12000)

	for day, snapshot := range result.Inventory {
		sum := 0
		for _, state := range snapshot {
			sum += state.Quantity
		}
		if sum != total {
			t.Fatalf("day %d inventory sums to %d, want %d", day, sum, total)
		}
		overall := result.Totals[day].Overall
		if overall.BS+overall.MF+overall.FS+overall.OP != total {
			t.Fatalf("day %d totals sum to %d, want %d", day, overall.BS+overall.MF+overall.FS+overall.OP, total)
		}
	}
}

func TestForecastStageMonotonicity(t *testing.T) {
	cfg := testConfig()
	order := map[string]int{"ACER": 5000}
	inventory := []*models.Batch{
		bsBatch("B-1", "ACER", 100, cfg),
		models.NewBatch("B-2", "ACER", 50, models.StageMicrofragment, -29, cfg.Cycles, cfg.Mortality),
	}

	farm := NewFarm(FarmParams{Inventory: inventory, Config: cfg, ProductionOrder: order, Seed: 1}, nil)
	result := farm.Forecast(200, order, 5000)

	lastIdx := map[string]int{}
	for day, snapshot := range result.Inventory {
		for id, state := range snapshot {
			idx := state.Stage.Index()
			if prev, ok := lastIdx[id]; ok && idx < prev {
				t.Fatalf("batch %s moved backwards on day %d: index %d -> %d", id, day, prev, idx)
			}
			lastIdx[id] = idx
		}
	}
}

func TestForecastCapacityNonOversubscription(t *testing.T) {
	cfg := testConfig()
	cfg.StageCapacities = models.StageCounts{BS: 100, MF: 90, FS: 70, OP: 60}
	order := map[string]int{"ACER": 5000}

	var inventory []*models.Batch
	for i := 0; i < 8; i++ {
		inventory = append(inventory, bsBatch(string(rune('A'+i)), "ACER", 30, cfg))
	}

	farm := NewFarm(FarmParams{Inventory: inventory, Config: cfg, ProductionOrder: order, Seed: 1}, nil)
	result := farm.Forecast(250, order, 5000)

	stages := []models.Stage{models.StageBroodstock, models.StageMicrofragment, models.StageFusionStructure, models.StageOutplanted}
	for day, changes := range result.Changes {
		for _, stage := range stages {
			if got := changes.Overall.Get(stage); got > cfg.StageCapacities.Get(stage) {
				t.Fatalf("day %d: %d units transitioned into %s, ceiling is %d", day, got, stage, cfg.StageCapacities.Get(stage))
			}
		}
	}
}

func TestPlanFutureAdmissionBoundedByBroodstockPool(t *testing.T) {
	cfg := testConfig()
	order := map[string]int{"ACER": 5000}
	farm := NewFarm(FarmParams{Config: cfg, ProductionOrder: order, Seed: 1}, nil)

	capacity := makeCapacity(1, 10000, 300, models.StageCounts{BS: 1000, MF: 300, FS: 300, OP: 1000})
	result := farm.PlanFuture(1, map[string]int{"ACER": 250}, capacity)

	// Three max-size batches exhaust the 300-unit broodstock pool and
	// overshoot the 250-unit shortfall; the loop then halts.
	if got := result.Changes[0].Overall.BS; got != 300 {
		t.Fatalf("day 0 admitted BS=%d, want 300", got)
	}
	if got := len(result.Inventory[0]); got != 3 {
		t.Fatalf("day 0 inventory holds %d batches, want 3", got)
	}
	for id, state := range result.Inventory[0] {
		if state.Quantity != 100 {
			t.Errorf("batch %s quantity=%d, want 100", id, state.Quantity)
		}
	}
	if got := result.Capacity[0].Broodstock; got != 0 {
		t.Errorf("day 0 broodstock pool=%d, want 0", got)
	}
	if got := result.Capacity[0].Stage.BS; got != 700 {
		t.Errorf("day 0 BS stage pool=%d, want 700", got)
	}
}

func TestPlanFutureNoOutplantWindow(t *testing.T) {
	cfg := testConfig()
	cfg.Cycles = models.CycleDays{BS: 3, MF: 4, FS: 8}
	order := map[string]int{"ACER": 100}
	window := &models.DayWindow{Start: 10, End: 20}
	farm := NewFarm(FarmParams{Config: cfg, ProductionOrder: order, NoOutplantWindow: window, Seed: 1}, nil)

	capacity := makeCapacity(25, 10000, 10000, models.StageCounts{BS: 1000, MF: 300, FS: 300, OP: 1000})
	result := farm.PlanFuture(25, map[string]int{"ACER": 100}, capacity)

	// One batch admitted day 0, BS->MF day 3, MF->FS day 7, FS ready day 15.
	if got := result.Changes[3].Overall.MF; got != 100 {
		t.Fatalf("day 3 changes MF=%d, want 100", got)
	}
	if got := result.Changes[7].Overall.FS; got != 100 {
		t.Fatalf("day 7 changes FS=%d, want 100", got)
	}
	for day := 10; day <= 20; day++ {
		if got := result.Changes[day].Overall.OP; got != 0 {
			t.Fatalf("day %d: %d units outplanted inside the no-outplant window", day, got)
		}
	}
	if got := result.Changes[21].Overall.OP; got != 100 {
		t.Errorf("day 21 changes OP=%d, want 100 (withheld transition fires)", got)
	}
	if got := result.Totals[21].Overall.OP; got != 100 {
		t.Errorf("day 21 totals OP=%d, want 100", got)
	}
}

func TestPlanFutureProductionTankGate(t *testing.T) {
	cfg := testConfig()
	cfg.Cycles = models.CycleDays{BS: 2, MF: 30, FS: 90}
	order := map[string]int{"ACER": 100}
	farm := NewFarm(FarmParams{Config: cfg, ProductionOrder: order, Seed: 1}, nil)

	// Stage pool would allow BS->MF, but the production-tank pool is full.
	capacity := makeCapacity(6, 40, 10000, models.StageCounts{BS: 1000, MF: 300, FS: 300, OP: 1000})
	result := farm.PlanFuture(6, map[string]int{"ACER": 100}, capacity)

	for day := 2; day < 6; day++ {
		if got := result.Changes[day].Overall.MF; got != 0 {
			t.Fatalf("day %d: BS->MF fired with a full production pool (MF +%d)", day, got)
		}
		if got := result.Totals[day].Overall.BS; got != 100 {
			t.Fatalf("day %d totals BS=%d, want 100 (gated batch stays put)", day, got)
		}
	}
}

func TestPlanFutureSpeciesShareRanking(t *testing.T) {
	cfg := testConfig()
	order := map[string]int{"AAAA": 100, "BBBB": 100}
	farm := NewFarm(FarmParams{Config: cfg, ProductionOrder: order, Seed: 1}, nil)

	capacity := makeCapacity(1, 10000, 100, models.StageCounts{BS: 1000, MF: 300, FS: 300, OP: 1000})
	result := farm.PlanFuture(1, map[string]int{"AAAA": 50, "BBBB": 90}, capacity)

	// BBBB carries the greater shortfall share (0.9 vs 0.5) and the single
	// pool-limited batch goes to it.
	if got := result.Changes[0].Species["BBBB"].BS; got != 100 {
		t.Errorf("BBBB admitted %d, want 100", got)
	}
	if got := result.Changes[0].Species["AAAA"].BS; got != 0 {
		t.Errorf("AAAA admitted %d, want 0", got)
	}
}

func TestPlanFutureZeroTargetSpeciesSkipped(t *testing.T) {
	cfg := testConfig()
	order := map[string]int{"ZZZZ": 0, "AAAA": 100}
	farm := NewFarm(FarmParams{Config: cfg, ProductionOrder: order, Seed: 7}, nil)

	capacity := makeCapacity(1, 10000, 100, models.StageCounts{BS: 1000, MF: 300, FS: 300, OP: 1000})

	// The only short species has a zero target: share ranking skips it
	// instead of dividing by zero, and the seeded fallback picks a species.
	result := farm.PlanFuture(1, map[string]int{"ZZZZ": 80}, capacity)

	if got := result.Changes[0].Overall.BS; got != 100 {
		t.Fatalf("admitted BS=%d, want one pool-limited batch of 100", got)
	}
	if got := len(result.Inventory[0]); got != 1 {
		t.Fatalf("admitted %d batches, want 1 (loop must terminate)", got)
	}
}

func TestPlanFuturePoolCarryThroughDays(t *testing.T) {
	cfg := testConfig()
	order := map[string]int{"ACER": 5000}
	farm := NewFarm(FarmParams{Config: cfg, ProductionOrder: order, Seed: 1}, nil)

	capacity := makeCapacity(3, 10000, 450, models.StageCounts{BS: 1000, MF: 300, FS: 300, OP: 1000})
	result := farm.PlanFuture(3, map[string]int{"ACER": 1000}, capacity)

	// Day 0 admits against the raw envelope: four batches of 100, then a
	// fifth capped to the 50 units left in the broodstock pool.
	if got := result.Changes[0].Overall.BS; got != 450 {
		t.Fatalf("day 0 admitted BS=%d, want 450", got)
	}
	// Day 1 envelope is recomputed as forecast pool minus yesterday's own
	// broodstock occupancy: 450-450=0, so nothing is admitted.
	if got := result.Changes[1].Overall.BS; got != 0 {
		t.Errorf("day 1 admitted BS=%d, want 0 (pool consumed by day 0 batches)", got)
	}
	if got := result.Capacity[1].Broodstock; got != 0 {
		t.Errorf("day 1 broodstock pool=%d, want 0", got)
	}
}

func TestSimulationDeterminism(t *testing.T) {
	cfg := testConfig()
	order := map[string]int{"ACER": 5000, "PAST": 7000}
	inventory := []*models.Batch{
		bsBatch("B-1", "ACER", 100, cfg),
		models.NewBatch("B-2", "PAST", 200, models.StageMicrofragment, -10, cfg.Cycles, cfg.Mortality),
	}

	run := func() (models.SimulationResult, models.SimulationResult) {
		farm := NewFarm(FarmParams{Inventory: inventory, Config: cfg, ProductionOrder: order, Seed: 42}, nil)
		forecast := farm.Forecast(180, order, 12000)
		recovery := farm.PlanFuture(180, map[string]int{"ACER": 4900, "PAST": 6800}, forecast.Capacity)
		return forecast, recovery
	}

	f1, r1 := run()
	f2, r2 := run()

	if !reflect.DeepEqual(f1, f2) {
		t.Error("two forecast runs with identical inputs diverged")
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Error("two recovery runs with identical inputs and seed diverged")
	}
}

func TestPlanFutureDoesNotMutateCallerShortfalls(t *testing.T) {
	cfg := testConfig()
	order := map[string]int{"ACER": 5000}
	farm := NewFarm(FarmParams{Config: cfg, ProductionOrder: order, Seed: 1}, nil)

	shortfalls := map[string]int{"ACER": 250}
	capacity := makeCapacity(1, 10000, 300, models.StageCounts{BS: 1000, MF: 300, FS: 300, OP: 1000})
	farm.PlanFuture(1, shortfalls, capacity)

	if shortfalls["ACER"] != 250 {
		t.Fatalf("caller shortfall mutated to %d", shortfalls["ACER"])
	}
}

func TestNewFarmClonesInventory(t *testing.T) {
	cfg := testConfig()
	order := map[string]int{"ACER": 5000}
	original := bsBatch("B-1", "ACER", 100, cfg)
	farm := NewFarm(FarmParams{Inventory: []*models.Batch{original}, Config: cfg, ProductionOrder: order, Seed: 1}, nil)

	farm.Forecast(40, order, 5000)

	if original.Stage != models.StageBroodstock {
		t.Fatalf("caller batch mutated to stage %s", original.Stage)
	}
}
