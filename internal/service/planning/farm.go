package planning

import (
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/braincoral/reefplan/internal/domain/models"
)

// Farm drives batches through the lifecycle under per-stage and
// facility-level capacity. Days are simulated strictly in order and
// batches are evaluated in stable input order: when two batches compete
// for the last unit of downstream capacity, the first listed wins.
type Farm struct {
	inventory []*models.Batch

	stageCapacities    models.StageCounts
	prodCapacity       int
	broodstockCapacity int
	productionOrder    map[string]int
	maxBatchQuantity   int
	defaultCycles      models.CycleDays
	defaultMortality   models.MortalityRates
	noOutplantWindow   *models.DayWindow

	speciesSet []string // sorted union of inventory and production-order species
	rng        *rand.Rand
	batchSeq   int
	logger     *zap.Logger
}

// FarmParams collects everything a Farm needs for a run.
type FarmParams struct {
	Inventory        []*models.Batch
	Config           models.FarmConfig
	ProductionOrder  map[string]int
	NoOutplantWindow *models.DayWindow
	Seed             int64
}

// NewFarm builds a farm over a private copy of the provided inventory, so
// the caller's batches stay untouched across simulation passes. The seed
// drives the species-selection fallback; runs with equal inputs and seeds
// produce identical output series.
func NewFarm(p FarmParams, logger *zap.Logger) *Farm {
	if logger == nil {
		logger = zap.NewNop()
	}

	inventory := make([]*models.Batch, 0, len(p.Inventory))
	seen := map[string]struct{}{}
	for _, b := range p.Inventory {
		inventory = append(inventory, b.Clone())
		seen[b.Species] = struct{}{}
	}
	for species := range p.ProductionOrder {
		seen[species] = struct{}{}
	}
	speciesSet := make([]string, 0, len(seen))
	for species := range seen {
		speciesSet = append(speciesSet, species)
	}
	sort.Strings(speciesSet)

	return &Farm{
		inventory:          inventory,
		stageCapacities:    p.Config.StageCapacities,
		prodCapacity:       p.Config.ProdCapacity(),
		broodstockCapacity: p.Config.BroodstockCapacity(),
		productionOrder:    p.ProductionOrder,
		maxBatchQuantity:   p.Config.MaxBatchQuantity,
		defaultCycles:      p.Config.Cycles,
		defaultMortality:   p.Config.Mortality,
		noOutplantWindow:   p.NoOutplantWindow,
		speciesSet:         speciesSet,
		rng:                rand.New(rand.NewSource(p.Seed)),
		logger:             logger,
	}
}

// Forecast advances the existing inventory day by day for the given
// horizon and returns the four day-indexed series. No batches are created;
// stage-capacity pools reset to their ceilings every morning.
func (f *Farm) Forecast(days int, productionOrder map[string]int, desiredOutput int) models.SimulationResult {
	result := newResult(days)

	for day := 0; day < days; day++ {
		stageRemaining := f.stageCapacities
		totals := f.newDayTotals()
		changes := f.newDayChanges()
		snapshot := make(models.InventorySnapshot, len(f.inventory))

		for _, batch := range f.inventory {
			f.advanceBatch(batch, day, &stageRemaining, &changes, nil)
			batch.ApplyMortality()

			snapshot[batch.ID] = models.BatchState{
				Species:  batch.Species,
				Stage:    batch.Stage,
				Quantity: batch.Quantity,
			}
			addTotals(&totals, batch)
		}

		totals.Overall.SF = desiredOutput - totals.Overall.OP
		for _, species := range f.speciesSet {
			target, ok := productionOrder[species]
			if !ok {
				continue
			}
			t := totals.Species[species]
			t.SF = target - t.OP
			totals.Species[species] = t
		}

		capacity := models.DayCapacity{
			Prod:       f.prodCapacity - totals.Overall.MF - totals.Overall.FS,
			Broodstock: f.broodstockCapacity - totals.Overall.BS,
			Stage:      stageRemaining,
		}

		result.Inventory = append(result.Inventory, snapshot)
		result.Totals = append(result.Totals, totals)
		result.Changes = append(result.Changes, changes)
		result.Capacity = append(result.Capacity, capacity)

		f.logger.Debug("forecast day complete",
			zap.Int("day", day),
			zap.Int("bs", totals.Overall.BS),
			zap.Int("mf", totals.Overall.MF),
			zap.Int("fs", totals.Overall.FS),
			zap.Int("op", totals.Overall.OP),
			zap.Int("shortfall", totals.Overall.SF))
	}

	return result
}

// PlanFuture greedily admits new broodstock batches against the capacity
// envelope a forecast produced, then advances them under the same stage
// rules plus the production-tank gate on BS to MF and the no-outplant
// window on FS to OP. speciesShortfall is copied; the caller's map is not
// mutated.
func (f *Farm) PlanFuture(days int, speciesShortfall map[string]int, forecastedCapacity []models.DayCapacity) models.SimulationResult {
	result := newResult(days)
	if days > len(forecastedCapacity) {
		days = len(forecastedCapacity)
	}

	shortfalls := make(map[string]int, len(speciesShortfall))
	shortfall := 0
	for species, sf := range speciesShortfall {
		shortfalls[species] = sf
		shortfall += sf
	}

	var hypothetical []*models.Batch
	var prevTotals models.StageCounts

	for day := 0; day < days; day++ {
		prodRemaining := forecastedCapacity[day].Prod
		broodstockRemaining := forecastedCapacity[day].Broodstock
		if day > 0 {
			// The envelope is what the forecast pass left free; subtract
			// yesterday's own occupancy on top of it.
			prodRemaining -= prevTotals.MF + prevTotals.FS
			broodstockRemaining -= prevTotals.BS
		}
		stageRemaining := forecastedCapacity[day].Stage

		totals := f.newDayTotals()
		changes := f.newDayChanges()
		snapshot := models.InventorySnapshot{}

		for shortfall > 0 && stageRemaining.BS > 0 && broodstockRemaining > 0 {
			quantity := minInt(stageRemaining.BS, broodstockRemaining, f.maxBatchQuantity)
			species := f.chooseSpecies(shortfalls)
			batch := f.createBatch(day, species, quantity)
			hypothetical = append(hypothetical, batch)

			stageRemaining.BS -= batch.Quantity
			broodstockRemaining -= batch.Quantity
			shortfall -= batch.Quantity
			shortfalls[batch.Species] -= batch.Quantity

			changes.Overall.Add(models.StageBroodstock, batch.Quantity)
			speciesChange := changes.Species[batch.Species]
			speciesChange.Add(models.StageBroodstock, batch.Quantity)
			changes.Species[batch.Species] = speciesChange

			f.logger.Debug("admitted recovery batch",
				zap.Int("day", day),
				zap.String("batch_id", batch.ID),
				zap.String("species", batch.Species),
				zap.Int("quantity", batch.Quantity),
				zap.Int("remaining_shortfall", shortfall))
		}

		// The production-tank gate checks the day's pre-advancement pool;
		// same-day transitions do not move it.
		gates := &transitionGates{prodPool: prodRemaining, day: day, window: f.noOutplantWindow}

		for _, batch := range hypothetical {
			f.advanceBatch(batch, day, &stageRemaining, &changes, gates)
			batch.ApplyMortality()

			snapshot[batch.ID] = models.BatchState{
				Species:  batch.Species,
				Stage:    batch.Stage,
				Quantity: batch.Quantity,
			}
			addTotals(&totals, batch)
		}

		capacity := models.DayCapacity{
			Prod:       prodRemaining,
			Broodstock: broodstockRemaining,
			Stage:      stageRemaining,
		}

		result.Inventory = append(result.Inventory, snapshot)
		result.Totals = append(result.Totals, totals)
		result.Changes = append(result.Changes, changes)
		result.Capacity = append(result.Capacity, capacity)

		prevTotals = totals.Overall.StageCounts
	}

	return result
}

// transitionGates carries the extra recovery-pass transition rules.
type transitionGates struct {
	prodPool int
	day      int
	window   *models.DayWindow
}

// advanceBatch applies one day of the lifecycle state machine to a batch:
// readiness, downstream stage-pool room, and any recovery-pass gates. On
// transition it consumes the downstream pool and records the delta.
func (f *Farm) advanceBatch(batch *models.Batch, day int, stageRemaining *models.StageCounts, changes *models.DayChanges, gates *transitionGates) {
	if !batch.ReadyToTransition(day) {
		return
	}
	next, ok := batch.Stage.Next()
	if !ok {
		return
	}
	if stageRemaining.Get(next) < batch.Quantity {
		return
	}
	if gates != nil {
		if next == models.StageMicrofragment && gates.prodPool < batch.Quantity {
			return
		}
		if next == models.StageOutplanted && gates.window != nil && gates.window.Contains(day) {
			return
		}
	}

	batch.Advance(day)
	stageRemaining.Add(next, -batch.Quantity)
	changes.Overall.Add(next, batch.Quantity)
	speciesChange := changes.Species[batch.Species]
	speciesChange.Add(next, batch.Quantity)
	changes.Species[batch.Species] = speciesChange
}

// chooseSpecies picks the species with the greatest shortfall share,
// remaining shortfall over production target. Species with a zero target
// are never short and are skipped. When no species qualifies the fallback
// is a draw from the known species through the farm's seeded generator.
func (f *Farm) chooseSpecies(shortfalls map[string]int) string {
	species := make([]string, 0, len(shortfalls))
	for s := range shortfalls {
		species = append(species, s)
	}
	sort.Strings(species)

	best := -1.0
	chosen := ""
	for _, s := range species {
		target := f.productionOrder[s]
		if target <= 0 {
			continue
		}
		share := float64(shortfalls[s]) / float64(target)
		if share > best {
			best = share
			chosen = s
		}
	}
	if chosen != "" {
		return chosen
	}
	if len(f.speciesSet) == 0 {
		return ""
	}
	return f.speciesSet[f.rng.Intn(len(f.speciesSet))]
}

// createBatch mints a new broodstock batch for the recovery plan.
// Identifiers are sequential so plans replay identically.
func (f *Farm) createBatch(day int, species string, quantityCeiling int) *models.Batch {
	f.batchSeq++
	id := fmt.Sprintf("PLAN-%04d", f.batchSeq)
	quantity := minInt(quantityCeiling, f.maxBatchQuantity)
	return models.NewBatch(id, species, quantity, models.StageBroodstock, day, f.defaultCycles, f.defaultMortality)
}

func (f *Farm) newDayTotals() models.DayTotals {
	totals := models.DayTotals{Species: make(map[string]models.Totals, len(f.speciesSet))}
	for _, species := range f.speciesSet {
		totals.Species[species] = models.Totals{}
	}
	return totals
}

func (f *Farm) newDayChanges() models.DayChanges {
	changes := models.DayChanges{Species: make(map[string]models.StageCounts, len(f.speciesSet))}
	for _, species := range f.speciesSet {
		changes.Species[species] = models.StageCounts{}
	}
	return changes
}

func addTotals(totals *models.DayTotals, batch *models.Batch) {
	totals.Overall.Add(batch.Stage, batch.Quantity)
	speciesTotals := totals.Species[batch.Species]
	speciesTotals.Add(batch.Stage, batch.Quantity)
	totals.Species[batch.Species] = speciesTotals
}

func newResult(days int) models.SimulationResult {
	if days < 0 {
		days = 0
	}
	return models.SimulationResult{
		Inventory: make([]models.InventorySnapshot, 0, days),
		Totals:    make([]models.DayTotals, 0, days),
		Changes:   make([]models.DayChanges, 0, days),
		Capacity:  make([]models.DayCapacity, 0, days),
	}
}

func minInt(first int, rest ...int) int {
	m := first
	for _, v := range rest {
		if v < m {
			m = v
		}
	}
	return m
}
