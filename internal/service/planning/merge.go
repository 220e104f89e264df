package planning

import "github.com/braincoral/reefplan/internal/domain/models"

// MergeResults unifies a forecast pass and a recovery pass into one
// day-indexed series. Totals and changes are summed field-wise over the
// union of species present in either run. Inventory and capacity are taken
// from the recovery run alone; that asymmetry matches the observed
// reference behaviour and is kept deliberately (see DESIGN.md).
func MergeResults(forecast, recovery models.SimulationResult) models.SimulationResult {
	days := len(forecast.Totals)
	if len(recovery.Totals) < days {
		days = len(recovery.Totals)
	}

	unified := models.SimulationResult{
		Inventory: recovery.Inventory,
		Capacity:  recovery.Capacity,
		Totals:    make([]models.DayTotals, 0, days),
		Changes:   make([]models.DayChanges, 0, days),
	}

	for day := 0; day < days; day++ {
		unified.Totals = append(unified.Totals, mergeTotals(forecast.Totals[day], recovery.Totals[day]))
		unified.Changes = append(unified.Changes, mergeChanges(forecast.Changes[day], recovery.Changes[day]))
	}

	return unified
}

func mergeTotals(a, b models.DayTotals) models.DayTotals {
	merged := models.DayTotals{
		Overall: models.Totals{
			StageCounts: a.Overall.StageCounts.Plus(b.Overall.StageCounts),
			SF:          a.Overall.SF + b.Overall.SF,
		},
		Species: make(map[string]models.Totals, len(a.Species)+len(b.Species)),
	}
	for species, totals := range a.Species {
		merged.Species[species] = totals
	}
	for species, totals := range b.Species {
		existing := merged.Species[species]
		merged.Species[species] = models.Totals{
			StageCounts: existing.StageCounts.Plus(totals.StageCounts),
			SF:          existing.SF + totals.SF,
		}
	}
	return merged
}

func mergeChanges(a, b models.DayChanges) models.DayChanges {
	merged := models.DayChanges{
		Overall: a.Overall.Plus(b.Overall),
		Species: make(map[string]models.StageCounts, len(a.Species)+len(b.Species)),
	}
	for species, counts := range a.Species {
		merged.Species[species] = counts
	}
	for species, counts := range b.Species {
		merged.Species[species] = merged.Species[species].Plus(counts)
	}
	return merged
}
