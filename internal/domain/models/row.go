package models

import (
	"errors"
	"fmt"
	"time"
)

// Alteration values carried on warehouse inventory rows.
const (
	AlterationBroodstock      = "broodstock"
	AlterationMicrofragment   = "microfragment"
	AlterationFusionStructure = "fusion structure"
)

// LocationExSitu marks stock currently held inside the facility.
const LocationExSitu = "ex situ"

// ErrUnmappableRow indicates an inventory row whose alteration, location
// and outplant-date combination does not correspond to any lifecycle stage.
// Mapping fails hard on it; rows are never defaulted into a stage.
var ErrUnmappableRow = errors.New("inventory row maps to no lifecycle stage")

// BatchRow is one raw inventory row as supplied by the warehouse or a
// manually maintained sheet. Field names mirror the warehouse columns.
type BatchRow struct {
	BatchDocID           string     `json:"BatchDocID"`
	BatchID              string     `json:"BatchID"`
	Species              string     `json:"Species"`
	Alteration           string     `json:"Alteration"`
	CurrentQuantity      int        `json:"CurrentQuantity"`
	CurrentLocationType  string     `json:"CurrentLocationType"`
	CurrentFSPlugCount   int        `json:"CurrentFSPlugCount"`
	StartDate            time.Time  `json:"StartDate"`
	OutplantDate         *time.Time `json:"OutplantDate,omitempty"`
	BroodstockCycleDays  int        `json:"StdBroodstockCycleDays,omitempty"`
	MicrofragCycleDays   int        `json:"StdMicrofragCycleDays,omitempty"`
	FusionCycleDays      int        `json:"StdFusionStructureCycleDays,omitempty"`
	BroodstockMortality  float64    `json:"StdBroodstockMortalityPct,omitempty"`
	MicrofragMortality   float64    `json:"StdMicrofragMortalityPct,omitempty"`
	FusionMortality      float64    `json:"StdFusionStructureMortalityPct,omitempty"`
}

// ToBatch derives a lifecycle batch from the row. Stage and quantity follow
// the alteration/location/outplant precedence:
//
//	broodstock alteration            -> BS with the configured default quantity
//	microfragment while ex situ      -> MF with the current quantity
//	fusion structure while ex situ   -> FS with the plug count
//	microfragment or fusion structure
//	  with a non-nil outplant date   -> OP
//
// Any other combination returns ErrUnmappableRow. Stage start days are
// expressed relative to planStart, so rows that entered their stage before
// the plan begins carry negative start days.
func (r BatchRow) ToBatch(cfg FarmConfig, planStart time.Time) (*Batch, error) {
	species := r.Species
	if species == "" && len(r.BatchID) >= 4 {
		species = r.BatchID[:4]
	}

	cycles := CycleDays{
		BS: valueOr(r.BroodstockCycleDays, cfg.Cycles.BS),
		MF: valueOr(r.MicrofragCycleDays, cfg.Cycles.MF),
		FS: valueOr(r.FusionCycleDays, cfg.Cycles.FS),
	}
	mortality := MortalityRates{
		BS: floatOr(r.BroodstockMortality, cfg.Mortality.BS),
		MF: floatOr(r.MicrofragMortality, cfg.Mortality.MF),
		FS: floatOr(r.FusionMortality, cfg.Mortality.FS),
	}

	startDay := dayOffset(planStart, r.StartDate)
	exSitu := r.CurrentLocationType == LocationExSitu

	var stage Stage
	var quantity int
	switch {
	case r.Alteration == AlterationBroodstock:
		stage = StageBroodstock
		quantity = cfg.DefaultBSQuantity
	case r.Alteration == AlterationMicrofragment && exSitu:
		stage = StageMicrofragment
		quantity = r.CurrentQuantity
	case r.Alteration == AlterationFusionStructure && exSitu:
		stage = StageFusionStructure
		quantity = r.CurrentFSPlugCount
	case r.Alteration == AlterationMicrofragment && r.OutplantDate != nil:
		stage = StageOutplanted
		quantity = r.CurrentQuantity
	case r.Alteration == AlterationFusionStructure && r.OutplantDate != nil:
		stage = StageOutplanted
		quantity = r.CurrentFSPlugCount
	default:
		return nil, fmt.Errorf("batch %s (alteration %q, location %q): %w",
			r.BatchID, r.Alteration, r.CurrentLocationType, ErrUnmappableRow)
	}

	id := r.BatchDocID
	if id == "" {
		id = r.BatchID
	}

	return NewBatch(id, species, quantity, stage, startDay, cycles, mortality), nil
}

func dayOffset(planStart, t time.Time) int {
	if t.IsZero() {
		return 0
	}
	return int(t.Sub(planStart).Hours() / 24)
}

func valueOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func floatOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
