package models

// CycleDays holds the configured number of days a batch spends in each
// non-terminal stage before it becomes eligible to advance.
type CycleDays struct {
	BS int `json:"bs"`
	MF int `json:"mf"`
	FS int `json:"fs"`
}

// Days returns the cycle length for the given stage. The outplanted stage
// has no cycle; it returns 0.
func (c CycleDays) Days(stage Stage) int {
	switch stage {
	case StageBroodstock:
		return c.BS
	case StageMicrofragment:
		return c.MF
	case StageFusionStructure:
		return c.FS
	}
	return 0
}

// MortalityRates carries the per-stage mortality standard deviations.
// They are configuration passthrough today: no transition logic consumes
// them until a mortality model lands.
type MortalityRates struct {
	BS float64 `json:"bs"`
	MF float64 `json:"mf"`
	FS float64 `json:"fs"`
}

// Batch is one cohort of corals occupying a single lifecycle stage. A batch
// advances forward only, one stage per day at most, and is never deleted
// from the inventory it belongs to.
type Batch struct {
	ID        string         `json:"id"`
	Species   string         `json:"species"`
	Quantity  int            `json:"quantity"`
	Stage     Stage          `json:"stage"`
	StartDay  int            `json:"start_day"`
	EndDay    *int           `json:"end_day,omitempty"` // nil: terminal, no scheduled transition
	Cycles    CycleDays      `json:"cycles"`
	Mortality MortalityRates `json:"mortality"`
}

// NewBatch builds a batch at the given stage and schedules its stage end
// day from the stage's cycle length. Outplanted batches get no end day.
func NewBatch(id, species string, quantity int, stage Stage, startDay int, cycles CycleDays, mortality MortalityRates) *Batch {
	b := &Batch{
		ID:        id,
		Species:   species,
		Quantity:  quantity,
		Stage:     stage,
		StartDay:  startDay,
		Cycles:    cycles,
		Mortality: mortality,
	}
	if stage != StageOutplanted {
		end := startDay + cycles.Days(stage)
		b.EndDay = &end
	}
	return b
}

// ReadyToTransition reports whether the batch has finished its current
// stage cycle by the given day.
func (b *Batch) ReadyToTransition(day int) bool {
	if b.EndDay == nil {
		return false
	}
	return day >= *b.EndDay
}

// Advance moves the batch into its downstream stage on the given day,
// keeping its quantity and rescheduling the stage end day. Advancing a
// terminal batch is a no-op.
func (b *Batch) Advance(day int) {
	next, ok := b.Stage.Next()
	if !ok {
		return
	}

	b.Stage = next
	b.StartDay = day
	if next == StageOutplanted {
		b.EndDay = nil
		return
	}
	end := day + b.Cycles.Days(next)
	b.EndDay = &end
}

// ApplyMortality is the extension point for a statistical mortality model.
// It intentionally performs no mutation.
func (b *Batch) ApplyMortality() {}

// Clone returns an independent copy of the batch so that a simulation pass
// can own and mutate its inventory without touching the caller's batches.
func (b *Batch) Clone() *Batch {
	dup := *b
	if b.EndDay != nil {
		end := *b.EndDay
		dup.EndDay = &end
	}
	return &dup
}
