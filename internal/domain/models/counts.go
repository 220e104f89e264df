package models

// StageCounts is a fixed-schema record of quantities keyed by lifecycle
// stage. Using struct fields instead of a string-keyed map rules out the
// silent key typos the free-form representation allowed.
type StageCounts struct {
	BS int `bson:"bs" json:"BS"`
	MF int `bson:"mf" json:"MF"`
	FS int `bson:"fs" json:"FS"`
	OP int `bson:"op" json:"OP"`
}

// Get returns the count for the given stage.
func (c StageCounts) Get(stage Stage) int {
	switch stage {
	case StageBroodstock:
		return c.BS
	case StageMicrofragment:
		return c.MF
	case StageFusionStructure:
		return c.FS
	case StageOutplanted:
		return c.OP
	}
	return 0
}

// Add adds delta to the count for the given stage.
func (c *StageCounts) Add(stage Stage, delta int) {
	switch stage {
	case StageBroodstock:
		c.BS += delta
	case StageMicrofragment:
		c.MF += delta
	case StageFusionStructure:
		c.FS += delta
	case StageOutplanted:
		c.OP += delta
	}
}

// Plus returns the field-wise sum of two stage-count records.
func (c StageCounts) Plus(other StageCounts) StageCounts {
	return StageCounts{
		BS: c.BS + other.BS,
		MF: c.MF + other.MF,
		FS: c.FS + other.FS,
		OP: c.OP + other.OP,
	}
}

// Totals extends stage counts with the shortfall against a production
// target: SF = target output minus the outplanted count.
type Totals struct {
	StageCounts
	SF int `bson:"sf" json:"SF"`
}

// DayTotals is one day's closing inventory counts, overall and per species.
type DayTotals struct {
	Overall Totals            `json:"overall"`
	Species map[string]Totals `json:"species"`
}

// DayChanges records the quantities that transitioned into each stage on a
// single day (including newly admitted broodstock), overall and per species.
type DayChanges struct {
	Overall StageCounts            `json:"overall"`
	Species map[string]StageCounts `json:"species"`
}

// DayCapacity is the residual capacity left after a day's activity: the
// production-tank pool (MF+FS occupancy), the broodstock-tank pool (BS
// occupancy), and the remaining per-stage daily transition allowance.
type DayCapacity struct {
	Prod       int         `json:"prod"`
	Broodstock int         `json:"broodstock"`
	Stage      StageCounts `json:"stage"`
}

// BatchState is a point-in-time view of one batch inside an inventory
// snapshot.
type BatchState struct {
	Species  string `json:"species"`
	Stage    Stage  `json:"stage"`
	Quantity int    `json:"quantity"`
}

// InventorySnapshot captures every batch's state at the end of a day,
// keyed by batch ID.
type InventorySnapshot map[string]BatchState

// SimulationResult bundles the four parallel day-indexed series produced
// by one simulation pass. All four slices have one entry per simulated day.
type SimulationResult struct {
	Inventory []InventorySnapshot `json:"inventory"`
	Totals    []DayTotals         `json:"totals"`
	Changes   []DayChanges        `json:"changes"`
	Capacity  []DayCapacity       `json:"capacity"`
}
