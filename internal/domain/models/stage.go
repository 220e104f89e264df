package models

// Stage identifies a position in the coral production lifecycle.
type Stage string

const (
	StageBroodstock      Stage = "BS"
	StageMicrofragment   Stage = "MF"
	StageFusionStructure Stage = "FS"
	StageOutplanted      Stage = "OP"
)

// stageOrder fixes the forward-only lifecycle ordering.
var stageOrder = []Stage{StageBroodstock, StageMicrofragment, StageFusionStructure, StageOutplanted}

// Valid reports whether the stage is one of the four lifecycle stages.
func (s Stage) Valid() bool {
	switch s {
	case StageBroodstock, StageMicrofragment, StageFusionStructure, StageOutplanted:
		return true
	}
	return false
}

// Index returns the position of the stage along the lifecycle, or -1 for an
// unknown stage.
func (s Stage) Index() int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the downstream stage. The second return is false for the
// terminal outplanted stage and for unknown stages.
func (s Stage) Next() (Stage, bool) {
	idx := s.Index()
	if idx < 0 || idx == len(stageOrder)-1 {
		return "", false
	}
	return stageOrder[idx+1], true
}
