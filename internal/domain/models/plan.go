package models

import "time"

// RecordType classifies a flattened production-plan row.
type RecordType string

const (
	RecordOverallTotals    RecordType = "overall-totals"
	RecordOverallAdditions RecordType = "overall-additions"
	RecordSpeciesTotals    RecordType = "species-totals"
	RecordSpeciesAdditions RecordType = "species-additions"
)

// PlanRecord is one flattened row of a saved production plan: a single
// (day, record type, species) cell of the unified time series. Plans are
// persisted append-only, keyed by plan name, save timestamp, tenant and
// plan start date.
type PlanRecord struct {
	PlanName  string     `bson:"plan_name" json:"plan_name"`
	Tenant    string     `bson:"tenant" json:"tenant"`
	StartedAt time.Time  `bson:"started_at" json:"started_at"`
	SavedAt   time.Time  `bson:"saved_at" json:"saved_at"`
	Day       int        `bson:"day" json:"day"`
	Type      RecordType `bson:"type" json:"type"`
	Species   string     `bson:"species,omitempty" json:"species,omitempty"`
	BS        int        `bson:"bs" json:"BS"`
	MF        int        `bson:"mf" json:"MF"`
	FS        int        `bson:"fs" json:"FS"`
	OP        int        `bson:"op" json:"OP"`
	SF        int        `bson:"sf" json:"SF"`
}
