package models

import "time"

// TimelineEntry is one append-only entry in a record's status history.
// The last entry's status always matches the record's current status.
type TimelineEntry struct {
	Status    string    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Actor     string    `bson:"actor" json:"actor"`
	Note      string    `bson:"note" json:"note"`
}
