package villa

import "time"

type VillaCreated struct {
	VillaID VillaID
	Name    string
	At      time.Time
}

func (e VillaCreated) EventName() string     { return "villa.created" }
func (e VillaCreated) AggregateID() string   { return string(e.VillaID) }
func (e VillaCreated) OccurredAt() time.Time { return e.At }

type VillaUpdated struct {
	VillaID VillaID
	At      time.Time
}

func (e VillaUpdated) EventName() string     { return "villa.updated" }
func (e VillaUpdated) AggregateID() string   { return string(e.VillaID) }
func (e VillaUpdated) OccurredAt() time.Time { return e.At }

type VillaPublished struct {
	VillaID VillaID
	At      time.Time
}

func (e VillaPublished) EventName() string     { return "villa.published" }
func (e VillaPublished) AggregateID() string   { return string(e.VillaID) }
func (e VillaPublished) OccurredAt() time.Time { return e.At }

type VillaUnpublished struct {
	VillaID VillaID
	At      time.Time
}

func (e VillaUnpublished) EventName() string     { return "villa.unpublished" }
func (e VillaUnpublished) AggregateID() string   { return string(e.VillaID) }
func (e VillaUnpublished) OccurredAt() time.Time { return e.At }
