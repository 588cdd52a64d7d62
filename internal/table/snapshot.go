package table

import (
	"encoding/json"
	"math"
	"time"
)

// Record is one parsed row of the dump.
type Record struct {
	Key    MetricKey `json:"-" yaml:"-"`
	Name   string    `json:"name" yaml:"name"`
	Offset string    `json:"offset" yaml:"offset"`
	RawHex string    `json:"raw_hex" yaml:"raw_hex"`
	// Value is NaN when the value column was not a number.
	Value float64 `json:"value" yaml:"value"`
	Unit  string  `json:"unit" yaml:"unit"`
}

// Valid reports whether the value column parsed.
func (r Record) Valid() bool {
	return !math.IsNaN(r.Value)
}

// MarshalJSON encodes a NaN value as null; encoding/json rejects NaN.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	out := struct {
		plain
		Value *float64 `json:"value"`
	}{plain: plain(r)}
	if r.Valid() {
		v := r.Value
		out.Value = &v
	}

	return json.Marshal(out)
}

// Snapshot is the result of one dump. It is never modified after Parse
// returns; the controller replaces it wholesale on every successful poll.
type Snapshot struct {
	id         string
	capturedAt time.Time
	records    map[string]Record
	order      []string
}

// Empty returns a snapshot with no records.
func Empty() *Snapshot {
	return &Snapshot{records: map[string]Record{}}
}

// Stamp returns a copy of s carrying a poll id and capture time. The
// record storage is shared since neither copy mutates it.
func (s *Snapshot) Stamp(id string, at time.Time) *Snapshot {
	return &Snapshot{
		id:         id,
		capturedAt: at,
		records:    s.records,
		order:      s.order,
	}
}

func (s *Snapshot) ID() string {
	return s.id
}

func (s *Snapshot) CapturedAt() time.Time {
	return s.capturedAt
}

func (s *Snapshot) Len() int {
	return len(s.order)
}

// Get looks a record up by its resolved name.
func (s *Snapshot) Get(name string) (Record, bool) {
	r, ok := s.records[name]
	return r, ok
}

// Lookup returns the record of a known key.
func (s *Snapshot) Lookup(k MetricKey) (Record, bool) {
	if k == KeyUnknown {
		return Record{}, false
	}

	return s.Get(k.String())
}

// Records returns the records in the order their offsets first appeared
// in the dump.
func (s *Snapshot) Records() []Record {
	out := make([]Record, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.records[name])
	}

	return out
}
