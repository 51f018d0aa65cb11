// Package models defines the client-side data model of the health diary.
package models

import "time"

// MaxNoteLength is the upper bound on a note, counted in characters.
const MaxNoteLength = 200

// DiaryEntry is a single decoded ledger record.
//
// Timestamp is assigned by the ledger when the entry is committed and is
// zero for an entry that has only been encoded locally.
type DiaryEntry struct {
	Timestamp   uint64
	WeightKg    uint16
	Steps       uint32
	CaloriesIn  uint16
	CaloriesOut uint16
	Note        string
}

// Time returns the commit time in the local time zone.
func (e DiaryEntry) Time() time.Time {
	return time.Unix(int64(e.Timestamp), 0)
}

// RawForm holds the user-entered text of a candidate entry.
// Field names used in validation errors come from the form tag.
type RawForm struct {
	WeightKg    string `form:"weightKg" validate:"required"`
	Steps       string `form:"steps" validate:"required"`
	CaloriesIn  string `form:"caloriesIn" validate:"required"`
	CaloriesOut string `form:"caloriesOut" validate:"required"`
	Note        string `form:"note" validate:"max=200"`
}

// WireEntry carries the typed arguments of the ledger's addEntry call.
type WireEntry struct {
	WeightKg    uint16
	Steps       uint32
	CaloriesIn  uint16
	CaloriesOut uint16
	Note        string
}

// WireTuple is one element of the getMyEntries result in ledger order:
// (timestamp, weightKg, steps, caloriesIn, caloriesOut, note).
//
// Elements are untyped because a remote record is not trusted to be
// well formed.
type WireTuple []any

// Wire tuple positions.
const (
	TupleTimestamp = iota
	TupleWeightKg
	TupleSteps
	TupleCaloriesIn
	TupleCaloriesOut
	TupleNote

	TupleLen
)
