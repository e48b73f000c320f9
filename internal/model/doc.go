package model

// Package model defines domain data structures used across the app: the
// acquisition sequence value, its axis plans and stage positions, and the
// run-state enum. Sequences are treated as immutable once built; edits
// produce a new value rather than mutating in place.
