// Package model defines the value types of the household inventory:
// articles, locations, and the assignments that place a quantity of an
// article at a location.
//
// All types are plain values. Clone methods return deep copies so the
// repository can hand out snapshots without sharing slices with its
// working set.
//
// # Dates
//
// Calendar dates (addedDate, expirationDate, consumedDate) are stored as
// "YYYY-MM-DD" strings. Modification stamps are RFC 3339 UTC timestamps.
// An empty string means the field is absent and is omitted from JSON.
package model
