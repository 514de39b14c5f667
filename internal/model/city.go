package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// MaxNameLength is the longest city name, in runes, that may be stored
const MaxNameLength = 100

// City represents a city in the database
type City struct {
	ID        int     `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// NameKey returns the case-folded form of a city name. Two names are
// considered the same city when their keys are equal.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
