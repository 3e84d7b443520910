package arpgen

import (
	"fmt"
	"strings"
)

// Subdivision is the rhythmic grid unit one pattern step represents.
type Subdivision int

const (
	Div1_2 Subdivision = iota
	Div1_2T
	Div1_4
	Div1_4T
	Div1_8
	Div1_8T
	Div1_16
	Div1_16T
	Div1_32
	Div1_32T
	Div1_64
	Div1_64T

	numSubdivisions
)

// divisors maps each subdivision to steps per quarter note: 1.0 for a
// quarter note up to 24.0 for 1/64 triplets.
var divisors = [numSubdivisions]float64{
	Div1_2:   0.5,
	Div1_2T:  0.75,
	Div1_4:   1.0,
	Div1_4T:  1.5,
	Div1_8:   2.0,
	Div1_8T:  3.0,
	Div1_16:  4.0,
	Div1_16T: 6.0,
	Div1_32:  8.0,
	Div1_32T: 12.0,
	Div1_64:  16.0,
	Div1_64T: 24.0,
}

var subdivisionNames = [numSubdivisions]string{
	Div1_2:   "1/2",
	Div1_2T:  "1/2t",
	Div1_4:   "1/4",
	Div1_4T:  "1/4t",
	Div1_8:   "1/8",
	Div1_8T:  "1/8t",
	Div1_16:  "1/16",
	Div1_16T: "1/16t",
	Div1_32:  "1/32",
	Div1_32T: "1/32t",
	Div1_64:  "1/64",
	Div1_64T: "1/64t",
}

// Divisor returns the number of steps per quarter note.
func (d Subdivision) Divisor() float64 {
	if d < 0 || d >= numSubdivisions {
		return 1.0
	}
	return divisors[d]
}

func (d Subdivision) String() string {
	if d < 0 || d >= numSubdivisions {
		return "unknown"
	}
	return subdivisionNames[d]
}

// ParseSubdivision resolves names like "1/16" or "1/8t" (t = triplet).
func ParseSubdivision(s string) (Subdivision, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for d, name := range subdivisionNames {
		if name == key {
			return Subdivision(d), nil
		}
	}
	return 0, fmt.Errorf("invalid subdivision %q (expected 1/2..1/64, optionally with t)", s)
}
