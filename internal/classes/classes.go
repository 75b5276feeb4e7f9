// Package classes holds the fixed forest transition tables (VMD0055, Table 15).
//
// The tables are data rather than branching logic: a 27-slot lookup indexed by
// start*9+mid*3+end for the transition classes and a 9-slot array for the
// interpreted regrouping. Values outside {1,2} never reach a populated slot.
package classes

import "fmt"

// Transition is one of the 8 transition classes; 0 means unclassified.
type Transition uint8

// Interpreted is one of the 4 reporting classes.
type Interpreted uint8

const (
	Unclassified Transition = 0

	TransitionCount  = 8
	InterpretedCount = 4
)

const (
	StableNonForest Interpreted = iota + 1
	StableForest
	DeforestedFirstHalf
	DeforestedSecondHalf
)

// Triple is a pixel's (start, mid, end) state.
type Triple struct {
	Start uint16
	Mid   uint16
	End   uint16
}

func (t Triple) String() string {
	return fmt.Sprintf("(%d,%d,%d)", t.Start, t.Mid, t.End)
}

// Rule binds a triple to its transition class.
type Rule struct {
	Triple Triple
	Class  Transition
}

// rules is ordered by class id.
var rules = [TransitionCount]Rule{
	{Triple{2, 2, 2}, 1},
	{Triple{2, 2, 1}, 2},
	{Triple{2, 1, 2}, 3},
	{Triple{2, 1, 1}, 4},
	{Triple{1, 1, 1}, 5},
	{Triple{1, 2, 2}, 6},
	{Triple{1, 2, 1}, 7},
	{Triple{1, 1, 2}, 8},
}

var interpretedOf = [TransitionCount + 1]Interpreted{
	0, // unclassified has no interpreted class
	StableNonForest,
	StableNonForest,
	StableNonForest,
	StableNonForest,
	StableForest,
	DeforestedFirstHalf,
	DeforestedFirstHalf,
	DeforestedSecondHalf,
}

var transitionDescriptions = [TransitionCount + 1]string{
	"Unclassified",
	"Stable non-forest",
	"Stable non-forest",
	"Stable non-forest",
	"Stable non-forest",
	"Stable forest",
	"Deforested in first half of HRP",
	"Deforested in first half of HRP",
	"Deforested in second half of HRP",
}

var interpretedDescriptions = [InterpretedCount + 1]string{
	"",
	"Stable non-forest",
	"Stable forest",
	"Deforested in first half of HRP",
	"Deforested in second half of HRP",
}

// LookupTable maps a packed triple key to a transition class.
type LookupTable [27]Transition

// Key packs a triple into the lookup index, or returns -1 when any state is
// outside {0,1,2}.
func Key(start, mid, end uint16) int {
	if start > 2 || mid > 2 || end > 2 {
		return -1
	}
	return int(start)*9 + int(mid)*3 + int(end)
}

// Lookup returns the class for a triple; out-of-domain triples are Unclassified.
func (lt *LookupTable) Lookup(start, mid, end uint16) Transition {
	k := Key(start, mid, end)
	if k < 0 {
		return Unclassified
	}
	return lt[k]
}

// Scheme is the read-only bundle of tables handed to the classifier,
// aggregator and reporting layer.
type Scheme struct {
	Name   string
	lookup LookupTable
}

var vmd0055 = newScheme("VMD0055")

func newScheme(name string) *Scheme {
	s := &Scheme{Name: name}
	for _, r := range rules {
		s.lookup[Key(r.Triple.Start, r.Triple.Mid, r.Triple.End)] = r.Class
	}
	return s
}

// Default returns the shared VMD0055 scheme.
func Default() *Scheme {
	return vmd0055
}

func (s *Scheme) Table() *LookupTable {
	return &s.lookup
}

func (s *Scheme) Classify(t Triple) Transition {
	return s.lookup.Lookup(t.Start, t.Mid, t.End)
}

// Rules returns a copy of the 8 transition rules ordered by class id.
func (s *Scheme) Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules[:])
	return out
}

// Interpret maps a transition class to its reporting class. ok is false for
// Unclassified or out-of-range values.
func (s *Scheme) Interpret(c Transition) (Interpreted, bool) {
	if c == Unclassified || int(c) > TransitionCount {
		return 0, false
	}
	return interpretedOf[c], true
}

// Members lists the transition classes that regroup into i.
func (s *Scheme) Members(i Interpreted) []Transition {
	var out []Transition
	for c := Transition(1); c <= TransitionCount; c++ {
		if interpretedOf[c] == i {
			out = append(out, c)
		}
	}
	return out
}

func (s *Scheme) DescribeTransition(c Transition) string {
	if int(c) > TransitionCount {
		return ""
	}
	return transitionDescriptions[c]
}

func (s *Scheme) DescribeInterpreted(i Interpreted) string {
	if i == 0 || int(i) > InterpretedCount {
		return ""
	}
	return interpretedDescriptions[i]
}

// Transitions lists class ids 1..8.
func Transitions() []Transition {
	out := make([]Transition, 0, TransitionCount)
	for c := Transition(1); c <= TransitionCount; c++ {
		out = append(out, c)
	}
	return out
}

// InterpretedClasses lists class ids 1..4.
func InterpretedClasses() []Interpreted {
	out := make([]Interpreted, 0, InterpretedCount)
	for i := Interpreted(1); i <= InterpretedCount; i++ {
		out = append(out, i)
	}
	return out
}
