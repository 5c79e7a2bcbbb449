// Package sweep turns configuration parameters into per-run values.
//
// A parameter is either a scalar, reused for every run, or a sequence that
// yields one value per run. A sequence signals exhaustion with an absent
// optional value; the run loop stops at the first exhausted parameter.
package sweep

import (
	"fmt"
	"sort"
	"strings"

	"github.com/markphelps/optional"
)

// FloatSource yields the numeric value of a parameter for the next run.
type FloatSource interface {
	Next() optional.Float64
}

// StringSource yields the string value of a parameter for the next run.
type StringSource interface {
	Next() optional.String
}

// ConstantFloat is a scalar parameter: it never runs out.
type ConstantFloat struct {
	Value float64
}

func (c ConstantFloat) Next() optional.Float64 { return optional.NewFloat64(c.Value) }

// SequenceFloat yields its values in order, then nothing.
type SequenceFloat struct {
	Values []float64
	pos    int
}

func (s *SequenceFloat) Next() optional.Float64 {
	if s.pos >= len(s.Values) {
		return optional.Float64{}
	}
	v := s.Values[s.pos]
	s.pos++
	return optional.NewFloat64(v)
}

// ConstantString is a scalar string parameter.
type ConstantString struct {
	Value string
}

func (c ConstantString) Next() optional.String { return optional.NewString(c.Value) }

// SequenceString yields its values in order, then nothing.
type SequenceString struct {
	Values []string
	pos    int
}

func (s *SequenceString) Next() optional.String {
	if s.pos >= len(s.Values) {
		return optional.String{}
	}
	v := s.Values[s.pos]
	s.pos++
	return optional.NewString(v)
}

// Point is the resolved value of every parameter for one run.
type Point struct {
	Floats  map[string]float64
	Strings map[string]string
}

// Text returns the value of a string parameter.
func (p Point) Text(name string) (string, bool) {
	v, ok := p.Strings[name]
	return v, ok
}

// Set draws one Point per run from a collection of named sources.
type Set struct {
	floats  map[string]FloatSource
	strings map[string]StringSource
	varying bool // true once any sequence was added
	drawn   int
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{floats: make(map[string]FloatSource), strings: make(map[string]StringSource)}
}

// AddFloat registers a numeric parameter.
func (s *Set) AddFloat(name string, src FloatSource) {
	if _, ok := src.(*SequenceFloat); ok {
		s.varying = true
	}
	s.floats[name] = src
}

// AddString registers a string parameter.
func (s *Set) AddString(name string, src StringSource) {
	if _, ok := src.(*SequenceString); ok {
		s.varying = true
	}
	s.strings[name] = src
}

// Varying reports whether any parameter changes between runs.
func (s *Set) Varying() bool {
	return s.varying
}

// Next resolves every parameter for the next run. It reports false when a
// sequence is exhausted, or after the first run when nothing varies.
func (s *Set) Next() (Point, bool) {
	if !s.varying && s.drawn > 0 {
		return Point{}, false
	}
	p := Point{
		Floats:  make(map[string]float64, len(s.floats)),
		Strings: make(map[string]string, len(s.strings)),
	}
	// Draw in name order so every source advances the same way each call.
	for _, name := range sortedKeys(s.floats) {
		v, err := s.floats[name].Next().Get()
		if err != nil {
			return Point{}, false
		}
		p.Floats[name] = v
	}
	for _, name := range sortedKeys(s.strings) {
		v, err := s.strings[name].Next().Get()
		if err != nil {
			return Point{}, false
		}
		p.Strings[name] = v
	}
	s.drawn++
	return p, true
}

// Names returns every registered parameter name, sorted.
func (s *Set) Names() []string {
	names := append(sortedKeys(s.floats), sortedKeys(s.strings)...)
	sort.Strings(names)
	return names
}

func (s *Set) String() string {
	return fmt.Sprintf("sweep(%s)", strings.Join(s.Names(), ", "))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
