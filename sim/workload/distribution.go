package workload

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// NumericSource yields an unbounded series of numbers, one per call.
// Service times and inter-arrival delays are drawn from NumericSources.
type NumericSource interface {
	Next() float64
}

// DistSpec selects a distribution and its parameters.
type DistSpec struct {
	Type   string
	Params map[string]float64
	File   string // path for the "file" distribution
}

// UnsupportedDistributionError reports an unknown distribution selector.
type UnsupportedDistributionError struct {
	Name string
}

func (e *UnsupportedDistributionError) Error() string {
	return fmt.Sprintf("unsupported distribution %q; valid options: %v", e.Name, SupportedDistributions())
}

// validDistributions maps accepted distribution selectors.
var validDistributions = map[string]bool{
	"uniform":     true,
	"normal":      true,
	"poisson":     true,
	"lognormal":   true,
	"exponential": true,
	"fixed":       true,
	"bimodal":     true,
	"file":        true,
}

// SupportedDistributions returns the sorted distribution selectors.
func SupportedDistributions() []string {
	names := make([]string, 0, len(validDistributions))
	for k := range validDistributions {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FixedSource always returns the same value.
type FixedSource struct {
	value float64
}

func (s *FixedSource) Next() float64 { return s.value }

// randSource adapts a gonum distribution to NumericSource.
type randSource struct {
	rander distuv.Rander
	floor  bool // clamp draws at zero
}

func (s *randSource) Next() float64 {
	v := s.rander.Rand()
	if s.floor && v < 0 {
		return 0
	}
	return v
}

// BimodalSource mixes two normal modes; each draw first picks a mode with
// probability proportional to its weight. Draws are clamped at zero.
type BimodalSource struct {
	pick  distuv.Bernoulli // 1 selects the upper mode
	lower distuv.Normal
	upper distuv.Normal
}

func (s *BimodalSource) Next() float64 {
	var v float64
	if s.pick.Rand() == 1 {
		v = s.upper.Rand()
	} else {
		v = s.lower.Rand()
	}
	return math.Max(0, v)
}

// distributionParams lists the parameters each distribution accepts.
var distributionParams = map[string][]string{
	"uniform":     {"min", "max"},
	"normal":      {"mean", "stddev"},
	"poisson":     {"lambda"},
	"lognormal":   {"mean", "sigma"},
	"exponential": {"lambda"},
	"fixed":       {"value"},
	"bimodal":     {"lower_mean", "lower_stddev", "upper_mean", "upper_stddev", "lower_weight", "upper_weight"},
	"file":        {},
}

// rejectUnknownParams fails on keys the distribution does not use, so a
// misspelled parameter is not silently ignored.
func rejectUnknownParams(dist string, params map[string]float64) error {
	allowed := distributionParams[dist]
	var unknown []string
	for k := range params {
		if !slices.Contains(allowed, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%s distribution does not take parameter(s) %v; valid: %v", dist, unknown, allowed)
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewSource creates a NumericSource from a DistSpec. src seeds every random
// draw, so equal seeds give equal series.
func NewSource(spec DistSpec, src rand.Source) (NumericSource, error) {
	p := spec.Params
	if validDistributions[spec.Type] {
		if err := rejectUnknownParams(spec.Type, p); err != nil {
			return nil, err
		}
	}
	switch spec.Type {
	case "uniform":
		if err := requireParam(p, "min", "max"); err != nil {
			return nil, err
		}
		if p["min"] < 0 {
			return nil, fmt.Errorf("uniform distribution requires min >= 0, got %v", p["min"])
		}
		if p["min"] > p["max"] {
			return nil, fmt.Errorf("uniform distribution requires min <= max, got %v > %v", p["min"], p["max"])
		}
		if p["min"] == p["max"] {
			return &FixedSource{value: p["min"]}, nil
		}
		return &randSource{rander: distuv.Uniform{Min: p["min"], Max: p["max"], Src: src}}, nil

	case "normal":
		if err := requireParam(p, "mean", "stddev"); err != nil {
			return nil, err
		}
		if p["stddev"] < 0 {
			return nil, fmt.Errorf("normal distribution requires stddev >= 0, got %v", p["stddev"])
		}
		return &randSource{rander: distuv.Normal{Mu: p["mean"], Sigma: p["stddev"], Src: src}, floor: true}, nil

	case "poisson":
		if err := requireParam(p, "lambda"); err != nil {
			return nil, err
		}
		if p["lambda"] <= 0 {
			return nil, fmt.Errorf("poisson distribution requires lambda > 0, got %v", p["lambda"])
		}
		return &randSource{rander: distuv.Poisson{Lambda: p["lambda"], Src: src}}, nil

	case "lognormal":
		if err := requireParam(p, "mean", "sigma"); err != nil {
			return nil, err
		}
		if p["sigma"] < 0 {
			return nil, fmt.Errorf("lognormal distribution requires sigma >= 0, got %v", p["sigma"])
		}
		return &randSource{rander: distuv.LogNormal{Mu: p["mean"], Sigma: p["sigma"], Src: src}}, nil

	case "exponential":
		if err := requireParam(p, "lambda"); err != nil {
			return nil, err
		}
		if p["lambda"] <= 0 {
			return nil, fmt.Errorf("exponential distribution requires lambda > 0, got %v", p["lambda"])
		}
		return &randSource{rander: distuv.Exponential{Rate: p["lambda"], Src: src}}, nil

	case "fixed":
		if err := requireParam(p, "value"); err != nil {
			return nil, err
		}
		if p["value"] < 0 {
			return nil, fmt.Errorf("fixed distribution requires value >= 0, got %v", p["value"])
		}
		return &FixedSource{value: p["value"]}, nil

	case "bimodal":
		if err := requireParam(p, "lower_mean", "lower_stddev", "upper_mean", "upper_stddev", "lower_weight", "upper_weight"); err != nil {
			return nil, err
		}
		lw, uw := p["lower_weight"], p["upper_weight"]
		if lw < 0 || uw < 0 || lw+uw <= 0 {
			return nil, fmt.Errorf("bimodal distribution requires non-negative weights with a positive sum, got %v and %v", lw, uw)
		}
		if p["lower_stddev"] < 0 || p["upper_stddev"] < 0 {
			return nil, fmt.Errorf("bimodal distribution requires stddev >= 0")
		}
		return &BimodalSource{
			pick:  distuv.Bernoulli{P: uw / (lw + uw), Src: src},
			lower: distuv.Normal{Mu: p["lower_mean"], Sigma: p["lower_stddev"], Src: src},
			upper: distuv.Normal{Mu: p["upper_mean"], Sigma: p["upper_stddev"], Src: src},
		}, nil

	case "file":
		if spec.File == "" {
			return nil, fmt.Errorf("file distribution requires a path")
		}
		return NewFileSource(spec.File)

	default:
		return nil, &UnsupportedDistributionError{Name: spec.Type}
	}
}
