// Package harness loads sweep configurations, executes the resulting runs one
// after another and writes their statistics as CSV files.
package harness

import (
	"bytes"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nic-sched-sim/nic-sched-sim/sim"
	"github.com/nic-sched-sim/nic-sched-sim/sim/sweep"
	"github.com/nic-sched-sim/nic-sched-sim/sim/workload"
)

// DefaultSeed is used when the configuration names no seed.
const DefaultSeed = 42

// ConfigError reports an unusable configuration. It is always raised before
// the first run starts.
type ConfigError struct {
	Key string // offending key, empty for file-level problems
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(key, format string, args ...any) *ConfigError {
	return &ConfigError{Key: key, Err: fmt.Errorf(format, args...)}
}

// DistConfig selects the distribution of one numeric series. Parameters sit
// next to the selector, e.g. {dist: uniform, min: 10, max: 20}.
type DistConfig struct {
	Dist   sweep.Param            `yaml:"dist"`
	File   sweep.Param            `yaml:"file,omitempty"`
	Params map[string]sweep.Param `yaml:",inline"`
}

// Config is the on-disk description of a sweep. Every value may be a scalar
// or a sequence; sequences are consumed one value per run.
type Config struct {
	Policy         sweep.Param `yaml:"policy"`
	NumCores       sweep.Param `yaml:"num_cores"`
	NumRequests    sweep.Param `yaml:"num_requests"`
	SamplePeriod   sweep.Param `yaml:"sample_period"`
	QueueBound     sweep.Param `yaml:"queue_bound,omitempty"`
	CommDelay      sweep.Param `yaml:"comm_delay,omitempty"`
	ContextSwitch  sweep.Param `yaml:"context_switch,omitempty"`
	TimerInterrupt sweep.Param `yaml:"timer_interrupt,omitempty"`
	Preemp         sweep.Param `yaml:"preemp,omitempty"`
	NumPriorities  sweep.Param `yaml:"num_priorities,omitempty"`
	Seed           sweep.Param `yaml:"seed,omitempty"`
	MaxTime        sweep.Param `yaml:"max_time,omitempty"`
	Trace          bool        `yaml:"trace,omitempty"`

	ServiceTime  DistConfig `yaml:"service_time"`
	ArrivalDelay DistConfig `yaml:"arrival_delay"`
}

// RunSpec is the fully resolved input of one run.
type RunSpec struct {
	Index        int
	Sim          sim.Config
	ServiceTime  workload.DistSpec
	ArrivalDelay workload.DistSpec
}

// LoadConfig reads and parses a YAML (or JSON) sweep configuration.
// Uses strict parsing: unrecognized top-level keys (typos) are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("reading %s: %w", path, err)}
	}
	return ParseConfig(data)
}

// ParseConfig parses a sweep configuration from memory.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("parsing: %w", err)}
	}
	return &cfg, nil
}

// Runs resolves every run of the sweep and validates each of them, so a bad
// value in a late run is reported before anything executes. seedOverride,
// when non-nil, replaces the configured seed.
func (c *Config) Runs(seedOverride *int64) ([]RunSpec, error) {
	set, err := c.sweepSet(seedOverride)
	if err != nil {
		return nil, err
	}
	var runs []RunSpec
	for {
		point, ok := set.Next()
		if !ok {
			break
		}
		spec, err := c.resolve(len(runs), point)
		if err != nil {
			return nil, err
		}
		runs = append(runs, spec)
	}
	if len(runs) == 0 {
		return nil, configErrorf("", "no runs to execute")
	}
	return runs, nil
}

func (c *Config) sweepSet(seedOverride *int64) (*sweep.Set, error) {
	set := sweep.NewSet()
	required := map[string]sweep.Param{
		"policy":             c.Policy,
		"num_cores":          c.NumCores,
		"num_requests":       c.NumRequests,
		"sample_period":      c.SamplePeriod,
		"service_time.dist":  c.ServiceTime.Dist,
		"arrival_delay.dist": c.ArrivalDelay.Dist,
	}
	for _, key := range []string{"policy", "num_cores", "num_requests", "sample_period", "service_time.dist", "arrival_delay.dist"} {
		if !required[key].IsSet() {
			return nil, configErrorf(key, "missing required key")
		}
	}

	set.AddString("policy", c.Policy.Strings())
	numeric := []struct {
		key   string
		param sweep.Param
		def   float64
	}{
		{"num_cores", c.NumCores, 0},
		{"num_requests", c.NumRequests, 0},
		{"sample_period", c.SamplePeriod, 0},
		{"queue_bound", c.QueueBound, 0},
		{"comm_delay", c.CommDelay, 0},
		{"context_switch", c.ContextSwitch, 0},
		{"timer_interrupt", c.TimerInterrupt, 0},
		{"preemp", c.Preemp, 0},
		{"num_priorities", c.NumPriorities, 1},
		{"seed", c.Seed, DefaultSeed},
		{"max_time", c.MaxTime, 0},
	}
	for _, n := range numeric {
		if n.key == "seed" && seedOverride != nil {
			set.AddFloat(n.key, sweep.ConstantFloat{Value: float64(*seedOverride)})
			continue
		}
		if !n.param.IsSet() {
			set.AddFloat(n.key, sweep.ConstantFloat{Value: n.def})
			continue
		}
		src, err := n.param.Floats()
		if err != nil {
			return nil, &ConfigError{Key: n.key, Err: err}
		}
		set.AddFloat(n.key, src)
	}

	for prefix, dc := range map[string]DistConfig{"service_time": c.ServiceTime, "arrival_delay": c.ArrivalDelay} {
		set.AddString(prefix+".dist", dc.Dist.Strings())
		if dc.File.IsSet() {
			set.AddString(prefix+".file", dc.File.Strings())
		}
		for name, param := range dc.Params {
			src, err := param.Floats()
			if err != nil {
				return nil, &ConfigError{Key: prefix + "." + name, Err: err}
			}
			set.AddFloat(prefix+"."+name, src)
		}
	}
	return set, nil
}

// resolve turns one sweep point into a validated RunSpec.
func (c *Config) resolve(index int, p sweep.Point) (RunSpec, error) {
	policy, _ := p.Text("policy")
	seed := p.Floats["seed"]
	spec := RunSpec{
		Index: index,
		Sim: sim.Config{
			Policy:         sim.PolicyKind(strings.ToLower(policy)),
			SamplePeriod:   p.Floats["sample_period"],
			CommDelay:      p.Floats["comm_delay"],
			ContextSwitch:  p.Floats["context_switch"],
			TimerInterrupt: p.Floats["timer_interrupt"],
			Quantum:        p.Floats["preemp"],
			Seed:           int64(seed),
			Horizon:        p.Floats["max_time"],
			Trace:          c.Trace,
		},
	}
	for _, n := range []struct {
		key string
		dst *int
	}{
		{"num_cores", &spec.Sim.NumCores},
		{"num_requests", &spec.Sim.NumRequests},
		{"queue_bound", &spec.Sim.QueueBound},
		{"num_priorities", &spec.Sim.NumPriorities},
	} {
		v := p.Floats[n.key]
		if v != math.Trunc(v) {
			return RunSpec{}, configErrorf(n.key, "run %d: expected an integer, got %v", index, v)
		}
		*n.dst = int(v)
	}
	if seed != math.Trunc(seed) {
		return RunSpec{}, configErrorf("seed", "run %d: expected an integer, got %v", index, seed)
	}
	if err := spec.Sim.Validate(); err != nil {
		return RunSpec{}, &ConfigError{Key: fmt.Sprintf("run %d", index), Err: err}
	}

	var err error
	if spec.ServiceTime, err = distSpec("service_time", p); err != nil {
		return RunSpec{}, err
	}
	if spec.ArrivalDelay, err = distSpec("arrival_delay", p); err != nil {
		return RunSpec{}, err
	}
	return spec, nil
}

// distSpec collects the distribution parameters of prefix from a sweep point
// and checks them by building a throwaway source.
func distSpec(prefix string, p sweep.Point) (workload.DistSpec, error) {
	dist, _ := p.Text(prefix + ".dist")
	file, _ := p.Text(prefix + ".file")
	spec := workload.DistSpec{Type: strings.ToLower(dist), Params: make(map[string]float64), File: file}
	for name, v := range p.Floats {
		if rest, ok := strings.CutPrefix(name, prefix+"."); ok {
			spec.Params[rest] = v
		}
	}
	if _, err := workload.NewSource(spec, rand.NewPCG(0, 0)); err != nil {
		return workload.DistSpec{}, &ConfigError{Key: prefix, Err: err}
	}
	return spec, nil
}
