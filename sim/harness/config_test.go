package harness

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nic-sched-sim/nic-sched-sim/sim"
	"github.com/nic-sched-sim/nic-sched-sim/sim/workload"
)

func TestMain(m *testing.M) {
	// Set DEBUG_TESTS=1 to see run logs: DEBUG_TESTS=1 go test ./sim/harness/... -v
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

const jbsqSweep = `
policy: jbsq
num_cores: 4
num_requests: [100, 200, 300]
sample_period: 50
queue_bound: [1, 2]
comm_delay: 10
seed: 7
service_time:
  dist: uniform
  min: 10
  max: 20
arrival_delay:
  dist: fixed
  value: 5
`

func TestLoadConfig_SweepBoundedByShortestSequence(t *testing.T) {
	// GIVEN a config with a 3-value and a 2-value sequence
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(jbsqSweep), 0o644))

	// WHEN loaded and resolved
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	runs, err := cfg.Runs(nil)
	require.NoError(t, err)

	// THEN two runs are produced with per-run values
	require.Len(t, runs, 2)
	assert.Equal(t, 100, runs[0].Sim.NumRequests)
	assert.Equal(t, 1, runs[0].Sim.QueueBound)
	assert.Equal(t, 200, runs[1].Sim.NumRequests)
	assert.Equal(t, 2, runs[1].Sim.QueueBound)
	assert.Equal(t, sim.PolicyJBSQ, runs[1].Sim.Policy)
	assert.Equal(t, int64(7), runs[1].Sim.Seed)
	assert.Equal(t, 10.0, runs[1].Sim.CommDelay)
	assert.Equal(t, workload.DistSpec{Type: "uniform", Params: map[string]float64{"min": 10, "max": 20}}, runs[1].ServiceTime)
	assert.Equal(t, workload.DistSpec{Type: "fixed", Params: map[string]float64{"value": 5}}, runs[1].ArrivalDelay)
}

func TestConfig_Runs_OnlyScalars_ExactlyOneRun(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
policy: cfcfs
num_cores: 2
num_requests: 10
sample_period: 0
service_time: {dist: fixed, value: 1}
arrival_delay: {dist: fixed, value: 1}
`))
	require.NoError(t, err)

	runs, err := cfg.Runs(nil)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(DefaultSeed), runs[0].Sim.Seed)
	assert.Equal(t, 1, runs[0].Sim.NumPriorities)
}

func TestConfig_Runs_SeedOverride(t *testing.T) {
	cfg, err := ParseConfig([]byte(jbsqSweep))
	require.NoError(t, err)
	seed := int64(99)

	runs, err := cfg.Runs(&seed)
	require.NoError(t, err)
	for _, r := range runs {
		assert.Equal(t, int64(99), r.Sim.Seed)
	}
}

func TestConfig_Runs_SweepsDistributionParameters(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
policy: random
num_cores: 1
num_requests: 5
sample_period: 0
service_time: {dist: normal, mean: [100, 200], stddev: 10}
arrival_delay: {dist: poisson, lambda: 50}
`))
	require.NoError(t, err)

	runs, err := cfg.Runs(nil)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 200.0, runs[1].ServiceTime.Params["mean"])
}

func TestParseConfig_UnknownKey_ConfigError(t *testing.T) {
	_, err := ParseConfig([]byte("policy: jbsq\nnum_core: 4\n"))

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "num_core")
}

func TestConfig_Runs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantKey string
	}{
		{
			name:    "missing num_cores",
			yaml:    "policy: jbsq\nnum_requests: 1\nsample_period: 1\nservice_time: {dist: fixed, value: 1}\narrival_delay: {dist: fixed, value: 1}\n",
			wantKey: "num_cores",
		},
		{
			name:    "non-numeric value",
			yaml:    "policy: jbsq\nnum_cores: four\nnum_requests: 1\nsample_period: 1\nservice_time: {dist: fixed, value: 1}\narrival_delay: {dist: fixed, value: 1}\n",
			wantKey: "num_cores",
		},
		{
			name:    "fractional core count",
			yaml:    "policy: random\nnum_cores: 1.5\nnum_requests: 1\nsample_period: 1\nservice_time: {dist: fixed, value: 1}\narrival_delay: {dist: fixed, value: 1}\n",
			wantKey: "num_cores",
		},
		{
			name:    "jbsq without queue_bound",
			yaml:    "policy: jbsq\nnum_cores: 1\nnum_requests: 1\nsample_period: 1\nservice_time: {dist: fixed, value: 1}\narrival_delay: {dist: fixed, value: 1}\n",
			wantKey: "run 0",
		},
		{
			name:    "bad value in a later run",
			yaml:    "policy: [random, bogus]\nnum_cores: 1\nnum_requests: 1\nsample_period: 1\nservice_time: {dist: fixed, value: 1}\narrival_delay: {dist: fixed, value: 1}\n",
			wantKey: "run 1",
		},
		{
			name:    "missing distribution parameter",
			yaml:    "policy: random\nnum_cores: 1\nnum_requests: 1\nsample_period: 1\nservice_time: {dist: uniform, min: 1}\narrival_delay: {dist: fixed, value: 1}\n",
			wantKey: "service_time",
		},
		{
			name:    "negative fixed service time",
			yaml:    "policy: random\nnum_cores: 1\nnum_requests: 1\nsample_period: 1\nservice_time: {dist: fixed, value: -5}\narrival_delay: {dist: fixed, value: 1}\n",
			wantKey: "service_time",
		},
		{
			name:    "negative uniform arrival delay",
			yaml:    "policy: random\nnum_cores: 1\nnum_requests: 1\nsample_period: 1\nservice_time: {dist: fixed, value: 1}\narrival_delay: {dist: uniform, min: -10, max: -1}\n",
			wantKey: "arrival_delay",
		},
		{
			name:    "misspelled distribution parameter",
			yaml:    "policy: random\nnum_cores: 1\nnum_requests: 1\nsample_period: 1\nservice_time: {dist: fixed, value: 5, vaule: 7}\narrival_delay: {dist: fixed, value: 1}\n",
			wantKey: "service_time",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tc.yaml))
			require.NoError(t, err)

			_, err = cfg.Runs(nil)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tc.wantKey, cfgErr.Key)
		})
	}
}

func TestConfig_Runs_NegativeFileValue_ConfigError(t *testing.T) {
	// GIVEN a replay file holding one negative delay
	path := filepath.Join(t.TempDir(), "delays.csv")
	require.NoError(t, os.WriteFile(path, []byte("values\n10\n-3\n"), 0o644))
	cfg, err := ParseConfig([]byte(`
policy: random
num_cores: 1
num_requests: 1
sample_period: 1
service_time: {dist: fixed, value: 1}
arrival_delay: {dist: file, file: ` + path + `}
`))
	require.NoError(t, err)

	// WHEN the sweep is resolved
	_, err = cfg.Runs(nil)

	// THEN it fails before any run starts
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "arrival_delay", cfgErr.Key)
	assert.Contains(t, err.Error(), "-3")
}

func TestConfig_Runs_UnknownDistribution_Unsupported(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
policy: random
num_cores: 1
num_requests: 1
sample_period: 1
service_time: {dist: zipf}
arrival_delay: {dist: fixed, value: 1}
`))
	require.NoError(t, err)

	_, err = cfg.Runs(nil)

	var unsupported *workload.UnsupportedDistributionError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "zipf", unsupported.Name)
}

func TestLoadConfig_MissingFile_ConfigError(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}
