package harness

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Output writes per-run and cross-run CSV files under one directory.
//
//	<dir>/run_<n>/q_sizes.csv              time, dispatcher, core_0..core_k
//	<dir>/run_<n>/completion_times.csv     latency
//	<dir>/run_<n>/priority_completion_times.csv  priority, latency (priority policies)
//	<dir>/run_<n>/service_times.csv        values
//	<dir>/run_<n>/arrival_delays.csv       values
//	<dir>/tail_latencies.csv               run, policy, p99, p90
//	<dir>/throughput.csv                   run, policy, throughput
//
// The two audit files use the "values" header the file distribution reads,
// so a recorded series can be replayed.
type Output struct {
	dir string
}

// NewOutput creates dir if needed.
func NewOutput(dir string) (*Output, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Output{dir: dir}, nil
}

// RunDir returns the directory of run index.
func (o *Output) RunDir(index int) string {
	return filepath.Join(o.dir, fmt.Sprintf("run_%d", index))
}

// WriteRun writes the files of one run.
func (o *Output) WriteRun(res *RunResult) error {
	dir := o.RunDir(res.Spec.Index)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}

	header := []string{"time", "dispatcher"}
	for i := 0; i < res.Spec.Sim.NumCores; i++ {
		header = append(header, fmt.Sprintf("core_%d", i))
	}
	rows := make([][]string, 0, len(res.Samples))
	for _, s := range res.Samples {
		row := []string{formatFloat(s.Time), strconv.Itoa(s.Dispatcher)}
		for _, d := range s.Cores {
			row = append(row, strconv.Itoa(d))
		}
		rows = append(rows, row)
	}
	if err := writeCSV(filepath.Join(dir, "q_sizes.csv"), header, rows); err != nil {
		return err
	}

	if err := writeColumn(filepath.Join(dir, "completion_times.csv"), "latency", res.CompletionTimes); err != nil {
		return err
	}
	if len(res.CompletionsByPriority) > 0 {
		prios := make([]int, 0, len(res.CompletionsByPriority))
		for p := range res.CompletionsByPriority {
			prios = append(prios, p)
		}
		sort.Ints(prios)
		var prows [][]string
		for _, p := range prios {
			for _, lat := range res.CompletionsByPriority[p] {
				prows = append(prows, []string{strconv.Itoa(p), formatFloat(lat)})
			}
		}
		if err := writeCSV(filepath.Join(dir, "priority_completion_times.csv"), []string{"priority", "latency"}, prows); err != nil {
			return err
		}
	}
	if err := writeColumn(filepath.Join(dir, "service_times.csv"), "values", res.ServiceTimes); err != nil {
		return err
	}
	if err := writeColumn(filepath.Join(dir, "arrival_delays.csv"), "values", res.ArrivalDelays); err != nil {
		return err
	}
	logrus.Debugf("wrote run %d outputs to %s", res.Spec.Index, dir)
	return nil
}

// WriteSummary writes the cross-run tail latency and throughput files.
func (o *Output) WriteSummary(results []*RunResult) error {
	tail := make([][]string, 0, len(results))
	tput := make([][]string, 0, len(results))
	for _, r := range results {
		run := strconv.Itoa(r.Spec.Index)
		policy := string(r.Spec.Sim.Policy)
		tail = append(tail, []string{run, policy, formatFloat(r.Metrics.P99Latency), formatFloat(r.Metrics.P90Latency)})
		tput = append(tput, []string{run, policy, formatFloat(r.Metrics.Throughput)})
	}
	if err := writeCSV(filepath.Join(o.dir, "tail_latencies.csv"), []string{"run", "policy", "p99", "p90"}, tail); err != nil {
		return err
	}
	return writeCSV(filepath.Join(o.dir, "throughput.csv"), []string{"run", "policy", "throughput"}, tput)
}

func writeColumn(path, header string, values []float64) error {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{formatFloat(v)}
	}
	return writeCSV(path, []string{header}, rows)
}

func writeCSV(path string, header []string, rows [][]string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
