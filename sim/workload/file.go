package workload

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// FileSource replays pre-generated values from a one-column CSV file with a
// "values" header, starting over after the last row.
type FileSource struct {
	values []float64
	next   int
}

// NewFileSource reads every value of the file up front.
func NewFileSource(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening value file: %w", err)
	}
	defer func() { _ = file.Close() }()

	values, err := readValues(file)
	if err != nil {
		return nil, fmt.Errorf("reading value file %s: %w", path, err)
	}
	return &FileSource{values: values}, nil
}

func readValues(r io.Reader) ([]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.TrimSpace(h) == "values" {
			col = i
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("missing %q column in header %v", "values", header)
	}

	var values []float64
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", line, err)
		}
		if col >= len(row) {
			return nil, fmt.Errorf("row %d has no %q column", line, "values")
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("row %d: value %v is not a finite non-negative number", line, v)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no values")
	}
	return values, nil
}

// Next implements NumericSource.
func (s *FileSource) Next() float64 {
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}

// Len returns the number of distinct values before the series repeats.
func (s *FileSource) Len() int {
	return len(s.values)
}
