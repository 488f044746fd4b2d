package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// row gives column access by header name to one CSV record.
type row struct {
	index  map[string]int
	record []string
}

func (r row) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return r.record[i]
}

// float parses a numeric cell. An empty cell becomes NaN so that the
// post-join null-fill step in enrichment stays observable; filling with 0
// here would hide which rows were actually missing.
func (r row) float(col string) (float64, error) {
	raw := r.get(col)
	if raw == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return v, nil
}

func (r row) int(col string) (int, error) {
	raw := r.get(col)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return v, nil
}

// readTable streams a CSV file, validating that every required column is
// present in the header, and invokes scan once per data record. Any read or
// scan failure aborts the whole table; the loader never returns partial data.
func readTable(path string, required []string, scan func(row) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("%s: missing required column %q", path, col)
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		line++

		if err := scan(row{index: index, record: record}); err != nil {
			return fmt.Errorf("%s line %d: %w", path, line, err)
		}
	}
}
