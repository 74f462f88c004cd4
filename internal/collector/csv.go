package collector

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// CSVFetcher reads observations from a local file. Two layouts are accepted:
// one value per line without a header, or a header row with a "close" column.
type CSVFetcher struct {
	Path string
}

// NewCSVFetcher creates a fetcher reading from path.
func NewCSVFetcher(path string) *CSVFetcher {
	return &CSVFetcher{Path: path}
}

func (f *CSVFetcher) Name() string { return "csv" }

type closeRow struct {
	Date  string `csv:"date"`
	Close string `csv:"close"`
}

// FetchCloses returns the last count values of the file; count <= 0 returns all.
func (f *CSVFetcher) FetchCloses(_ context.Context, _ string, count int) ([]float64, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	values, err := ParseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return trimTail(values, count), nil
}

// ParseCSV decodes observations from CSV bytes. Headerless files are read row
// by row and every cell is taken in order, so "1,2,3" and three single-value
// lines give the same series. Every cell must be a positive decimal number;
// the first bad cell fails the whole file.
func ParseCSV(data []byte) ([]float64, error) {
	first := firstLine(data)
	if first == "" {
		return nil, fmt.Errorf("csv: no rows")
	}
	if _, err := decimal.NewFromString(strings.TrimSpace(strings.Split(first, ",")[0])); err == nil {
		return parseHeaderless(data)
	}

	var rows []closeRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("csv decode: %w", err)
	}
	values := make([]float64, 0, len(rows))
	for i, r := range rows {
		v, err := parsePositive(r.Close)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+2, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("csv: no observations")
	}
	return values, nil
}

func parseHeaderless(data []byte) ([]float64, error) {
	reader := gocsv.LazyCSVReader(bytes.NewReader(data))
	if r, ok := reader.(*csv.Reader); ok {
		r.FieldsPerRecord = -1
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv decode: %w", err)
	}

	var values []float64
	for i, record := range records {
		for j, cell := range record {
			if strings.TrimSpace(cell) == "" && j == len(record)-1 && j > 0 {
				continue // trailing comma
			}
			v, err := parsePositive(cell)
			if err != nil {
				if len(record) > 1 {
					return nil, fmt.Errorf("csv row %d column %d: %w", i+1, j+1, err)
				}
				return nil, fmt.Errorf("csv row %d: %w", i+1, err)
			}
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("csv: no observations")
	}
	return values, nil
}

func parsePositive(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, fmt.Errorf("empty value")
	}
	d, err := decimal.NewFromString(cell)
	if err != nil {
		return 0, fmt.Errorf("value %q is not a decimal number", cell)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("value %s must be positive", d.String())
	}
	return d.InexactFloat64(), nil
}

func firstLine(data []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}
