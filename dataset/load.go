package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidValue  = errors.New("invalid numeric value")
)

const (
	ColDate    = "Date"
	ColCountry = "Country"
)

// index columns written by dataframe exports carry no data
var indexColumns = map[string]struct{}{
	"":           {},
	"Unnamed: 0": {},
}

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"1/2/06",
}

// LoadFile reads a CSV dataset from disk
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open dataset, %w", err)
	}
	defer f.Close()

	ds, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("unable to load %s, %w", path, err)
	}
	return ds, nil
}

// Load parses CSV rows of Date, Country, Confirmed, Deaths and Recovered in any column
// order. An unnamed index column is ignored. Empty counts are NaN and rows without a
// country are skipped.
func Load(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read header, %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, isIndex := indexColumns[name]; isIndex {
			continue
		}
		cols[name] = i
	}

	required := []string{ColDate, ColCountry}
	for _, m := range Metrics {
		required = append(required, m.String())
	}
	for _, name := range required {
		if _, exists := cols[name]; !exists {
			return nil, fmt.Errorf("%q, %w", name, ErrMissingColumn)
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read line %d, %w", line, err)
		}

		field := func(name string) string {
			if idx := cols[name]; idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		country := field(ColCountry)
		if country == "" {
			slog.Warn("skipping dataset row without a country", "line", line)
			continue
		}

		date, err := ParseDate(field(ColDate))
		if err != nil {
			return nil, fmt.Errorf("line %d, %w", line, err)
		}

		rec := Record{Date: date, Country: country}
		for _, m := range Metrics {
			v, err := parseValue(field(m.String()))
			if err != nil {
				return nil, fmt.Errorf("line %d column %s, %w", line, m, err)
			}
			rec.set(m, v)
		}
		records = append(records, rec)
	}
	return New(records), nil
}

// ParseDate parses a calendar date in one of the common CSV layouts and truncates it to
// midnight UTC
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q, %w", s, ErrInvalidDate)
}

// Day truncates a time to its calendar date at midnight UTC
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseValue(s string) (float64, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%q, %w", s, ErrInvalidValue)
	}
	return v, nil
}
