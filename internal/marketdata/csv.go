package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/stocklab/internal/models"
)

const csvSourceName = "local_csv"

// CSVSource implements Source over per-symbol CSV files in a directory.
// Files are named <SYMBOL>.csv with a header row of
// date,open,high,low,close,volume and dates formatted as 2006-01-02.
type CSVSource struct {
	directory string
	enabled   bool
}

// NewCSVSource creates a CSV-backed data source rooted at directory
func NewCSVSource(directory string) *CSVSource {
	return &CSVSource{
		directory: directory,
		enabled:   directory != "",
	}
}

// Name returns the name of the data source
func (s *CSVSource) Name() string {
	return csvSourceName
}

// IsEnabled returns whether this data source is currently enabled
func (s *CSVSource) IsEnabled() bool {
	return s.enabled
}

// FetchDailyBars reads the symbol's CSV file and returns bars inside the date range
func (s *CSVSource) FetchDailyBars(ctx context.Context, symbol string, startDate, endDate time.Time) ([]models.Bar, error) {
	if !s.enabled {
		return nil, NewSourceError(csvSourceName, ErrCodeNetworkError, sourceDisabledMsg, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.directory, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewSourceError(csvSourceName, ErrCodeNotFound, fmt.Sprintf("no data file for symbol %s", symbol), err)
		}
		return nil, NewSourceError(csvSourceName, ErrCodeInvalidData, "failed to open data file", err)
	}
	defer f.Close()

	bars, err := ReadBars(f)
	if err != nil {
		return nil, NewSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("failed to parse %s", path), err)
	}

	filtered := bars[:0]
	for _, bar := range bars {
		if bar.Date.Before(startDate) || bar.Date.After(endDate) {
			continue
		}
		filtered = append(filtered, bar)
	}

	return filtered, nil
}

// ReadBars parses CSV bar data from r. The first row is treated as a
// header when its date column does not parse as a date.
func ReadBars(r io.Reader) ([]models.Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	bars := make([]models.Bar, 0, len(records))
	for i, record := range records {
		if len(record) < 6 {
			return nil, fmt.Errorf("row %d: expected 6 columns, got %d", i+1, len(record))
		}

		date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(record[0]), time.UTC)
		if err != nil {
			if i == 0 {
				// Header row
				continue
			}
			return nil, fmt.Errorf("row %d: invalid date %q: %w", i+1, record[0], err)
		}

		bar := models.Bar{Date: date}
		for j, dest := range []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume} {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[j+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid value %q: %w", i+1, record[j+1], err)
			}
			*dest = v
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	return bars, nil
}
