package feed

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/backlab/quantsim/internal/types"
)

// Date layouts accepted in CSV files, tried in order.
var csvTimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// LoadCSVDir builds a historic feed from a directory of CSV files. Each file
// holds the candles of one asset, the file name (without extension) is the
// symbol. Rows are "date,open,high,low,close,volume" with an optional header.
func LoadCSVDir(dir string, currency types.Currency) (*HistoricFeed, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read feed directory: %w", err)
	}

	itemsByTime := make(map[time.Time][]Item)
	files := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		symbol := strings.ToUpper(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		asset := types.NewAsset(symbol, currency)

		if err := loadCSVFile(filepath.Join(dir, entry.Name()), asset, itemsByTime); err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}
		files++
	}

	times := make([]time.Time, 0, len(itemsByTime))
	for t := range itemsByTime {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	feed := &HistoricFeed{}
	for _, t := range times {
		feed.Add(NewEvent(t, itemsByTime[t]...))
	}

	log.Debug().
		Str("dir", dir).
		Int("files", files).
		Int("events", feed.Len()).
		Msg("loaded csv feed")

	return feed, nil
}

func loadCSVFile(path string, asset types.Asset, itemsByTime map[time.Time][]Item) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return err
	}

	for i, record := range records {
		if len(record) < 6 {
			return fmt.Errorf("row %d: expected 6 columns, got %d", i+1, len(record))
		}

		t, err := parseCSVTime(record[0])
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return fmt.Errorf("row %d: %w", i+1, err)
		}

		values := make([]float64, 5)
		for j := 1; j <= 5; j++ {
			values[j-1], err = strconv.ParseFloat(strings.TrimSpace(record[j]), 64)
			if err != nil {
				return fmt.Errorf("row %d column %d: %w", i+1, j+1, err)
			}
		}

		bar := NewBar(asset, values[0], values[1], values[2], values[3], values[4])
		itemsByTime[t] = append(itemsByTime[t], bar)
	}
	return nil
}

func parseCSVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
