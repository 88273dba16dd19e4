// Package pricehistory reads monthly energy price series from files or an
// HTTP endpoint.
package pricehistory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/thermogain/thermogain/pkg/datetime"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/energyprice"
	"gopkg.in/yaml.v3"
)

// ErrNoHistory is returned when a source holds no series for an energy type.
var ErrNoHistory = errors.New("no price history")

// Source supplies the monthly price history of an energy type.
type Source interface {
	History(ctx context.Context, e energy.Type) ([]energyprice.Point, error)
}

// Series maps each energy type to its monthly prices.
type Series map[energy.Type][]energyprice.Point

type yamlDocument struct {
	Series map[string][]energyprice.Point `yaml:"series"`
}

// FileSource serves price history read once from a YAML or CSV file.
type FileSource struct {
	path   string
	series Series
}

// NewFileSource loads a history file. The format follows the extension:
// .csv, otherwise YAML.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price history %s: %w", path, err)
	}
	defer f.Close()

	var series Series
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		series, err = ParseCSV(f)
	} else {
		series, err = ParseYAML(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse price history %s: %w", path, err)
	}
	return &FileSource{path: path, series: series}, nil
}

// NewStaticSource serves an in-memory series.
func NewStaticSource(series Series) *FileSource {
	return &FileSource{series: series}
}

// History returns a copy of the series of an energy type.
func (s *FileSource) History(ctx context.Context, e energy.Type) ([]energyprice.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	points, ok := s.series[e]
	if !ok || len(points) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoHistory, e)
	}
	out := make([]energyprice.Point, len(points))
	copy(out, points)
	return out, nil
}

// ParseYAML reads a document of the form
//
//	series:
//	  gaz:
//	    - period: "2015-01"
//	      price: 0.062
func ParseYAML(r io.Reader) (Series, error) {
	var doc yamlDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	series := make(Series, len(doc.Series))
	for name, points := range doc.Series {
		e, ok := energy.ParseType(name)
		if !ok {
			return nil, fmt.Errorf("unknown energy type %q", name)
		}
		for i := range points {
			if err := normalizePoint(&points[i]); err != nil {
				return nil, fmt.Errorf("%s entry %d: %w", name, i, err)
			}
		}
		series[e] = append(series[e], points...)
	}
	series.sort()
	return series, nil
}

// ParseCSV reads rows of energy,period,price after a header line.
func ParseCSV(r io.Reader) (Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return Series{}, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"energy", "period", "price"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing csv column %q", required)
		}
	}

	series := make(Series)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(name string) string {
			idx := columns[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		e, ok := energy.ParseType(field("energy"))
		if !ok {
			return nil, fmt.Errorf("line %d: unknown energy type %q", line, field("energy"))
		}
		price, err := strconv.ParseFloat(field("price"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid price: %w", line, err)
		}
		point := energyprice.Point{Period: field("period"), Price: price}
		if err := normalizePoint(&point); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		series[e] = append(series[e], point)
	}
	series.sort()
	return series, nil
}

func normalizePoint(p *energyprice.Point) error {
	t, err := datetime.ParsePeriod(p.Period)
	if err != nil {
		return err
	}
	if p.Price <= 0 {
		return fmt.Errorf("non-positive price %f at %s", p.Price, p.Period)
	}
	p.Period = t.Format(datetime.PeriodLayout)
	return nil
}

func (s Series) sort() {
	for _, points := range s {
		sort.SliceStable(points, func(i, j int) bool { return points[i].Period < points[j].Period })
	}
}
