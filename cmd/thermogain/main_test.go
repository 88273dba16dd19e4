package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thermogain/thermogain/internal/config"
	"go.uber.org/zap"
)

func loadSampleConfig(t *testing.T) *config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration("../../test/test_config.yaml")
	require.NoError(t, err)
	conf.PriceHistory.File = "../../test/test_prices.csv"
	return conf
}

func testOptions(format, file string) runOptions {
	return runOptions{
		outputFormat: format,
		outputFile:   file,
		now:          time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestRunPretty(t *testing.T) {
	var stdout bytes.Buffer
	err := run(context.Background(), zap.NewNop(), loadSampleConfig(t), testOptions("pretty", ""), &stdout)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "--- Results for project paris-gaz ---")
	assert.Contains(t, out, "--- Results for project lyon-fioul ---")
	assert.Contains(t, out, "Monthly payment")
	assert.Contains(t, out, "--- Break-even ---")
	assert.Contains(t, out, "paris-gaz investment")
	assert.NotContains(t, out, "archived")
}

func TestRunCSVToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	var stdout bytes.Buffer
	err := run(context.Background(), zap.NewNop(), loadSampleConfig(t), testOptions("csv", path), &stdout)
	require.NoError(t, err)
	assert.Zero(t, stdout.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "project", records[0][0])
	assert.Len(t, records, 1+17+17)
}

func TestRunBinaryFormats(t *testing.T) {
	for _, format := range []string{"xlsx", "pdf"} {
		t.Run(format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "reports")
			err := run(context.Background(), zap.NewNop(), loadSampleConfig(t), testOptions(format, dir), &bytes.Buffer{})
			require.NoError(t, err)

			for _, id := range []string{"paris-gaz", "lyon-fioul"} {
				data, err := os.ReadFile(filepath.Join(dir, id+"."+format))
				require.NoError(t, err)
				if format == "pdf" {
					assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
				} else {
					assert.True(t, strings.HasPrefix(string(data), "PK"))
				}
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	err := run(context.Background(), zap.NewNop(), loadSampleConfig(t), testOptions("json", ""), &bytes.Buffer{})
	assert.Error(t, err)

	conf := loadSampleConfig(t)
	conf.StartDate = "mars 2025"
	err = run(context.Background(), zap.NewNop(), conf, testOptions("pretty", ""), &bytes.Buffer{})
	assert.Error(t, err)

	conf = loadSampleConfig(t)
	conf.PriceHistory.File = ""
	var stdout bytes.Buffer
	err = run(context.Background(), zap.NewNop(), conf, testOptions("pretty", ""), &stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 project(s) could not be computed")
}
