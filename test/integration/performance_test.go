package integration

import (
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/thermogain/thermogain/internal/breakeven"
)

var zeroTime time.Time

// TestRunner is a simple test runner for debugging
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	start := time.Now()
	conf, a := loadTestApp(t)
	loadTime := time.Since(start)

	start = time.Now()
	results := computeAll(t, conf, a)
	computeTime := time.Since(start)

	t.Logf("Performance metrics:")
	t.Logf("  Load + model refresh: %v", loadTime)
	t.Logf("  Projection:           %v (%d projects)", computeTime, len(results))

	if computeTime > 2*time.Second {
		t.Errorf("Projection took too long: %v", computeTime)
	}
}

func BenchmarkCalculate(b *testing.B) {
	conf, a := loadTestApp(b)
	now, err := conf.FixedTime(zeroTime)
	if err != nil {
		b.Fatalf("FixedTime() error = %v", err)
	}
	snapshot := conf.ActiveProjects()[0].Snapshot

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.Engine.CalculateWithFixedTime(snapshot, now); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBreakeven(b *testing.B) {
	conf, a := loadTestApp(b)
	now, err := conf.FixedTime(zeroTime)
	if err != nil {
		b.Fatalf("FixedTime() error = %v", err)
	}
	runner, err := breakeven.NewRunner(zap.NewNop(), a.Engine, now)
	if err != nil {
		b.Fatal(err)
	}
	project := conf.ActiveProjects()[0]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := runner.RunProject(project); err != nil {
			b.Fatal(err)
		}
	}
}
