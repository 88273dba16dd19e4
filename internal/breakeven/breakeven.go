// Package breakeven searches, for one project field, the value at which the
// heat pump still pays back within a target number of years.
package breakeven

import (
	"fmt"
	"math"
	"time"

	"github.com/thermogain/thermogain/internal/config"
	"github.com/thermogain/thermogain/internal/project"
	"github.com/thermogain/thermogain/internal/projection"
	"github.com/thermogain/thermogain/pkg/format"
	"github.com/thermogain/thermogain/pkg/mathutil"
	"github.com/thermogain/thermogain/pkg/optimization"
	"go.uber.org/zap"
)

// Calculator runs one projection.
type Calculator interface {
	CalculateWithFixedTime(snapshot project.Snapshot, now time.Time) (*projection.Results, error)
}

// Runner executes break-even directives against a projection engine.
type Runner struct {
	logger    *zap.Logger
	engine    Calculator
	fixedTime time.Time
}

type evaluation struct {
	value   float64
	payback *float64
	target  float64
}

func (e evaluation) feasible() bool {
	return e.payback != nil && *e.payback <= e.target
}

func (e evaluation) headroom() float64 {
	if e.payback == nil {
		return 0
	}
	return e.target - *e.payback
}

// NewRunner constructs a Runner. A zero fixedTime means now.
func NewRunner(logger *zap.Logger, engine Calculator, fixedTime time.Time) (*Runner, error) {
	if engine == nil {
		return nil, fmt.Errorf("breakeven: engine cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if fixedTime.IsZero() {
		fixedTime = time.Now()
	}
	return &Runner{logger: logger, engine: engine, fixedTime: fixedTime}, nil
}

// RunProject executes every directive of a configured project.
func (r *Runner) RunProject(p config.Project) ([]optimization.Summary, error) {
	summaries := make([]optimization.Summary, 0, len(p.Breakeven))
	for i := range p.Breakeven {
		summary, err := r.Run(p.Snapshot, p.Breakeven[i])
		if err != nil {
			return nil, fmt.Errorf("project %s breakeven %d: %w", p.Name, i, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Run finds the largest value of the configured field, within bounds, for
// which the payback period does not exceed the target. Payback grows with
// both supported fields, so the search bisects between a feasible and an
// infeasible bound.
func (r *Runner) Run(snapshot project.Snapshot, cfg config.BreakevenConfig) (optimization.Summary, error) {
	if err := cfg.Validate(); err != nil {
		return optimization.Summary{}, err
	}

	baseline, err := r.engine.CalculateWithFixedTime(snapshot, r.fixedTime)
	if err != nil {
		return optimization.Summary{}, fmt.Errorf("breakeven baseline calculation failed: %w", err)
	}
	target := cfg.TargetYears
	if target <= 0 {
		target = float64(baseline.Lifetime())
	}

	original := originalValue(snapshot, cfg.Field, baseline)
	minVal, maxVal := *cfg.Min, *cfg.Max

	summary := optimization.Summary{
		ProjectID:       baseline.ProjectID,
		TargetName:      snapshot.Name,
		Field:           cfg.Field,
		Original:        original,
		OriginalDisplay: display(cfg.Field, original),
		TargetPayback:   target,
	}

	lowerEval, err := r.evaluate(snapshot, cfg.Field, minVal, target)
	if err != nil {
		return optimization.Summary{}, err
	}
	upperEval, err := r.evaluate(snapshot, cfg.Field, maxVal, target)
	if err != nil {
		return optimization.Summary{}, err
	}

	iterations := 0
	var final evaluation
	switch {
	case !lowerEval.feasible() && !upperEval.feasible():
		final = lowerEval
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"unable to pay back within %.1f years between %s and %s",
			target, display(cfg.Field, minVal), display(cfg.Field, maxVal),
		))
	case lowerEval.feasible() && upperEval.feasible():
		final = upperEval
		summary.Converged = true
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"payback within %.1f years across the whole range up to %s",
			target, display(cfg.Field, maxVal),
		))
	default:
		feasibleSide, infeasibleSide := lowerEval, upperEval
		if !lowerEval.feasible() {
			feasibleSide, infeasibleSide = upperEval, lowerEval
		}
		final = feasibleSide
		good := feasibleSide.value
		bad := infeasibleSide.value
		for iterations < cfg.MaxIterations && math.Abs(bad-good) > cfg.Tolerance {
			mid := good + (bad-good)/2
			evalMid, err := r.evaluate(snapshot, cfg.Field, mid, target)
			if err != nil {
				return optimization.Summary{}, err
			}
			iterations++
			if evalMid.feasible() {
				final = evalMid
				good = evalMid.value
			} else {
				bad = evalMid.value
			}
		}
		summary.Converged = math.Abs(bad-good) <= cfg.Tolerance
		if !summary.Converged {
			summary.Notes = append(summary.Notes, fmt.Sprintf("stopped after %d iterations", iterations))
		}
	}

	summary.Value = snap(cfg.Field, final.value)
	summary.ValueDisplay = display(cfg.Field, summary.Value)
	summary.Payback = final.payback
	summary.Headroom = mathutil.RoundTo(final.headroom(), 1)
	summary.Iterations = iterations

	r.logger.Info("breakeven search finished",
		zap.String("op", "breakeven.Run"),
		zap.String("project", summary.ProjectID),
		zap.String("field", summary.Field),
		zap.Float64("original", summary.Original),
		zap.Float64("value", summary.Value),
		zap.Float64("targetPayback", target),
		zap.Int("iterations", iterations),
		zap.Bool("converged", summary.Converged),
	)
	return summary, nil
}

func (r *Runner) evaluate(snapshot project.Snapshot, field string, value, target float64) (evaluation, error) {
	candidate, err := withField(snapshot, field, value)
	if err != nil {
		return evaluation{}, err
	}
	results, err := r.engine.CalculateWithFixedTime(candidate, r.fixedTime)
	if err != nil {
		return evaluation{}, fmt.Errorf("breakeven evaluation at %s failed: %w", display(field, value), err)
	}
	return evaluation{value: value, payback: results.PaybackPeriod, target: target}, nil
}

// withField returns a copy of the snapshot with the field set. Setting the
// investment replaces the cost breakdown and lets a loan amount default to the
// new net cost.
func withField(snapshot project.Snapshot, field string, value float64) (project.Snapshot, error) {
	s := snapshot
	if snapshot.HeatPump != nil {
		hp := *snapshot.HeatPump
		s.HeatPump = &hp
	}
	switch field {
	case config.BreakevenFieldInvestment:
		s.Costs.Equipment = 0
		s.Costs.Installation = 0
		s.Costs.Ancillary = 0
		s.Costs.Total = value
		s.Financing.LoanAmount = 0
	case config.BreakevenFieldElectricityPrice:
		if s.HeatPump == nil {
			return project.Snapshot{}, fmt.Errorf("breakeven on %s requires a heat pump", field)
		}
		s.HeatPump.ElectricityPrice = value
	default:
		return project.Snapshot{}, fmt.Errorf("breakeven field %q is not supported", field)
	}
	return s, nil
}

func originalValue(snapshot project.Snapshot, field string, baseline *projection.Results) float64 {
	switch field {
	case config.BreakevenFieldElectricityPrice:
		if snapshot.HeatPump != nil && snapshot.HeatPump.ElectricityPrice > 0 {
			return snapshot.HeatPump.ElectricityPrice
		}
		return baseline.Details.ElectricityModel.CurrentPrice
	default:
		if snapshot.Costs.Total > 0 {
			return snapshot.Costs.Total
		}
		return snapshot.Costs.Equipment + snapshot.Costs.Installation + snapshot.Costs.Ancillary
	}
}

func snap(field string, value float64) float64 {
	switch field {
	case config.BreakevenFieldElectricityPrice:
		return math.Round(value*10000) / 10000
	default:
		return mathutil.Round(value)
	}
}

func display(field string, value float64) string {
	switch field {
	case config.BreakevenFieldElectricityPrice:
		return format.PricePerKWh(value)
	default:
		return format.Euro(value)
	}
}
