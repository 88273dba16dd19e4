// Package loans provides the amortization math used to finance a heat pump.
package loans

import (
	"fmt"
	"math"

	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment holds the values for a given monthly payment.
type Payment struct {
	Month              int     `json:"month"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// YearlyPayment aggregates the payments of one loan year.
type YearlyPayment struct {
	Year               int     `json:"year"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// periodicRate converts an annual percentage into a monthly ratio.
func periodicRate(annualInterestRate float64) float64 {
	return mathutil.PercentToRatio(annualInterestRate) / constants.MonthsPerYear
}

// annuity returns the unrounded fixed monthly payment.
func annuity(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 || principal <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	r := periodicRate(annualInterestRate)
	power := math.Pow(1.00+r, float64(termMonths))
	return principal * r * power / (power - 1.00)
}

// CalculateMonthlyPayment returns the fixed monthly payment of an amortizing
// loan, M = P·r(1+r)^n / ((1+r)^n − 1) with r the monthly rate, rounded to 2
// decimals. A zero rate reduces to P/n.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	return mathutil.Round(annuity(principal, annualInterestRate, termMonths))
}

// TotalCreditCost returns the sum of all monthly payments.
func TotalCreditCost(monthlyPayment float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	return mathutil.Round(monthlyPayment * float64(termMonths))
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * periodicRate(annualInterestRate)
}

// Loan is the credit part of a financing plan.
type Loan struct {
	Principal    float64
	InterestRate float64
	Term         int
}

// AmortizationScheduleGenerator builds loan amortization schedules.
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule returns one payment per month of the loan term.
func (g *AmortizationScheduleGenerator) GenerateSchedule(loan Loan) ([]Payment, error) {
	if loan.Term <= 0 || loan.Term > constants.MaxLoanDurationMonths {
		return nil, fmt.Errorf("loan term must be between 1 and %d months, got %d", constants.MaxLoanDurationMonths, loan.Term)
	}
	if loan.Principal < 0 || loan.InterestRate < 0 {
		return nil, fmt.Errorf("loan principal and interest rate must not be negative")
	}

	monthlyPayment := annuity(loan.Principal, loan.InterestRate, loan.Term)
	schedule := make([]Payment, 0, loan.Term)
	remaining := loan.Principal

	for month := 1; month <= loan.Term; month++ {
		interest := CalculateInterestPayment(remaining, loan.InterestRate)
		principal := monthlyPayment - interest
		remaining -= principal
		if month == loan.Term || mathutil.Round(remaining) == 0 {
			// We will get machine error otherwise so just set to 0.
			remaining = 0
		}
		schedule = append(schedule, Payment{
			Month:              month,
			Payment:            monthlyPayment,
			Principal:          principal,
			Interest:           interest,
			RemainingPrincipal: remaining,
		})
		if remaining == 0 {
			break
		}
	}

	g.logger.Debug(fmt.Sprintf("generated %d payments for a loan of %.2f", len(schedule), loan.Principal),
		zap.String("op", "loans.GenerateSchedule"),
	)
	return schedule, nil
}

// YearlySchedule aggregates a monthly schedule into loan years.
func YearlySchedule(schedule []Payment) []YearlyPayment {
	var years []YearlyPayment
	for _, p := range schedule {
		index := (p.Month - 1) / constants.MonthsPerYear
		for len(years) <= index {
			years = append(years, YearlyPayment{Year: len(years) + 1})
		}
		y := &years[index]
		y.Payment += p.Payment
		y.Principal += p.Principal
		y.Interest += p.Interest
		y.RemainingPrincipal = p.RemainingPrincipal
	}
	for i := range years {
		years[i].Payment = mathutil.Round(years[i].Payment)
		years[i].Principal = mathutil.Round(years[i].Principal)
		years[i].Interest = mathutil.Round(years[i].Interest)
		years[i].RemainingPrincipal = mathutil.Round(years[i].RemainingPrincipal)
	}
	return years
}

// Financing is how the heat pump installation is paid for.
type Financing struct {
	Mode           energy.FinancingMode
	TotalCost      float64
	Subsidies      float64
	DownPayment    float64
	LoanAmount     float64
	InterestRate   float64
	DurationMonths int
}

// FinancingResult holds the financing figures of a calculation.
type FinancingResult struct {
	LoanAmount       float64 `json:"loanAmount"`
	MonthlyPayment   float64 `json:"monthlyPayment"`
	TotalCreditCost  float64 `json:"totalCreditCost"`
	ActualInvestment float64 `json:"actualInvestment"`
}

// Evaluate computes the money actually spent on the installation. Cash
// purchases cost the total minus subsidies. Credit and mixed purchases cost
// the down payment plus every loan payment; an unset loan amount defaults to
// what remains after subsidies and down payment.
func Evaluate(f Financing) FinancingResult {
	netCost := math.Max(f.TotalCost-f.Subsidies, 0)
	if !f.Mode.UsesLoan() {
		return FinancingResult{ActualInvestment: mathutil.Round(netCost)}
	}

	loanAmount := f.LoanAmount
	if loanAmount <= 0 {
		loanAmount = math.Max(netCost-f.DownPayment, 0)
	}
	monthly := CalculateMonthlyPayment(loanAmount, f.InterestRate, f.DurationMonths)
	total := TotalCreditCost(monthly, f.DurationMonths)

	return FinancingResult{
		LoanAmount:       loanAmount,
		MonthlyPayment:   monthly,
		TotalCreditCost:  total,
		ActualInvestment: mathutil.Round(f.DownPayment + total),
	}
}
