// Package costs computes the fixed and variable annual costs of the current
// heating system and of the heat pump, and projects them over time.
package costs

import (
	"sort"

	"github.com/thermogain/thermogain/pkg/constants"
	"go.uber.org/zap"
)

// electricSubscriptionFees maps a subscribed power tier in kVA to its annual
// fee in euros.
var electricSubscriptionFees = map[int]float64{
	3:  114.24,
	6:  151.20,
	9:  189.48,
	12: 228.48,
	15: 264.84,
	18: 301.32,
}

// SubscriptionTiers returns the known subscription tiers in ascending order.
func SubscriptionTiers() []int {
	tiers := make([]int, 0, len(electricSubscriptionFees))
	for kva := range electricSubscriptionFees {
		tiers = append(tiers, kva)
	}
	sort.Ints(tiers)
	return tiers
}

// Calculator computes annual costs. Unmapped reference data falls back to a
// documented default with a warning.
type Calculator struct {
	logger          *zap.Logger
	gasSubscription float64
}

// NewCalculator creates a cost calculator. A negative gasSubscription is
// replaced by constants.DefaultGasSubscription.
func NewCalculator(logger *zap.Logger, gasSubscription float64) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gasSubscription < 0 {
		gasSubscription = constants.DefaultGasSubscription
	}
	return &Calculator{logger: logger, gasSubscription: gasSubscription}
}

// ElectricSubscription returns the annual fee of a subscription tier. An
// unmapped tier uses the 6 kVA fee.
func (c *Calculator) ElectricSubscription(kva int) float64 {
	if fee, ok := electricSubscriptionFees[kva]; ok {
		return fee
	}
	c.logger.Warn("unknown subscription tier, using default tier",
		zap.String("op", "costs.ElectricSubscription"),
		zap.Int("kva", kva),
		zap.Int("defaultKva", constants.DefaultSubscribedPowerKVA),
	)
	return electricSubscriptionFees[constants.DefaultSubscribedPowerKVA]
}

// GasSubscription returns the annual gas network subscription fee.
func (c *Calculator) GasSubscription() float64 {
	return c.gasSubscription
}
