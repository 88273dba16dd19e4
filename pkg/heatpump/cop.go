// Package heatpump turns a manufacturer nominal COP into the COP realized in a
// given home and converts heat demand into heat pump electricity consumption.
package heatpump

import (
	"github.com/thermogain/thermogain/pkg/climate"
	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/mathutil"
	"go.uber.org/zap"
)

// Calculator adjusts COPs for outlet temperature, emitters and climate.
type Calculator struct {
	resolver    *climate.Resolver
	logger      *zap.Logger
	fallbackCOP float64
}

// NewCalculator creates a COP calculator. A nil resolver or logger gets a
// default, and a non-positive fallbackCOP is replaced by constants.FallbackCOP.
func NewCalculator(resolver *climate.Resolver, logger *zap.Logger, fallbackCOP float64) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = climate.NewResolver(logger)
	}
	if fallbackCOP <= 0 {
		fallbackCOP = constants.FallbackCOP
	}
	return &Calculator{resolver: resolver, logger: logger, fallbackCOP: fallbackCOP}
}

// TemperatureFactor returns the COP penalty for a water outlet temperature.
func TemperatureFactor(outletTemp float64) float64 {
	switch {
	case outletTemp <= 35:
		return 1.0
	case outletTemp <= 45:
		return 0.90
	case outletTemp <= 50:
		return 0.85
	case outletTemp <= 55:
		return 0.78
	case outletTemp <= 60:
		return 0.72
	default:
		return 0.65
	}
}

// EmitterFactor returns the COP penalty for an emitter type.
func EmitterFactor(emitter energy.EmitterType) float64 {
	switch emitter {
	case energy.EmitterUnderfloor:
		return 1.0
	case energy.EmitterFanCoil:
		return 0.95
	case energy.EmitterLowTempRadiator:
		return 0.90
	case energy.EmitterHighTempRadiator:
		return 0.70
	default:
		return 0.85
	}
}

// ClimateFactor returns the COP adjustment of the zone a postal code resolves
// to, or 1 when no postal code is supplied.
func (c *Calculator) ClimateFactor(postalCode string) float64 {
	if postalCode == "" {
		return 1.0
	}
	return c.resolver.GetClimateInfo(postalCode).COPAdjustment
}

// CalculateAdjustedCOP returns nominalCOP × temperature × emitter × climate
// factors rounded to 2 decimals. Air/Air units have no water circuit so only
// the climate factor applies to them.
func (c *Calculator) CalculateAdjustedCOP(nominalCOP, outletTemp float64, emitter energy.EmitterType, postalCode string, pacType energy.PACType) float64 {
	temperatureFactor := TemperatureFactor(outletTemp)
	emitterFactor := EmitterFactor(emitter)
	if pacType == energy.AirAir {
		temperatureFactor = 1.0
		emitterFactor = 1.0
	}

	cop := mathutil.Round(nominalCOP * temperatureFactor * emitterFactor * c.ClimateFactor(postalCode))

	c.logger.Debug("adjusted heat pump COP",
		zap.String("op", "heatpump.CalculateAdjustedCOP"),
		zap.Float64("nominal", nominalCOP),
		zap.Float64("temperatureFactor", temperatureFactor),
		zap.Float64("emitterFactor", emitterFactor),
		zap.String("pacType", string(pacType)),
		zap.Float64("cop", cop),
	)
	return cop
}

// EffectiveCOP returns cop, or the fallback COP with a warning when cop is not
// positive.
func (c *Calculator) EffectiveCOP(cop float64) float64 {
	if cop > 0 {
		return cop
	}
	c.logger.Warn("invalid COP, using fallback",
		zap.String("op", "heatpump.EffectiveCOP"),
		zap.Float64("cop", cop),
		zap.Float64("fallback", c.fallbackCOP),
	)
	return c.fallbackCOP
}

// AnnualConsumption converts a heat demand in kWh into heat pump electricity
// consumption in kWh.
func (c *Calculator) AnnualConsumption(heatDemand, cop float64) float64 {
	return heatDemand / c.EffectiveCOP(cop)
}
