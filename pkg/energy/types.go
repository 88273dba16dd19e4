// Package energy defines the closed enumerations shared by the calculation
// packages: energy carriers, heating systems, heat pump technologies,
// emitters, installation condition, insulation quality and financing modes.
package energy

import "strings"

// Type is an energy carrier with its own price evolution model.
type Type string

const (
	Gas         Type = "gaz"
	Electricity Type = "electricite"
	FuelOil     Type = "fioul"
	Wood        Type = "bois"
)

// AllTypes lists every energy carrier that owns a price evolution model.
func AllTypes() []Type {
	return []Type{Gas, Electricity, FuelOil, Wood}
}

// ParseType maps a loosely written energy name onto a Type.
func ParseType(value string) (Type, bool) {
	switch normalize(value) {
	case "gaz", "gas", "gaz_naturel":
		return Gas, true
	case "electricite", "electricity", "elec":
		return Electricity, true
	case "fioul", "fuel", "fuel_oil", "fuel-oil", "mazout":
		return FuelOil, true
	case "bois", "wood":
		return Wood, true
	default:
		return "", false
	}
}

// HeatingType is the current heating system of a home.
type HeatingType string

const (
	HeatingGas      HeatingType = "Gaz"
	HeatingFuelOil  HeatingType = "Fioul"
	HeatingLPG      HeatingType = "GPL"
	HeatingElectric HeatingType = "Electrique"
	HeatingHeatPump HeatingType = "PAC"
	HeatingWood     HeatingType = "Bois"
	HeatingPellets  HeatingType = "Granules"
)

// Unit is the native consumption unit of a heating system.
type Unit string

const (
	UnitKWh   Unit = "kWh"
	UnitLitre Unit = "L"
	UnitKg    Unit = "kg"
	UnitStere Unit = "stere"
)

// ParseHeatingType maps a loosely written heating name onto a HeatingType.
func ParseHeatingType(value string) (HeatingType, bool) {
	switch normalize(value) {
	case "gaz", "gas", "chaudiere_gaz":
		return HeatingGas, true
	case "fioul", "fuel", "fuel_oil", "chaudiere_fioul":
		return HeatingFuelOil, true
	case "gpl", "lpg", "propane":
		return HeatingLPG, true
	case "electrique", "electric", "electricite", "radiateurs_electriques":
		return HeatingElectric, true
	case "pac", "pompe_a_chaleur", "heat_pump":
		return HeatingHeatPump, true
	case "bois", "wood", "buches":
		return HeatingWood, true
	case "granules", "pellets", "granules_bois":
		return HeatingPellets, true
	default:
		return "", false
	}
}

// Valid reports whether h is one of the known heating systems.
func (h HeatingType) Valid() bool {
	switch h {
	case HeatingGas, HeatingFuelOil, HeatingLPG, HeatingElectric, HeatingHeatPump, HeatingWood, HeatingPellets:
		return true
	default:
		return false
	}
}

// Unit returns the native consumption unit.
func (h HeatingType) Unit() Unit {
	switch h {
	case HeatingFuelOil:
		return UnitLitre
	case HeatingLPG, HeatingPellets:
		return UnitKg
	case HeatingWood:
		return UnitStere
	case HeatingGas, HeatingElectric, HeatingHeatPump:
		return UnitKWh
	default:
		return UnitKWh
	}
}

// EnergyContent returns the kWh of final energy held by one native unit.
func (h HeatingType) EnergyContent() float64 {
	switch h {
	case HeatingFuelOil:
		return 10.0
	case HeatingLPG:
		return 12.8
	case HeatingWood:
		return 1700.0
	case HeatingPellets:
		return 4.8
	case HeatingGas, HeatingElectric, HeatingHeatPump:
		return 1.0
	default:
		return 1.0
	}
}

// Energy returns the price evolution model used for the heating system.
func (h HeatingType) Energy() (Type, bool) {
	switch h {
	case HeatingGas, HeatingLPG:
		return Gas, true
	case HeatingFuelOil:
		return FuelOil, true
	case HeatingElectric, HeatingHeatPump:
		return Electricity, true
	case HeatingWood, HeatingPellets:
		return Wood, true
	default:
		return "", false
	}
}

// IsElectric reports whether the system draws its energy from the grid.
func (h HeatingType) IsElectric() bool {
	return h == HeatingElectric || h == HeatingHeatPump
}

// IsGas reports whether the system is connected to the gas network.
func (h HeatingType) IsGas() bool {
	return h == HeatingGas
}

// PACType is the heat pump technology.
type PACType string

const (
	AirAir     PACType = "Air/Air"
	AirWater   PACType = "Air/Eau"
	WaterWater PACType = "Eau/Eau"
)

// ParsePACType maps a loosely written heat pump type onto a PACType.
func ParsePACType(value string) (PACType, bool) {
	switch normalize(value) {
	case "air/air", "air_air", "airair":
		return AirAir, true
	case "air/eau", "air_eau", "air/water", "aireau":
		return AirWater, true
	case "eau/eau", "eau_eau", "water/water", "geothermie":
		return WaterWater, true
	default:
		return "", false
	}
}

// IsHydraulic reports whether the heat pump feeds a water circuit.
func (p PACType) IsHydraulic() bool {
	return p == AirWater || p == WaterWater
}

// EmitterType is the heat distribution hardware served by a hydraulic heat pump.
type EmitterType string

const (
	EmitterUnderfloor       EmitterType = "plancher_chauffant"
	EmitterFanCoil          EmitterType = "ventilo_convecteurs"
	EmitterLowTempRadiator  EmitterType = "radiateurs_basse_temperature"
	EmitterHighTempRadiator EmitterType = "radiateurs_haute_temperature"
	EmitterUnknown          EmitterType = ""
)

// ParseEmitterType maps a loosely written emitter name onto an EmitterType.
// Unknown names map to EmitterUnknown.
func ParseEmitterType(value string) EmitterType {
	switch normalize(value) {
	case "plancher_chauffant", "plancher", "underfloor":
		return EmitterUnderfloor
	case "ventilo_convecteurs", "ventiloconvecteurs", "fan_coil":
		return EmitterFanCoil
	case "radiateurs_basse_temperature", "radiateurs_bt", "low_temperature_radiators":
		return EmitterLowTempRadiator
	case "radiateurs_haute_temperature", "radiateurs_ht", "radiateurs", "high_temperature_radiators":
		return EmitterHighTempRadiator
	default:
		return EmitterUnknown
	}
}

// Condition is the maintenance state of an existing installation.
type Condition string

const (
	ConditionGood    Condition = "Bon"
	ConditionAverage Condition = "Moyen"
	ConditionPoor    Condition = "Mauvais"
)

// ParseCondition maps a loosely written condition onto a Condition,
// defaulting to ConditionAverage.
func ParseCondition(value string) Condition {
	switch normalize(value) {
	case "bon", "good":
		return ConditionGood
	case "mauvais", "poor", "bad":
		return ConditionPoor
	default:
		return ConditionAverage
	}
}

// Insulation is the insulation quality of a home.
type Insulation string

const (
	InsulationGood    Insulation = "Bonne"
	InsulationAverage Insulation = "Moyenne"
	InsulationPoor    Insulation = "Mauvaise"
)

// ParseInsulation maps a loosely written insulation quality, defaulting to
// InsulationAverage.
func ParseInsulation(value string) Insulation {
	switch normalize(value) {
	case "bonne", "good":
		return InsulationGood
	case "mauvaise", "poor", "bad":
		return InsulationPoor
	default:
		return InsulationAverage
	}
}

// FinancingMode is the way the heat pump is paid for.
type FinancingMode string

const (
	FinancingCash   FinancingMode = "Comptant"
	FinancingCredit FinancingMode = "Credit"
	FinancingMixed  FinancingMode = "Mixte"
)

// ParseFinancingMode maps a loosely written financing mode onto a FinancingMode.
func ParseFinancingMode(value string) (FinancingMode, bool) {
	switch normalize(value) {
	case "comptant", "cash", "":
		return FinancingCash, true
	case "credit", "loan":
		return FinancingCredit, true
	case "mixte", "mixed":
		return FinancingMixed, true
	default:
		return "", false
	}
}

// UsesLoan reports whether a loan is part of the financing.
func (f FinancingMode) UsesLoan() bool {
	return f == FinancingCredit || f == FinancingMixed
}

func normalize(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.NewReplacer("é", "e", "è", "e", "ê", "e", " ", "_").Replace(v)
	return v
}
