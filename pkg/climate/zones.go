// Package climate resolves French postal codes to climate zones and exposes
// the static reference data attached to each zone.
package climate

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Zone is a French thermal regulation climate zone code.
type Zone string

const (
	H1a Zone = "H1a"
	H1b Zone = "H1b"
	H1c Zone = "H1c"
	H2a Zone = "H2a"
	H2b Zone = "H2b"
	H2c Zone = "H2c"
	H2d Zone = "H2d"
	H3  Zone = "H3"
)

// DefaultZone is the temperate zone used when a postal code cannot be resolved.
const DefaultZone = H2a

// ReferenceDegreeDays is the heating degree days of the reference zone.
const ReferenceDegreeDays = 2200.0

// corsicaThreshold splits Corsican postal codes between 2A and 2B.
const corsicaThreshold = 20200

// Info is the immutable reference record of a climate zone.
type Info struct {
	Zone              Zone    `json:"zone"`
	DegreeDays        float64 `json:"degreeDays"`
	WinterTemperature float64 `json:"winterTemperature"`
	SummerTemperature float64 `json:"summerTemperature"`
	COPAdjustment     float64 `json:"copAdjustment"`
}

var zoneInfo = map[Zone]Info{
	H1a: {Zone: H1a, DegreeDays: 2500, WinterTemperature: 4.5, SummerTemperature: 19, COPAdjustment: 0.90},
	H1b: {Zone: H1b, DegreeDays: 2700, WinterTemperature: 3.5, SummerTemperature: 20, COPAdjustment: 0.88},
	H1c: {Zone: H1c, DegreeDays: 2600, WinterTemperature: 4.0, SummerTemperature: 21, COPAdjustment: 0.89},
	H2a: {Zone: H2a, DegreeDays: 2200, WinterTemperature: 6.5, SummerTemperature: 18, COPAdjustment: 1.00},
	H2b: {Zone: H2b, DegreeDays: 2300, WinterTemperature: 6.0, SummerTemperature: 20, COPAdjustment: 0.97},
	H2c: {Zone: H2c, DegreeDays: 2000, WinterTemperature: 7.0, SummerTemperature: 22, COPAdjustment: 1.02},
	H2d: {Zone: H2d, DegreeDays: 2100, WinterTemperature: 6.5, SummerTemperature: 23, COPAdjustment: 1.00},
	H3:  {Zone: H3, DegreeDays: 1400, WinterTemperature: 9.5, SummerTemperature: 24, COPAdjustment: 1.08},
}

// departmentZones maps a department code to its climate zone. Paris and the
// inner suburbs sit in H2b.
var departmentZones = map[string]Zone{
	"02": H1a, "14": H1a, "27": H1a, "50": H1a, "59": H1a, "60": H1a, "61": H1a,
	"62": H1a, "76": H1a, "77": H1a, "78": H1a, "80": H1a, "91": H1a, "95": H1a,

	"08": H1b, "10": H1b, "45": H1b, "51": H1b, "52": H1b, "54": H1b, "55": H1b,
	"57": H1b, "58": H1b, "67": H1b, "68": H1b, "70": H1b, "88": H1b, "89": H1b,
	"90": H1b,

	"01": H1c, "03": H1c, "05": H1c, "15": H1c, "19": H1c, "21": H1c, "23": H1c,
	"25": H1c, "38": H1c, "39": H1c, "42": H1c, "43": H1c, "63": H1c, "69": H1c,
	"71": H1c, "73": H1c, "74": H1c, "87": H1c,

	"22": H2a, "29": H2a, "35": H2a, "56": H2a,

	"16": H2b, "17": H2b, "18": H2b, "28": H2b, "36": H2b, "37": H2b, "41": H2b,
	"44": H2b, "49": H2b, "53": H2b, "72": H2b, "79": H2b, "85": H2b, "86": H2b,
	"75": H2b, "92": H2b, "93": H2b, "94": H2b,

	"09": H2c, "12": H2c, "31": H2c, "32": H2c, "40": H2c, "46": H2c, "47": H2c,
	"64": H2c, "65": H2c, "81": H2c, "82": H2c, "24": H2c, "33": H2c,

	"04": H2d, "07": H2d, "26": H2d, "48": H2d, "84": H2d,

	"06": H3, "11": H3, "13": H3, "30": H3, "34": H3, "66": H3, "83": H3,
	"2A": H3, "2B": H3,

	"971": H3, "972": H3, "973": H3, "974": H3, "976": H3,
}

// Resolver maps postal codes to climate zones, logging every fallback.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a resolver. A nil logger is replaced by a no-op logger.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// Department derives the department code of a postal code. Corsica maps to
// 2A/2B, overseas departments keep three digits. The second return value is
// false when no department can be derived.
func Department(postalCode string) (string, bool) {
	code := strings.TrimSpace(postalCode)
	if len(code) < 2 {
		return "", false
	}
	prefix := code[:2]
	switch {
	case prefix == "20":
		numeric, err := strconv.Atoi(code)
		if err != nil {
			return "", false
		}
		if numeric < corsicaThreshold {
			return "2A", true
		}
		return "2B", true
	case prefix == "97" || prefix == "98":
		if len(code) < 3 {
			return "", false
		}
		return code[:3], true
	default:
		return prefix, true
	}
}

// ResolveZone returns the climate zone of a postal code, falling back to
// DefaultZone with a warning.
func (r *Resolver) ResolveZone(postalCode string) Zone {
	department, ok := Department(postalCode)
	if !ok {
		r.logger.Warn("postal code too short to resolve a climate zone, using default",
			zap.String("op", "climate.ResolveZone"),
			zap.String("postalCode", postalCode),
			zap.String("zone", string(DefaultZone)),
		)
		return DefaultZone
	}
	zone, ok := departmentZones[department]
	if !ok {
		r.logger.Warn("unknown department, using default climate zone",
			zap.String("op", "climate.ResolveZone"),
			zap.String("postalCode", postalCode),
			zap.String("department", department),
			zap.String("zone", string(DefaultZone)),
		)
		return DefaultZone
	}
	return zone
}

// GetClimateInfo resolves the zone of a postal code and returns its record.
func (r *Resolver) GetClimateInfo(postalCode string) Info {
	return InfoFor(r.ResolveZone(postalCode))
}

// GetConsumptionAdjustment returns the ratio of the zone's degree days to the
// reference zone's, used to scale heating needs with climate severity.
func (r *Resolver) GetConsumptionAdjustment(postalCode string) float64 {
	return r.GetClimateInfo(postalCode).DegreeDays / ReferenceDegreeDays
}

// InfoFor returns the record of a zone, or the default zone's record when the
// zone is unknown.
func InfoFor(zone Zone) Info {
	if info, ok := zoneInfo[zone]; ok {
		return info
	}
	return zoneInfo[DefaultZone]
}

// Zones returns the reference records of every zone.
func Zones() []Info {
	zones := []Zone{H1a, H1b, H1c, H2a, H2b, H2c, H2d, H3}
	infos := make([]Info, 0, len(zones))
	for _, z := range zones {
		infos = append(infos, zoneInfo[z])
	}
	return infos
}
