package validation

import (
	"fmt"

	"github.com/thermogain/thermogain/internal/project"
	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/costs"
	"github.com/thermogain/thermogain/pkg/energy"
)

// maxPlausibleCOP bounds the nominal COP a manufacturer can advertise.
const maxPlausibleCOP = 8.0

// ValidateSnapshot checks a project snapshot before calculation. Blocking
// problems return an error wrapping project.ErrInvalidSnapshot; anything the
// engine can work around is returned as a warning.
func ValidateSnapshot(s project.Snapshot) ([]string, error) {
	n, err := s.Normalize(project.DefaultDefaults())
	if err != nil {
		return nil, err
	}

	var warnings []string
	if n.HeatPump == nil {
		warnings = append(warnings, "no heat pump configured")
	}
	if n.Housing.PostalCode == "" {
		warnings = append(warnings, "no postal code, default climate zone assumed")
	}
	if !n.CurrentHeating.Type.Valid() {
		warnings = append(warnings, fmt.Sprintf("unknown heating type %q, energy costs are not escalated", n.CurrentHeating.Type))
	}
	if n.CurrentHeating.Consumption == 0 && n.Housing.Surface == 0 {
		warnings = append(warnings, "neither consumption nor surface is set, current consumption will be zero")
	}
	if n.Costs.Total == 0 {
		warnings = append(warnings, "no investment cost set")
	}
	if !knownTier(n.CurrentHeating.SubscribedPowerKVA) {
		warnings = append(warnings, fmt.Sprintf("subscribed power %d kVA is not a known tier, %d kVA fee used",
			n.CurrentHeating.SubscribedPowerKVA, constants.DefaultSubscribedPowerKVA))
	}
	if n.Costs.Subsidies > n.Costs.Total && n.Costs.Total > 0 {
		warnings = append(warnings, fmt.Sprintf("subsidies %.2f exceed the total cost %.2f", n.Costs.Subsidies, n.Costs.Total))
	}

	if hp := n.HeatPump; hp != nil {
		switch {
		case hp.NominalCOP <= 0:
			warnings = append(warnings, "no nominal COP set, fallback COP used")
		case hp.NominalCOP > maxPlausibleCOP:
			warnings = append(warnings, fmt.Sprintf("nominal COP %.2f is implausibly high", hp.NominalCOP))
		}
		if hp.HandlesDHW && hp.Type == energy.AirAir {
			warnings = append(warnings, "an Air/Air heat pump cannot produce hot water, handlesDhw ignored")
		}
		if hp.Type.IsHydraulic() && hp.Emitter == energy.EmitterUnknown {
			warnings = append(warnings, "no emitter set for a hydraulic heat pump")
		}
		if !knownTier(hp.SubscribedPowerKVA) {
			warnings = append(warnings, fmt.Sprintf("heat pump subscribed power %d kVA is not a known tier, %d kVA fee used",
				hp.SubscribedPowerKVA, constants.DefaultSubscribedPowerKVA))
		}
	}
	return warnings, nil
}

func knownTier(kva int) bool {
	for _, tier := range costs.SubscriptionTiers() {
		if tier == kva {
			return true
		}
	}
	return false
}
