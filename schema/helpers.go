package schema

import "strings"

// MainAgency reduces a full agency code to its top-level agency.
// Sub-agency codes use a dash, e.g. "NIH-NCI" -> "NIH".
func MainAgency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if idx := strings.Index(code, "-"); idx > 0 {
		return code[:idx]
	}
	return code
}

// TierLookup returns the value of the first tier whose bound exceeds amount,
// or fallback when amount is at or beyond every bound.
func TierLookup(tiers []TierValue, amount, fallback float64) float64 {
	for _, t := range tiers {
		if amount < t.UpTo {
			return t.Value
		}
	}
	return fallback
}

// FactorFor looks up an agency-keyed factor by main agency, or fallback when
// the agency is unknown.
func FactorFor(factors map[string]float64, agencyCode string, fallback float64) float64 {
	if v, ok := factors[MainAgency(agencyCode)]; ok {
		return v
	}
	return fallback
}

// FormatTierLabel renders a tier name for human output.
func FormatTierLabel(tier PortfolioTier) string {
	switch tier {
	case ReachTier:
		return "Reach"
	case SafetyTier:
		return "Safety"
	default:
		return "Match"
	}
}
