package viability

// Tier is the viability classification; lower values are better.
type Tier int

const (
	TierHighlyViable Tier = iota + 1
	TierViable
	TierModeratelyViable
	TierPoorlyViable
)

// String returns the stable identifier of the tier.
func (t Tier) String() string {
	switch t {
	case TierHighlyViable:
		return "highly_viable"
	case TierViable:
		return "viable"
	case TierModeratelyViable:
		return "moderately_viable"
	case TierPoorlyViable:
		return "poorly_viable"
	default:
		return "unknown"
	}
}

// Rating is a tier plus its presentation data.
type Rating struct {
	Tier        Tier   `json:"tier"`
	Key         string `json:"key"`
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

var ratings = map[Tier]Rating{
	TierHighlyViable: {
		Label:       "Highly viable",
		Color:       "#27ae60",
		Description: "Solar covers most of the consumption and the investment pays back within three years.",
	},
	TierViable: {
		Label:       "Viable",
		Color:       "#2ecc71",
		Description: "Solar covers a majority of the consumption and the investment pays back within five years.",
	},
	TierModeratelyViable: {
		Label:       "Moderately viable",
		Color:       "#f39c12",
		Description: "Solar covers a meaningful share of the consumption, but returns depend on the Bitcoin price.",
	},
	TierPoorlyViable: {
		Label:       "Poorly viable",
		Color:       "#e74c3c",
		Description: "Solar covers little of the consumption; consider more panels or more efficient equipment.",
	},
}

// RatingFor returns the presentation data of a tier.
func RatingFor(t Tier) Rating {
	r := ratings[t]
	r.Tier = t
	r.Key = t.String()
	return r
}

// Rate classifies a (coverage %, payback months) pair. Rules are evaluated in
// order and the first match wins, so every pair maps to exactly one tier.
func Rate(coveragePct, paybackMonths float64) Rating {
	switch {
	case coveragePct >= HighCoverageThreshold && paybackMonths <= HighPaybackThreshold:
		return RatingFor(TierHighlyViable)
	case coveragePct >= ViableCoverageThreshold && paybackMonths <= ViablePaybackThreshold:
		return RatingFor(TierViable)
	case coveragePct >= ModerateCoverageThreshold:
		return RatingFor(TierModeratelyViable)
	default:
		return RatingFor(TierPoorlyViable)
	}
}
