package score

import "github.com/blkoutuk/research-agent/internal/config"

// Decision routes a scored candidate. Domain-policy rejection happens before
// scoring and never reaches the router.
type Decision int

const (
	Reject Decision = iota
	AutoAccept
	NeedsOracleReview
)

func (d Decision) String() string {
	switch d {
	case Reject:
		return "reject"
	case AutoAccept:
		return "auto-accept"
	case NeedsOracleReview:
		return "needs-oracle-review"
	default:
		return "unknown"
	}
}

// Route places a keyword score into a band. Scores below the floor are
// rejected outright, scores at or above the high-confidence threshold skip
// the oracle, and everything between is deferred to oracle review.
func Route(score int, bands config.Bands) Decision {
	switch {
	case score < bands.Floor:
		return Reject
	case score >= bands.HighConfidence:
		return AutoAccept
	default:
		return NeedsOracleReview
	}
}
