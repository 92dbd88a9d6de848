package scheduling

import (
	"fmt"
	"time"

	"bloodlink-server/internal/models"
)

// DefaultMinIntervalDays is the minimum whole-blood inter-donation interval.
const DefaultMinIntervalDays = 56

// Deferral describes one active eligibility suspension on a donor.
type Deferral struct {
	Reason  string     `json:"reason"`
	EndDate *time.Time `json:"endDate,omitempty"` // nil for permanent deferrals
}

// Evaluation is the verdict of an eligibility check.
type Evaluation struct {
	Eligible           bool       `json:"eligible"`
	Reasons            []string   `json:"reasons,omitempty"`
	NextEligibleDate   *time.Time `json:"nextEligibleDate,omitempty"`
	TemporaryDeferrals []Deferral `json:"temporaryDeferrals,omitempty"`
	PermanentDeferrals []Deferral `json:"permanentDeferrals,omitempty"`
}

// Evaluator decides whether a donor may donate right now. It is a pure
// read of the profile state passed in; nothing is persisted.
type Evaluator struct {
	MinIntervalDays int
	Now             func() time.Time
}

// NewEvaluator creates an Evaluator with the given inter-donation interval.
// Non-positive values fall back to the 56-day default.
func NewEvaluator(minIntervalDays int) *Evaluator {
	if minIntervalDays <= 0 {
		minIntervalDays = DefaultMinIntervalDays
	}
	return &Evaluator{MinIntervalDays: minIntervalDays, Now: time.Now}
}

// Evaluate applies the eligibility rules in priority order: permanent
// deferral, then active temporary deferral, then the inter-donation
// interval. The first matching rule decides the verdict.
func (e *Evaluator) Evaluate(profile *models.DonorProfile) (Evaluation, error) {
	now := e.Now()

	if profile.IsDeferredPermanent {
		reason := profile.PermanentDeferralReason
		if reason == "" {
			reason = "permanently deferred from donation"
		}
		return Evaluation{
			Eligible:           false,
			Reasons:            []string{reason},
			PermanentDeferrals: []Deferral{{Reason: reason}},
		}, nil
	}

	if profile.IsDeferredTemporary {
		if profile.DeferralEndDate == nil {
			return Evaluation{}, &InvalidInputError{
				Field:  "deferralEndDate",
				Detail: "temporary deferral is set without an end date",
			}
		}
		if profile.DeferralEndDate.After(now) {
			reason := profile.DeferralReason
			if reason == "" {
				reason = "temporarily deferred from donation"
			}
			end := *profile.DeferralEndDate
			return Evaluation{
				Eligible:           false,
				Reasons:            []string{reason},
				NextEligibleDate:   &end,
				TemporaryDeferrals: []Deferral{{Reason: reason, EndDate: &end}},
			}, nil
		}
	}

	if profile.LastDonationDate != nil {
		interval := time.Duration(e.MinIntervalDays) * 24 * time.Hour
		if now.Sub(*profile.LastDonationDate) < interval {
			next := profile.LastDonationDate.AddDate(0, 0, e.MinIntervalDays)
			return Evaluation{
				Eligible: false,
				Reasons: []string{fmt.Sprintf("last donation on %s is within the %d-day minimum interval",
					profile.LastDonationDate.Format("2006-01-02"), e.MinIntervalDays)},
				NextEligibleDate: &next,
			}, nil
		}
	}

	return Evaluation{Eligible: true}, nil
}
