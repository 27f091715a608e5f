package usecase

import "github.com/user/notes-saas/internal/domain"

// QuotaDecision records whether a tenant may create one more note. Limit and
// Remaining are nil on unlimited plans.
type QuotaDecision struct {
	Allowed   bool
	Current   int
	Limit     *int
	Remaining *int
	Unlimited bool
}

// DecideQuota computes the quota decision for a tenant from its plan and its
// current note count. The pro plan is unbounded. On the free plan the allow
// decision uses strict < against the raw count; Remaining is clamped at zero
// for display only and never feeds back into the decision.
func DecideQuota(plan domain.Plan, current, freeLimit int) QuotaDecision {
	if plan == domain.PlanPro {
		return QuotaDecision{Allowed: true, Current: current, Unlimited: true}
	}

	remaining := freeLimit - current
	if remaining < 0 {
		remaining = 0
	}

	return QuotaDecision{
		Allowed:   current < freeLimit,
		Current:   current,
		Limit:     &freeLimit,
		Remaining: &remaining,
	}
}
