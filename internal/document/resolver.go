package document

// CurrentTier computes the set of signatories currently eligible to act.
//
// Only PENDING signatories are considered. If any of them sits in the
// parallel tier (order 0) the whole order-0 subset is returned, regardless of
// higher orders also present — order 0 means "no sequencing constraint" and
// always resolves first. Otherwise the subset sharing the lowest pending
// positive order is returned; those act as a parallel sub-group.
//
// Pure function: no side effects, input is never modified. An empty result
// means either nothing is pending or the caller must run the completion check.
func CurrentTier(signatories []DocumentSignatory) []DocumentSignatory {
	var pending []DocumentSignatory
	for _, s := range signatories {
		if s.Status == SignatoryPending {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	minOrder := pending[0].Order
	for _, s := range pending[1:] {
		if s.Order < minOrder {
			minOrder = s.Order
		}
	}

	tier := make([]DocumentSignatory, 0, len(pending))
	for _, s := range pending {
		if s.Order == minOrder {
			tier = append(tier, s)
		}
	}
	return tier
}

// IsReady reports whether the given user is in the current tier and may
// therefore sign or reject right now.
func IsReady(signatories []DocumentSignatory, userID string) bool {
	for _, s := range CurrentTier(signatories) {
		if s.UserID == userID {
			return true
		}
	}
	return false
}
