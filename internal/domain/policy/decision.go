package policy

import (
	domainerrors "re-view.backend/internal/domain/errors"
)

// Decision is the outcome of a rule: allowed, or denied with a reason.
type Decision struct {
	allowed   bool
	reason    string
	anonymous bool
}

// Allow returns an allowing decision
func Allow() Decision {
	return Decision{allowed: true}
}

// Deny returns a denial for actor a
func Deny(a *Actor, reason string) Decision {
	return Decision{reason: reason, anonymous: !a.IsAuthenticated()}
}

// Allowed reports whether the decision permits the operation
func (d Decision) Allowed() bool { return d.allowed }

// Reason explains a denial
func (d Decision) Reason() string { return d.reason }

// Err converts a denial into UNAUTHORIZED for anonymous callers and
// FORBIDDEN for authenticated ones. Allowed decisions return nil.
func (d Decision) Err() error {
	if d.allowed {
		return nil
	}
	if d.anonymous {
		return domainerrors.Unauthorized(d.reason)
	}
	return domainerrors.Forbidden(d.reason)
}

// allowIf allows when any check holds
func allowIf(a *Actor, reason string, checks ...bool) Decision {
	for _, ok := range checks {
		if ok {
			return Allow()
		}
	}
	return Deny(a, reason)
}

// both allows only when every decision allows, reporting the first denial
func both(decisions ...Decision) Decision {
	for _, d := range decisions {
		if !d.allowed {
			return d
		}
	}
	return Allow()
}
