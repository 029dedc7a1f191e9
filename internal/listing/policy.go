package listing

import (
	"fmt"
	"slices"
	"strings"
)

// Policy decides what happens when a single release cannot be included in the listing.
type Policy string

type Policies []Policy

const (
	// PolicySkip logs a warning, records the release as skipped and continues.
	PolicySkip Policy = "skip"

	// PolicyAbort fails the whole build with the first failure in release order.
	PolicyAbort Policy = "abort"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicySkip

func AllowedPolicies() Policies {
	policies := []Policy{
		PolicyAbort,
		PolicySkip,
	}

	slices.Sort(policies)

	return policies
}

// String implements fmt.Stringer for a collection of policies,
// converting them to a comma separated string.
func (p *Policies) String() string {
	ps := *p
	out := make([]string, len(ps))
	for i := range ps {
		out[i] = ps[i].String()
	}
	return strings.Join(out, ", ")
}

// String implements fmt.Stringer for a policy.
// This is also required by Cobra as part of implementing flag.Value.
func (p *Policy) String() string {
	return strings.ToLower(string(*p))
}

// Set is used by Cobra to set the policy value from a string.
// This is also required by Cobra as part of implementing flag.Value.
func (p *Policy) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	allowed := AllowedPolicies()

	for _, a := range allowed {
		if string(a) == v {
			*p = Policy(v)
			return nil
		}
	}

	return fmt.Errorf("invalid policy '%s', must be one of %v", v, allowed.String())
}

// Type is used by Cobra to get the 'type' of a policy for display purposes.
// This is also required by Cobra as part of implementing flag.Value.
func (p *Policy) Type() string {
	return "policy"
}
