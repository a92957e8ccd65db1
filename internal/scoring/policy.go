package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned by Parse for unrecognized policy names.
var ErrUnknownPolicy = errors.New("unknown scoring policy")

const (
	// BaseReward is the per-pair reward of flat policies and the per-card
	// ceiling of decayed policies.
	BaseReward = 10

	// MismatchPenalty is subtracted on a mismatch by penalty policies.
	MismatchPenalty = 2
)

// Policy decides how a resolved pair changes the score.
type Policy struct {
	name    string
	decayed bool
	penalty int
}

var (
	Decayed        = Policy{name: "decayed", decayed: true}
	DecayedPenalty = Policy{name: "decayed-penalty", decayed: true, penalty: MismatchPenalty}
	Flat           = Policy{name: "flat"}
	FlatPenalty    = Policy{name: "flat-penalty", penalty: MismatchPenalty}
)

var policies = []Policy{Decayed, DecayedPenalty, Flat, FlatPenalty}

// Default returns the policy used when none is configured.
func Default() Policy {
	return Decayed
}

// Names lists every known policy name.
func Names() []string {
	out := make([]string, len(policies))
	for i, p := range policies {
		out[i] = p.name
	}
	return out
}

// Parse looks up a policy by name. An empty name yields the default.
func Parse(name string) (Policy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Default(), nil
	}
	for _, p := range policies {
		if p.name == name {
			return p, nil
		}
	}
	return Policy{}, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownPolicy, name, strings.Join(Names(), ", "))
}

// Name returns the policy's configuration name.
func (p Policy) Name() string {
	if p.name == "" {
		return Decayed.name
	}
	return p.name
}

func (p Policy) String() string { return p.Name() }

// CardReward is the decayed reward for one card revealed flipCount times.
func CardReward(flipCount int) int {
	return max(BaseReward-flipCount+1, 1)
}

// MatchReward returns the score gained for a matched pair whose cards were
// revealed a and b times.
func (p Policy) MatchReward(a, b int) int {
	if p.decayed || p.name == "" {
		return CardReward(a) + CardReward(b)
	}
	return BaseReward
}

// Penalty returns the score lost on a mismatch.
func (p Policy) Penalty() int {
	return p.penalty
}
