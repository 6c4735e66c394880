// Package tally aggregates votes into counts, percentages and a winner.
// Compute is pure and stable so the same function serves live previews and
// final outcome resolution.
package tally

import (
	"math"

	"agora/domain/core"
	"agora/domain/debate"
)

// Winner is the derived outcome of a tally
type Winner string

const (
	WinnerFor     Winner = "for"
	WinnerAgainst Winner = "against"
	WinnerTie     Winner = "tie"
	WinnerNone    Winner = "" // no votes cast
)

// Result holds the aggregated vote counts and derived figures
type Result struct {
	ForVotes          int     `json:"for_votes"`
	AgainstVotes      int     `json:"against_votes"`
	TotalVotes        int     `json:"total_votes"`
	ForPercentage     float64 `json:"for_percentage"`
	AgainstPercentage float64 `json:"against_percentage"`
	Winner            Winner  `json:"winner,omitempty"`
	Margin            int     `json:"margin"`
}

// Compute aggregates raw counts into a Result. With zero votes the
// percentages are the neutral 50/50 midpoint and there is no winner.
func Compute(forVotes, againstVotes int) Result {
	total := forVotes + againstVotes
	r := Result{
		ForVotes:     forVotes,
		AgainstVotes: againstVotes,
		TotalVotes:   total,
		Margin:       abs(forVotes - againstVotes),
	}
	if total == 0 {
		r.ForPercentage = 50.0
		r.AgainstPercentage = 50.0
		r.Winner = WinnerNone
		return r
	}
	r.ForPercentage = percentage(forVotes, total)
	r.AgainstPercentage = percentage(againstVotes, total)
	switch {
	case forVotes > againstVotes:
		r.Winner = WinnerFor
	case againstVotes > forVotes:
		r.Winner = WinnerAgainst
	default:
		r.Winner = WinnerTie
	}
	return r
}

// Side converts a decisive winner into a debate side
func (w Winner) Side() (debate.Side, bool) {
	switch w {
	case WinnerFor:
		return debate.SideFor, true
	case WinnerAgainst:
		return debate.SideAgainst, true
	default:
		return "", false
	}
}

// ResolveWinner determines the side a debate completes with. A tie (or an
// empty tally) requires an explicit override. When strict, an override that
// contradicts a decisive tally is rejected rather than silently applied.
func ResolveWinner(r Result, override *debate.Side, strict bool) (debate.Side, error) {
	derived, decisive := r.Winner.Side()
	if override == nil {
		if !decisive {
			return "", core.ErrTiedOutcome
		}
		return derived, nil
	}
	if *override != debate.SideFor && *override != debate.SideAgainst {
		return "", core.NewValidationError("winner_side", "must be a valid side")
	}
	if strict && decisive && *override != derived {
		return "", core.ErrWinnerContradictsTally
	}
	return *override, nil
}

// percentage rounds to one decimal place
func percentage(part, total int) float64 {
	return math.Round(float64(part)/float64(total)*1000) / 10
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
