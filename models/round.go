package models

import "time"

type RoundStatus string

const (
	RoundNotStarted      RoundStatus = "NOT_STARTED"
	RoundInProgress      RoundStatus = "IN_PROGRESS"
	RoundAwaitingResults RoundStatus = "AWAITING_RESULTS"
	RoundCompleted       RoundStatus = "COMPLETED"
)

// DeriveRoundStatus computes the round state from its matches. Deadlines are evaluated
// against now, so a round can move to COMPLETED without any write.
func DeriveRoundStatus(def *RoundDefinition, matches []*Match, now time.Time) RoundStatus {
	if len(matches) == 0 {
		return RoundNotStarted
	}

	started := def.IsStarted()
	allDone := true
	playing := false
	games := 0
	for _, m := range matches {
		if m.IsBye() {
			continue
		}
		games++
		if m.IsStarted() || m.IsResolved() {
			started = true
		}
		switch {
		case m.IsResolved(), m.IsOverdue(now):
		case !m.IsStarted():
			allDone = false
			playing = true
		default:
			allDone = false
			if m.EffectiveStatus(now) == MatchInProgress {
				playing = true
			}
		}
	}

	if games == 0 {
		return RoundCompleted
	}
	if !started {
		return RoundNotStarted
	}
	if allDone {
		return RoundCompleted
	}
	if playing {
		return RoundInProgress
	}
	return RoundAwaitingResults
}

// IsRoundFullyResolved is stricter than RoundCompleted: every match needs a recorded result.
func IsRoundFullyResolved(matches []*Match) bool {
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if !m.IsResolved() {
			return false
		}
	}
	return true
}
