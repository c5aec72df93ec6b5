// Package ledger implements the per-puck, insertion-ordered bounded
// touch history used for goal/assist attribution.
package ledger

import "github.com/ehl-hqm/migo-hqm-server/internal/model"

// MaxEntries is the hard cap on a single puck's touch history.
const MaxEntries = 16

// assistWindow is the maximum number of centiseconds between the
// scorer's first touch and an assist candidate's last touch.
const assistWindow = 1000

// Ledger is the touch history for one puck, newest entry at index 0.
type Ledger struct {
	touches []model.PuckTouch
}

// New returns an empty ledger. Ledgers are created lazily per puck by
// the match controller (Controller.ledgerFor) and cleared on faceoff.
func New() *Ledger {
	return &Ledger{}
}

// Len reports the number of entries currently stored.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.touches)
}

// Clear empties the ledger, as happens on every faceoff (new puck).
func (l *Ledger) Clear() {
	if l == nil {
		return
	}
	l.touches = l.touches[:0]
}

// Add records a touch. A touch by the same player on the same team as
// the current front entry coalesces into it (position, speed and
// last-time refreshed); otherwise the ledger is truncated to 15
// entries and a new entry is pushed to the front.
func (l *Ledger) Add(t model.PuckTouch) {
	if len(l.touches) > 0 {
		front := &l.touches[0]
		if front.PlayerID == t.PlayerID && front.Team == t.Team {
			front.PuckPos = t.PuckPos
			front.PuckSpeed = t.PuckSpeed
			front.LastTime = t.LastTime
			return
		}
	}

	if len(l.touches) > MaxEntries-1 {
		l.touches = l.touches[:MaxEntries-1]
	}
	l.touches = append([]model.PuckTouch{t}, l.touches...)
}

// Attribution is the result of a goal-attribution query.
type Attribution struct {
	Scorer          *model.PlayerID
	Assist          *model.PlayerID
	SpeedAcrossLine float64
	SpeedFromStick  *float64
	LastToucher     *model.PlayerID
}

// Attribute scans the ledger front-to-back to find the goal scorer (the
// first entry on scoringTeam), an optional assist (the next distinct
// scoringTeam player touching within the assist window of the scorer's
// first touch) and the overall last toucher (used for replay camera
// selection). speedAcrossLine is supplied by the caller, since it is
// read from the puck's instantaneous velocity at the moment the net
// event fires rather than from any ledger entry.
func (l *Ledger) Attribute(scoringTeam model.Team, speedAcrossLine float64) Attribution {
	var result Attribution
	result.SpeedAcrossLine = speedAcrossLine

	if l.Len() == 0 {
		return result
	}

	first := l.touches[0].PlayerID
	result.LastToucher = &first

	var scorerFirstTime uint32
	var haveScorer bool

	for i := range l.touches {
		touch := &l.touches[i]
		if touch.Team != scoringTeam {
			continue
		}
		if !haveScorer {
			id := touch.PlayerID
			result.Scorer = &id
			scorerFirstTime = touch.FirstTime
			speed := touch.PuckSpeed
			result.SpeedFromStick = &speed
			haveScorer = true
			continue
		}
		if touch.PlayerID == *result.Scorer {
			scorerFirstTime = touch.FirstTime
			continue
		}
		// First distinct scoring-team player besides the scorer.
		if satSub(scorerFirstTime, touch.LastTime) <= assistWindow {
			id := touch.PlayerID
			result.Assist = &id
		}
		break
	}

	return result
}

// satSub subtracts without wrapping below zero, for elapsed-time math
// where the operands may not be strictly ordered.
func satSub(a, b uint32) uint32 {
	if a < b {
		return 0
	}
	return a - b
}
