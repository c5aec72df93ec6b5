// Package passtrack implements the single-pass-at-a-time tracker: a
// new Pass is installed on every puck touch, and line-crossing events
// advance its recorded origin monotonically until the next touch
// replaces it outright.
package passtrack

import "github.com/ehl-hqm/migo-hqm-server/internal/model"

// Tracker holds the single live Pass for one puck, or nil if the puck
// has not yet been touched since the last faceoff.
type Tracker struct {
	pass *model.Pass
}

func New() *Tracker { return &Tracker{} }

// Current returns the live pass, or nil.
func (t *Tracker) Current() *model.Pass { return t.pass }

// Touch installs a brand-new pass, replacing whatever was live before.
// side is captured once (by the caller, from the puck's position at
// the moment of touch) and never recomputed for the life of the pass.
func (t *Tracker) Touch(team model.Team, side model.Side, player model.PlayerID) {
	t.pass = model.NewPass(team, side, player)
}

// SideFromX is the Left/Right rule applied to a puck's x coordinate:
// Left if x is at or left of the rink's midline, else Right.
func SideFromX(puckX, rinkWidth float64) model.Side {
	if puckX > rinkWidth/2 {
		return model.Right
	}
	return model.Left
}

// Advance records that the puck has reached pos, but only takes effect
// for the team that owns the live pass, and only sets the origin once
// (AdvanceFrom is itself idempotent after the first call).
func (t *Tracker) Advance(team model.Team, pos model.PassPosition) {
	if t.pass == nil || t.pass.Team != team {
		return
	}
	t.pass.AdvanceFrom(pos)
}

// Clear drops the live pass, as happens on faceoff.
func (t *Tracker) Clear() { t.pass = nil }
