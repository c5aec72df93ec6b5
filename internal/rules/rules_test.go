package rules

import (
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/rink"
)

// fakeWorld is a minimal, hand-populated World for exercising the rule
// machines without a physics collaborator.
type fakeWorld struct {
	roster    map[model.Team][]model.PlayerID
	feet      map[model.PlayerID]rink.Vec3
	offensive map[model.Team]rink.Line
	mid       map[model.Team]rink.Line
	puckSide  model.Side
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		roster:    map[model.Team][]model.PlayerID{},
		feet:      map[model.PlayerID]rink.Vec3{},
		offensive: map[model.Team]rink.Line{},
		mid:       map[model.Team]rink.Line{},
	}
}

func (w *fakeWorld) TeamRoster(team model.Team) []model.PlayerID { return w.roster[team] }

func (w *fakeWorld) SkaterFeet(player model.PlayerID) (rink.Vec3, bool) {
	v, ok := w.feet[player]
	return v, ok
}

func (w *fakeWorld) OffensiveLine(team model.Team) rink.Line { return w.offensive[team] }
func (w *fakeWorld) MidLine(team model.Team) rink.Line       { return w.mid[team] }
func (w *fakeWorld) PuckSide(model.ObjectIndex) model.Side   { return w.puckSide }

// put places player at a given distance past (positive) or before
// (negative) the line's leading edge, along the line's normal.
func (w *fakeWorld) put(player model.PlayerID, line rink.Line, pastAmount float64) {
	leadingEdge := -(line.Width / 2.0)
	offset := leadingEdge - pastAmount
	w.feet[player] = rink.Vec3{
		X: line.Point.X + line.Normal.X*offset,
		Y: line.Point.Y + line.Normal.Y*offset,
		Z: line.Point.Z + line.Normal.Z*offset,
	}
}

type fakeEmitter struct {
	messages []string
}

func (e *fakeEmitter) Chat(message string) { e.messages = append(e.messages, message) }

func (e *fakeEmitter) last() string {
	if len(e.messages) == 0 {
		return ""
	}
	return e.messages[len(e.messages)-1]
}

type fakeCaller struct {
	spots []model.FaceoffSpot
}

func (c *fakeCaller) CallFaceoff(spot model.FaceoffSpot) { c.spots = append(c.spots, spot) }

func (c *fakeCaller) last() (model.FaceoffSpot, bool) {
	if len(c.spots) == 0 {
		return model.FaceoffSpot{}, false
	}
	return c.spots[len(c.spots)-1], true
}

func blueLine(x float64) rink.Line {
	return rink.Line{Point: rink.Vec3{X: x}, Normal: rink.Vec3{X: 1}, Width: 0.5}
}

func passFrom(team model.Team, side model.Side, player model.PlayerID, from model.PassPosition) *model.Pass {
	p := model.NewPass(team, side, player)
	p.AdvanceFrom(from)
	return p
}
