// Package server wires the session registry, the match controller and
// the wire codec into a running UDP game server.
//
// The rigid-body physics/collision simulation is treated throughout
// this codebase as an external collaborator (see package simevent):
// nothing here attempts real puck-stick collision, board bounces or
// skater-on-skater contact. World is a deliberately small stand-in
// for that collaborator — straight-line dead reckoning and a handful
// of geometric thresholds — that exists only so match.Controller has
// something concrete to query and the wire codec has object positions
// to snapshot. It is not a physics engine.
package server

import (
	"math"
	"sync"

	"github.com/ehl-hqm/migo-hqm-server/internal/faceoff"
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/rink"
	"github.com/ehl-hqm/migo-hqm-server/internal/simevent"
	"github.com/ehl-hqm/migo-hqm-server/internal/wire"
)

const (
	lineWidth       = 0.5
	goalLineInset   = 4.0  // IIHF rule 17iv, mirrors faceoff.goalLineDistance
	netDepth        = 1.5  // how far past the goal line counts as "in"
	netHalfWidth    = 3.0  // crease half-width a puck must stay within to count as a net entry
	skaterMaxSpeed  = 8.0  // rink units/sec, an arcade-plausible skating speed
	skaterTurnRate  = 2.5  // radians/sec
	puckCarryRadius = 1.5  // distance within which a skater "controls" the puck
	puckFriction    = 0.97 // per-tick velocity decay once the puck is loose
)

// skaterState is one on-ice player's tracked pose.
type skaterState struct {
	obj     model.ObjectIndex
	pos     rink.Vec3
	heading float64 // radians, 0 faces the rink's -Z direction
}

// puckState is the single warmup-period puck this stand-in drives.
// Multiple simultaneous pucks (model.MatchConfig.WarmupPuckCount > 1)
// are not modelled by this placeholder.
type puckState struct {
	obj          model.ObjectIndex
	pos          rink.Vec3
	vel          rink.Vec3
	toucher      model.Team
	toucherKnown bool
	lastZ        float64 // raw rink Z on the previous tick, for edge detection
	inNet        bool    // whether the puck was already inside the net on the previous tick
}

// World is the minimal match.World/rules.World implementation wired
// into the running server in place of a real physics collaborator.
type World struct {
	mu     sync.Mutex
	dims   rink.Dimensions
	roster func(model.Team) []model.PlayerID

	skaters  map[model.PlayerID]*skaterState
	nextObj  model.ObjectIndex
	freeObjs []model.ObjectIndex

	puck puckState
}

// NewWorld returns a World ready for a warmup faceoff. roster is
// typically *session.Registry.TeamRoster.
func NewWorld(dims rink.Dimensions, roster func(model.Team) []model.PlayerID) *World {
	return &World{
		dims:    dims,
		roster:  roster,
		skaters: map[model.PlayerID]*skaterState{},
		nextObj: 1, // object 0 is reserved for the puck
		puck: puckState{
			pos:   rink.Vec3{X: dims.Width / 2, Y: 0, Z: dims.Length / 2},
			lastZ: dims.Length / 2,
		},
	}
}

// Spawn assigns player an on-ice object slot, if one is available.
// Skaters share the codec's 32 object slots with the puck; a player
// beyond that budget is reported unspawned and stays bench-only.
func (w *World) Spawn(player model.PlayerID) (model.ObjectIndex, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if s, ok := w.skaters[player]; ok {
		return s.obj, true
	}

	var obj model.ObjectIndex
	if n := len(w.freeObjs); n > 0 {
		obj = w.freeObjs[n-1]
		w.freeObjs = w.freeObjs[:n-1]
	} else {
		if int(w.nextObj) >= wire.MaxObjectSlots {
			return 0, false
		}
		obj = w.nextObj
		w.nextObj++
	}
	w.skaters[player] = &skaterState{obj: obj, pos: rink.Vec3{X: w.dims.Width / 2, Y: 0, Z: w.dims.Length / 2}}
	return obj, true
}

// Despawn removes player's on-ice object, returning its slot to the
// free list so a later Spawn can reuse it instead of growing nextObj
// without bound.
func (w *World) Despawn(player model.PlayerID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.skaters[player]
	if !ok {
		return
	}
	delete(w.skaters, player)
	w.freeObjs = append(w.freeObjs, s.obj)
}

// Dimensions implements match.World.
func (w *World) Dimensions() rink.Dimensions {
	return w.dims
}

// Objects renders the current positions into the fixed 32-slot layout
// the wire codec snapshots every tick.
func (w *World) Objects() [wire.MaxObjectSlots]wire.Object {
	w.mu.Lock()
	defer w.mu.Unlock()

	var objs [wire.MaxObjectSlots]wire.Object
	objs[w.puck.obj] = wire.Object{Present: true, Kind: wire.ObjectPuck, Pos: w.puck.pos}
	for _, s := range w.skaters {
		if int(s.obj) >= wire.MaxObjectSlots {
			continue
		}
		objs[s.obj] = wire.Object{
			Present:  true,
			Kind:     wire.ObjectSkater,
			Pos:      s.pos,
			Rot:      [2]float64{s.heading, 0},
			StickPos: s.pos,
			HeadRot:  s.heading,
			BodyRot:  s.heading,
		}
	}
	return objs
}

// TeamRoster implements rules.World by delegating to the session
// registry's roster lookup.
func (w *World) TeamRoster(team model.Team) []model.PlayerID {
	return w.roster(team)
}

// SkaterFeet implements rules.World.
func (w *World) SkaterFeet(player model.PlayerID) (rink.Vec3, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.skaters[player]
	if !ok {
		return rink.Vec3{}, false
	}
	return s.pos, true
}

// offensiveLine returns team's attacking blue line: the normal points
// back toward team's own half, so rink.IsPastLine reports true once a
// skater (or the puck) has crossed into team's offensive zone. Red
// attacks toward Z=0 (see package faceoff); Blue attacks toward
// Z=dims.Length.
func (w *World) offensiveLine(team model.Team) rink.Line {
	if team == model.Red {
		return rink.Line{Point: rink.Vec3{Z: w.dims.BlueLineDistance}, Normal: rink.Vec3{Z: 1}, Width: lineWidth}
	}
	return rink.Line{Point: rink.Vec3{Z: w.dims.Length - w.dims.BlueLineDistance}, Normal: rink.Vec3{Z: -1}, Width: lineWidth}
}

// OffensiveLine implements rules.World.
func (w *World) OffensiveLine(team model.Team) rink.Line {
	return w.offensiveLine(team)
}

// MidLine implements rules.World: the center red line, with the same
// normal sign convention as OffensiveLine so "past" consistently means
// "further into the attack".
func (w *World) MidLine(team model.Team) rink.Line {
	normalZ := 1.0
	if team == model.Blue {
		normalZ = -1.0
	}
	return rink.Line{Point: rink.Vec3{Z: w.dims.Length / 2}, Normal: rink.Vec3{Z: normalZ}, Width: lineWidth}
}

// defensiveLine is team's own blue line — physically the same line as
// the opposing team's offensive line.
func (w *World) defensiveLine(team model.Team) rink.Line {
	return w.offensiveLine(team.Other())
}

// PuckSide implements rules.World, following the same left/right rule
// package passtrack uses for a freshly touched pass.
func (w *World) PuckSide(model.ObjectIndex) model.Side {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.puck.pos.X > w.dims.Width/2 {
		return model.Right
	}
	return model.Left
}

// PuckLinearSpeed implements match.World.
func (w *World) PuckLinearSpeed(model.ObjectIndex) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return math.Sqrt(w.puck.vel.Dot(w.puck.vel))
}

// ApplyFaceoff implements match.World: every placed skater and the
// puck snap directly to their resolved faceoff positions, with
// velocity zeroed and puck possession cleared.
func (w *World) ApplyFaceoff(result faceoff.Result) {
	w.mu.Lock()
	defer w.mu.Unlock()

	place := func(placements map[model.PlayerID]faceoff.PlayerPlacement) {
		for player, p := range placements {
			s, ok := w.skaters[player]
			if !ok {
				continue
			}
			s.pos = p.Pos
			s.heading = p.FacingY
		}
	}
	place(result.RedPlacements)
	place(result.BluePlacements)

	w.puck = puckState{obj: w.puck.obj, pos: result.PuckSpawn, lastZ: result.PuckSpawn.Z}
}

// normalizedZ maps a rink Z coordinate onto team's own-goal-to-
// opponent's-goal axis, so both teams' thresholds read the same way:
// 0 at team's own goal line, dims.Length at the opponent's.
func (w *World) normalizedZ(team model.Team, z float64) float64 {
	if team == model.Red {
		return w.dims.Length - z
	}
	return z
}

// Tick integrates every spawned skater's position from its latest
// input and the puck's possession/drift, returning the simulation
// events the rule machines should react to this tick. dt is in
// seconds.
func (w *World) Tick(dt float64, inputs map[model.PlayerID]wire.PlayerInput, now uint32) []simevent.Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	for player, s := range w.skaters {
		in, ok := inputs[player]
		if !ok {
			continue
		}
		s.heading += float64(in.Turn) * skaterTurnRate * dt
		speed := float64(in.ForwardBack) * skaterMaxSpeed
		s.pos.X += speed * math.Sin(s.heading) * dt
		s.pos.Z += speed * math.Cos(s.heading) * dt
		s.pos.X = clamp(s.pos.X, 0, w.dims.Width)
		s.pos.Z = clamp(s.pos.Z, 0, w.dims.Length)
	}

	var events []simevent.Event

	if carrier, player, team := w.nearestCarrier(); carrier != nil {
		if !w.puck.toucherKnown || w.puck.toucher != team {
			events = append(events, simevent.Event{
				Kind:       simevent.PuckTouch,
				Team:       team,
				Player:     player,
				Skater:     carrier.obj,
				PlayerTeam: team,
				PuckPos:    [3]float64{w.puck.pos.X, w.puck.pos.Y, w.puck.pos.Z},
				PuckSpeed:  math.Sqrt(w.puck.vel.Dot(w.puck.vel)),
				Time:       now,
			})
		}
		w.puck.toucher = team
		w.puck.toucherKnown = true
		stickX := math.Sin(carrier.heading) * 1.0
		stickZ := math.Cos(carrier.heading) * 1.0
		w.puck.pos = rink.Vec3{X: carrier.pos.X + stickX, Y: 0, Z: carrier.pos.Z + stickZ}
		w.puck.vel = rink.Vec3{}
	} else {
		w.puck.vel.X *= puckFriction
		w.puck.vel.Z *= puckFriction
		w.puck.pos.X = clamp(w.puck.pos.X+w.puck.vel.X*dt, 0, w.dims.Width)
		w.puck.pos.Z = clamp(w.puck.pos.Z+w.puck.vel.Z*dt, 0, w.dims.Length)
	}

	if w.puck.toucherKnown {
		events = append(events, w.zoneEvents(now)...)
	}

	return events
}

// nearestCarrier reports the skater (if any) within puckCarryRadius of
// the puck, along with their player id and team.
func (w *World) nearestCarrier() (*skaterState, model.PlayerID, model.Team) {
	var (
		best     *skaterState
		bestID   model.PlayerID
		bestTeam model.Team
		bestDist = math.MaxFloat64
	)
	for _, team := range []model.Team{model.Red, model.Blue} {
		for _, player := range w.roster(team) {
			s, ok := w.skaters[player]
			if !ok {
				continue
			}
			d := s.pos.Sub(w.puck.pos)
			dist := math.Sqrt(d.Dot(d))
			if dist <= puckCarryRadius && dist < bestDist {
				best, bestID, bestTeam, bestDist = s, player, team, dist
			}
		}
	}
	return best, bestID, bestTeam
}

// zoneEvents derives the puck's line-crossing and net-entry events
// from its normalized-Z progress along the possessing team's
// attacking axis, edge-triggered against the previous tick's raw Z
// reinterpreted under the current toucher (so a mid-flight change of
// possession doesn't itself read as a jump).
func (w *World) zoneEvents(now uint32) []simevent.Event {
	team := w.puck.toucher
	prev := w.normalizedZ(team, w.puck.lastZ)
	cur := w.normalizedZ(team, w.puck.pos.Z)
	w.puck.lastZ = w.puck.pos.Z

	var out []simevent.Event
	emit := func(kind simevent.Kind) {
		out = append(out, simevent.Event{Kind: kind, Team: team, Puck: w.puck.obj, Time: now})
	}

	ownBlue := w.dims.BlueLineDistance
	center := w.dims.Length / 2
	oppBlue := w.dims.Length - w.dims.BlueLineDistance
	goalLine := w.dims.Length - goalLineInset

	crossed := func(threshold float64) bool { return prev < threshold && cur >= threshold }

	if crossed(ownBlue) {
		emit(simevent.PuckReachedDefensiveLine)
		emit(simevent.PuckPassedDefensiveLine)
	}
	if crossed(center) {
		emit(simevent.PuckReachedCenterLine)
		emit(simevent.PuckPassedCenterLine)
	}
	if crossed(oppBlue) {
		emit(simevent.PuckReachedOffensiveZone)
		emit(simevent.PuckEnteredOffensiveZone)
	}
	if crossed(goalLine) {
		emit(simevent.PuckPassedGoalLine)
	}

	inNet := cur >= goalLine+netDepth && math.Abs(w.puck.pos.X-w.dims.Width/2) <= netHalfWidth
	if inNet && !w.puck.inNet {
		emit(simevent.PuckEnteredNet)
	}
	w.puck.inNet = inNet

	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
