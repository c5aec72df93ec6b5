// Package session implements the fixed-capacity connection registry:
// per-slot identity, team placement, inactivity and team-switch
// cooldown bookkeeping, and the shared append-only chat/event log each
// session tails independently.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ehl-hqm/migo-hqm-server/internal/faceoff"
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
)

// DefaultCapacity is the slot-vector size absent an explicit override.
const DefaultCapacity = 64

// InactivityTimeout is the number of ticks without an update before a
// session is dropped (5 s at 100 Hz).
const InactivityTimeout = 500

// TeamSwitchCooldown is the number of ticks a player must wait after
// leaving the ice before joining a team again.
const TeamSwitchCooldown = 500

// Hand is a player's stick-handed preference.
type Hand uint8

const (
	HandLeft Hand = iota
	HandRight
)

// Session is one connection's state, addressed by its slot index (the
// wire protocol's "player index").
type Session struct {
	Slot     int
	Identity string
	Address  string

	Team         model.Team
	HasSkater    bool
	SkaterObject model.ObjectIndex

	PacketIndex   uint32
	MessageCursor uint32
	ChatRep       uint8
	LastGameID    uint32

	InactivityTicks    uint32
	TeamSwitchCooldown uint32

	Admin bool
	Muted bool
	Hand  Hand

	PreferredPosition string
}

var (
	// ErrFull is returned by Join when every slot is occupied.
	ErrFull = errors.New("session: registry full")
	// ErrJoinDisabled is returned by Join when the operator has
	// disabled new connections.
	ErrJoinDisabled = errors.New("session: joining is disabled")
	// ErrBanned is returned by Join when the connecting fingerprint
	// matches an entry on the ban list.
	ErrBanned = errors.New("session: banned")
	// ErrNoSuchSlot is returned by any per-slot operation given an
	// empty or out-of-range slot.
	ErrNoSuchSlot = errors.New("session: no such slot")
)

// Registry is the fixed-capacity slot vector plus the shared outbound
// message log every session tails independently.
type Registry struct {
	slots       []*Session
	joinEnabled bool
	banned      map[uuid.UUID]bool
	chatMuted   bool

	log Log
}

// NewRegistry returns an empty registry with joining enabled.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		slots:       make([]*Session, capacity),
		joinEnabled: true,
		banned:      map[uuid.UUID]bool{},
	}
}

// Fingerprint derives the stable ban-list identity for a connecting
// player: a name-based UUID over their claimed identity and remote
// address, so a ban survives a reconnect from the same machine without
// requiring any persisted account system.
func Fingerprint(identity, address string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(identity+"@"+address))
}

// Join admits a new connection into the first free slot, subject to
// capacity, the join-enabled flag and the ban list. It returns the
// assigned slot and the Session installed there.
func (r *Registry) Join(identity, address string) (int, *Session, error) {
	if !r.joinEnabled {
		return 0, nil, ErrJoinDisabled
	}
	if r.banned[Fingerprint(identity, address)] {
		return 0, nil, ErrBanned
	}

	for i, s := range r.slots {
		if s == nil {
			sess := &Session{
				Slot:              i,
				Identity:          identity,
				Address:           address,
				Team:              model.Spec,
				PreferredPosition: "C",
			}
			r.slots[i] = sess
			return i, sess, nil
		}
	}
	return 0, nil, ErrFull
}

// Leave frees slot, whether the departure was requested by the client
// or forced by inactivity.
func (r *Registry) Leave(slot int) {
	if slot < 0 || slot >= len(r.slots) {
		return
	}
	r.slots[slot] = nil
}

// Session returns the session at slot, if any.
func (r *Registry) Session(slot int) (*Session, bool) {
	if slot < 0 || slot >= len(r.slots) {
		return nil, false
	}
	s := r.slots[slot]
	return s, s != nil
}

// SetTeam moves a session onto Red/Blue (with the skater object the
// caller has already spawned) or onto Spec, which despawns the skater
// and starts the team-switch cooldown. A cooldown still running blocks
// a move onto Red or Blue.
func (r *Registry) SetTeam(slot int, team model.Team, skater model.ObjectIndex) error {
	sess, ok := r.Session(slot)
	if !ok {
		return ErrNoSuchSlot
	}
	if team != model.Spec && sess.TeamSwitchCooldown > 0 {
		return fmt.Errorf("session: slot %d is on cooldown for %d more ticks", slot, sess.TeamSwitchCooldown)
	}

	if team == model.Spec {
		sess.HasSkater = false
		sess.TeamSwitchCooldown = TeamSwitchCooldown
	} else {
		sess.HasSkater = true
		sess.SkaterObject = skater
	}
	sess.Team = team
	return nil
}

// Tick advances every occupied slot's inactivity counter and
// team-switch cooldown by one, returning the slots that just crossed
// the inactivity timeout (the caller is expected to Leave them).
func (r *Registry) Tick() []int {
	var timedOut []int
	for i, s := range r.slots {
		if s == nil {
			continue
		}
		s.InactivityTicks++
		if s.TeamSwitchCooldown > 0 {
			s.TeamSwitchCooldown--
		}
		if s.InactivityTicks >= InactivityTimeout {
			timedOut = append(timedOut, i)
		}
	}
	return timedOut
}

// Touch resets slot's inactivity counter, as happens on every
// datagram received from it.
func (r *Registry) Touch(slot int) {
	if sess, ok := r.Session(slot); ok {
		sess.InactivityTicks = 0
	}
}

// Capacity returns the fixed number of slots the registry was built
// with.
func (r *Registry) Capacity() int {
	return len(r.slots)
}

// SetJoinEnabled toggles whether Join admits new connections.
func (r *Registry) SetJoinEnabled(enabled bool) {
	r.joinEnabled = enabled
}

// Ban adds identity+address's fingerprint to the ban list.
func (r *Registry) Ban(identity, address string) {
	r.banned[Fingerprint(identity, address)] = true
}

// ClearBans empties the ban list.
func (r *Registry) ClearBans() {
	r.banned = map[uuid.UUID]bool{}
}

// Find returns the first occupied slot whose identity matches name.
func (r *Registry) Find(name string) (*Session, bool) {
	for _, s := range r.slots {
		if s != nil && s.Identity == name {
			return s, true
		}
	}
	return nil, false
}

// SetAdmin grants or revokes operator privileges on slot.
func (r *Registry) SetAdmin(slot int, admin bool) error {
	sess, ok := r.Session(slot)
	if !ok {
		return ErrNoSuchSlot
	}
	sess.Admin = admin
	return nil
}

// SetMuted sets or clears slot's individual mute flag.
func (r *Registry) SetMuted(slot int, muted bool) error {
	sess, ok := r.Session(slot)
	if !ok {
		return ErrNoSuchSlot
	}
	sess.Muted = muted
	return nil
}

// SetChatMuted toggles the server-wide mute: while set, HandleChat
// drops every line regardless of an individual session's mute flag.
func (r *Registry) SetChatMuted(muted bool) {
	r.chatMuted = muted
}

// SetHand sets slot's stick-handed preference.
func (r *Registry) SetHand(slot int, hand Hand) error {
	sess, ok := r.Session(slot)
	if !ok {
		return ErrNoSuchSlot
	}
	sess.Hand = hand
	return nil
}

// SetPreferredPosition records slot's preferred faceoff position.
func (r *Registry) SetPreferredPosition(slot int, position string) error {
	sess, ok := r.Session(slot)
	if !ok {
		return ErrNoSuchSlot
	}
	sess.PreferredPosition = position
	return nil
}

// Kick removes slot, as Leave does; it reports whether a session was
// actually occupying the slot, so the caller can distinguish a kick
// of an empty slot from a real one.
func (r *Registry) Kick(slot int) bool {
	sess, ok := r.Session(slot)
	if !ok {
		return false
	}
	_ = sess
	r.Leave(slot)
	return true
}

// FaceoffRoster implements match.Rosters: every skating (non-Spec)
// player currently on team, in slot order, with their preferred
// faceoff position.
func (r *Registry) FaceoffRoster(team model.Team) []faceoff.RosterEntry {
	var roster []faceoff.RosterEntry
	for _, s := range r.slots {
		if s == nil || s.Team != team {
			continue
		}
		roster = append(roster, faceoff.RosterEntry{
			Player:    model.PlayerID(s.Slot),
			Preferred: s.PreferredPosition,
		})
	}
	return roster
}

// TeamRoster implements rules.World's roster lookup: every skating
// (non-Spec) player currently on team, identified by slot.
func (r *Registry) TeamRoster(team model.Team) []model.PlayerID {
	var roster []model.PlayerID
	for _, s := range r.slots {
		if s == nil || s.Team != team || !s.HasSkater {
			continue
		}
		roster = append(roster, model.PlayerID(s.Slot))
	}
	return roster
}

// Chat implements rules.Emitter: a rule-machine message is broadcast
// server-wide, unattributed to any player slot.
func (r *Registry) Chat(message string) {
	r.log.Append(Message{Kind: MessageChat, PlayerSlot: ServerSlot, Text: message})
}

// HandleChat appends a chat line from slot to the broadcast log,
// unless the sender is muted. It does not interpret "/"-prefixed text
// as commands; the caller is expected to route those to the command
// dispatcher before falling back to HandleChat for everything else.
func (r *Registry) HandleChat(slot int, text string) bool {
	sess, ok := r.Session(slot)
	if !ok || sess.Muted || r.chatMuted {
		return false
	}
	sess.ChatRep++
	r.log.Append(Message{Kind: MessageChat, PlayerSlot: slot, Text: text})
	return true
}

// Tail returns the log entries a client last acked up to cursor is
// missing, capped at 15 per the wire snapshot's trailing-message slot
// count, plus the cursor to send back.
func (r *Registry) Tail(cursor uint32) ([]Message, uint32) {
	return r.log.Tail(cursor)
}
