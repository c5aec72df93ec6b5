package session

import "github.com/ehl-hqm/migo-hqm-server/internal/model"

// ServerSlot marks a chat message as originating from the server
// itself (a rule-machine announcement) rather than from a player.
const ServerSlot = -1

// MaxTail is the largest number of trailing messages a single wire
// snapshot carries.
const MaxTail = 15

// ringCapacity bounds how much history the log retains; it is sized
// generously relative to MaxTail so a client that misses a handful of
// snapshots in a row can still catch up from its cursor.
const ringCapacity = 1024

// MessageKind distinguishes the three message shapes the wire codec
// serializes into a snapshot's trailing messages.
type MessageKind uint8

const (
	MessageChat MessageKind = iota
	MessageGoal
	MessagePlayerUpdate
)

// Message is one entry in the shared outbound log. Only the fields
// relevant to Kind are populated.
type Message struct {
	Kind MessageKind

	// Chat: PlayerSlot (ServerSlot for server announcements) and Text.
	PlayerSlot int
	Text       string

	// Goal: GoalTeam, Scorer, Assist.
	GoalTeam model.Team
	Scorer   *model.PlayerID
	Assist   *model.PlayerID

	// PlayerUpdate: UpdateSlot, UpdateJoined, UpdateTeam, UpdateObject,
	// UpdateName.
	UpdateSlot   int
	UpdateJoined bool
	UpdateTeam   model.Team
	UpdateObject model.ObjectIndex
	UpdateName   string
}

// Log is the single append-only message history every session tails
// independently via its own cursor: a shared-tail model rather than a
// per-client queue, per the registry's "one append-only log with
// per-client cursors" design.
type Log struct {
	messages []Message
	base     uint32 // global index of messages[0]
}

// Append adds m to the log, trimming the oldest entries once the ring
// capacity is exceeded.
func (l *Log) Append(m Message) {
	l.messages = append(l.messages, m)
	if len(l.messages) > ringCapacity {
		drop := len(l.messages) - ringCapacity
		l.messages = l.messages[drop:]
		l.base += uint32(drop)
	}
}

// Tail returns up to MaxTail messages starting at cursor (a global
// index previously handed back by Tail or by an initial snapshot), and
// the cursor to report back to the client next. A cursor older than
// the retained history is clamped to the oldest available entry, so a
// client that fell far behind resumes from there rather than panicking
// on an out-of-range index.
func (l *Log) Tail(cursor uint32) ([]Message, uint32) {
	if cursor < l.base {
		cursor = l.base
	}
	start := int(cursor - l.base)
	if start >= len(l.messages) {
		return nil, cursor
	}

	end := start + MaxTail
	if end > len(l.messages) {
		end = len(l.messages)
	}
	return l.messages[start:end], l.base + uint32(end)
}
