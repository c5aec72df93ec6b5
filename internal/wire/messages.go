package wire

import (
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/session"
)

// Tail message kind tags, per the 6-bit kind field. Note the order
// does not match session.MessageKind's iota order; these are the
// values the wire actually carries.
const (
	wireKindPlayerUpdate uint32 = 0
	wireKindGoal         uint32 = 1
	wireKindChat         uint32 = 2
)

func playerIndexOrSentinel(p *model.PlayerID) uint32 {
	if p == nil {
		return NoPlayerIndex
	}
	return uint32(*p)
}

func writeMessage(w *BitWriter, m session.Message) {
	switch m.Kind {
	case session.MessageChat:
		w.WriteBits(wireKindChat, 6)
		if m.PlayerSlot == session.ServerSlot {
			w.WriteBits(NoPlayerIndex, 6)
		} else {
			w.WriteBits(uint32(m.PlayerSlot), 6)
		}
		text := []byte(m.Text)
		size := len(text)
		if size > MaxChatBytes {
			size = MaxChatBytes
		}
		w.WriteBits(uint32(size), 6)
		for i := 0; i < size; i++ {
			w.WriteBits(uint32(text[i]), 7)
		}

	case session.MessageGoal:
		w.WriteBits(wireKindGoal, 6)
		w.WriteBits(uint32(m.GoalTeam), 2)
		w.WriteBits(playerIndexOrSentinel(m.Scorer), 6)
		w.WriteBits(playerIndexOrSentinel(m.Assist), 6)

	case session.MessagePlayerUpdate:
		w.WriteBits(wireKindPlayerUpdate, 6)
		w.WriteBits(uint32(m.UpdateSlot), 6)
		w.WriteBool(m.UpdateJoined)
		w.WriteBits(uint32(m.UpdateTeam), 2)
		if m.UpdateTeam == model.Spec {
			w.WriteBits(NoPlayerIndex, 6)
		} else {
			w.WriteBits(uint32(m.UpdateObject), 6)
		}
		name := []byte(m.UpdateName)
		for i := 0; i < PlayerUpdateNameBytes; i++ {
			var c byte
			if i < len(name) {
				c = name[i]
			}
			w.WriteBits(uint32(c), 7)
		}
	}
}

// TailMessage is the wire-level decoding of one trailing snapshot
// message: a neutral shape a reader can inspect without reconstructing
// a session.Message, since a client has no Registry to reconstruct one
// into.
type TailMessage struct {
	Kind uint32 // wireKindChat / wireKindGoal / wireKindPlayerUpdate

	// Chat.
	PlayerSlot uint32 // NoPlayerIndex for a server announcement
	Text       string

	// Goal.
	Team   model.Team
	Scorer uint32 // NoPlayerIndex if unassisted/unattributed
	Assist uint32

	// PlayerUpdate.
	UpdateSlot   uint32
	UpdateJoined bool
	UpdateTeam   model.Team
	UpdateObject uint32 // NoPlayerIndex if the slot has no skater
	UpdateName   string
}

func readMessage(r *BitReader) (TailMessage, error) {
	kind, err := r.ReadBits(6)
	if err != nil {
		return TailMessage{}, err
	}

	switch kind {
	case wireKindChat:
		slot, err := r.ReadBits(6)
		if err != nil {
			return TailMessage{}, err
		}
		size, err := r.ReadBits(6)
		if err != nil {
			return TailMessage{}, err
		}
		text := make([]byte, size)
		for i := range text {
			b, err := r.ReadBits(7)
			if err != nil {
				return TailMessage{}, err
			}
			text[i] = byte(b)
		}
		return TailMessage{Kind: kind, PlayerSlot: slot, Text: string(text)}, nil

	case wireKindGoal:
		team, err := r.ReadBits(2)
		if err != nil {
			return TailMessage{}, err
		}
		scorer, err := r.ReadBits(6)
		if err != nil {
			return TailMessage{}, err
		}
		assist, err := r.ReadBits(6)
		if err != nil {
			return TailMessage{}, err
		}
		return TailMessage{Kind: kind, Team: model.Team(team), Scorer: scorer, Assist: assist}, nil

	case wireKindPlayerUpdate:
		slot, err := r.ReadBits(6)
		if err != nil {
			return TailMessage{}, err
		}
		joined, err := r.ReadBool()
		if err != nil {
			return TailMessage{}, err
		}
		team, err := r.ReadBits(2)
		if err != nil {
			return TailMessage{}, err
		}
		object, err := r.ReadBits(6)
		if err != nil {
			return TailMessage{}, err
		}
		nameBytes := make([]byte, PlayerUpdateNameBytes)
		for i := range nameBytes {
			b, err := r.ReadBits(7)
			if err != nil {
				return TailMessage{}, err
			}
			nameBytes[i] = byte(b)
		}
		return TailMessage{
			Kind:         kind,
			UpdateSlot:   slot,
			UpdateJoined: joined,
			UpdateTeam:   model.Team(team),
			UpdateObject: object,
			UpdateName:   trimTrailingZeros(nameBytes),
		}, nil

	default:
		return TailMessage{}, ErrShortRead
	}
}

func trimTrailingZeros(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
