package wire

import (
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/session"
)

// RulesBits packs a model.RulesState into the 32-bit value the v2+
// snapshot echoes: bit 0 offside_warning, bit 1 icing_warning, or the
// fixed values 4 (Offside) / 8 (Icing) once a rule machine has
// actually called the stoppage.
func RulesBits(rs model.RulesState) uint32 {
	switch rs.Kind {
	case model.RulesOffside:
		return 4
	case model.RulesIcing:
		return 8
	default:
		var v uint32
		if rs.OffsideWarning {
			v |= 1
		}
		if rs.IcingWarning {
			v |= 2
		}
		return v
	}
}

// Snapshot is everything EncodeSnapshot needs to build a cmd 0x05
// frame for one recipient. DeltaTime and Rules are only written when
// the recipient's client version is high enough; populate them
// unconditionally and let EncodeSnapshot decide.
type Snapshot struct {
	GameID    uint32
	GameStep  uint32
	GameOver  bool
	RedScore  uint8
	BlueScore uint8
	Time      uint16
	GoalTimer uint16
	Period    uint8
	OwnSlot   uint8

	DeltaTime uint32
	Rules     uint32

	WorldPacket     uint32
	LastAckedPacket uint32

	Objects [MaxObjectSlots]Object

	MessageCursor uint32 // the client's msgpos, echoed back unmodified
	Messages      []session.Message
}

// EncodeSnapshot builds a cmd 0x05 datagram for a client at version.
// Messages beyond MaxTailMessages are silently capped, matching the
// original server's min(len, 15).
func EncodeSnapshot(version ClientVersion, s Snapshot) []byte {
	w := NewBitWriter()
	w.WriteBytesAligned(Magic[:])
	w.WriteByteAligned(CmdSnapshot)
	w.WriteU32Aligned(s.GameID)
	w.WriteU32Aligned(s.GameStep)
	w.WriteBool(s.GameOver)
	w.WriteBits(uint32(s.RedScore), 8)
	w.WriteBits(uint32(s.BlueScore), 8)
	w.WriteBits(uint32(s.Time), 16)
	w.WriteBits(uint32(s.GoalTimer), 16)
	w.WriteBits(uint32(s.Period), 8)
	w.WriteBits(uint32(s.OwnSlot), 8)

	if version >= ClientPing {
		w.WriteU32Aligned(s.DeltaTime)
	}
	if version >= ClientPingRules {
		w.WriteU32Aligned(s.Rules)
	}

	w.WriteU32Aligned(s.WorldPacket)
	w.WriteU32Aligned(s.LastAckedPacket)

	for _, o := range s.Objects {
		writeObject(w, o)
	}

	tail := s.Messages
	if len(tail) > MaxTailMessages {
		tail = tail[:MaxTailMessages]
	}
	w.WriteBits(uint32(len(tail)), 4)
	w.WriteBits(s.MessageCursor, 16)
	for _, m := range tail {
		writeMessage(w, m)
	}

	return w.Bytes()
}

// GameIDMismatchFrame builds the cmd 0x06 notice a client whose cached
// game id no longer matches gets instead of a snapshot.
func GameIDMismatchFrame(gameID uint32) []byte {
	w := NewBitWriter()
	w.WriteBytesAligned(Magic[:])
	w.WriteByteAligned(CmdGameIDMismatch)
	w.WriteU32Aligned(gameID)
	return w.Bytes()
}

// DecodedSnapshot is the wire-level decoding of a cmd 0x05 frame,
// mirroring Snapshot's shape with TailMessage in place of
// session.Message.
type DecodedSnapshot struct {
	GameID    uint32
	GameStep  uint32
	GameOver  bool
	RedScore  uint8
	BlueScore uint8
	Time      uint16
	GoalTimer uint16
	Period    uint8
	OwnSlot   uint8

	HasDeltaTime bool
	DeltaTime    uint32
	HasRules     bool
	Rules        uint32

	WorldPacket     uint32
	LastAckedPacket uint32

	Objects [MaxObjectSlots]Object

	MessageCursor uint32
	Messages      []TailMessage
}

// DecodeSnapshot parses a cmd 0x05 payload (the bytes after the
// command byte) back into a DecodedSnapshot, at the given client
// version, mirroring how a client would parse the same bytes it was
// sent.
func DecodeSnapshot(version ClientVersion, body []byte) (DecodedSnapshot, error) {
	r := NewBitReader(body)
	var d DecodedSnapshot

	var err error
	if d.GameID, err = r.ReadU32Aligned(); err != nil {
		return d, err
	}
	if d.GameStep, err = r.ReadU32Aligned(); err != nil {
		return d, err
	}
	if d.GameOver, err = r.ReadBool(); err != nil {
		return d, err
	}
	v, err := r.ReadBits(8)
	if err != nil {
		return d, err
	}
	d.RedScore = uint8(v)
	if v, err = r.ReadBits(8); err != nil {
		return d, err
	}
	d.BlueScore = uint8(v)
	if v, err = r.ReadBits(16); err != nil {
		return d, err
	}
	d.Time = uint16(v)
	if v, err = r.ReadBits(16); err != nil {
		return d, err
	}
	d.GoalTimer = uint16(v)
	if v, err = r.ReadBits(8); err != nil {
		return d, err
	}
	d.Period = uint8(v)
	if v, err = r.ReadBits(8); err != nil {
		return d, err
	}
	d.OwnSlot = uint8(v)

	if version >= ClientPing {
		d.HasDeltaTime = true
		if d.DeltaTime, err = r.ReadU32Aligned(); err != nil {
			return d, err
		}
	}
	if version >= ClientPingRules {
		d.HasRules = true
		if d.Rules, err = r.ReadU32Aligned(); err != nil {
			return d, err
		}
	}

	if d.WorldPacket, err = r.ReadU32Aligned(); err != nil {
		return d, err
	}
	if d.LastAckedPacket, err = r.ReadU32Aligned(); err != nil {
		return d, err
	}

	for i := range d.Objects {
		o, err := readObject(r)
		if err != nil {
			return d, err
		}
		d.Objects[i] = o
	}

	count, err := r.ReadBits(4)
	if err != nil {
		return d, err
	}
	if d.MessageCursor, err = r.ReadBits(16); err != nil {
		return d, err
	}
	d.Messages = make([]TailMessage, 0, count)
	for i := uint32(0); i < count; i++ {
		m, err := readMessage(r)
		if err != nil {
			return d, err
		}
		d.Messages = append(d.Messages, m)
	}

	return d, nil
}
