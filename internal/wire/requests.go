package wire

import "errors"

// ErrBadMagic is returned by ReadFrame when a datagram's header does
// not match Magic; the caller discards the datagram silently, per the
// malformed-datagram error handling rule.
var ErrBadMagic = errors.New("wire: bad magic")

// ReadFrame strips and validates the magic header and command byte,
// returning a reader positioned at the start of the payload.
func ReadFrame(data []byte) (cmd byte, body *BitReader, err error) {
	r := NewBitReader(data)
	header, err := r.ReadBytesAligned(4)
	if err != nil {
		return 0, nil, err
	}
	for i, b := range header {
		if b != Magic[i] {
			return 0, nil, ErrBadMagic
		}
	}
	cmd, err = r.ReadByteAligned()
	if err != nil {
		return 0, nil, err
	}
	return cmd, r, nil
}

// InfoRequest is the cmd 0x00 payload.
type InfoRequest struct {
	Version uint8
	Ping    uint32
}

// DecodeInfoRequest parses a cmd 0x00 body.
func DecodeInfoRequest(r *BitReader) (InfoRequest, error) {
	version, err := r.ReadBits(8)
	if err != nil {
		return InfoRequest{}, err
	}
	ping, err := r.ReadU32Aligned()
	if err != nil {
		return InfoRequest{}, err
	}
	return InfoRequest{Version: uint8(version), Ping: ping}, nil
}

// InfoReply is the cmd 0x01 payload.
type InfoReply struct {
	Ping        uint32
	PlayerCount uint8
	TeamMax     uint8
	ServerName  string
}

// EncodeInfoReply builds a cmd 0x01 datagram.
func EncodeInfoReply(r InfoReply) []byte {
	w := NewBitWriter()
	w.WriteBytesAligned(Magic[:])
	w.WriteByteAligned(CmdInfoReply)
	w.WriteBits(ProtocolVersion, 8)
	w.WriteU32Aligned(r.Ping)
	w.WriteBits(uint32(r.PlayerCount), 8)
	// A fixed sub-field (always 4 on the original server) followed by
	// the configured team size cap, both nibbles of one byte.
	w.WriteBits(4, 4)
	w.WriteBits(uint32(r.TeamMax), 4)
	w.WriteBytesAlignedPadded(MaxNameBytes, []byte(r.ServerName))
	return w.Bytes()
}

// JoinRequest is the cmd 0x02 payload.
type JoinRequest struct {
	Version uint8
	Name    string
}

// DecodeJoinRequest parses a cmd 0x02 body. The name is trimmed of
// trailing zero padding.
func DecodeJoinRequest(r *BitReader) (JoinRequest, error) {
	version, err := r.ReadBits(8)
	if err != nil {
		return JoinRequest{}, err
	}
	name, err := r.ReadBytesAligned(MaxNameBytes)
	if err != nil {
		return JoinRequest{}, err
	}
	return JoinRequest{Version: uint8(version), Name: trimTrailingZeros(name)}, nil
}

// PlayerInput carries the eight float input channels the client sends
// every update, plus its key bitmask.
type PlayerInput struct {
	StickAngle  float32
	Turn        float32
	Unused      float32
	ForwardBack float32
	StickPitch  float32
	StickYaw    float32
	HeadYaw     float32
	BodyYaw     float32
	Keys        uint32
}

// PlayerUpdate is the decoded cmd 0x04/0x08/0x10 payload.
type PlayerUpdate struct {
	Version ClientVersion
	GameID  uint32
	Input   PlayerInput

	HasDeltaTime bool
	DeltaTime    uint32

	PacketIndex   uint32
	MessageCursor uint16

	HasChat bool
	ChatRep uint8
	Chat    string
}

// DecodePlayerUpdate parses a cmd 0x04/0x08/0x10 body at the client
// version the command byte signaled.
func DecodePlayerUpdate(version ClientVersion, r *BitReader) (PlayerUpdate, error) {
	var u PlayerUpdate
	u.Version = version

	var err error
	if u.GameID, err = r.ReadU32Aligned(); err != nil {
		return u, err
	}

	fields := []*float32{
		&u.Input.StickAngle, &u.Input.Turn, &u.Input.Unused, &u.Input.ForwardBack,
		&u.Input.StickPitch, &u.Input.StickYaw, &u.Input.HeadYaw, &u.Input.BodyYaw,
	}
	for _, f := range fields {
		if *f, err = r.ReadF32Aligned(); err != nil {
			return u, err
		}
	}
	if u.Input.Keys, err = r.ReadU32Aligned(); err != nil {
		return u, err
	}

	if version > ClientCryptic {
		u.HasDeltaTime = true
		if u.DeltaTime, err = r.ReadU32Aligned(); err != nil {
			return u, err
		}
	}

	if u.PacketIndex, err = r.ReadU32Aligned(); err != nil {
		return u, err
	}
	if u.MessageCursor, err = r.ReadU16Aligned(); err != nil {
		return u, err
	}

	hasChat, err := r.ReadBool()
	if err != nil {
		return u, err
	}
	if !hasChat {
		return u, nil
	}

	rep, err := r.ReadBits(3)
	if err != nil {
		return u, err
	}
	size, err := r.ReadBits(8)
	if err != nil {
		return u, err
	}
	text, err := r.ReadBytesAligned(int(size))
	if err != nil {
		return u, err
	}
	u.HasChat = true
	u.ChatRep = uint8(rep)
	u.Chat = string(text)
	return u, nil
}

// PacketAccepted applies the out-of-order guard: a packet index lower
// than the session's last-seen index and within 1000 of it is a
// straggler and is dropped; everything else (including the wraparound
// case where the gap looks enormous) is accepted.
func PacketAccepted(lastSeen, incoming uint32) bool {
	if incoming >= lastSeen {
		return true
	}
	return lastSeen-incoming >= 1000
}

// ExitRequest is the cmd 0x07 payload: empty, the command byte alone
// is the whole message.
type ExitRequest struct{}
