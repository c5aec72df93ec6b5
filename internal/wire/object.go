package wire

import "github.com/ehl-hqm/migo-hqm-server/internal/rink"

// ObjectKind distinguishes the two simulation-object shapes a
// snapshot slot can hold, per the 2-bit type field.
type ObjectKind uint8

const (
	ObjectSkater ObjectKind = iota
	ObjectPuck
)

// Object is one of the 32 snapshot slots: a simulation object's
// quantized pose. StickPos/StickRot/HeadRot/BodyRot only apply to
// skaters; Puck leaves them zero.
type Object struct {
	Present bool
	Kind    ObjectKind

	Pos rink.Vec3
	Rot [2]float64 // two independent rotation components, see quantizeUnit

	StickPos rink.Vec3
	StickRot [2]float64
	HeadRot  float64
	BodyRot  float64
}

func writeObject(w *BitWriter, o Object) {
	if !o.Present {
		w.WriteBits(0, 1)
		return
	}
	w.WriteBits(1, 1)
	w.WriteBits(uint32(o.Kind), 2)

	w.WriteBits(quantizePos(17, o.Pos.X), 17)
	w.WriteBits(quantizePos(17, o.Pos.Y), 17)
	w.WriteBits(quantizePos(17, o.Pos.Z), 17)

	switch o.Kind {
	case ObjectPuck:
		w.WriteBits(quantizeUnit(31, o.Rot[0]), 31)
		w.WriteBits(quantizeUnit(31, o.Rot[1]), 31)
	case ObjectSkater:
		w.WriteBits(quantizeUnit(31, o.Rot[0]), 31)
		w.WriteBits(quantizeUnit(31, o.Rot[1]), 31)
		w.WriteBits(quantizePos(13, o.StickPos.X), 13)
		w.WriteBits(quantizePos(13, o.StickPos.Y), 13)
		w.WriteBits(quantizePos(13, o.StickPos.Z), 13)
		w.WriteBits(quantizeUnit(25, o.StickRot[0]), 25)
		w.WriteBits(quantizeUnit(25, o.StickRot[1]), 25)
		w.WriteBits(quantizeUnit(16, o.HeadRot), 16)
		w.WriteBits(quantizeUnit(16, o.BodyRot), 16)
	}
}

func readObject(r *BitReader) (Object, error) {
	present, err := r.ReadBool()
	if err != nil || !present {
		return Object{}, err
	}

	kindBits, err := r.ReadBits(2)
	if err != nil {
		return Object{}, err
	}
	o := Object{Present: true, Kind: ObjectKind(kindBits)}

	x, err := r.ReadBits(17)
	if err != nil {
		return Object{}, err
	}
	y, err := r.ReadBits(17)
	if err != nil {
		return Object{}, err
	}
	z, err := r.ReadBits(17)
	if err != nil {
		return Object{}, err
	}
	o.Pos = rink.Vec3{X: dequantizePos(17, x), Y: dequantizePos(17, y), Z: dequantizePos(17, z)}

	rot0, err := r.ReadBits(31)
	if err != nil {
		return Object{}, err
	}
	rot1, err := r.ReadBits(31)
	if err != nil {
		return Object{}, err
	}
	o.Rot = [2]float64{dequantizeUnit(31, rot0), dequantizeUnit(31, rot1)}

	if o.Kind != ObjectSkater {
		return o, nil
	}

	sx, err := r.ReadBits(13)
	if err != nil {
		return Object{}, err
	}
	sy, err := r.ReadBits(13)
	if err != nil {
		return Object{}, err
	}
	sz, err := r.ReadBits(13)
	if err != nil {
		return Object{}, err
	}
	o.StickPos = rink.Vec3{X: dequantizePos(13, sx), Y: dequantizePos(13, sy), Z: dequantizePos(13, sz)}

	sr0, err := r.ReadBits(25)
	if err != nil {
		return Object{}, err
	}
	sr1, err := r.ReadBits(25)
	if err != nil {
		return Object{}, err
	}
	o.StickRot = [2]float64{dequantizeUnit(25, sr0), dequantizeUnit(25, sr1)}

	head, err := r.ReadBits(16)
	if err != nil {
		return Object{}, err
	}
	body, err := r.ReadBits(16)
	if err != nil {
		return Object{}, err
	}
	o.HeadRot = dequantizeUnit(16, head)
	o.BodyRot = dequantizeUnit(16, body)

	return o, nil
}
