package codec

import (
	"encoding/binary"
	"math"

	"github.com/Sopitive/forgebridge/errors"
	"github.com/Sopitive/forgebridge/registry"
)

// Codec converts records to and from entry bytes, resolving type identity
// through a TypeTable and label names through a LabelResolver. A nil
// LabelResolver behaves like an empty label table.
type Codec struct {
	types  TypeTable
	labels LabelResolver
}

// New builds a codec over the given tables.
func New(types TypeTable, labels LabelResolver) *Codec {
	return &Codec{types: types, labels: labels}
}

// SetLabels swaps the label table snapshot. Called after every refresh so
// that stored names re-resolve against the new indices.
func (c *Codec) SetLabels(labels LabelResolver) {
	c.labels = labels
}

// wireTriple picks the identity written to memory. Unresolved records write
// back their verbatim raw triple, never a registry default, so unknown
// object kinds survive a round trip unmutated. Resolved records take top and
// sub from the registry (renames take effect) and keep the record's own pre
// byte, which is the user-editable behavioral variant.
func (c *Codec) wireTriple(r *Record) (registry.Triple, error) {
	if r.Unresolved {
		return r.Triple, nil
	}
	t, ok := c.types.Lookup(r.TypeName)
	if !ok {
		return registry.Triple{}, errors.UnresolvedType(r.Triple.Top, r.Triple.Sub, r.Triple.Pre)
	}
	t.Pre = r.Triple.Pre
	return t, nil
}

// Encode packs a record into a fresh 76-byte entry with the chain flag
// clear. Bytes not covered by a field come verbatim from the canonical
// empty-slot template. Forward and up are written as given; normalization on
// encode is the caller's responsibility since they come from an orthonormal
// source.
func (c *Codec) Encode(r *Record) ([]byte, error) {
	t, err := c.wireTriple(r)
	if err != nil {
		return nil, err
	}

	b := EmptySlot()
	b[offTop] = t.Top
	b[offReserved] = 0x00
	binary.LittleEndian.PutUint32(b[offSentinel:], 0xFFFFFFFF)
	binary.LittleEndian.PutUint32(b[offUnitFloat:], math.Float32bits(1.0))
	binary.LittleEndian.PutUint16(b[offMarker:], 0xFFFF)
	binary.LittleEndian.PutUint16(b[offSub:], uint16(t.Sub))
	b[offPreFlags] = t.Pre

	putVec3(b, offPosition, r.Position)
	putVec3(b, offForward, r.Forward)
	putVec3(b, offUp, r.Up)

	b[offFlags] = packObjectFlags(r)
	b[offCanDespawn] = r.CanDespawn
	b[offTeam] = r.EffectiveTeam()
	b[offSpawnTime] = r.SpawnTime
	b[offColor] = r.ObjectColor
	b[offSpawnSeq] = uint8(clampS8(int(r.SpawnSequence)))
	b[offTimerUser] = uint8(clampS8(int(r.TimerUserData)))
	b[offSpawnChan] = r.SpawnChannel

	for i := 0; i < 4; i++ {
		b[offLabels+i] = c.labelIndex(r.Labels[i])
	}

	b[offTeleChan] = r.TeleporterChannel
	b[offPassFlags] = packPassability(r.Passability)

	SetChainFlag(b, false)
	return b, nil
}

func (c *Codec) labelIndex(name string) uint8 {
	if c.labels == nil {
		return 0xFF
	}
	return c.labels.IndexOf(name)
}

func putVec3(b []byte, off int, v Vec3) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[off+4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[off+8:], math.Float32bits(v.Z))
}

// clampS8 clamps to [-127, 127]. The clamp is asymmetric on purpose: -128 is
// never written, although decode can read a genuine -128 from memory.
func clampS8(v int) int8 {
	if v < -127 {
		return -127
	}
	if v > 127 {
		return 127
	}
	return int8(v)
}
