package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Sopitive/forgebridge/errors"
	"github.com/Sopitive/forgebridge/registry"
)

// Decode unpacks one entry into a record. The entry must be exactly Stride
// bytes. Empty slots decode to a zero record with ok false; callers use
// IsEmpty to skip them before decoding when they care about the distinction.
//
// Decode never fails on field values: out-of-range bytes are normalized
// (team above 8 clamps to neutral, colors outside 0-7 become team color,
// teleporter channels outside 0-25 become none) and a stored basis that is
// not orthonormal is repaired. Signed fields are read as-is, so a -128
// placed by another tool stays readable even though Encode never writes one.
func (c *Codec) Decode(entry []byte) (Record, bool, error) {
	if len(entry) != Stride {
		return Record{}, false, errors.InvalidData(errors.PhaseDecode, fmt.Sprintf("entry length %d, want %d", len(entry), Stride))
	}
	if IsEmpty(entry) {
		return Record{}, false, nil
	}

	var r Record

	r.Triple = registry.Triple{
		Top: entry[offTop],
		Sub: uint8(binary.LittleEndian.Uint16(entry[offSub:])),
		Pre: entry[offPreFlags],
	}
	if name, ok := c.types.Resolve(r.Triple); ok {
		r.TypeName = name
	} else {
		r.Unresolved = true
	}

	pos := getVec3(entry, offPosition)
	fwd := getVec3(entry, offForward)
	up := getVec3(entry, offUp)

	r.Position = pos
	x, _, z := RepairBasis(fwd, up)
	r.Forward = x
	r.Up = z

	unpackObjectFlags(entry[offFlags], &r)
	r.CanDespawn = entry[offCanDespawn]

	r.Team = entry[offTeam]
	if r.Team > TeamNeutral {
		r.Team = TeamNeutral
	}
	r.SpawnTime = entry[offSpawnTime]

	r.ObjectColor = entry[offColor]
	if r.ObjectColor > 7 && r.ObjectColor != ColorTeam {
		r.ObjectColor = ColorTeam
	}

	r.SpawnSequence = int8(entry[offSpawnSeq])
	r.TimerUserData = int8(entry[offTimerUser])
	r.SpawnChannel = entry[offSpawnChan]

	for i := 0; i < 4; i++ {
		r.Labels[i] = c.labelName(entry[offLabels+i])
	}

	r.TeleporterChannel = entry[offTeleChan]
	if r.TeleporterChannel > 25 && r.TeleporterChannel != TeleNone {
		r.TeleporterChannel = TeleNone
	}

	r.Passability = unpackPassability(entry[offPassFlags])

	return r, true, nil
}

func (c *Codec) labelName(idx uint8) string {
	if c.labels == nil {
		return ""
	}
	return c.labels.NameAt(idx)
}

func getVec3(b []byte, off int) Vec3 {
	return Vec3{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[off:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[off+4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[off+8:])),
	}
}
