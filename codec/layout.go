package codec

import "encoding/binary"

// Stride is the exact byte size of one entry. Invariant: every encoded or
// decoded entry is exactly this long.
const Stride = 0x4C // 76 bytes

// Field offsets within an entry.
const (
	offTop        = 0x00
	offReserved   = 0x01
	offSentinel   = 0x02 // u32, 0xFFFFFFFF when populated
	offPosition   = 0x06
	offForward    = 0x12
	offUp         = 0x1E
	offUnitFloat  = 0x2A // constant 1.0f on populated entries
	offMarker     = 0x2E // constant 0xFFFF
	offSub        = 0x30 // u16, sub id in the low byte
	offPreFlags   = 0x3B
	offFlags      = 0x3C
	offCanDespawn = 0x3D
	offTeam       = 0x3E
	offSpawnTime  = 0x3F
	offColor      = 0x40
	offSpawnSeq   = 0x41
	offTimerUser  = 0x42
	offSpawnChan  = 0x43
	offLabels     = 0x44 // 4×u8
	offTeleChan   = 0x48
	offPassFlags  = 0x49

	// OffChainFlag is the u16 "more entries follow" flag in the last two
	// bytes of the entry. Exported for the transfer protocol.
	OffChainFlag = Stride - 2
)

// emptySlot is the canonical inert record the consumer tolerates in unused
// slots: first six bytes 0xFF (the emptiness sentinel), marker 0xFFFF, team
// neutral, team-color, no labels, everything else zero.
var emptySlot = func() [Stride]byte {
	var b [Stride]byte
	for i := 0; i < 6; i++ {
		b[i] = 0xFF
	}
	b[offMarker] = 0xFF
	b[offMarker+1] = 0xFF
	b[offTeam] = TeamNeutral
	b[offColor] = ColorTeam
	for i := 0; i < 4; i++ {
		b[offLabels+i] = 0xFF
	}
	return b
}()

// EmptySlot returns a fresh copy of the canonical empty-slot template with
// the chain flag clear.
func EmptySlot() []byte {
	b := make([]byte, Stride)
	copy(b, emptySlot[:])
	return b
}

// IsEmpty reports whether an entry is an empty slot: its first six bytes are
// all 0xFF. Short buffers count as empty.
func IsEmpty(entry []byte) bool {
	if len(entry) < 6 {
		return true
	}
	for i := 0; i < 6; i++ {
		if entry[i] != 0xFF {
			return false
		}
	}
	return true
}

// HasMore reports whether the entry's chain flag announces at least one more
// live entry after it.
func HasMore(entry []byte) bool {
	if len(entry) < Stride {
		return false
	}
	return entry[OffChainFlag] == 0x01
}

// SetChainFlag sets or clears the "more entries follow" flag in place.
func SetChainFlag(entry []byte, more bool) {
	var v uint16
	if more {
		v = 1
	}
	binary.LittleEndian.PutUint16(entry[OffChainFlag:], v)
}
