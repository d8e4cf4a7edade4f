package codec

// Object-flags byte, bit 0 = LSB:
//
//	bits 7:6  physics (00 normal, 01 fixed, 11 phased; 10 reads as phased)
//	bit  5    game specific
//	bits 3:2  symmetry (00 none, 01 symmetric, 10 asymmetric, 11 both)
//	bit  1    NOT place-at-start
//	bits 4,0  unused, written 0

func packObjectFlags(r *Record) uint8 {
	var physBits uint8
	switch r.Physics {
	case PhysicsNormal:
		physBits = 0
	case PhysicsFixed:
		physBits = 1
	default:
		physBits = 3
	}

	var b uint8
	b |= (physBits & 0x3) << 6
	if r.GameSpecific {
		b |= 1 << 5
	}
	b |= (uint8(r.Symmetry) & 0x3) << 2
	if !r.PlaceAtStart {
		b |= 1 << 1
	}
	return b
}

func unpackObjectFlags(b uint8, r *Record) {
	switch (b >> 6) & 0x3 {
	case 0:
		r.Physics = PhysicsNormal
	case 1:
		r.Physics = PhysicsFixed
	default:
		r.Physics = PhysicsPhased
	}
	r.GameSpecific = (b>>5)&0x1 == 1
	r.Symmetry = Symmetry((b >> 2) & 0x3)
	r.PlaceAtStart = (b>>1)&0x1 == 0
}

// Passability byte: bit 0 is players BLOCKED (inverted, clear means
// allowed); bits 1-4 are land/heavy/flying/projectiles ALLOWED; bits 5-7
// unused.

func packPassability(p Passability) uint8 {
	var b uint8
	if !p.Players {
		b |= 0x01
	}
	if p.Land {
		b |= 0x02
	}
	if p.Heavy {
		b |= 0x04
	}
	if p.Flying {
		b |= 0x08
	}
	if p.Projectiles {
		b |= 0x10
	}
	return b
}

func unpackPassability(b uint8) Passability {
	return Passability{
		Players:     b&0x01 == 0,
		Land:        b&0x02 != 0,
		Heavy:       b&0x04 != 0,
		Flying:      b&0x08 != 0,
		Projectiles: b&0x10 != 0,
	}
}
