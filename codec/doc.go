// Package codec converts between the 76-byte binary entry stored in target
// memory and the semantic Record used by the editor side.
//
// # Entry Layout
//
// Entries are little-endian with fixed offsets (hex):
//
//	Offset  Field
//	──────────────────────────────────────
//	0x00    top type id            u8
//	0x01    reserved (0)           u8
//	0x02    sentinel (0xFFFFFFFF)  u32
//	0x06    position               3×f32
//	0x12    forward                3×f32
//	0x1E    up                     3×f32
//	0x2A    constant 1.0           f32
//	0x2E    constant 0xFFFF        u16
//	0x30    sub type id (low byte) u16
//	0x3B    pre-flags byte         u8
//	0x3C    object flags           u8 (bit-packed)
//	0x3D    can-despawn            u8
//	0x3E    team index             u8
//	0x3F    spawn time             u8
//	0x40    object color           u8
//	0x41    spawn sequence         s8
//	0x42    timer / user data      s8
//	0x43    spawn channel          u8
//	0x44    label indices          4×u8
//	0x48    teleporter channel     u8
//	0x49    passability bit-field  u8
//	0x4A    chain flag             u16 (1 = more entries follow)
//
// Unknown and reserved bytes are carried verbatim from a canonical empty-slot
// template, never left uninitialized.
//
// # Orientation
//
// The stored forward/up vectors are not guaranteed orthogonal by the
// producer. Decoding re-orthonormalizes them with a Gram-Schmidt-style
// repair; the recomputed up vector is authoritative, not the stored one.
package codec
