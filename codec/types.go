package codec

import (
	"github.com/Sopitive/forgebridge/registry"
	"github.com/Sopitive/forgebridge/scale"
)

// PhysicsMode controls how the placed object reacts to physics.
type PhysicsMode uint8

const (
	PhysicsNormal PhysicsMode = iota
	PhysicsFixed
	PhysicsPhased
)

func (m PhysicsMode) String() string {
	switch m {
	case PhysicsNormal:
		return "normal"
	case PhysicsFixed:
		return "fixed"
	default:
		return "phased"
	}
}

// Symmetry selects which game symmetry modes the object participates in.
type Symmetry uint8

const (
	SymmetryNone Symmetry = iota
	SymmetrySymmetric
	SymmetryAsymmetric
	SymmetryBoth
)

func (s Symmetry) String() string {
	switch s {
	case SymmetryNone:
		return "none"
	case SymmetrySymmetric:
		return "symmetric"
	case SymmetryAsymmetric:
		return "asymmetric"
	default:
		return "both"
	}
}

// Well-known byte values.
const (
	// TeamDefender is team 0, the team the defender-color rule forces.
	TeamDefender uint8 = 0
	// TeamNeutral is the "no team" index.
	TeamNeutral uint8 = 8
	// ColorTeam means "use the team's color" instead of a fixed color.
	ColorTeam uint8 = 0xFF
	// colorRed is the fixed color that triggers the defender-team rule.
	colorRed uint8 = 1
	// TeleNone means no teleporter channel; channels 0–25 are Alpha..Zulu.
	TeleNone uint8 = 0xFF
)

// Passability lists which traffic classes may pass through the object.
// The zero value blocks everything.
type Passability struct {
	Players     bool
	Land        bool
	Heavy       bool
	Flying      bool
	Projectiles bool
}

// Record is the semantic, editor-side form of one entry.
//
// Triple is always retained, even when TypeName is resolved, so that
// round-tripping an object the registry does not know never silently
// mutates its raw identity. For unresolved records (Unresolved true),
// TypeName is empty and Triple is the verbatim wire identity; re-export
// writes the original triple back, not a registry default.
type Record struct {
	TypeName   string
	Triple     registry.Triple
	Unresolved bool

	Position Vec3
	Forward  Vec3
	Up       Vec3

	Physics      PhysicsMode
	GameSpecific bool
	Symmetry     Symmetry
	PlaceAtStart bool

	CanDespawn        uint8
	SpawnTime         uint8
	SpawnChannel      uint8
	TeleporterChannel uint8
	ObjectColor       uint8
	Team              uint8

	SpawnSequence int8
	TimerUserData int8

	Labels [4]string

	Passability Passability
}

// NewRecord stages a fresh record of the named type: identity from the
// registry (including the type's default pre byte), identity basis, team
// neutral, team color, everything passable blocked except players.
func NewRecord(typeName string, types TypeTable) (Record, bool) {
	t, ok := types.Lookup(typeName)
	if !ok {
		return Record{}, false
	}
	return Record{
		TypeName:          typeName,
		Triple:            t,
		Forward:           Vec3{X: 1},
		Up:                Vec3{Z: 1},
		Physics:           PhysicsPhased,
		Symmetry:          SymmetryBoth,
		PlaceAtStart:      true,
		Team:              TeamNeutral,
		ObjectColor:       ColorTeam,
		TeleporterChannel: TeleNone,
		Passability:       Passability{Players: true},
	}, true
}

// EffectiveTeam applies the defender-color rule: an object painted the red
// fixed color is forced onto the defender team regardless of its own team
// byte. This is what actually gets written to memory.
func (r *Record) EffectiveTeam() uint8 {
	if r.ObjectColor == colorRed {
		return TeamDefender
	}
	return r.Team
}

// Defender reports whether the record's effective team selects the
// defender-base compounding in the 330x scale convention.
func (r *Record) Defender() bool {
	return r.EffectiveTeam() == TeamDefender
}

// ScaleFactor returns the multiplier encoded in the timer byte under the
// 330x convention. Scaling is active only when one of the record's labels
// names a scale channel; inactive records report 1 and false.
func (r *Record) ScaleFactor() (float64, bool) {
	for _, l := range r.Labels {
		if scale.IsScaleLabel(l) {
			return scale.Multiplier(r.TimerUserData, scale.ThreeThirtyX, r.Defender()), true
		}
	}
	return 1, false
}

// TypeTable resolves object type identity. *registry.Registry implements it.
type TypeTable interface {
	Lookup(name string) (registry.Triple, bool)
	Resolve(t registry.Triple) (string, bool)
}

// LabelResolver resolves label names against the current label table
// snapshot. *labels.Table implements it.
type LabelResolver interface {
	// IndexOf returns the current index for a name, 0xFF when empty or
	// unknown.
	IndexOf(name string) uint8
	// NameAt returns the current name for an index, "" for 0xFF or any
	// index outside the table.
	NameAt(idx uint8) string
}
