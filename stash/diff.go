package stash

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/Sopitive/forgebridge/codec"
)

// Diff renders a unified diff between two stored snapshots. An empty string
// means the snapshots describe the same layout.
func (s *Store) Diff(from, to string) (string, error) {
	a, err := s.Load(from)
	if err != nil {
		return "", err
	}
	b, err := s.Load(to)
	if err != nil {
		return "", err
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(Listing(a)),
		B:        difflib.SplitLines(Listing(b)),
		FromFile: from,
		ToFile:   to,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}

// Listing renders records as one stable text line each, in order. The format
// is what Diff compares, so it must stay deterministic: fixed field order,
// fixed float precision.
func Listing(records []codec.Record) string {
	var b strings.Builder
	for i, r := range records {
		b.WriteString(listRecord(i, &r))
		b.WriteByte('\n')
	}
	return b.String()
}

func listRecord(i int, r *codec.Record) string {
	name := r.TypeName
	if r.Unresolved {
		name = fmt.Sprintf("raw(%#02x,%#02x,%#02x)", r.Triple.Top, r.Triple.Sub, r.Triple.Pre)
	}

	labels := make([]string, 0, 4)
	for _, l := range r.Labels {
		if l != "" {
			labels = append(labels, l)
		}
	}
	labelPart := "-"
	if len(labels) > 0 {
		labelPart = strings.Join(labels, ",")
	}

	scalePart := ""
	if factor, active := r.ScaleFactor(); active {
		scalePart = fmt.Sprintf(" scale=%.2f", factor)
	}

	return fmt.Sprintf("[%03d] %s pre=%#02x pos=(%.2f,%.2f,%.2f) fwd=(%.3f,%.3f,%.3f) up=(%.3f,%.3f,%.3f) phys=%s sym=%s team=%d color=%s tele=%s spawn=%d chan=%d seq=%d timer=%d despawn=%d start=%t gamespec=%t pass=%s labels=%s%s",
		i, name, r.Triple.Pre,
		r.Position.X, r.Position.Y, r.Position.Z,
		r.Forward.X, r.Forward.Y, r.Forward.Z,
		r.Up.X, r.Up.Y, r.Up.Z,
		r.Physics, r.Symmetry,
		r.Team, colorName(r.ObjectColor), teleName(r.TeleporterChannel),
		r.SpawnTime, r.SpawnChannel, r.SpawnSequence, r.TimerUserData,
		r.CanDespawn,
		r.PlaceAtStart, r.GameSpecific,
		passString(r.Passability), labelPart, scalePart)
}

func colorName(c uint8) string {
	if c == codec.ColorTeam {
		return "team"
	}
	return fmt.Sprintf("%d", c)
}

func teleName(c uint8) string {
	if c == codec.TeleNone {
		return "-"
	}
	return string(rune('A' + c))
}

func passString(p codec.Passability) string {
	var b strings.Builder
	set := func(on bool, c byte) {
		if on {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	set(p.Players, 'p')
	set(p.Land, 'l')
	set(p.Heavy, 'h')
	set(p.Flying, 'f')
	set(p.Projectiles, 'j')
	return b.String()
}
