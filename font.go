package vmcore

import "golang.org/x/image/math/fixed"

// FixedAdvance converts a Glyph's integer advance (as decoded from the
// package's dense character table) into a fixed.Int26_6, the same
// sub-pixel fraction type golang.org/x/image/font uses for glyph
// metrics. The core never rasterizes glyphs itself (text layout and
// drawing are a renderer concern per spec.md §1) — this conversion exists
// so a renderer consuming Font assets can lay out strings with
// sub-pixel-accurate advances without redefining its own fixed-point type.
func FixedAdvance(advance int32) fixed.Int26_6 {
	return fixed.I(int(advance))
}

// FixedOffset bundles a glyph's OffsetX/OffsetY as a fixed.Point26_6.
func FixedOffset(offsetX, offsetY int32) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.I(int(offsetX)), Y: fixed.I(int(offsetY))}
}

// GlyphFor resolves the table entry for r, honoring the dense First..Last
// range documented in assets.go's Font type. The zero Glyph and false are
// returned for any rune outside the table — callers fall back to the
// renderer's own "tofu" glyph, matching the original runtime's behavior
// for characters outside a font's authored range.
func (f *Font) GlyphFor(r rune) (Glyph, bool) {
	if r < f.First || r > f.Last {
		return Glyph{}, false
	}
	g, ok := f.Glyphs[r]
	return g, ok
}

// Advance sums the fixed-point advance of every rune in s, the layout
// primitive a renderer needs to right-align or center a string without
// walking the Font table itself.
func (f *Font) Advance(s string) fixed.Int26_6 {
	var total fixed.Int26_6
	for _, r := range s {
		g, ok := f.GlyphFor(r)
		if !ok {
			continue
		}
		total += FixedAdvance(g.Advance)
	}
	return total
}
