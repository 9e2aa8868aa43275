// Package grapheme implements grapheme-cluster-aware text operations on top
// of package rope: boundary search, cursor motion by cluster, and display
// width (tab expansion, East Asian wide glyphs).
//
// Rope indexes bytes and lines only; every decision that depends on how a
// human actually perceives a character — "is this one glyph or two",
// "how many columns does it occupy" — lives here instead, built on
// github.com/rivo/uniseg's UAX #29 grapheme cluster boundaries.
package grapheme
