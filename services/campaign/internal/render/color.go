package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	// DefaultBackground is used when a template's background colour cannot be parsed (#FF6B6B).
	DefaultBackground = color.RGBA{R: 0xFF, G: 0x6B, B: 0x6B, A: 0xFF}
	// DefaultForeground is used when a template's text colour cannot be parsed (#FFFFFF).
	DefaultForeground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// ParseHex parses "#RRGGBB" or "RRGGBB" into an opaque colour.
func ParseHex(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

// ParseHexOr returns fallback instead of an error.
func ParseHexOr(s string, fallback color.RGBA) (color.RGBA, bool) {
	c, err := ParseHex(s)
	if err != nil {
		return fallback, false
	}
	return c, true
}
