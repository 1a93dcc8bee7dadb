// Package material holds filament inventory logic: color key normalization
// and the night filament gate.
package material

import "strings"

// colorAliases folds cross-language and spelling variants of common filament
// colors into one canonical English key. Inventory labels and project colors
// come from different entry forms, so every lookup must go through this map.
var colorAliases = map[string]string{
	"grey":     "gray",
	"noir":     "black",
	"schwarz":  "black",
	"negro":    "black",
	"blanc":    "white",
	"weiss":    "white",
	"blanco":   "white",
	"rouge":    "red",
	"rot":      "red",
	"rojo":     "red",
	"bleu":     "blue",
	"blau":     "blue",
	"azul":     "blue",
	"vert":     "green",
	"gruen":    "green",
	"verde":    "green",
	"jaune":    "yellow",
	"gelb":     "yellow",
	"amarillo": "yellow",
	"gris":     "gray",
	"grau":     "gray",
	"orange":   "orange",
	"naranja":  "orange",
}

// NormalizeColor canonicalizes a color identifier into the comparison key
// used by every inventory lookup: lowercase, trimmed, inner whitespace
// collapsed, known aliases folded.
func NormalizeColor(color string) string {
	key := strings.ToLower(strings.TrimSpace(color))
	key = strings.Join(strings.Fields(key), " ")
	if canonical, ok := colorAliases[key]; ok {
		return canonical
	}
	return key
}

// SameColor reports whether two color identifiers normalize to the same key.
func SameColor(a, b string) bool { return NormalizeColor(a) == NormalizeColor(b) }
