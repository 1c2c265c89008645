package game

import (
	"fmt"
	"strings"

	appErr "handscore/pkg/errors"
)

// HandSize is the number of cards in every hand.
const HandSize = 5

// Joker is the symbol that turns wild under VariantJokerWild.
const Joker = 'J'

// Variant selects the rule set used for classification and tie-breaks.
type Variant string

const (
	VariantStandard  Variant = "standard"
	VariantJokerWild Variant = "joker-wild"
)

// Variants lists every supported rule set in puzzle order.
var Variants = []Variant{VariantStandard, VariantJokerWild}

// ParseVariant accepts the canonical names plus a few aliases.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "part1", "1":
		return VariantStandard, nil
	case "joker-wild", "joker", "jokers", "part2", "2":
		return VariantJokerWild, nil
	}
	return "", fmt.Errorf("%w: %q", appErr.ErrUnknownVariant, s)
}

// Symbols ordered weakest to strongest. J moves to the bottom when jokers are wild.
const (
	standardOrder  = "23456789TJQKA"
	jokerWildOrder = "J23456789TQKA"
)

var (
	standardValues  = buildValues(standardOrder)
	jokerWildValues = buildValues(jokerWildOrder)
)

func buildValues(order string) map[byte]int {
	values := make(map[byte]int, len(order))
	for i := 0; i < len(order); i++ {
		values[order[i]] = i + 1
	}
	return values
}

// CardValue returns the tie-break strength of a symbol, 1..13, or 0 when the
// symbol is not a card.
func CardValue(symbol byte, variant Variant) int {
	if variant == VariantJokerWild {
		return jokerWildValues[symbol]
	}
	return standardValues[symbol]
}

func isCardSymbol(symbol byte) bool {
	_, ok := standardValues[symbol]
	return ok
}
