package game

import (
	"fmt"
	"sort"
)

// Category is the strength class of a hand. Higher is stronger.
type Category int

const (
	HighCard Category = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	FullHouse
	FourOfAKind
	FiveOfAKind
)

var categoryNames = map[Category]string{
	HighCard:     "high-card",
	OnePair:      "one-pair",
	TwoPair:      "two-pair",
	ThreeOfAKind: "three-of-a-kind",
	FullHouse:    "full-house",
	FourOfAKind:  "four-of-a-kind",
	FiveOfAKind:  "five-of-a-kind",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

func (c Category) MarshalText() ([]byte, error) {
	if _, ok := categoryNames[c]; !ok {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	for cat, name := range categoryNames {
		if name == string(text) {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", text)
}

// CardCount maps a symbol to its number of occurrences in a hand.
type CardCount map[byte]int

func countCards(cards string) CardCount {
	counts := make(CardCount, HandSize)
	for i := 0; i < len(cards); i++ {
		counts[cards[i]]++
	}
	return counts
}

// Classify returns the category of a hand under the given variant.
//
// With jokers wild, every joker joins the most frequent other symbol. That
// always yields the best reachable category, and jokers never pair up among
// themselves while a natural card is present, so two-pair and full-house stay
// distinct from the joker-assisted three and four of a kind.
func Classify(cards string, variant Variant) Category {
	counts := countCards(cards)

	jokers := 0
	if variant == VariantJokerWild {
		jokers = counts[Joker]
		delete(counts, Joker)
	}

	shape := make([]int, 0, len(counts))
	for _, n := range counts {
		shape = append(shape, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(shape)))

	if len(shape) == 0 {
		// all jokers
		return FiveOfAKind
	}
	shape[0] += jokers

	return categoryOf(shape)
}

// categoryOf maps counts sorted in descending order to a category.
func categoryOf(shape []int) Category {
	switch shape[0] {
	case 5:
		return FiveOfAKind
	case 4:
		return FourOfAKind
	case 3:
		if len(shape) > 1 && shape[1] == 2 {
			return FullHouse
		}
		return ThreeOfAKind
	case 2:
		if len(shape) > 1 && shape[1] == 2 {
			return TwoPair
		}
		return OnePair
	}
	return HighCard
}
