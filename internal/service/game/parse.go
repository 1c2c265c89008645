package game

import (
	"fmt"
	"strconv"
	"strings"

	appErr "handscore/pkg/errors"
)

// ParseHand parses a single "<cards> <bid>" line.
func ParseHand(line string) (Hand, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Hand{}, fmt.Errorf("%w: expected \"<cards> <bid>\", got %q", appErr.ErrInputFormat, line)
	}

	cards := strings.ToUpper(fields[0])
	if len(cards) != HandSize {
		return Hand{}, fmt.Errorf("%w: hand %q must have %d cards", appErr.ErrInputFormat, fields[0], HandSize)
	}
	for i := 0; i < len(cards); i++ {
		if !isCardSymbol(cards[i]) {
			return Hand{}, fmt.Errorf("%w: unknown card %q in %q", appErr.ErrInputFormat, cards[i], fields[0])
		}
	}

	bid, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || bid <= 0 {
		return Hand{}, fmt.Errorf("%w: bid %q must be a positive integer", appErr.ErrInputFormat, fields[1])
	}

	return Hand{Cards: cards, Bid: bid}, nil
}

// ParseHands parses one hand per line. Blank lines are skipped and errors
// carry the 1-based line number.
func ParseHands(input string) ([]Hand, error) {
	lines := strings.Split(input, "\n")
	hands := make([]Hand, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		h, err := ParseHand(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		hands = append(hands, h)
	}
	if len(hands) == 0 {
		return nil, appErr.ErrEmptyInput
	}
	return hands, nil
}
