package game

import "sort"

// Hand is one parsed input line.
type Hand struct {
	Cards string `json:"cards"`
	Bid   int64  `json:"bid"`
}

// ScoredHand is a hand after ranking. Rank 1 is the weakest hand.
type ScoredHand struct {
	Hand
	Category Category `json:"category"`
	Rank     int      `json:"rank"`
	Score    int64    `json:"score"`
}

// Result holds the ranked hands, strongest first, and their summed score.
type Result struct {
	Variant Variant      `json:"variant"`
	Hands   []ScoredHand `json:"hands"`
	Total   int64        `json:"total"`
}

// ScoreAll ranks hands from strongest to weakest and sums rank times bid.
// Hands that compare equal keep their input order, so the earlier one ranks
// higher.
func ScoreAll(hands []Hand, variant Variant) *Result {
	scored := make([]ScoredHand, len(hands))
	for i, h := range hands {
		scored[i] = ScoredHand{Hand: h, Category: Classify(h.Cards, variant)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return compareClassified(scored[i].Hand, scored[i].Category, scored[j].Hand, scored[j].Category, variant) > 0
	})

	res := &Result{Variant: variant, Hands: scored}
	n := len(scored)
	for i := range scored {
		scored[i].Rank = n - i
		scored[i].Score = int64(scored[i].Rank) * scored[i].Bid
		res.Total += scored[i].Score
	}
	return res
}

// Score parses puzzle input and scores it under one variant.
func Score(input string, variant Variant) (*Result, error) {
	hands, err := ParseHands(input)
	if err != nil {
		return nil, err
	}
	return ScoreAll(hands, variant), nil
}
