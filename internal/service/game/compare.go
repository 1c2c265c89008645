package game

// CompareHands returns 1 when a is stronger than b, -1 when weaker and 0 when
// both hands hold the same cards in the same order. Both hands must hold
// HandSize cards, which ParseHand guarantees.
func CompareHands(a, b Hand, variant Variant) int {
	return compareClassified(a, Classify(a.Cards, variant), b, Classify(b.Cards, variant), variant)
}

func compareClassified(a Hand, ca Category, b Hand, cb Category, variant Variant) int {
	if ca != cb {
		if ca < cb {
			return -1
		}
		return 1
	}

	for i := 0; i < HandSize; i++ {
		va := CardValue(a.Cards[i], variant)
		vb := CardValue(b.Cards[i], variant)
		if va == vb {
			continue
		}
		if va < vb {
			return -1
		}
		return 1
	}
	return 0
}
