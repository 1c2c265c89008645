package random

import (
	"crypto/rand"
	"math/big"
)

// no 0/O or 1/I so codes survive being read aloud or retyped
const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RunCodeLength is the size of the public code given to a stored score run.
const RunCodeLength = 10

func Code(length int) string {
	if length <= 0 {
		return ""
	}
	max := big.NewInt(int64(len(letters)))
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = letters[0]
			continue
		}
		out[i] = letters[n.Int64()]
	}
	return string(out)
}

func RunCode() string {
	return Code(RunCodeLength)
}
