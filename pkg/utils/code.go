package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// CodeAlphabet omits 0/O and 1/I/L so codes survive being read aloud.
const CodeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// JoinCodeLen gives 31^8 (about 8.5e11) possible codes.
const JoinCodeLen = 8

// NewJoinCode returns a random human-typable project join code.
func NewJoinCode() (string, error) {
	return randomCode(JoinCodeLen)
}

func randomCode(n int) (string, error) {
	max := big.NewInt(int64(len(CodeAlphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(CodeAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

// NormalizeJoinCode trims and upper-cases user input.
func NormalizeJoinCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
