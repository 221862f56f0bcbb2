package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	keyDigits    = "0123456789"
	keyLowercase = "abcdefghijklmnopqrstuvwxyz"
	keyUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// MaskPlaceholder marks positions in a key mask that receive a random
	// character; every other mask character is emitted literally.
	MaskPlaceholder = '*'
)

// KeyPolicy selects the letter classes added to the key alphabet. Digits are
// always included and cannot be disabled.
type KeyPolicy struct {
	Lowercase bool
	Uppercase bool
}

// Alphabet builds the draw alphabet for this policy.
func (p KeyPolicy) Alphabet() string {
	var b strings.Builder
	b.WriteString(keyDigits)
	if p.Lowercase {
		b.WriteString(keyLowercase)
	}
	if p.Uppercase {
		b.WriteString(keyUppercase)
	}
	return b.String()
}

// GenerateKey renders one license key from the mask: placeholder positions
// draw uniformly and independently from the policy alphabet, literals pass
// through unchanged. Output length always equals mask length.
func GenerateKey(mask string, policy KeyPolicy) (string, error) {
	if strings.TrimSpace(mask) == "" {
		return "", fmt.Errorf("%w: key mask is required", ErrInvalidInput)
	}

	alphabet := policy.Alphabet()
	size := big.NewInt(int64(len(alphabet)))

	var b strings.Builder
	b.Grow(len(mask))
	for _, c := range mask {
		if c != MaskPlaceholder {
			b.WriteRune(c)
			continue
		}
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("draw key character: %w", err)
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String(), nil
}
