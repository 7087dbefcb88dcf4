// Package barcode generates and checks EAN-13 codes for new products and boxes.
package barcode

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	Length     = 13
	bodyLength = Length - 1
)

var ErrInvalidInput = errors.New("invalid barcode input")

// Generator draws barcode digits from its own PRNG. Collisions are acceptable
// here, so no cryptographic source is needed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator backed by rng; nil uses the global source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

func (g *Generator) digit() int {
	if g == nil || g.rng == nil {
		return rand.IntN(10)
	}
	return g.rng.IntN(10)
}

// EAN13 returns 12 uniformly random digits followed by their check digit.
func (g *Generator) EAN13() string {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < bodyLength; i++ {
		b.WriteByte(byte('0' + g.digit()))
	}
	body := b.String()
	check, _ := CheckDigit(body)
	return body + check
}

// GenerateEAN13 is Generator.EAN13 on the global random source.
func GenerateEAN13() string {
	return (*Generator)(nil).EAN13()
}

// CheckDigit computes the EAN-13 check digit for the first twelve digits,
// weighting positions 1, 3, 1, 3, ... from the left.
func CheckDigit(first12 string) (string, error) {
	if len(first12) != bodyLength {
		return "", fmt.Errorf("%w: want %d digits, got %d characters", ErrInvalidInput, bodyLength, len(first12))
	}
	sum := 0
	for i := 0; i < bodyLength; i++ {
		c := first12[i]
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: %q is not a digit", ErrInvalidInput, c)
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += int(c-'0') * weight
	}
	return string(rune('0' + (10-sum%10)%10)), nil
}

// Validate checks that code is a 13 digit EAN-13 with a matching check digit.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("%w: want %d digits, got %d characters", ErrInvalidInput, Length, len(code))
	}
	want, err := CheckDigit(code[:bodyLength])
	if err != nil {
		return err
	}
	if got := code[bodyLength:]; got != want {
		if got[0] < '0' || got[0] > '9' {
			return fmt.Errorf("%w: %q is not a digit", ErrInvalidInput, got[0])
		}
		return fmt.Errorf("%w: check digit %s, expected %s", ErrInvalidInput, got, want)
	}
	return nil
}
