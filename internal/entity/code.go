package entity

import "fmt"

const (
	// MinCodeLength is the shortest accepted short code.
	MinCodeLength = 6
	// MaxCodeLength is the longest accepted short code.
	MaxCodeLength = 8
	// CodeAlphabet holds the 62 symbols a short code is made of.
	CodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// Code is a validated short code. The zero value is not a valid code.
type Code struct {
	value string
}

// NewCode validates s and wraps it into a Code.
func NewCode(s string) (Code, error) {
	if len(s) < MinCodeLength || len(s) > MaxCodeLength {
		return Code{}, fmt.Errorf("%w: length must be between %d and %d, got %d",
			ErrInvalidCode, MinCodeLength, MaxCodeLength, len(s))
	}

	for i := 0; i < len(s); i++ {
		if !isAlphanumeric(s[i]) {
			return Code{}, fmt.Errorf("%w: unexpected character %q", ErrInvalidCode, s[i])
		}
	}

	return Code{value: s}, nil
}

func isAlphanumeric(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func (c Code) String() string {
	return c.value
}

// IsZero reports whether c was never initialized through NewCode.
func (c Code) IsZero() bool {
	return c.value == ""
}
