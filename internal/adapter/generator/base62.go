// Package generator produces random short code candidates.
package generator

import (
	"fmt"

	"github.com/vadimbarashkov/tinyurl/internal/entity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultLength is the length of codes produced by Generate unless configured otherwise.
const DefaultLength = entity.MinCodeLength

// Base62Generator draws short codes uniformly from entity.CodeAlphabet using crypto/rand.
// Codes are independent from each other: uniqueness is checked by the caller against storage.
type Base62Generator struct {
	length int
}

// NewBase62Generator returns a generator producing codes of the given default length.
func NewBase62Generator(length int) (*Base62Generator, error) {
	const op = "generator.NewBase62Generator"

	if err := validateLength(length); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Base62Generator{length: length}, nil
}

// Generate returns one candidate of the default length.
func (g *Base62Generator) Generate() (entity.Code, error) {
	return g.GenerateWithLength(g.length)
}

// GenerateWithLength returns one candidate of the given length.
// It fails with entity.ErrInvalidLength when length is outside [6, 8].
func (g *Base62Generator) GenerateWithLength(length int) (entity.Code, error) {
	const op = "generator.Base62Generator.GenerateWithLength"

	if err := validateLength(length); err != nil {
		return entity.Code{}, fmt.Errorf("%s: %w", op, err)
	}

	s, err := gonanoid.Generate(entity.CodeAlphabet, length)
	if err != nil {
		return entity.Code{}, fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	code, err := entity.NewCode(s)
	if err != nil {
		return entity.Code{}, fmt.Errorf("%s: %w", op, err)
	}

	return code, nil
}

// GenerateBatch returns count independent candidates. Duplicates are not removed.
// It fails with entity.ErrInvalidCount when count is not positive.
func (g *Base62Generator) GenerateBatch(count int) ([]entity.Code, error) {
	const op = "generator.Base62Generator.GenerateBatch"

	if count <= 0 {
		return nil, fmt.Errorf("%s: %w: must be positive, got %d", op, entity.ErrInvalidCount, count)
	}

	codes := make([]entity.Code, 0, count)

	for i := 0; i < count; i++ {
		code, err := g.Generate()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		codes = append(codes, code)
	}

	return codes, nil
}

func validateLength(length int) error {
	if length < entity.MinCodeLength || length > entity.MaxCodeLength {
		return fmt.Errorf("%w: must be between %d and %d, got %d",
			entity.ErrInvalidLength, entity.MinCodeLength, entity.MaxCodeLength, length)
	}
	return nil
}
