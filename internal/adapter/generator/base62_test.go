package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

func TestNewBase62Generator(t *testing.T) {
	for _, length := range []int{-1, 0, 5, 9} {
		gen, err := NewBase62Generator(length)

		assert.ErrorIs(t, err, entity.ErrInvalidLength)
		assert.Nil(t, gen)
	}

	gen, err := NewBase62Generator(DefaultLength)

	assert.NoError(t, err)
	assert.NotNil(t, gen)
}

func TestBase62Generator_Generate(t *testing.T) {
	gen, err := NewBase62Generator(DefaultLength)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		code, err := gen.Generate()

		require.NoError(t, err)
		assert.Len(t, code.String(), 6)
		for _, c := range code.String() {
			assert.True(t, strings.ContainsRune(entity.CodeAlphabet, c))
		}
	}
}

func TestBase62Generator_GenerateWithLength(t *testing.T) {
	gen, err := NewBase62Generator(DefaultLength)
	require.NoError(t, err)

	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{name: "too short", length: 5, wantErr: true},
		{name: "too long", length: 9, wantErr: true},
		{name: "negative", length: -6, wantErr: true},
		{name: "min", length: 6},
		{name: "middle", length: 7},
		{name: "max", length: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := gen.GenerateWithLength(tt.length)

			if tt.wantErr {
				assert.ErrorIs(t, err, entity.ErrInvalidLength)
				assert.True(t, code.IsZero())
				return
			}

			assert.NoError(t, err)
			assert.Len(t, code.String(), tt.length)
		})
	}
}

func TestBase62Generator_GenerateBatch(t *testing.T) {
	gen, err := NewBase62Generator(8)
	require.NoError(t, err)

	t.Run("invalid count", func(t *testing.T) {
		for _, count := range []int{0, -1} {
			codes, err := gen.GenerateBatch(count)

			assert.ErrorIs(t, err, entity.ErrInvalidCount)
			assert.Nil(t, codes)
		}
	})

	t.Run("success", func(t *testing.T) {
		codes, err := gen.GenerateBatch(50)

		assert.NoError(t, err)
		assert.Len(t, codes, 50)
		for _, code := range codes {
			assert.Len(t, code.String(), 8)
		}
	})
}

func TestBase62Generator_Distribution(t *testing.T) {
	gen, err := NewBase62Generator(8)
	require.NoError(t, err)

	seen := make(map[rune]int)

	codes, err := gen.GenerateBatch(2000)
	require.NoError(t, err)

	for _, code := range codes {
		for _, c := range code.String() {
			seen[c]++
		}
	}

	// 16000 draws over 62 symbols, every symbol is expected roughly 258 times
	assert.Len(t, seen, len(entity.CodeAlphabet))
	for c, n := range seen {
		assert.Greater(t, n, 100, string(c))
	}
}
