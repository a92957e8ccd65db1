package deck

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogCoversHard(t *testing.T) {
	c := Default()
	assert.GreaterOrEqual(t, c.Len(), MinFaces)
	assert.Equal(t, "lion", c.Faces()[0].Name)
	assert.Equal(t, "🦁", c.Glyph("lion"))
	assert.Empty(t, c.Glyph("dragon"))
}

func TestNewCatalogRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		faces []Face
	}{
		{"too small", animals[:9]},
		{"empty name", append([]Face{{Name: "  "}}, animals...)},
		{"duplicate", append([]Face{{Name: "Lion"}}, animals...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.faces)
			require.Error(t, err)
		})
	}

	_, err := NewCatalog(animals[:3])
	assert.True(t, errors.Is(err, ErrCatalogTooSmall))
}

func TestNewCatalogNormalizesNames(t *testing.T) {
	faces := make([]Face, 0, MinFaces)
	for _, f := range animals[:MinFaces] {
		faces = append(faces, Face{Name: "  " + f.Name + " ", Glyph: f.Glyph})
	}
	faces[0].Name = "LION"
	c, err := NewCatalog(faces)
	require.NoError(t, err)
	assert.Equal(t, "lion", c.Faces()[0].Name)
}

func TestDealPairsPerDifficulty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	c := Default()

	for _, d := range AllDifficulties() {
		faces := c.Deal(d, rng)
		require.Len(t, faces, d.Cards(), d)

		counts := make(map[string]int)
		for _, f := range faces {
			counts[f]++
		}
		assert.Len(t, counts, d.Pairs(), d)
		for name, n := range counts {
			assert.Equal(t, 2, n, "face %s under %s", name, d)
		}
		for _, f := range c.Faces()[:d.Pairs()] {
			assert.Contains(t, counts, f.Name)
		}
	}
}

func TestDealShuffles(t *testing.T) {
	c := Default()
	rng := rand.New(rand.NewPCG(7, 7))

	// Sorted order (lion, lion, tiger, tiger, ...) should not survive
	// every one of a handful of deals.
	sorted := 0
	for range 10 {
		faces := c.Deal(Hard, rng)
		inOrder := true
		for i := 0; i < len(faces); i += 2 {
			if faces[i] != faces[i+1] {
				inOrder = false
				break
			}
		}
		if inOrder {
			sorted++
		}
	}
	assert.Less(t, sorted, 10)
}
