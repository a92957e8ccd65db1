package deck

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// MinFaces is the smallest catalog that can deal the hardest difficulty.
const MinFaces = 10

// ErrCatalogTooSmall is returned when a catalog cannot cover every difficulty.
var ErrCatalogTooSmall = errors.New("catalog too small")

// Face is a single matchable card face.
type Face struct {
	Name  string `json:"name"`
	Glyph string `json:"glyph"`
}

// Catalog is an ordered, immutable list of distinct faces.
type Catalog struct {
	faces []Face
	index map[string]int
}

var animals = []Face{
	{Name: "lion", Glyph: "🦁"},
	{Name: "tiger", Glyph: "🐯"},
	{Name: "elephant", Glyph: "🐘"},
	{Name: "giraffe", Glyph: "🦒"},
	{Name: "monkey", Glyph: "🐒"},
	{Name: "zebra", Glyph: "🦓"},
	{Name: "panda", Glyph: "🐼"},
	{Name: "fox", Glyph: "🦊"},
	{Name: "koala", Glyph: "🐨"},
	{Name: "penguin", Glyph: "🐧"},
	{Name: "owl", Glyph: "🦉"},
	{Name: "rabbit", Glyph: "🐰"},
}

// Default returns the built-in animal catalog.
func Default() Catalog {
	c, err := NewCatalog(animals)
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog validates faces and builds a catalog. Names are trimmed and
// lower-cased; they must be non-empty and unique, and there must be at
// least MinFaces of them.
func NewCatalog(faces []Face) (Catalog, error) {
	c := Catalog{
		faces: make([]Face, 0, len(faces)),
		index: make(map[string]int, len(faces)),
	}
	for i, f := range faces {
		name := strings.ToLower(strings.TrimSpace(f.Name))
		if name == "" {
			return Catalog{}, fmt.Errorf("face %d: empty name", i)
		}
		if _, dup := c.index[name]; dup {
			return Catalog{}, fmt.Errorf("face %d: duplicate name %q", i, name)
		}
		c.index[name] = len(c.faces)
		c.faces = append(c.faces, Face{Name: name, Glyph: strings.TrimSpace(f.Glyph)})
	}
	if len(c.faces) < MinFaces {
		return Catalog{}, fmt.Errorf("%w: %d faces, need at least %d", ErrCatalogTooSmall, len(c.faces), MinFaces)
	}
	return c, nil
}

// Len returns the number of faces.
func (c Catalog) Len() int {
	return len(c.faces)
}

// Faces returns a copy of the faces in catalog order.
func (c Catalog) Faces() []Face {
	out := make([]Face, len(c.faces))
	copy(out, c.faces)
	return out
}

// Glyph returns the display glyph for a face name, or "" if unknown.
func (c Catalog) Glyph(name string) string {
	if i, ok := c.index[name]; ok {
		return c.faces[i].Glyph
	}
	return ""
}

// Deal returns the face names for a shuffled deck: the first d.Pairs()
// faces of the catalog, each twice.
func (c Catalog) Deal(d Difficulty, rng *rand.Rand) []string {
	n := d.Pairs()
	if n > len(c.faces) {
		n = len(c.faces)
	}
	out := make([]string, 0, n*2)
	for _, f := range c.faces[:n] {
		out = append(out, f.Name, f.Name)
	}
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
