package deck

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDifficulty is returned when a difficulty name cannot be parsed.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulty controls how many distinct pairs are dealt.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// AllDifficulties returns the difficulties in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// Pairs returns the number of distinct faces dealt for this difficulty.
// Unknown values fall back to the easy pair count.
func (d Difficulty) Pairs() int {
	switch d {
	case Medium:
		return 7
	case Hard:
		return 10
	default:
		return 4
	}
}

// Cards returns the total number of cards dealt for this difficulty.
func (d Difficulty) Cards() int {
	return d.Pairs() * 2
}

// Next cycles easy → medium → hard → easy.
func (d Difficulty) Next() Difficulty {
	switch d {
	case Easy:
		return Medium
	case Medium:
		return Hard
	default:
		return Easy
	}
}

// DisplayName returns the upper-case label used in menus.
func (d Difficulty) DisplayName() string {
	return strings.ToUpper(string(d))
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// ParseDifficulty parses a difficulty name case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q (want easy, medium or hard)", ErrUnknownDifficulty, s)
	}
	return d, nil
}
