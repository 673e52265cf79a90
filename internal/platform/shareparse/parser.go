// Package shareparse extracts results from pasted Wordle share text, e.g.
// "Wordle 1,234 4/6*" followed by the emoji grid.
package shareparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Result is the header line of a share, decoded.
type Result struct {
	PuzzleNumber int
	Solved       bool
	GuessesUsed  int
	HardMode     bool
}

var headerRegex = regexp.MustCompile(`(?i)wordle\s+([0-9][0-9.,]*)\s+([1-6xX])/6(\*?)`)

// ErrNotShareText means the input does not contain a Wordle result header.
var ErrNotShareText = errors.New("text does not contain a wordle result header")

// Parse scans text for the share header and decodes it. The emoji grid is
// ignored; only the header carries the result.
func Parse(text string) (Result, error) {
	m := headerRegex.FindStringSubmatch(text)
	if m == nil {
		return Result{}, errors.WithDetailf(ErrNotShareText, "input: %.40q", text)
	}

	number, err := strconv.Atoi(strings.NewReplacer(",", "", ".", "").Replace(m[1]))
	if err != nil {
		return Result{}, errors.Wrapf(err, "parse puzzle number %q", m[1])
	}

	res := Result{
		PuzzleNumber: number,
		HardMode:     m[3] == "*",
	}
	if strings.EqualFold(m[2], "x") {
		return res, nil
	}

	guesses, err := strconv.Atoi(m[2])
	if err != nil {
		return Result{}, errors.Wrapf(err, "parse guess count %q", m[2])
	}
	res.Solved = true
	res.GuessesUsed = guesses
	return res, nil
}
