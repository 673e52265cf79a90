package shareparse

import (
	"errors"
	"testing"
)

func TestParse_SolvedHeader(t *testing.T) {
	t.Parallel()

	res, err := Parse("Wordle 1,234 4/6\n\n⬛🟨⬛⬛⬛\n🟩🟩🟩🟩🟩")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.PuzzleNumber != 1234 {
		t.Fatalf("unexpected puzzle number: %d", res.PuzzleNumber)
	}
	if !res.Solved || res.GuessesUsed != 4 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.HardMode {
		t.Fatalf("expected hard mode off")
	}
}

func TestParse_HardModeStar(t *testing.T) {
	t.Parallel()

	res, err := Parse("Wordle 942 2/6*")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !res.HardMode {
		t.Fatalf("expected hard mode on")
	}
	if res.GuessesUsed != 2 {
		t.Fatalf("unexpected guesses: %d", res.GuessesUsed)
	}
}

func TestParse_FailedPuzzle(t *testing.T) {
	t.Parallel()

	res, err := Parse("wordle 600 X/6")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Solved {
		t.Fatalf("expected unsolved result")
	}
	if res.GuessesUsed != 0 {
		t.Fatalf("unexpected guesses for X result: %d", res.GuessesUsed)
	}
	if res.PuzzleNumber != 600 {
		t.Fatalf("unexpected puzzle number: %d", res.PuzzleNumber)
	}
}

func TestParse_DottedThousandsSeparator(t *testing.T) {
	t.Parallel()

	res, err := Parse("Wordle 1.234 6/6")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.PuzzleNumber != 1234 {
		t.Fatalf("unexpected puzzle number: %d", res.PuzzleNumber)
	}
}

func TestParse_NotShareText(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "hello there", "Wordle 123", "Wordle abc 4/6"} {
		if _, err := Parse(input); !errors.Is(err, ErrNotShareText) {
			t.Fatalf("expected ErrNotShareText for %q, got %v", input, err)
		}
	}
}
