package score

import (
	"errors"
	"fmt"
)

// Golf scoring: fewer guesses is better, par is four.
var golfByGuesses = map[int]int{
	1: -3,
	2: -2,
	3: -1,
	4: 0,
	5: 1,
	6: 2,
}

// PenaltyGolfScore is charged for a DNF and for a batch-inserted missed day.
const PenaltyGolfScore = 8

var (
	ErrUnknownStatus    = errors.New("status must be solved or dnf")
	ErrGuessesRequired  = errors.New("solved score requires guesses between 1 and 6")
	ErrGuessesForbidden = errors.New("dnf score must not carry guesses")
)

// Golf maps a result to its golf score. Penalties and DNFs cost the same
// flat stroke count; solved rounds map through guesses used.
func Golf(status Status, guessesUsed *int, isPenalty bool) (int, error) {
	if isPenalty {
		return PenaltyGolfScore, nil
	}
	switch status {
	case StatusSolved:
		if guessesUsed == nil {
			return 0, ErrGuessesRequired
		}
		v, ok := golfByGuesses[*guessesUsed]
		if !ok {
			return 0, fmt.Errorf("%w: got %d", ErrGuessesRequired, *guessesUsed)
		}
		return v, nil
	case StatusDNF:
		if guessesUsed != nil {
			return 0, ErrGuessesForbidden
		}
		return PenaltyGolfScore, nil
	default:
		return 0, fmt.Errorf("%w: got %q", ErrUnknownStatus, status)
	}
}
