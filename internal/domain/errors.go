package domain

import (
	"errors"
	"strings"
)

var (
	ErrParse              = errors.New("could not parse table")
	ErrValidation         = errors.New("invalid match")
	ErrRemoteUnavailable  = errors.New("leaderboard unavailable")
	ErrResolutionNotFound = errors.New("no match to resolve")
	ErrCalculation        = errors.New("could not calculate match")
)

// Explain turns a pipeline error into the message shown to whoever posted the
// table.
func Explain(err error) string {
	if err == nil {
		return ""
	}
	lines := []string{"Couldn't calculate lobby results."}
	switch {
	case errors.Is(err, ErrParse):
		lines = append(lines, "Please provide a valid table template.")
	case errors.Is(err, ErrRemoteUnavailable):
		lines = append(lines, "The leaderboard is unreachable. Try later.")
	case errors.Is(err, ErrResolutionNotFound):
		lines = append(lines,
			"Check if the submitted lobby number exists.",
			"A maximum of 100 previously submitted lobbies can be viewed.")
	case errors.Is(err, ErrValidation):
		lines = append(lines, "Every player needs at least one opponent.")
	case errors.Is(err, ErrCalculation):
		lines = append(lines, "Unable to calculate rating changes for this lobby.")
	}
	return strings.Join(lines, "\n")
}
