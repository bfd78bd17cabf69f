package models

import "errors"

// Custom errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrTeamNotMapped = errors.New("team name could not be mapped to an id")
)
