package domain

import "errors"

var (
	// ErrShowNotFound is returned when a show session has not been opened.
	ErrShowNotFound = errors.New("show not found")
	// ErrNotSetUp is returned when an operation runs before setup completed.
	ErrNotSetUp = errors.New("show has not been set up")
	// ErrTooFewPlayers rejects setups with fewer than two players.
	ErrTooFewPlayers = errors.New("at least two players are required")
	// ErrDuplicatePlayer rejects setups with repeated player names.
	ErrDuplicatePlayer = errors.New("duplicate player name")
	// ErrNoRounds indicates a template without any rounds.
	ErrNoRounds = errors.New("template contains no rounds")
	// ErrNoShuffle is returned when selecting or revealing before a shuffle.
	ErrNoShuffle = errors.New("answers have not been shuffled yet")
	// ErrRowOutOfRange indicates a display row outside the current shuffle.
	ErrRowOutOfRange = errors.New("display row out of range")
	// ErrRoundOutOfRange indicates navigation outside the loaded rounds.
	ErrRoundOutOfRange = errors.New("round index out of range")
	// ErrPackNotFound indicates the round pack could not be loaded.
	ErrPackNotFound = errors.New("round pack not found")
	// ErrBadVolume rejects volume levels outside the 0-100 scale.
	ErrBadVolume = errors.New("volume must be between 0 and 100")
)
