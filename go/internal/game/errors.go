package game

import "errors"

// Join rejections. They are reported to the joining client only and never change state.
var (
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrGameFull           = errors.New("game is full")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrNameRequired       = errors.New("username is required")
	ErrAlreadyJoined      = errors.New("already joined")
)
