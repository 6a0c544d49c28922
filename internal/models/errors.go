package models

import "errors"

// Custom errors
var (
	ErrUnknownStrategy  = errors.New("unknown strategy")
	ErrInsufficientData = errors.New("insufficient price data")
	ErrInvalidCapital   = errors.New("initial capital must be positive")
	ErrLengthMismatch   = errors.New("bars and signals length mismatch")
	ErrNotFound         = errors.New("record not found")
)
