package models

import "errors"

// Store-level sentinels. Services translate them into API errors.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)
