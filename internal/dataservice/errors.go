package dataservice

import "errors"

// Common errors
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidStage      = errors.New("stage must be between 1 and 5")
	ErrInvalidTaskStatus = errors.New("task status must be todo, in_progress, review or done")
	ErrInvalidEvent      = errors.New("event needs a name and 3 to 5 named stages")
	ErrForbidden         = errors.New("not allowed to perform this action")
)
