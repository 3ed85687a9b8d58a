package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrGenerator          = errors.New("text generator failure")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrItemRenderInvalid  = errors.New("rendered description invalid")
	ErrNoItems            = errors.New("no items found for subject")
	ErrJobFinalized       = errors.New("job already finalized")
	ErrJobNotRunnable     = errors.New("job is not pending")
)
