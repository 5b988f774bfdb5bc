package agent

import "errors"

var (
	// ErrInvalidArgument reports a malformed request. No state was changed.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyExists reports an id that is already pending or indexed.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotReady is returned before the engine has been created.
	ErrNotReady = errors.New("index engine not ready")
	// ErrEngine wraps failures reported by the index engine.
	ErrEngine = errors.New("engine failure")
)
