package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownDataset    = errors.New("unknown dataset")
	ErrUnknownCorpus     = errors.New("unknown search corpus")
	ErrSnapshotNotLoaded = errors.New("no snapshot loaded")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrInvalidConfig     = errors.New("invalid configuration")
)
