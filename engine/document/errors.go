package document

import "errors"

var (
	// ErrInvalidPatchPath indicates a patch path (or value shape) that cannot
	// be resolved against the document's expected structure.
	ErrInvalidPatchPath = errors.New("invalid patch path")
	// ErrPatchTestFailed indicates a test operation whose expected value did
	// not match the current document value.
	ErrPatchTestFailed = errors.New("patch test failed")
)
