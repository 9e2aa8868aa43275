package buffer

import "errors"

// Sentinel errors matching spec's abstract error kinds (§7). Background
// collaborators (language servers, formatters) own NoLanguageConfig/
// NoFormatter. Of the errors below, Buffer's own methods return only
// ErrNothingToPaste (from Paste and PastePrimary).
var (
	ErrNoPathSet      = errors.New("buffer: no path set")
	ErrIO             = errors.New("buffer: io error")
	ErrEncoding       = errors.New("buffer: encoding error")
	ErrOffsetInvalid  = errors.New("buffer: offset out of range")
	ErrRangeInvalid   = errors.New("buffer: invalid range")
	ErrNothingToPaste = errors.New("buffer: clipboard empty")
)
