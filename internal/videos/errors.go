package videos

import "errors"

var (
	// ErrProberUnavailable indicates no duration prober is configured.
	ErrProberUnavailable = errors.New("video duration prober unavailable")
	// ErrReaperClosed indicates the asset reaper no longer accepts work.
	ErrReaperClosed = errors.New("asset reaper closed")
)
