package entity

import "errors"

var (
	// ErrSourceUnavailable means the video could not be opened or its
	// metadata is degenerate (zero fps, zero frames). Fatal to the run.
	ErrSourceUnavailable = errors.New("video source unavailable")

	// ErrInvalidConfig means the detection parameters are unusable
	// (non-positive threshold or negative minimum scene length).
	ErrInvalidConfig = errors.New("invalid detection configuration")

	// ErrClipWrite marks a per-interval encode failure. The affected clip is
	// skipped and the batch continues.
	ErrClipWrite = errors.New("clip write failed")
)
