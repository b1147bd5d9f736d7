package slip

import "errors"

var (
	// ErrImageLoad: the slip image could not be fetched or decoded. The
	// attempt is over; callers report "unreadable" instead of retrying.
	ErrImageLoad = errors.New("slip image could not be loaded")

	// ErrExtraction: the OCR engine or the remote verification service
	// failed. Reported as "could not verify".
	ErrExtraction = errors.New("slip text extraction failed")

	// ErrAlreadyChecking: a verification for this order is in flight and the
	// new trigger was dropped.
	ErrAlreadyChecking = errors.New("verification already in progress")
)
