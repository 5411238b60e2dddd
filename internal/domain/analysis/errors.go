package analysis

import "errors"

// ErrNoFile indicates the request carried no media file.
var ErrNoFile = errors.New("no media file uploaded")

// ErrNoTranscript indicates the recognition job completed with no
// recognized speech. Treated as unrecoverable input, never retried.
var ErrNoTranscript = errors.New("could not transcribe audio")

// ErrBadFeedback indicates the generative service returned output that
// does not conform to the two-key JSON contract (not JSON at all, or
// valid JSON with the wrong shape).
var ErrBadFeedback = errors.New("malformed feedback from generative service")
