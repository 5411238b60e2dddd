package analysis

import "context"

// ObjectRef points at a transient media object in the bucket.
// URI is the durable form consumed by the annotation services.
type ObjectRef struct {
	Key string
	URI string
}

// MediaStore port (interface for transient object storage)
type MediaStore interface {
	Put(ctx context.Context, data []byte, key string) (ObjectRef, error)
	Delete(ctx context.Context, ref ObjectRef) error
}

// Transcriber port (long-running speech recognition)
type Transcriber interface {
	Transcribe(ctx context.Context, ref ObjectRef) (string, error)
}

// FaceAnalyzer port (long-running facial detection, video only)
type FaceAnalyzer interface {
	AnalyzeFace(ctx context.Context, ref ObjectRef) (VisualSignal, error)
}

// Synthesizer port (generative feedback)
type Synthesizer interface {
	Synthesize(ctx context.Context, kind MediaKind, transcript string, signal VisualSignal) (Feedback, error)
}
