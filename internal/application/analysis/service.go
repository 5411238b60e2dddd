package analysis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/voiceunleashed/fluency/internal/application"
	domain "github.com/voiceunleashed/fluency/internal/domain/analysis"
	"github.com/voiceunleashed/fluency/internal/domain/history"
	"github.com/voiceunleashed/fluency/internal/domain/identity"
)

// Service implements the analysis pipeline: store the upload, drive
// the annotation jobs, synthesize feedback, persist a history entry,
// and always release the transient object. All collaborators are
// ports, so the whole pipeline runs against test doubles.
type Service struct {
	Media   domain.MediaStore
	Speech  domain.Transcriber
	Faces   domain.FaceAnalyzer
	Coach   domain.Synthesizer
	History history.Repository
	Clock   application.Clock
}

// Command for one analysis request
type Command struct {
	UserID string
	Kind   domain.MediaKind
	Media  []byte
}

// Analyze runs the full pipeline for one uploaded recording.
//
// The video path runs transcription and face analysis concurrently
// and joins both before synthesis; if either fails the request fails.
// The history write is best-effort relative to the response: the user
// still gets their feedback when persistence fails.
func (s *Service) Analyze(ctx context.Context, cmd Command) (domain.Feedback, error) {
	if len(cmd.Media) == 0 {
		return domain.Feedback{}, domain.ErrNoFile
	}
	if cmd.UserID == "" {
		return domain.Feedback{}, identity.ErrUnauthenticated
	}

	key := uuid.New().String() + ".webm"
	ref, err := s.Media.Put(ctx, cmd.Media, key)
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("store media: %w", err)
	}
	// The transient object must never outlive the request, success
	// and failure paths alike.
	defer s.cleanup(ref)

	transcript, signal, err := s.annotate(ctx, cmd.Kind, ref)
	if err != nil {
		return domain.Feedback{}, err
	}

	fb, err := s.Coach.Synthesize(ctx, cmd.Kind, transcript, signal)
	if err != nil {
		return domain.Feedback{}, err
	}

	kept, dropped := domain.FilterTools(fb.ToolSuggestions)
	if len(dropped) > 0 {
		log.Printf("dropping tool suggestions outside the vocabulary: %v", dropped)
	}
	fb.ToolSuggestions = kept

	entry := &history.Entry{
		ID:              history.EntryID(uuid.New().String()),
		UserID:          cmd.UserID,
		Type:            entryType(cmd.Kind),
		Feedback:        fb.TextFeedback,
		ToolSuggestions: fb.ToolSuggestions,
		Timestamp:       s.Clock.Now().Unix(),
	}
	if err := s.History.Append(ctx, entry); err != nil {
		log.Printf("history append failed for user=%s kind=%s: %v", cmd.UserID, cmd.Kind, err)
	}

	return fb, nil
}

// annotate runs the long-running jobs for the request's media kind.
func (s *Service) annotate(ctx context.Context, kind domain.MediaKind, ref domain.ObjectRef) (string, domain.VisualSignal, error) {
	if kind != domain.KindVideo {
		transcript, err := s.Speech.Transcribe(ctx, ref)
		return transcript, domain.SignalNone, err
	}

	var (
		transcript string
		signal     domain.VisualSignal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.Speech.Transcribe(gctx, ref)
		transcript = t
		return err
	})
	g.Go(func() error {
		sig, err := s.Faces.AnalyzeFace(gctx, ref)
		signal = sig
		return err
	})
	// Fail-fast join: feedback is never synthesized from one modality
	// alone on the video path.
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return transcript, signal, nil
}

// cleanup deletes the transient object. Best-effort: failure is
// logged and never masks the pipeline's own result or error. A fresh
// context is used because the request's may already be canceled.
func (s *Service) cleanup(ref domain.ObjectRef) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Media.Delete(ctx, ref); err != nil {
		log.Printf("failed to clean up media object %s: %v", ref.Key, err)
	}
}

func entryType(kind domain.MediaKind) history.EntryType {
	if kind == domain.KindVideo {
		return history.TypeVideo
	}
	return history.TypeAudio
}
