package prompt

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/voiceunleashed/fluency/internal/domain/analysis"
)

func TestParseFeedbackValid(t *testing.T) {
	raw := `{"textFeedback":"Great pacing!","toolSuggestions":["Smiling","Soft Landing"]}`
	fb, err := ParseFeedback(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.TextFeedback != "Great pacing!" {
		t.Errorf("textFeedback = %q", fb.TextFeedback)
	}
	if !reflect.DeepEqual(fb.ToolSuggestions, []string{"Smiling", "Soft Landing"}) {
		t.Errorf("toolSuggestions = %v", fb.ToolSuggestions)
	}
}

func TestParseFeedbackRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json at all", "Sure! Here is your feedback: great job."},
		{"json with prose around it", "Here you go: {\"textFeedback\":\"x\",\"toolSuggestions\":[]}"},
		{"markdown fence", "```json\n{\"textFeedback\":\"x\",\"toolSuggestions\":[]}\n```"},
		{"missing textFeedback", `{"toolSuggestions":["Smiling"]}`},
		{"missing toolSuggestions", `{"textFeedback":"x"}`},
		{"extra key", `{"textFeedback":"x","toolSuggestions":[],"score":5}`},
		{"wrong textFeedback type", `{"textFeedback":3,"toolSuggestions":[]}`},
		{"wrong toolSuggestions type", `{"textFeedback":"x","toolSuggestions":"Smiling"}`},
		{"empty textFeedback", `{"textFeedback":"","toolSuggestions":[]}`},
		{"json array", `["textFeedback","toolSuggestions"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFeedback(tt.raw)
			if !errors.Is(err, analysis.ErrBadFeedback) {
				t.Errorf("error = %v, want ErrBadFeedback", err)
			}
		})
	}
}

func TestAudioPromptHasNoVisualLine(t *testing.T) {
	p := GetAudioPrompt("hello world")
	if strings.Contains(p, "VISUAL ANALYSIS") {
		t.Error("audio prompt must not mention visual analysis")
	}
	if !strings.Contains(p, "hello world") {
		t.Error("audio prompt must embed the transcript")
	}
	for _, tool := range analysis.ToolVocabulary {
		if !strings.Contains(p, tool) {
			t.Errorf("audio prompt missing tool %q", tool)
		}
	}
}

func TestVideoPromptSignals(t *testing.T) {
	calm := GetVideoPrompt("hello", analysis.SignalNone)
	if !strings.Contains(calm, "VISUAL ANALYSIS") {
		t.Error("video prompt must include the visual analysis line")
	}
	// The no-signal wording must never claim tension was detected.
	if strings.Contains(calm, "could indicate tension") {
		t.Error("no-signal prompt claims tension")
	}
	if !strings.Contains(calm, "No significant facial tension") {
		t.Error("no-signal prompt missing calm wording")
	}

	tense := GetVideoPrompt("hello", analysis.SignalTension)
	if !strings.Contains(tense, "could indicate tension") {
		t.Error("tension prompt missing tension wording")
	}
}
