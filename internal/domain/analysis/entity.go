package analysis

// MediaKind enum
type MediaKind string

const (
	KindAudio MediaKind = "audio"
	KindVideo MediaKind = "video"
)

// VisualSignal is the coarse judgment from facial analysis.
// It is a binary presence check, not a score.
type VisualSignal string

const (
	SignalNone    VisualSignal = "no-signal"
	SignalTension VisualSignal = "tension-detected"
)

// ToolVocabulary is the closed set of coaching techniques the
// synthesizer is allowed to recommend.
var ToolVocabulary = []string{
	"Word Stretching",
	"Over-Articulation",
	"Hammer Tool",
	"Hammer-Link Tool",
	"Hand Movements",
	"Short Phrasing",
	"Smiling",
	"Soft Landing",
}

// KnownTool reports whether name belongs to the closed vocabulary.
func KnownTool(name string) bool {
	for _, t := range ToolVocabulary {
		if t == name {
			return true
		}
	}
	return false
}

// FilterTools drops names outside the vocabulary, preserving order.
// Returns the kept list and the names that were dropped.
func FilterTools(names []string) (kept, dropped []string) {
	kept = make([]string, 0, len(names))
	for _, n := range names {
		if KnownTool(n) {
			kept = append(kept, n)
		} else {
			dropped = append(dropped, n)
		}
	}
	return kept, dropped
}

// Feedback is the synthesis result: exactly two fields, matching the
// output contract given to the generative service.
type Feedback struct {
	TextFeedback    string   `json:"textFeedback"`
	ToolSuggestions []string `json:"toolSuggestions"`
}
