package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/voiceunleashed/fluency/internal/domain/analysis"
)

// GetSystemPrompt provides the coach persona and the strict two-key
// JSON output contract shared by both media kinds.
func GetSystemPrompt() string {
	return `You are a friendly, encouraging, and supportive speech coach. Your goal is to help the user build confidence.

Format your entire response as a single, valid JSON object with NO surrounding text and no code fences.
The JSON object must have exactly two keys: "textFeedback" and "toolSuggestions".
"textFeedback" is a string addressed directly to the user. "toolSuggestions" is an array of tool names taken only from the list the user provides.`
}

// GetAudioPrompt builds the user message for an audio-only recording.
func GetAudioPrompt(transcript string) string {
	tools, _ := json.Marshal(analysis.ToolVocabulary)
	return fmt.Sprintf(`Please analyze the following transcript of the user's speech.
TRANSCRIPT: %q

Please provide feedback based on this transcript. Follow these rules:
1. Address the user directly using "you" and "your".
2. Start with something positive you noticed about their speech.
3. Gently point out one or two specific areas for improvement, like filler words or repetitions. Frame these constructively.
4. Recommend a few helpful tools from this list: %s. Only recommend tools from the list.`, transcript, tools)
}

// GetVideoPrompt builds the user message for a video recording,
// unifying the transcript with the visual signal in one piece of
// feedback.
func GetVideoPrompt(transcript string, signal analysis.VisualSignal) string {
	tools, _ := json.Marshal(analysis.ToolVocabulary)
	return fmt.Sprintf(`I have analyzed a user's practice video and have the following information:
- AUDIO TRANSCRIPT: %q
- VISUAL ANALYSIS: %q

Based on this information, provide a single, unified piece of feedback. Follow these rules:
1. Address the user directly using "you" and "your".
2. Start with a positive and encouraging observation. For example, "Great work on this practice!" or "Your pacing was really steady here."
3. Gently point out one or two specific areas for improvement, combining insights from both their speech and their physical presence. Frame these as opportunities for growth, not harsh criticisms.
4. Recommend a few helpful tools from this list: %s. Only recommend tools from the list.`, transcript, describeSignal(signal), tools)
}

// describeSignal renders the coarse visual signal as the sentence the
// model sees. The no-signal wording must never claim tension.
func describeSignal(signal analysis.VisualSignal) string {
	if signal == analysis.SignalTension {
		return "Detected some facial movements during speech that could indicate tension. Focusing on keeping the face relaxed could be beneficial."
	}
	return "No significant facial tension or unusual movements were detected."
}

// ParseFeedback validates the raw model output against the two-key
// contract. Not-JSON and valid-JSON-wrong-shape both collapse to
// analysis.ErrBadFeedback; the pipeline never repairs model output.
func ParseFeedback(raw string) (analysis.Feedback, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return analysis.Feedback{}, fmt.Errorf("%w: not a JSON object: %v", analysis.ErrBadFeedback, err)
	}

	textRaw, ok := fields["textFeedback"]
	if !ok {
		return analysis.Feedback{}, fmt.Errorf("%w: missing key textFeedback", analysis.ErrBadFeedback)
	}
	toolsRaw, ok := fields["toolSuggestions"]
	if !ok {
		return analysis.Feedback{}, fmt.Errorf("%w: missing key toolSuggestions", analysis.ErrBadFeedback)
	}
	if len(fields) != 2 {
		return analysis.Feedback{}, fmt.Errorf("%w: expected exactly 2 keys, got %d", analysis.ErrBadFeedback, len(fields))
	}

	var fb analysis.Feedback
	if err := json.Unmarshal(textRaw, &fb.TextFeedback); err != nil {
		return analysis.Feedback{}, fmt.Errorf("%w: textFeedback is not a string", analysis.ErrBadFeedback)
	}
	if err := json.Unmarshal(toolsRaw, &fb.ToolSuggestions); err != nil {
		return analysis.Feedback{}, fmt.Errorf("%w: toolSuggestions is not a string array", analysis.ErrBadFeedback)
	}
	if fb.TextFeedback == "" {
		return analysis.Feedback{}, fmt.Errorf("%w: empty textFeedback", analysis.ErrBadFeedback)
	}
	return fb, nil
}
