package videointel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/voiceunleashed/fluency/internal/domain/analysis"
)

func stub(t *testing.T, final map[string]any) *httptest.Server {
	t.Helper()
	const opName = "projects/p/locations/us-east1/operations/123"
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "videos:annotate"):
			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad submit body: %v", err)
			}
			features, _ := req["features"].([]any)
			if len(features) != 1 || features[0] != "FACE_DETECTION" {
				t.Errorf("unexpected features: %v", features)
			}
			json.NewEncoder(w).Encode(map[string]any{"name": opName})
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, opName):
			final["name"] = opName
			final["done"] = true
			json.NewEncoder(w).Encode(final)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

func TestAnalyzeFaceSignals(t *testing.T) {
	tests := []struct {
		name  string
		final map[string]any
		want  analysis.VisualSignal
	}{
		{
			name: "annotations present",
			final: map[string]any{"response": map[string]any{
				"annotationResults": []map[string]any{
					{"faceDetectionAnnotations": []map[string]any{{"version": "v1"}}},
				},
			}},
			want: analysis.SignalTension,
		},
		{
			name: "zero annotations",
			final: map[string]any{"response": map[string]any{
				"annotationResults": []map[string]any{
					{"faceDetectionAnnotations": []map[string]any{}},
				},
			}},
			want: analysis.SignalNone,
		},
		{
			name: "field missing entirely",
			final: map[string]any{"response": map[string]any{
				"annotationResults": []map[string]any{{}},
			}},
			want: analysis.SignalNone,
		},
		{
			name:  "no annotation results",
			final: map[string]any{"response": map[string]any{}},
			want:  analysis.SignalNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := stub(t, tt.final)
			defer srv.Close()

			c := NewClientWithBaseURL(srv.Client(), srv.URL, time.Millisecond, time.Second)
			got, err := c.AnalyzeFace(context.Background(), analysis.ObjectRef{URI: "http://store/a.webm"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("signal = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnalyzeFaceJobError(t *testing.T) {
	srv := stub(t, map[string]any{
		"error": map[string]any{"code": 13, "message": "backend error"},
	})
	defer srv.Close()

	c := NewClientWithBaseURL(srv.Client(), srv.URL, time.Millisecond, time.Second)
	if _, err := c.AnalyzeFace(context.Background(), analysis.ObjectRef{URI: "u"}); err == nil {
		t.Fatal("expected job failure")
	}
}
