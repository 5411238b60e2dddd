package videointel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voiceunleashed/fluency/internal/domain/analysis"
)

const defaultBaseURL = "https://videointelligence.googleapis.com/v1"

// Client drives Google Cloud Video Intelligence face detection over
// its REST surface. Only the presence of face annotations matters;
// no per-frame timeline is modeled.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

func NewClient(httpClient *http.Client, pollInterval, pollTimeout time.Duration) *Client {
	return &Client{
		httpClient:   httpClient,
		baseURL:      defaultBaseURL,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

// NewClientWithBaseURL is used by tests to point at a stub server.
func NewClientWithBaseURL(httpClient *http.Client, baseURL string, pollInterval, pollTimeout time.Duration) *Client {
	c := NewClient(httpClient, pollInterval, pollTimeout)
	c.baseURL = baseURL
	return c
}

type annotateRequest struct {
	InputURI string   `json:"inputUri"`
	Features []string `json:"features"`
}

type operation struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Response *annotateResponse `json:"response"`
}

type annotateResponse struct {
	AnnotationResults []struct {
		FaceDetectionAnnotations []json.RawMessage `json:"faceDetectionAnnotations"`
	} `json:"annotationResults"`
}

// AnalyzeFace implements analysis.FaceAnalyzer. Any face-detection
// annotation in the first result set counts as tension; absence or a
// missing field resolves to no-signal.
func (c *Client) AnalyzeFace(ctx context.Context, ref analysis.ObjectRef) (analysis.VisualSignal, error) {
	name, err := c.submit(ctx, annotateRequest{
		InputURI: ref.URI,
		Features: []string{"FACE_DETECTION"},
	})
	if err != nil {
		return "", err
	}

	resp, err := c.await(ctx, name)
	if err != nil {
		return "", err
	}

	if len(resp.AnnotationResults) > 0 && len(resp.AnnotationResults[0].FaceDetectionAnnotations) > 0 {
		return analysis.SignalTension, nil
	}
	return analysis.SignalNone, nil
}

func (c *Client) submit(ctx context.Context, body annotateRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/videos:annotate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit annotation job: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("annotation submit failed: status %d: %s", resp.StatusCode, raw)
	}

	var op operation
	if err := json.Unmarshal(raw, &op); err != nil {
		return "", fmt.Errorf("decode annotation operation: %w", err)
	}
	if op.Name == "" {
		return "", fmt.Errorf("annotation submit returned no operation name")
	}
	return op.Name, nil
}

func (c *Client) await(ctx context.Context, name string) (*annotateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		op, err := c.poll(ctx, name)
		if err != nil {
			return nil, err
		}
		if op.Done {
			if op.Error != nil {
				return nil, fmt.Errorf("annotation job failed: %s (code %d)", op.Error.Message, op.Error.Code)
			}
			if op.Response == nil {
				return nil, fmt.Errorf("annotation job %s completed with no response", name)
			}
			return op.Response, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("annotation job %s: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) poll(ctx context.Context, name string) (*operation, error) {
	// Operation names come back fully qualified
	// (projects/.../locations/.../operations/...).
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+name, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll annotation job: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("annotation poll failed: status %d: %s", resp.StatusCode, raw)
	}

	var op operation
	if err := json.Unmarshal(raw, &op); err != nil {
		return nil, fmt.Errorf("decode annotation operation: %w", err)
	}
	return &op, nil
}
