package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voiceunleashed/fluency/internal/domain/analysis"
)

const defaultBaseURL = "https://speech.googleapis.com/v1"

// Client drives Google Cloud Speech-to-Text long-running recognition
// over its REST surface. The recognition config is fixed: recordings
// come in as Opus-in-WebM at 48 kHz, English, punctuation on.
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

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  recognitionAudio  `json:"audio"`
}

type recognitionConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

type recognitionAudio struct {
	URI string `json:"uri"`
}

type operation struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Response *recognizeResponse `json:"response"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Transcribe implements analysis.Transcriber. It submits one
// long-running job against the stored object and blocks until the job
// completes, joining the recognized segments in order with newlines.
// A completed job with no recognized speech yields ErrNoTranscript.
func (c *Client) Transcribe(ctx context.Context, ref analysis.ObjectRef) (string, error) {
	body := recognizeRequest{
		Config: recognitionConfig{
			Encoding:                   "WEBM_OPUS",
			SampleRateHertz:            48000,
			LanguageCode:               "en-US",
			EnableAutomaticPunctuation: true,
		},
		Audio: recognitionAudio{URI: ref.URI},
	}

	op, err := c.submit(ctx, body)
	if err != nil {
		return "", err
	}

	resp, err := c.await(ctx, op)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		if t := r.Alternatives[0].Transcript; t != "" {
			parts = append(parts, t)
		}
	}
	transcript := strings.Join(parts, "\n")
	if transcript == "" {
		return "", analysis.ErrNoTranscript
	}
	return transcript, nil
}

func (c *Client) submit(ctx context.Context, body recognizeRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/speech:longrunningrecognize", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit recognition job: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("recognition submit failed: status %d: %s", resp.StatusCode, raw)
	}

	var op operation
	if err := json.Unmarshal(raw, &op); err != nil {
		return "", fmt.Errorf("decode recognition operation: %w", err)
	}
	if op.Name == "" {
		return "", fmt.Errorf("recognition submit returned no operation name")
	}
	return op.Name, nil
}

// await polls the operation until done or the poll deadline expires.
func (c *Client) await(ctx context.Context, name string) (*recognizeResponse, error) {
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
				return nil, fmt.Errorf("recognition job failed: %s (code %d)", op.Error.Message, op.Error.Code)
			}
			if op.Response == nil {
				return nil, analysis.ErrNoTranscript
			}
			return op.Response, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("recognition job %s: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) poll(ctx context.Context, name string) (*operation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/operations/"+name, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll recognition job: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recognition poll failed: status %d: %s", resp.StatusCode, raw)
	}

	var op operation
	if err := json.Unmarshal(raw, &op); err != nil {
		return nil, fmt.Errorf("decode recognition operation: %w", err)
	}
	return &op, nil
}
