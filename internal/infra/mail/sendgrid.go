package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultSendURL = "https://api.sendgrid.com/v3/mail/send"

// Client sends transactional mail through the SendGrid v3 REST API.
type Client struct {
	apiKey     string
	from       string
	sendURL    string
	httpClient *http.Client
}

func NewClient(apiKey, from string) *Client {
	return &Client{
		apiKey:     apiKey,
		from:       from,
		sendURL:    defaultSendURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithSendURL is used by tests to point at a stub server.
func NewClientWithSendURL(apiKey, from, sendURL string) *Client {
	c := NewClient(apiKey, from)
	c.sendURL = sendURL
	return c
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []address `json:"to"`
}

type address struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// SendWelcome implements mail.Sender.
func (c *Client) SendWelcome(ctx context.Context, to string) error {
	body := sendRequest{
		Personalizations: []personalization{{To: []address{{Email: to}}}},
		From:             address{Email: c.from},
		Subject:          "Welcome to Voice Unleashed! Find Your Flow.",
		Content:          []content{{Type: "text/html", Value: welcomeHTML}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send welcome mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send welcome mail: status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

const welcomeHTML = `<div style="font-family: sans-serif; line-height: 1.6;">
  <h2>Welcome to Voice Unleashed!</h2>
  <p>Hi there,</p>
  <p>We're thrilled to have you join our community. You've taken an important step on your journey to clearer speech.</p>
  <p>Whether you're part of the 80 million people who stutter or you're looking to become a more effective communicator, our tools are designed to help you <strong>Find Your Flow and Speak with Confidence.</strong></p>
  <h3>What's next?</h3>
  <ul>
    <li><strong>Record yourself:</strong> Jump into the Audio and Video Recording pages to start.</li>
    <li><strong>Get Real-Time AI Feedback:</strong> Our AI will analyze your speech and facial expressions to give you personalized guidance, including recommendations on fluency tools to use.</li>
    <li><strong>Track Your Progress:</strong> See your improvements over time and build the confidence you deserve.</li>
  </ul>
  <p>We can't wait to see your progress towards long-term fluency!</p>
  <p>Best,<br>The Voice Unleashed Team</p>
</div>`
