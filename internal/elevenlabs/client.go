// Package elevenlabs wraps the ElevenLabs speech-to-text and text-to-speech
// HTTP APIs. These are the host-environment speech capabilities the voice
// pipeline relies on.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"edumentor/internal/model"
)

const (
	defaultBaseURL  = "https://api.elevenlabs.io"
	defaultTimeout  = 30 * time.Second
	defaultSTTModel = "scribe_v1"
)

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	VoiceID    string
	STTModel   string
}

func NewClient(apiKey, voiceID string) *Client {
	return &Client{
		APIKey:     strings.TrimSpace(apiKey),
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		VoiceID:    strings.TrimSpace(voiceID),
		STTModel:   defaultSTTModel,
	}
}

func (c *Client) baseURL() string {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

// Transcribe sends recorded audio to the speech-to-text endpoint and returns
// the plain transcript.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if c.APIKey == "" {
		return "", &model.BackendError{Op: "speech-to-text", Message: "missing ElevenLabs API key"}
	}
	if len(audio) == 0 {
		return "", &model.BackendError{Op: "speech-to-text", Message: "transcription input is empty"}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("model_id", c.sttModel()); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("file", "question.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/v1/speech-to-text", bytes.NewReader(body.Bytes()))
	if err != nil {
		return "", err
	}
	req.Header.Set("xi-api-key", c.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client().Do(req)
	if err != nil {
		return "", &model.BackendError{Op: "speech-to-text", Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &model.BackendError{Op: "speech-to-text", StatusCode: resp.StatusCode, Cause: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", statusError("speech-to-text", resp.StatusCode, respBody)
	}

	var parsed struct {
		Text       string `json:"text"`
		Transcript string `json:"transcript"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &model.BackendError{Op: "speech-to-text", Message: "invalid response body", Cause: err}
	}
	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		text = strings.TrimSpace(parsed.Transcript)
	}
	return text, nil
}

// Synthesize converts text to MP3 audio using the configured voice.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.APIKey == "" {
		return nil, &model.BackendError{Op: "text-to-speech", Message: "missing ElevenLabs API key"}
	}
	voiceID := strings.TrimSpace(c.VoiceID)
	if voiceID == "" {
		return nil, &model.BackendError{Op: "text-to-speech", Message: "voice_id is required"}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &model.BackendError{Op: "text-to-speech", Message: "text is required"}
	}

	payload, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return nil, err
	}

	reqURL := c.baseURL() + "/v1/text-to-speech/" + url.PathEscape(voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.APIKey)
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, &model.BackendError{Op: "text-to-speech", Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.BackendError{Op: "text-to-speech", StatusCode: resp.StatusCode, Cause: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, statusError("text-to-speech", resp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *Client) sttModel() string {
	if m := strings.TrimSpace(c.STTModel); m != "" {
		return m
	}
	return defaultSTTModel
}

func statusError(op string, statusCode int, body []byte) error {
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = fmt.Sprintf("elevenlabs returned status %d", statusCode)
	}
	return &model.BackendError{Op: op, StatusCode: statusCode, Message: message}
}
