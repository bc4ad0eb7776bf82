package whatsapp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrMissingCredentials indicates the client was constructed without an
// access token or sender phone number ID. This is a deployment
// misconfiguration, not a transient failure.
var ErrMissingCredentials = errors.New("whatsapp credentials are not configured")

// Client sends messages via the WhatsApp Cloud API
type Client struct {
	apiURL        string
	accessToken   string
	phoneNumberID string
	client        *http.Client
}

// Config holds configuration for the WhatsApp client
type Config struct {
	APIURL        string
	AccessToken   string
	PhoneNumberID string
}

// NewClient creates a new WhatsApp Cloud API client
func NewClient(config Config) *Client {
	return &Client{
		apiURL:        config.APIURL,
		accessToken:   config.AccessToken,
		phoneNumberID: config.PhoneNumberID,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendError is a provider-rejected send: the API answered with a non-2xx
// status and a structured error body.
type SendError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("whatsapp send failed: %s (status %d, code %d)", e.Message, e.StatusCode, e.Code)
}

type textPayload struct {
	Body string `json:"body"`
}

type sendTextRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             textPayload `json:"text"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type sendTextResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendText sends a plain text message to a phone number. Returns the provider
// message ID on success. Failures are either network errors, or *SendError
// when the provider rejected the payload.
func (c *Client) SendText(to, body string) (string, error) {
	if c.accessToken == "" || c.phoneNumberID == "" {
		return "", ErrMissingCredentials
	}

	payload := sendTextRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textPayload{Body: body},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.apiURL, c.phoneNumberID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create send request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send message request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read send response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiErrorBody
		_ = json.Unmarshal(respBody, &apiErr)
		return "", &SendError{
			StatusCode: resp.StatusCode,
			Code:       apiErr.Error.Code,
			Message:    apiErr.Error.Message,
		}
	}

	var sendResp sendTextResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		return "", fmt.Errorf("failed to parse send response: %w", err)
	}

	if len(sendResp.Messages) == 0 {
		return "", nil
	}
	return sendResp.Messages[0].ID, nil
}

type mediaURLResponse struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// GetMediaURL resolves a media ID from an inbound message into a downloadable
// URL. The URL is short-lived; callers store it as provenance, not for
// later retrieval.
func (c *Client) GetMediaURL(mediaID string) (string, error) {
	if c.accessToken == "" {
		return "", ErrMissingCredentials
	}

	url := fmt.Sprintf("%s/%s", c.apiURL, mediaID)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create media request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send media request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read media response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiErrorBody
		_ = json.Unmarshal(respBody, &apiErr)
		return "", &SendError{
			StatusCode: resp.StatusCode,
			Code:       apiErr.Error.Code,
			Message:    apiErr.Error.Message,
		}
	}

	var mediaResp mediaURLResponse
	if err := json.Unmarshal(respBody, &mediaResp); err != nil {
		return "", fmt.Errorf("failed to parse media response: %w", err)
	}

	return mediaResp.URL, nil
}
