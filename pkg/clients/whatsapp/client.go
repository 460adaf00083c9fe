package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/preorder/internal/config"
)

// ErrEmptyMessage is returned for a message without recipient or body.
var ErrEmptyMessage = errors.New("whatsapp message needs a recipient and a body")

// Client sends plain text messages through the WhatsApp Cloud API.
type Client interface {
	// SendText delivers body to the given number and returns the message id.
	SendText(ctx context.Context, to, body string) (string, error)
}

// APIError is a failure reported by the Graph API.
type APIError struct {
	Status  int
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error: status=%d code=%d: %s", e.Status, e.Code, e.Message)
}

// Retryable reports whether sending again may succeed.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

type textMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// APIClient is a resty-backed implementation of Client. Rate limits and
// server errors are retried twice.
type APIClient struct {
	httpClient *resty.Client
	messages   string
}

// NewClient builds a WhatsApp API client using the provided configuration values.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	restyClient := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.BaseURL, "/"), cfg.APIVersion)).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &APIClient{
		httpClient: restyClient,
		messages:   cfg.PhoneNumberID + "/messages",
	}
}

// SendText posts a text message without link preview.
func (c *APIClient) SendText(ctx context.Context, to, body string) (string, error) {
	to, body = strings.TrimSpace(to), strings.TrimSpace(body)
	if to == "" || body == "" {
		return "", ErrEmptyMessage
	}

	result := new(sendResponse)
	failure := new(errorResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(textMessage{
			MessagingProduct: "whatsapp",
			RecipientType:    "individual",
			To:               to,
			Type:             "text",
			Text:             textBody{Body: body},
		}).
		SetResult(result).
		SetError(failure).
		Post(c.messages)
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.IsError() {
		apiErr := failure.Error
		apiErr.Status = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(apiErr.Status)
		}
		return "", &apiErr
	}

	if len(result.Messages) == 0 {
		return "", nil
	}
	return result.Messages[0].ID, nil
}
