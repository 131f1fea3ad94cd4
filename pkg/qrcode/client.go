package qrcode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultSize is the edge length in pixels of rendered codes.
const DefaultSize = 300

var ErrUnavailable = errors.New("qr renderer not configured")

// Client talks to a remote QR renderer speaking the api.qrserver.com
// create-qr-code protocol: GET {base}?data=...&size=WxH&format=png.
type Client struct {
	BaseURL    string
	HTTPClient *resty.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSpace(baseURL),
		HTTPClient: resty.New().SetTimeout(10 * time.Second),
	}
}

// Available reports whether a renderer URL is configured.
func (c *Client) Available() bool {
	return c != nil && c.BaseURL != ""
}

// Render returns the PNG encoding of data.
func (c *Client) Render(ctx context.Context, data string, size int) ([]byte, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}
	if size <= 0 {
		size = DefaultSize
	}

	resp, err := c.HTTPClient.R().
		SetContext(ctx).
		SetHeader("Accept", "image/png").
		SetQueryParams(map[string]string{
			"data":   data,
			"size":   fmt.Sprintf("%dx%d", size, size),
			"format": "png",
		}).
		Get(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("qr renderer returned %s", resp.Status())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("qr renderer returned unexpected content type %q", ct)
	}
	if len(resp.Body()) == 0 {
		return nil, errors.New("qr renderer returned an empty body")
	}
	return resp.Body(), nil
}
