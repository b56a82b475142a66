// Package report talks to a Gotenberg instance to turn HTML into PDF.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// PageOptions are the chromium conversion form fields sent with a document.
type PageOptions struct {
	PaperWidth   string
	PaperHeight  string
	MarginTop    string
	MarginBottom string
	MarginLeft   string
	MarginRight  string
	Landscape    bool
}

// A4 is the layout used for quotes.
var A4 = PageOptions{
	PaperWidth:   "8.27",
	PaperHeight:  "11.7",
	MarginTop:    "0.5",
	MarginBottom: "0.5",
	MarginLeft:   "0.5",
	MarginRight:  "0.5",
}

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client. timeout bounds every call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts a standalone HTML document into PDF bytes.
func (c *Client) RenderHTML(ctx context.Context, html []byte, opts PageOptions) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(html); err != nil {
		return nil, err
	}
	for name, value := range opts.fields() {
		if err := writer.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return io.ReadAll(resp.Body)
}

func (o PageOptions) fields() map[string]string {
	out := map[string]string{"printBackground": "true"}
	set := func(name, value string) {
		if value != "" {
			out[name] = value
		}
	}
	set("paperWidth", o.PaperWidth)
	set("paperHeight", o.PaperHeight)
	set("marginTop", o.MarginTop)
	set("marginBottom", o.MarginBottom)
	set("marginLeft", o.MarginLeft)
	set("marginRight", o.MarginRight)
	if o.Landscape {
		out["landscape"] = "true"
	}
	return out
}
