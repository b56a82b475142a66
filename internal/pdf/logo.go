package pdf

import (
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxLogoBytes = 2 << 20

// LogoFetcher downloads a company logo and inlines it as a data URI.
type LogoFetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewLogoFetcher returns a fetcher giving up after timeout.
func NewLogoFetcher(timeout time.Duration) *LogoFetcher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &LogoFetcher{client: &http.Client{Timeout: timeout}, timeout: timeout}
}

// Fetch returns the logo as a data URI.
func (f *LogoFetcher) Fetch(ctx context.Context, rawURL string) (template.URL, error) {
	if strings.HasPrefix(rawURL, "data:") {
		if uri := SignatureImage(rawURL); uri != "" {
			return uri, nil
		}
		return "", fmt.Errorf("logo: unsupported data uri")
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("logo: unsupported url %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "devisflow-pdf/1.0")
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("logo: fetch: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("logo: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes+1))
	if err != nil {
		return "", fmt.Errorf("logo: read: %w", err)
	}
	if len(data) > maxLogoBytes {
		return "", fmt.Errorf("logo: larger than %d bytes", maxLogoBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("logo: not an image (%s)", mediaType)
	}
	return template.URL("data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)), nil
}
