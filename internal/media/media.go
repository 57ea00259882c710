// Package media downloads post images and classifies post URLs.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/booruterm/booruterm/internal/booru"
	"github.com/booruterm/booruterm/internal/ffmpeg"
	"github.com/booruterm/booruterm/internal/logging"
)

// BrowserUserAgent is sent to image hosts, which throttle unknown clients.
const BrowserUserAgent = ffmpeg.DefaultUserAgent

// maxImageSize caps a single download.
const maxImageSize = 64 << 20

var animatedExtensions = map[string]bool{
	"webm": true,
	"mp4":  true,
	"gif":  true,
}

// IsAnimated reports whether rawURL points at a video or gif, judged by the
// extension of its path.
func IsAnimated(rawURL string) bool {
	return animatedExtensions[Extension(rawURL)]
}

// Extension returns the lower-cased extension of the URL path without the
// query string or fragment.
func Extension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
}

// Fetcher downloads still images for a post.
type Fetcher struct {
	httpClient *retryablehttp.Client
	logger     logging.Logger
}

// NewFetcher creates a fetcher with a bounded per-request timeout.
func NewFetcher(logger logging.Logger) *Fetcher {
	if logger == nil {
		logger = logging.GetLogger("media")
	}

	hc := retryablehttp.NewClient()
	hc.RetryMax = 1
	hc.HTTPClient.Timeout = 30 * time.Second
	hc.Logger = logger
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Fetcher{httpClient: hc, logger: logger}
}

// Fetch downloads the full image of post. When the full image is not served
// as an image (an error status or an HTML page), the preview is used instead.
func (f *Fetcher) Fetch(ctx context.Context, post *booru.Post) ([]byte, error) {
	referer := ffmpeg.Origin(post.PageURL)
	if referer == "" {
		referer = ffmpeg.Origin(post.FullURL)
	}

	data, ok, err := f.get(ctx, post.FullURL, referer)
	if err == nil && ok {
		return data, nil
	}
	if err != nil {
		f.logger.Warn("Full image download failed, using preview", "url", post.FullURL, "error", err)
	} else {
		f.logger.Info("Full image unavailable, using preview", "url", post.FullURL)
	}

	if post.PreviewURL == "" {
		return nil, fmt.Errorf("fetch %s: no preview to fall back to", post.FullURL)
	}
	data, ok, err = f.get(ctx, post.PreviewURL, referer)
	if err != nil {
		return nil, fmt.Errorf("fetch preview: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("fetch preview %s: not an image response", post.PreviewURL)
	}
	return data, nil
}

// get returns the body and whether it looks like a usable image response.
func (f *Fetcher) get(ctx context.Context, rawURL, referer string) ([]byte, bool, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", BrowserUserAgent)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := f.httpClient.Do(req)
	if resp == nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, false, err
	}

	ctype := strings.ToLower(resp.Header.Get("Content-Type"))
	ok := resp.StatusCode == http.StatusOK && !strings.Contains(ctype, "text/html")
	f.logger.Debug("Fetched media", "url", rawURL, "status", resp.StatusCode, "content_type", ctype, "bytes", len(data))
	return data, ok, nil
}
