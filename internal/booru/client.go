package booru

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/booruterm/booruterm/internal/logging"
)

// PageLimit is how many posts one request asks for; the returned post is
// picked at random among them.
const PageLimit = 100

const maxErrorBody = 300

// Client fetches random posts from image-board APIs.
type Client struct {
	httpClient *retryablehttp.Client
	userAgent  string
	endpoints  map[Provider]string
	pick       func(n int) int
	logger     logging.Logger
}

// NewClient creates a client identifying itself with userAgent.
func NewClient(userAgent string, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.GetLogger("booru")
	}

	hc := retryablehttp.NewClient()
	hc.RetryMax = 2
	hc.RetryWaitMin = 500 * time.Millisecond
	hc.RetryWaitMax = 2 * time.Second
	hc.HTTPClient.Timeout = 20 * time.Second
	hc.Logger = logger
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	endpoints := make(map[Provider]string, len(defaultEndpoints))
	for p, u := range defaultEndpoints {
		endpoints[p] = u
	}

	return &Client{
		httpClient: hc,
		userAgent:  userAgent,
		endpoints:  endpoints,
		pick:       rand.IntN,
		logger:     logger,
	}
}

// SetEndpoint overrides the API URL used for provider.
func (c *Client) SetEndpoint(provider Provider, endpoint string) {
	c.endpoints[provider] = endpoint
}

// SetRetries sets how many times a failed request is retried.
func (c *Client) SetRetries(n int) {
	c.httpClient.RetryMax = n
}

// Fetch returns a random post matching params from provider. params carries
// the provider's configured auth, tags and extra query keys; nil means the
// provider is not configured.
func (c *Client) Fetch(ctx context.Context, provider Provider, params url.Values) (*Post, error) {
	if params == nil {
		return nil, newError(ErrCodeNoAuth, fmt.Sprintf(
			"No auth found for %s. You can create an api-key and find your user id/username in the %s user settings page", provider, provider), nil)
	}
	endpoint, ok := c.endpoints[provider]
	if !ok {
		return nil, newError(ErrCodeBadResponse, fmt.Sprintf("unknown provider %q", provider), nil)
	}

	query := cloneValues(params)
	query.Set("limit", strconv.Itoa(PageLimit))
	if provider.usesDAPI() {
		query.Set("page", "dapi")
		query.Set("s", "post")
		query.Set("q", "index")
		query.Set("pid", "0")
		query.Set("json", "1")
	}

	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, newError(ErrCodeRequestFailed, "invalid endpoint", err)
	}
	base.RawQuery = query.Encode()

	body, err := c.get(ctx, base.String())
	if err != nil {
		return nil, err
	}

	var posts []Post
	if provider.usesDAPI() {
		raw, err := decodeDAPI(body)
		if err != nil {
			return nil, badResponse(base, body, err)
		}
		for _, p := range raw {
			posts = append(posts, p.normalize(base.Host))
		}
	} else {
		raw, err := decodeE621(body)
		if err != nil {
			return nil, badResponse(base, body, err)
		}
		for _, p := range raw {
			// Posts hidden from anonymous users come back without a file URL.
			if p.File.URL == "" {
				continue
			}
			posts = append(posts, p.normalize(base.Host))
		}
	}

	if len(posts) == 0 {
		return nil, &Error{Code: ErrCodeNoPosts, Message: "No posts found from criteria (check tags/auth)", URL: redact(base)}
	}

	post := posts[c.pick(len(posts))]
	c.logger.Debug("Picked post", "provider", provider, "id", post.ID, "candidates", len(posts))
	return &post, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newError(ErrCodeRequestFailed, "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	// Once retries are exhausted the last response comes back alongside
	// the retry error so its status and body can be reported.
	resp, err := c.httpClient.Do(req)
	if resp == nil {
		return nil, newError(ErrCodeRequestFailed, "API call failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrCodeRequestFailed, "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Code:    ErrCodeRequestFailed,
			Message: "API call returned unexpected response",
			Status:  resp.StatusCode,
			Body:    truncate(body, maxErrorBody),
			URL:     redact(req.URL),
		}
	}
	return body, nil
}

func badResponse(u *url.URL, body []byte, cause error) *Error {
	return &Error{
		Code:    ErrCodeBadResponse,
		Message: "Response was not in the expected JSON format",
		Body:    truncate(body, maxErrorBody),
		URL:     redact(u),
		Cause:   cause,
	}
}

func truncate(body []byte, n int) string {
	if len(body) > n {
		body = body[:n]
	}
	return string(body)
}

// redact hides credentials before a URL ends up in an error message.
func redact(u *url.URL) string {
	clean := *u
	q := clean.Query()
	for _, key := range []string{"api_key", "user_id", "login", "password"} {
		if q.Has(key) {
			q.Set(key, "REDACTED")
		}
	}
	clean.RawQuery = q.Encode()
	return clean.String()
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
