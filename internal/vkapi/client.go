// ABOUTME: HTTP client for the getById methods used to fill attachments
// ABOUTME: Rate-limited, logged and instrumented; errors are passed through

package vkapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/harper/vkattach/internal/attachment"
	"github.com/harper/vkattach/internal/logging"
)

const (
	DefaultBaseURL = "https://api.vk.com/method"
	DefaultVersion = "5.199"
)

// APIError is an error object returned by the API.
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
	Method  string `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: api error %d: %s", e.Method, e.Code, e.Message)
}

// Client calls API methods over HTTPS.
type Client struct {
	httpClient *http.Client
	baseURL    string
	version    string
	token      string
	limiter    *rate.Limiter
	logger     *zap.Logger
	metrics    *Metrics
}

var _ attachment.API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the method endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithVersion overrides the API version.
func WithVersion(v string) Option {
	return func(c *Client) { c.version = v }
}

// WithRateLimit allows rps calls per second with a burst of one.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logging.OrNop(logger) }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client authenticated with token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		version:    DefaultVersion,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(3), 1),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PhotosGetByID calls photos.getById.
func (c *Client) PhotosGetByID(ctx context.Context, params attachment.PhotosGetByIDParams) ([]attachment.PhotoPayload, error) {
	values := url.Values{}
	values.Set("photos", params.Photos)
	if params.Extended {
		values.Set("extended", "1")
	} else {
		values.Set("extended", "0")
	}

	var photos []attachment.PhotoPayload
	if err := c.call(ctx, "photos.getById", values, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// DocsGetByID calls docs.getById.
func (c *Client) DocsGetByID(ctx context.Context, params attachment.DocsGetByIDParams) ([]attachment.GraffitiPayload, error) {
	values := url.Values{}
	values.Set("docs", params.Docs)

	var docs []attachment.GraffitiPayload
	if err := c.call(ctx, "docs.getById", values, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// PollsGetByID calls polls.getById.
func (c *Client) PollsGetByID(ctx context.Context, params attachment.PollsGetByIDParams) ([]attachment.PollPayload, error) {
	values := url.Values{}
	values.Set("poll_id", strconv.FormatUint(params.PollID, 10))
	values.Set("owner_id", strconv.FormatInt(params.OwnerID, 10))
	if params.AccessKey != "" {
		values.Set("access_key", params.AccessKey)
	}

	var polls []attachment.PollPayload
	if err := c.call(ctx, "polls.getById", values, &polls); err != nil {
		return nil, err
	}
	return polls, nil
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *APIError       `json:"error"`
}

// call invokes method and decodes its response as a list into out.
func (c *Client) call(ctx context.Context, method string, params url.Values, out any) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.observe(method, err, time.Since(start))
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("access_token", c.token)
	params.Set("v", c.version)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug("api call", zap.String("method", method))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %s", method, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if env.Error != nil {
		env.Error.Method = method
		c.logger.Warn("api error",
			zap.String("method", method),
			zap.Int("code", env.Error.Code),
			zap.String("message", env.Error.Message))
		return env.Error
	}

	if err := json.Unmarshal(asList(env.Response), out); err != nil {
		return fmt.Errorf("%s: decode items: %w", method, err)
	}
	return nil
}

// asList normalises a response to a JSON array. Methods answer with an
// array, an {"items": [...]} object, or a single object.
func asList(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("[]")
	}
	if trimmed[0] == '[' {
		return trimmed
	}

	var wrapper struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err == nil && len(wrapper.Items) > 0 && wrapper.Items[0] == '[' {
		return wrapper.Items
	}

	list := make([]byte, 0, len(trimmed)+2)
	list = append(list, '[')
	list = append(list, trimmed...)
	return append(list, ']')
}
