package deepdub

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	// DefaultBaseURL is the default REST API base URL.
	DefaultBaseURL = "https://restapi.deepdub.ai/api/v1"

	// DefaultWebSocketURL is the default multiplexed WebSocket endpoint.
	DefaultWebSocketURL = "wss://wsapi.deepdub.ai/open"

	// DefaultStreamingURL is the default streaming WebSocket endpoint.
	DefaultStreamingURL = "wss://wss.deepdub.ai/ws"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second
)

// EU region endpoints.
const (
	euBaseURL      = "https://restapi.eu.deepdub.ai/api/v1"
	euWebSocketURL = "wss://wsapi.eu.deepdub.ai/open"
	euStreamingURL = "wss://wss.eu.deepdub.ai/ws"
)

// Client is the Deepdub API client.
type Client struct {
	// TTS provides one-shot text-to-speech synthesis over REST.
	TTS *TTSService

	// Voice provides voice asset management operations.
	Voice *VoiceService

	config *clientConfig
}

// clientConfig holds the client configuration.
type clientConfig struct {
	apiKey       string
	baseURL      string
	wsURL        string
	streamingURL string
	httpClient   *http.Client
	timeout      time.Duration
}

// Option is a function that configures the client.
type Option func(*clientConfig)

// WithAPIKey sets the API key.
//
// When not supplied, the DEEPDUB_API_KEY environment variable is used.
// Header format: x-api-key: {apiKey}
func WithAPIKey(apiKey string) Option {
	return func(c *clientConfig) {
		c.apiKey = apiKey
	}
}

// WithBaseURL sets a custom REST API base URL.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithWebSocketURL sets a custom multiplexed WebSocket URL.
func WithWebSocketURL(url string) Option {
	return func(c *clientConfig) {
		c.wsURL = url
	}
}

// WithStreamingURL sets a custom streaming WebSocket URL.
func WithStreamingURL(url string) Option {
	return func(c *clientConfig) {
		c.streamingURL = url
	}
}

// WithEU switches all default endpoints to the EU region.
//
// Custom URLs set with WithBaseURL and friends take precedence.
func WithEU() Option {
	return func(c *clientConfig) {
		c.baseURL = euBaseURL
		c.wsURL = euWebSocketURL
		c.streamingURL = euStreamingURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// NewClient creates a Deepdub API client.
//
// The API key is required. It can be supplied with WithAPIKey or through
// the DEEPDUB_API_KEY environment variable. Endpoint URLs fall back to the
// DEEPDUB_BASE_URL, DEEPDUB_BASE_WEBSOCKET_URL and
// DEEPDUB_BASE_WEBSOCKET_STREAMING_URL environment variables, then to the
// service defaults (EU endpoints when DD_EU=1).
func NewClient(opts ...Option) (*Client, error) {
	config := &clientConfig{
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.apiKey == "" {
		config.apiKey = os.Getenv("DEEPDUB_API_KEY")
	}
	if config.apiKey == "" {
		return nil, fmt.Errorf("deepdub: no API key provided, use WithAPIKey or set DEEPDUB_API_KEY")
	}

	eu := os.Getenv("DD_EU") == "1"
	if config.baseURL == "" {
		config.baseURL = envOr("DEEPDUB_BASE_URL", pick(eu, euBaseURL, DefaultBaseURL))
	}
	if config.wsURL == "" {
		config.wsURL = envOr("DEEPDUB_BASE_WEBSOCKET_URL", pick(eu, euWebSocketURL, DefaultWebSocketURL))
	}
	if config.streamingURL == "" {
		config.streamingURL = envOr("DEEPDUB_BASE_WEBSOCKET_STREAMING_URL", pick(eu, euStreamingURL, DefaultStreamingURL))
	}

	if config.httpClient == nil {
		config.httpClient = &http.Client{
			Timeout: config.timeout,
		}
	}

	c := &Client{
		config: config,
	}

	c.TTS = newTTSService(c)
	c.Voice = newVoiceService(c)

	return c, nil
}

// authHeaders returns headers shared by HTTP and WebSocket requests.
func (c *Client) authHeaders() http.Header {
	headers := http.Header{}
	headers.Set("x-api-key", c.config.apiKey)
	return headers
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
