package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the Cloudflare v4 API root.
const DefaultEndpoint = "https://api.cloudflare.com/client/v4"

// Cloudflare API error codes the client classifies.
const (
	cfNoRoute        = 7000
	cfCouldNotRoute  = 7003
	cfKeyNotFound    = 10009
	cfNamespaceGone  = 10013
	cfAuthentication = 10000
)

// Store reads and writes single blobs by key.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, acct Account, key string) (string, bool, error)
	// Put stores value under key.
	Put(ctx context.Context, acct Account, key, value string) (*WriteResult, error)
}

// APIMessage is one entry of the errors or messages arrays of a
// Cloudflare API response.
type APIMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// WriteResult is the outcome of a Put.
type WriteResult struct {
	Success  bool         `json:"success"`
	Errors   []APIMessage `json:"errors"`
	Messages []APIMessage `json:"messages"`
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// Endpoint overrides DefaultEndpoint.
	Endpoint string
	// HTTPClient is used for requests. If nil a client with a 30s timeout
	// is used.
	HTTPClient *http.Client
	// WriteInterval is the minimum spacing between writes to one key.
	// Zero means one second, negative disables throttling.
	WriteInterval time.Duration
	Logger        logger.Logger
}

// Client is a Store backed by the Workers KV REST API. Requests are never
// retried.
type Client struct {
	endpoint string
	http     *http.Client
	interval time.Duration
	log      logger.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient creates a Client. A nil config uses the defaults.
func NewClient(cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}
	c := &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		http:     cfg.HTTPClient,
		interval: cfg.WriteInterval,
		log:      logger.Or(cfg.Logger),
		limiters: make(map[string]*rate.Limiter),
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.interval == 0 {
		c.interval = time.Second
	}
	return c
}

func (c *Client) valueURL(acct Account, key string) string {
	return fmt.Sprintf("%s/accounts/%s/storage/kv/namespaces/%s/values/%s",
		c.endpoint,
		url.PathEscape(acct.AccountID),
		url.PathEscape(acct.NamespaceID),
		url.PathEscape(key),
	)
}

func (c *Client) limiter(acct Account, key string) *rate.Limiter {
	if c.interval < 0 {
		return nil
	}
	id := acct.AccountID + "/" + acct.NamespaceID + "/" + key
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[id]
	if !ok {
		l = rate.NewLimiter(rate.Every(c.interval), 1)
		c.limiters[id] = l
	}
	return l
}

func (c *Client) do(ctx context.Context, method, u string, body io.Reader, acct Account) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, syncerr.Wrap(syncerr.Internal, err)
	}
	req.Header.Set("Authorization", "Bearer "+acct.Token)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "text/plain")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &syncerr.Error{Code: syncerr.NetworkError, Message: err.Error(), Err: err}
	}
	return resp, nil
}

// Get reads the value stored under key. A missing key is not an error.
func (c *Client) Get(ctx context.Context, acct Account, key string) (value string, found bool, err error) {
	start := time.Now()
	defer func() {
		requestsTotal.WithLabelValues("get", resultLabel(err)).Inc()
		requestDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	}()
	resp, err := c.do(ctx, http.MethodGet, c.valueURL(acct, key), nil, acct)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, &syncerr.Error{Code: syncerr.NetworkError, Message: err.Error(), Err: err}
	}
	if resp.StatusCode == http.StatusOK {
		blobBytes.WithLabelValues("get").Observe(float64(len(data)))
		return string(data), true, nil
	}
	var env WriteResult
	_ = json.Unmarshal(data, &env)
	if resp.StatusCode == http.StatusNotFound && hasCode(env.Errors, cfKeyNotFound) {
		return "", false, nil
	}
	return "", false, classify(resp.StatusCode, env.Errors)
}

// Put writes value under key, waiting for the per-key write slot first.
func (c *Client) Put(ctx context.Context, acct Account, key, value string) (res *WriteResult, err error) {
	start := time.Now()
	defer func() {
		requestsTotal.WithLabelValues("put", resultLabel(err)).Inc()
		requestDuration.WithLabelValues("put").Observe(time.Since(start).Seconds())
	}()
	if l := c.limiter(acct, key); l != nil {
		if err := l.Wait(ctx); err != nil {
			return nil, &syncerr.Error{Code: syncerr.NetworkError, Message: err.Error(), Err: err}
		}
	}
	blobBytes.WithLabelValues("put").Observe(float64(len(value)))
	resp, err := c.do(ctx, http.MethodPut, c.valueURL(acct, key), strings.NewReader(value), acct)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	res = &WriteResult{}
	if err := json.NewDecoder(resp.Body).Decode(res); err != nil {
		if resp.StatusCode/100 == 2 {
			return &WriteResult{Success: true}, nil
		}
		return nil, classify(resp.StatusCode, nil)
	}
	if !res.Success || resp.StatusCode/100 != 2 {
		res.Success = false
		return res, classify(resp.StatusCode, res.Errors)
	}
	return res, nil
}

func hasCode(msgs []APIMessage, code int) bool {
	for _, m := range msgs {
		if m.Code == code {
			return true
		}
	}
	return false
}

// classify maps a failed API response onto the error taxonomy.
func classify(status int, msgs []APIMessage) error {
	msg := http.StatusText(status)
	if len(msgs) > 0 && msgs[0].Message != "" {
		msg = msgs[0].Message
	}
	switch {
	case hasCode(msgs, cfNoRoute), hasCode(msgs, cfCouldNotRoute), hasCode(msgs, cfNamespaceGone):
		return syncerr.New(syncerr.RouteNotFound, msg)
	case hasCode(msgs, cfAuthentication), status == http.StatusUnauthorized, status == http.StatusForbidden:
		return syncerr.New(syncerr.AccountCheck, msg)
	case status == http.StatusNotFound:
		return syncerr.New(syncerr.RouteNotFound, msg)
	case status >= 500:
		return syncerr.New(syncerr.NetworkError, msg)
	default:
		return syncerr.New(syncerr.Internal, msg)
	}
}
