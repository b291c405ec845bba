package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NetworkError is returned when a request produced no response at all
// (timeout, DNS failure, connection reset).
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err carries a NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

const maxResponseBytes = 8 << 20

// HTTPSender is the base SendFunc backed by net/http.
type HTTPSender struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPSender creates a sender for the given base URL.
func NewHTTPSender(baseURL string, timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSender{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// NewHTTPSenderWithClient uses a caller supplied *http.Client.
func NewHTTPSenderWithClient(baseURL string, client *http.Client) *HTTPSender {
	return &HTTPSender{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// Send performs one physical HTTP round trip.
func (s *HTTPSender) Send(ctx context.Context, r *Request) (*Response, error) {
	target := s.resolve(r)

	var body io.Reader
	if r.Body != nil {
		switch b := r.Body.(type) {
		case []byte:
			body = bytes.NewReader(b)
		default:
			data, err := json.Marshal(b)
			if err != nil {
				return nil, fmt.Errorf("marshal request: %w", err)
			}
			body = bytes.NewReader(data)
		}
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range r.Header {
		req.Header[k] = append([]string(nil), v...)
	}
	if r.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: fmt.Errorf("read response: %w", err)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// Close releases idle connections.
func (s *HTTPSender) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *HTTPSender) resolve(r *Request) string {
	path := r.Path
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := s.baseURL + path
	if len(r.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + r.Query.Encode()
	}
	return target
}
