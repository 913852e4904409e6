package translation

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

// EndpointPath is the path of the translation endpoint.
const EndpointPath = "/traducir"

var (
	// ErrTransport is returned when the request could not be sent or the
	// response could not be read.
	ErrTransport = errors.New("translation service unreachable")

	// ErrBadStatus is returned for a non-2xx reply without an error message.
	ErrBadStatus = errors.New("unexpected status from translation service")

	// ErrMalformedResponse is returned when the body is not a JSON object.
	ErrMalformedResponse = errors.New("malformed response from translation service")
)

// Client posts text to a translation endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL. A zero timeout
// leaves the request unbounded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   Endpoint(baseURL),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Endpoint joins a server base URL with the endpoint path. A URL already
// ending in the endpoint path is returned unchanged.
func Endpoint(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(base, EndpointPath) {
		return base
	}
	return base + EndpointPath
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string {
	return c.endpoint
}

// Translate posts text and decodes the reply. An application error reported
// by the server is returned as a Response with Error set and a nil error.
func (c *Client) Translate(ctx context.Context, text string) (*Response, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	body, err := json.Marshal(Request{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	var out Response
	decodeErr := decodeObject(data, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && out.Failed() {
			return &out, nil
		}
		return nil, fmt.Errorf("%w: HTTP %d", ErrBadStatus, resp.StatusCode)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}

	return &out, nil
}

// decodeObject decodes a JSON object into out. null, arrays and scalars are
// rejected even though json.Unmarshal accepts some of them.
func decodeObject(data []byte, out *Response) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("body is not a JSON object")
	}
	return json.Unmarshal(trimmed, out)
}
