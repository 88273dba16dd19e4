package pricehistory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/energyprice"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxResponseBytes   = 4 << 20
)

type httpPayload struct {
	Energy string              `json:"energy"`
	Points []energyprice.Point `json:"points"`
}

// HTTPSource fetches price history from a JSON endpoint queried as
// GET <url>?energy=<type>.
type HTTPSource struct {
	url    string
	client *http.Client
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithTimeout sets the request timeout of the default client.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if timeout > 0 {
			s.client = &http.Client{Timeout: timeout}
		}
	}
}

// NewHTTPSource constructs an HTTP price history source.
func NewHTTPSource(endpoint string, opts ...HTTPOption) (*HTTPSource, error) {
	if endpoint == "" {
		return nil, errors.New("http source: empty url")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("http source: invalid url: %w", err)
	}
	source := &HTTPSource{
		url:    endpoint,
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(source)
	}
	return source, nil
}

// History downloads and validates the series of an energy type.
func (s *HTTPSource) History(ctx context.Context, e energy.Type) ([]energyprice.Point, error) {
	if s == nil || s.url == "" {
		return nil, errors.New("http source: empty url")
	}
	u, err := url.Parse(s.url)
	if err != nil {
		return nil, err
	}
	query := u.Query()
	query.Set("energy", string(e))
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w for %s", ErrNoHistory, e)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http source: non-2xx response %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("http source: read body: %w", err)
	}
	var payload httpPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("http source: decode body: %w", err)
	}
	if len(payload.Points) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoHistory, e)
	}
	for i := range payload.Points {
		if err := normalizePoint(&payload.Points[i]); err != nil {
			return nil, fmt.Errorf("http source: entry %d: %w", i, err)
		}
	}
	Series{e: payload.Points}.sort()
	return payload.Points, nil
}
