package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kass/go-city-map/pkg/models"
)

// DefaultGeoIPURL is an ip-api compatible endpoint
const DefaultGeoIPURL = "http://ip-api.com/json"

type geoIPResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// HTTPPositioner locates the machine from its public IP through an
// ip-api compatible service. The fix is coarse whatever HighAccuracy says.
type HTTPPositioner struct {
	client *http.Client
	url    string
}

// NewHTTPPositioner creates a positioner querying url, or DefaultGeoIPURL
func NewHTTPPositioner(url string) *HTTPPositioner {
	if strings.TrimSpace(url) == "" {
		url = DefaultGeoIPURL
	}
	return &HTTPPositioner{
		client: &http.Client{},
		url:    url,
	}
}

func (h *HTTPPositioner) CurrentPosition(ctx context.Context, opts Options) (models.Coordinate, error) {
	resp, err := h.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Coordinate{}, fmt.Errorf("geoip lookup: %w", ErrTimeout)
		}
		return models.Coordinate{}, fmt.Errorf("geoip lookup: %w", err)
	}
	defer resp.Body.Close()

	var decoded geoIPResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return models.Coordinate{}, fmt.Errorf("decode geoip response: %w", err)
	}
	if decoded.Status != "" && decoded.Status != "success" {
		return models.Coordinate{}, fmt.Errorf("%w: %s", ErrPositionUnavailable, decoded.Message)
	}
	if decoded.Lat == nil || decoded.Lon == nil {
		return models.Coordinate{}, fmt.Errorf("%w: response has no coordinates", ErrPositionUnavailable)
	}

	return models.Coordinate{Lat: *decoded.Lat, Lon: *decoded.Lon}, nil
}

func (h *HTTPPositioner) do(req *http.Request) (*http.Response, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) with exponential backoff while respecting ctx.
func (h *HTTPPositioner) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 3
	backoff := 200 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := h.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) && ctx.Err() == nil {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
