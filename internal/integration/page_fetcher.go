// Package integration handles external service interactions
package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// DefaultBaseURL is the forecast site queried when no base URL is configured
const DefaultBaseURL = "https://www.gismeteo.ru"

// DefaultTimeout bounds a single page request
const DefaultTimeout = 10 * time.Second

// ErrInvalidCity is returned when a city slug cannot be used in a forecast URL
var ErrInvalidCity = errors.New("invalid city slug")

var citySlugRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// FetchError reports a failed page request: a transport error, a timeout or a non-2xx status
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("unexpected status code %d fetching %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PageFetcher retrieves the raw markup of a web page
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages with a plain GET and a bounded timeout
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher whose requests give up after timeout
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// FetchPage performs a single GET request; it never retries
func (f *HTTPFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	log.Printf("Sending HTTP request to %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	res, err := f.client.Do(req)
	if err != nil {
		log.Printf("Error fetching page: %v", err)
		return "", &FetchError{URL: url, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		log.Printf("Received unexpected status code: %d %s", res.StatusCode, res.Status)
		return "", &FetchError{URL: url, StatusCode: res.StatusCode, Err: errors.New(res.Status)}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	log.Printf("Successfully received %d bytes with status: %s", len(body), res.Status)

	return string(body), nil
}

// NormalizeCity trims and lowercases a user supplied city slug and checks it is URL safe
func NormalizeCity(city string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(city))
	if !citySlugRe.MatchString(slug) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCity, city)
	}
	return slug, nil
}

// ForecastURL builds the 10-day forecast page URL for a city
func ForecastURL(baseURL, city string) (string, error) {
	slug, err := NormalizeCity(city)
	if err != nil {
		return "", err
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return fmt.Sprintf("%s/weather-%s/10-days/", strings.TrimRight(baseURL, "/"), slug), nil
}
