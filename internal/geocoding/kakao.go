package geocoding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/UnknownOlympus/kakao-geocoder/internal/models"
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Common errors for the Kakao client.
var (
	ErrUnauthorized = errors.New("kakao API unauthorized (invalid API key)")
	ErrNilURI       = errors.New("request URI is nil")
)

// ResultKind discriminates the outcome of a single Kakao call.
type ResultKind int

const (
	// KindSuccess means the provider answered 2xx and the body, if any, was decoded.
	KindSuccess ResultKind = iota
	// KindUnauthorized means the provider answered 401.
	KindUnauthorized
	// KindTransient covers every other failure: transport, non-200 status, unreadable or malformed body.
	KindTransient
)

func (k ResultKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindUnauthorized:
		return "unauthorized"
	case KindTransient:
		return "transient"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Result is the classified outcome of one call. Response is set only for KindSuccess
// and stays nil when a 2xx carried no body; Err is set only for the failure kinds.
type Result struct {
	Kind       ResultKind
	Response   *models.GeocodeResponse
	StatusCode int // zero when no HTTP response was received
	Err        error
}

// Success builds a KindSuccess result.
func Success(resp *models.GeocodeResponse) Result {
	return Result{Kind: KindSuccess, Response: resp, StatusCode: http.StatusOK}
}

func successWithStatus(status int, resp *models.GeocodeResponse) Result {
	res := Success(resp)
	res.StatusCode = status
	return res
}

// Unauthorized builds a KindUnauthorized result.
func Unauthorized(err error) Result {
	return Result{Kind: KindUnauthorized, StatusCode: http.StatusUnauthorized, Err: err}
}

// Transient builds a KindTransient result.
func Transient(status int, err error) Result {
	return Result{Kind: KindTransient, StatusCode: status, Err: err}
}

// KakaoClient issues GET requests to the Kakao Local API and classifies the outcome.
type KakaoClient struct {
	client HTTPClient   // HTTP client for making requests
	log    *slog.Logger // Logger for logging operations
}

// NewKakaoClient creates a client backed by net/http with the given timeout.
func NewKakaoClient(timeout time.Duration, log *slog.Logger) *KakaoClient {
	return &KakaoClient{
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// NewKakaoClientWithClient allows injecting custom HTTP client.
func NewKakaoClientWithClient(client HTTPClient, log *slog.Logger) *KakaoClient {
	return &KakaoClient{client: client, log: log}
}

// Get performs a GET on uri with the supplied headers and decodes a GeocodeResponse.
func (kc *KakaoClient) Get(ctx context.Context, uri *url.URL, header http.Header) Result {
	if uri == nil {
		return Transient(0, ErrNilURI)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri.String(), nil)
	if err != nil {
		return Transient(0, fmt.Errorf("failed to create request: %w", err))
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	kc.log.DebugContext(ctx, "Kakao request", "url", uri.String())

	resp, err := kc.client.Do(req)
	if err != nil {
		return Transient(0, fmt.Errorf("failed to execute address search request: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		// continue
	case resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		return Unauthorized(ErrUnauthorized)
	default:
		body, _ := io.ReadAll(resp.Body)
		kc.log.DebugContext(ctx, "Kakao API error", "status", resp.StatusCode, "body", string(body))
		return Transient(resp.StatusCode,
			fmt.Errorf("kakao API returned status %d: %s", resp.StatusCode, string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transient(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	// A 2xx without a body is a success with nothing to return.
	if len(bytes.TrimSpace(body)) == 0 {
		kc.log.DebugContext(ctx, "Kakao response has no body", "status", resp.StatusCode)
		return successWithStatus(resp.StatusCode, nil)
	}

	var result models.GeocodeResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return Transient(resp.StatusCode, fmt.Errorf("failed to decode kakao response: %w", err))
	}

	kc.log.DebugContext(ctx, "Kakao response decoded", "documents", len(result.Documents))

	return successWithStatus(resp.StatusCode, &result)
}
