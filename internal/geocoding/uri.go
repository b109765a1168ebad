package geocoding

import (
	"errors"
	"fmt"
	"net/url"
)

// KakaoAddressSearchURL is the Kakao Local address search endpoint.
const KakaoAddressSearchURL = "https://dapi.kakao.com/v2/local/search/address.json"

// ErrInvalidBaseURL is returned when the configured base URL is not absolute.
var ErrInvalidBaseURL = errors.New("base URL must be absolute")

// URIBuilder produces the request URI for an address lookup.
type URIBuilder interface {
	BuildAddressSearchURI(address string) (*url.URL, error)
}

// KakaoURIBuilder builds address search URIs against a fixed base URL.
type KakaoURIBuilder struct {
	baseURL string
}

// NewKakaoURIBuilder returns a builder for baseURL, falling back to KakaoAddressSearchURL when empty.
func NewKakaoURIBuilder(baseURL string) *KakaoURIBuilder {
	if baseURL == "" {
		baseURL = KakaoAddressSearchURL
	}

	return &KakaoURIBuilder{baseURL: baseURL}
}

// BuildAddressSearchURI returns <base>?query=<address>, keeping any query parameters already on the base URL.
func (b *KakaoURIBuilder) BuildAddressSearchURI(address string) (*url.URL, error) {
	reqURL, err := url.Parse(b.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if !reqURL.IsAbs() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, b.baseURL)
	}

	query := reqURL.Query()
	query.Set("query", address)
	reqURL.RawQuery = query.Encode()

	return reqURL, nil
}
