package tmdb

import (
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the TMDB v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultSiteURL is the website that hosts the request token approval page.
	DefaultSiteURL = "https://www.themoviedb.org"
	// DefaultImageBaseURL serves posters and backdrops.
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "marquee"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL      string
	siteURL      string
	imageBaseURL string
	timeout      time.Duration
	userAgent    string
	httpClient   *http.Client
}

func defaultOptions() clientOptions {
	return clientOptions{
		baseURL:      DefaultBaseURL,
		siteURL:      DefaultSiteURL,
		imageBaseURL: DefaultImageBaseURL,
		timeout:      defaultTimeout,
		userAgent:    defaultUserAgent,
	}
}

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithSiteURL overrides the website used to build approval URLs.
func WithSiteURL(siteURL string) Option {
	return func(o *clientOptions) {
		o.siteURL = siteURL
	}
}

// WithImageBaseURL overrides the image CDN root.
func WithImageBaseURL(imageBaseURL string) Option {
	return func(o *clientOptions) {
		o.imageBaseURL = imageBaseURL
	}
}

// WithTimeout sets the HTTP client timeout. Ignored when WithHTTPClient is used.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}
