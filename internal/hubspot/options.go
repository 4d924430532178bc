package hubspot

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/LiamTF/hubsync/internal/transport"
)

// Option configures a Client.
type Option func(*settings)

type settings struct {
	baseURL  string
	observer transport.Observer
	http     *http.Client
	logger   *zerolog.Logger
}

// WithBaseURL overrides the HubSpot API base URL. Used by tests to
// point the client at a local server.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		s.baseURL = url
	}
}

// WithObserver installs a response observer, typically the verbose
// echo sink. The default observer discards everything.
func WithObserver(observer transport.Observer) Option {
	return func(s *settings) {
		s.observer = observer
	}
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		s.http = hc
	}
}

// WithLogger sets the logger used for client warnings.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}
