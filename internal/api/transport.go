package api

import (
	"errors"
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"

	"github.com/ppiankov/trustboard/internal/model"
)

const maxRedirects = 3

var errTooManyRedirects = errors.New("stopped after 3 redirects")

// newHTTPClient builds the client used for every backend call. Explicit
// proxies override HTTP_PROXY and HTTPS_PROXY; NO_PROXY still applies.
func newHTTPClient(cfg model.APIConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}
}

// proxyFunc resolves the proxy for a request from the environment with
// the configured overrides applied
func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	cfg := httpproxy.FromEnvironment()
	if httpProxy != "" {
		cfg.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTPSProxy = httpsProxy
	}
	resolve := cfg.ProxyFunc()

	return func(req *http.Request) (*url.URL, error) {
		return resolve(req.URL)
	}
}
