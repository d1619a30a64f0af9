package llmclient

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// TLSConfig carries the mutual-TLS material from `backend.auth` in
// config (spec.md §4.C "Authentication"), grounded on
// original_source/daemon/http/adapters.py's SSLAdapter.
type TLSConfig struct {
	VerifySSL bool
	CertFile  string
	KeyFile   string
}

// ProxyConfig carries explicit proxy overrides; when both are empty, the
// http.ProxyFromEnvironment default (http_proxy/https_proxy/no_proxy)
// applies (spec.md §4.C "Proxies").
type ProxyConfig struct {
	HTTPProxy  string
	HTTPSProxy string
}

// newHTTPClient builds the *http.Client shared by both providers: a
// 30-second total timeout (spec.md §4.C "Transport"), the configured TLS
// material, and proxy overrides.
func newHTTPClient(tlsCfg TLSConfig, proxyCfg ProxyConfig) (*http.Client, error) {
	transport := &http.Transport{
		Proxy: proxyFunc(proxyCfg),
	}

	tlsConfig := &tls.Config{}
	if !tlsCfg.VerifySSL {
		tlsConfig.InsecureSkipVerify = true
	}
	if tlsCfg.CertFile != "" && tlsCfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(tlsCfg.CertFile, tlsCfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("%w: loading client certificate: %v", ErrCertificateError, err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	transport.TLSClientConfig = tlsConfig

	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}, nil
}

func proxyFunc(cfg ProxyConfig) func(*http.Request) (*url.URL, error) {
	if cfg.HTTPProxy == "" && cfg.HTTPSProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		var raw string
		switch req.URL.Scheme {
		case "https":
			raw = cfg.HTTPSProxy
		default:
			raw = cfg.HTTPProxy
		}
		if raw == "" {
			return http.ProxyFromEnvironment(req)
		}
		return url.Parse(raw)
	}
}

// proxyConfigFromEnv fills each of HTTPProxy/HTTPSProxy that the config
// leaves empty from http_proxy/https_proxy, matching original_source's reliance on
// requests' environment-derived proxy behavior.
func proxyConfigFromEnv(cfg ProxyConfig) ProxyConfig {
	if cfg.HTTPProxy == "" {
		cfg.HTTPProxy = os.Getenv("http_proxy")
	}
	if cfg.HTTPSProxy == "" {
		cfg.HTTPSProxy = os.Getenv("https_proxy")
	}
	return cfg
}
