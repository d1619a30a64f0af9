package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"

	"github.com/command-line-assistant/clad/internal/logging"
)

const userAgentFormat = "clad/%s"

// restProvider talks the bespoke wire format spec.md §4.C describes
// directly: POST a Payload, read back {"data":{"text":...}}. This is the
// provider the daemon's Chat.AskQuestion uses by default (SPEC_FULL.md
// §4.C), grounded on
// original_source/daemon/http/{session,query,adapters}.py.
type restProvider struct {
	client    *http.Client
	endpoint  string
	userAgent string
}

// NewRESTProvider builds the default Provider: base endpoint, version
// string for the User-Agent header, TLS and proxy settings.
func NewRESTProvider(endpoint, version string, tlsCfg TLSConfig, proxyCfg ProxyConfig) (Provider, error) {
	client, err := newHTTPClient(tlsCfg, proxyConfigFromEnv(proxyCfg))
	if err != nil {
		return nil, err
	}

	if !tlsCfg.VerifySSL {
		logging.Log.Warnf("llmclient: SSL verification disabled as configured")
	}

	return &restProvider{
		client:    client,
		endpoint:  endpoint,
		userAgent: fmt.Sprintf(userAgentFormat, version),
	}, nil
}

type restResponse struct {
	Data struct {
		Text string `json:"text"`
	} `json:"data"`
}

func (p *restProvider) Submit(ctx context.Context, payload Payload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: encoding payload: %v", ErrRequestFailed, err)
	}

	url := p.endpoint + "/v1/query"
	operation := func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", backoff.Permanent(fmt.Errorf("%w: building request: %v", ErrRequestFailed, err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", p.userAgent)

		resp, err := p.client.Do(req)
		if err != nil {
			// Connection-level failures are themselves retryable for POST,
			// matching urllib3's Retry acting on connection errors too.
			return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", backoff.Permanent(fmt.Errorf("%w: reading response: %v", ErrRequestFailed, err))
		}

		if retryableStatus[resp.StatusCode] {
			return "", fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", backoff.Permanent(fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode))
		}

		var parsed restResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return "", backoff.Permanent(fmt.Errorf("%w: malformed response: %v", ErrRequestFailed, err))
		}

		return parsed.Data.Text, nil
	}

	text, err := backoff.RetryWithData(operation, newRetryBackoff(ctx))
	if err != nil {
		logging.Log.Errorf("llmclient: request to %s failed: %v", url, err)
		return "", err
	}
	return text, nil
}
