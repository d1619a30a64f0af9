// Package llmclient issues the daemon's outbound requests to the remote
// inference service (spec.md §4.C). It generalizes llm-interface's
// Provider/ProviderFunc pattern to carry clad's own payload shape and
// wires two concrete providers behind it.
package llmclient

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrRequestFailed covers protocol-level problems: a bad status code, a
// malformed response body, or a connection failure.
var ErrRequestFailed = errors.New("llmclient: request failed")

// ErrCertificateError covers a failed client certificate/key load.
var ErrCertificateError = errors.New("llmclient: certificate error")

// SystemInfo identifies the host the question originated from, mirroring
// the `systeminfo` object spec.md §4.C requires on every payload.
type SystemInfo struct {
	OS      string `json:"os"`
	Version string `json:"version"`
	Arch    string `json:"arch"`
	ID      string `json:"id"`
}

// Attachment carries an optional file attached to the question.
type Attachment struct {
	Contents string `json:"contents"`
	Mimetype string `json:"mimetype"`
}

// Terminal carries optional captured terminal output.
type Terminal struct {
	Output string `json:"output"`
}

// Payload is the structured object submitted to the inference service
// (spec.md §4.C "Contract"). Its fields are flat for callers, but the
// wire body the backend actually expects (spec.md §8 scenario 1) nests
// stdin and the attachment under a "context" object and pluralizes
// "attachment" to "attachments" — MarshalJSON produces that shape.
type Payload struct {
	Question   string
	Stdin      string
	Attachment *Attachment
	Terminal   *Terminal
	SystemInfo SystemInfo
}

type wireAttachments struct {
	Contents string `json:"contents"`
	Mimetype string `json:"mimetype"`
}

type wireContext struct {
	Stdin       string          `json:"stdin"`
	Attachments wireAttachments `json:"attachments"`
	Terminal    *Terminal       `json:"terminal,omitempty"`
}

type wirePayload struct {
	Question   string      `json:"question"`
	Context    wireContext `json:"context"`
	SystemInfo SystemInfo  `json:"systeminfo"`
}

// MarshalJSON produces the nested {"question":...,"context":{"stdin":...,
// "attachments":{"contents":...,"mimetype":...}}} body spec.md §8 locks,
// rather than a flat field-for-field encoding of Payload.
func (p Payload) MarshalJSON() ([]byte, error) {
	wp := wirePayload{
		Question: p.Question,
		Context: wireContext{
			Stdin:    p.Stdin,
			Terminal: p.Terminal,
		},
		SystemInfo: p.SystemInfo,
	}
	if p.Attachment != nil {
		wp.Context.Attachments = wireAttachments{Contents: p.Attachment.Contents, Mimetype: p.Attachment.Mimetype}
	}
	return json.Marshal(wp)
}

// Provider is the generic inference backend interface. Any backend —
// the bespoke REST endpoint clad talks to in production, or any
// OpenAI-compatible service — implements this single method.
type Provider interface {
	Submit(ctx context.Context, payload Payload) (string, error)
}

// ProviderFunc adapts a plain function into a Provider, matching the Go
// convention llm-interface's ProviderFunc already uses in this codebase.
type ProviderFunc func(ctx context.Context, payload Payload) (string, error)

// Submit implements Provider.
func (f ProviderFunc) Submit(ctx context.Context, payload Payload) (string, error) {
	return f(ctx, payload)
}
