// Package whisper provides whisper.cpp-backed ASR providers.
//
// Two variants exist:
//
//   - [Provider] talks to a running whisper-server binary over its REST API
//     (POST /inference) and forwards the uploaded audio file as-is.
//   - [NativeProvider] loads a ggml model through the whisper.cpp CGO
//     bindings and runs inference in-process. The whisper.cpp static library
//     (libwhisper.a) and headers must be available at link time via
//     LIBRARY_PATH and C_INCLUDE_PATH.
//
// Both transcribe complete recordings in one batch call; there is no
// streaming surface.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/mkeskkula/haaldus/pkg/provider/asr"
)

const defaultLanguage = "et"

// Compile-time assertion that Provider implements asr.Provider.
var _ asr.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel sets the model identifier forwarded to the whisper.cpp server
// (e.g., "base", "small"). When empty the server uses whichever model it was
// started with — this is the default.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithLanguage sets the BCP-47 language code sent to the whisper.cpp server
// (e.g., "et", "en"). Defaults to "et".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// WithHTTPClient replaces the HTTP client used for inference requests.
// Tests use this to point the provider at an httptest server transport.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) { p.httpClient = client }
}

// Provider implements asr.Provider backed by a whisper-server HTTP instance.
// Safe for concurrent use.
type Provider struct {
	serverURL  string
	model      string
	language   string
	httpClient *http.Client
}

// New returns a Provider that sends inference requests to the whisper-server
// at serverURL (e.g., "http://localhost:8080").
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:  serverURL,
		language:   defaultLanguage,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Transcribe implements [asr.Provider]. It POSTs the sample to the server's
// /inference endpoint as multipart/form-data and returns the recognised text.
// Transport-level failures wrap [asr.ErrUnavailable].
func (p *Provider) Transcribe(ctx context.Context, sample asr.Sample) (asr.Result, error) {
	if len(sample.Data) == 0 {
		return asr.Result{}, errors.New("whisper: empty audio sample")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	filename := sample.Filename
	if filename == "" {
		filename = "audio.wav"
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return asr.Result{}, fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := fw.Write(sample.Data); err != nil {
		return asr.Result{}, fmt.Errorf("whisper: write audio data: %w", err)
	}

	if p.language != "" {
		if err := mw.WriteField("language", p.language); err != nil {
			return asr.Result{}, fmt.Errorf("whisper: write language field: %w", err)
		}
	}
	if p.model != "" {
		if err := mw.WriteField("model", p.model); err != nil {
			return asr.Result{}, fmt.Errorf("whisper: write model field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return asr.Result{}, fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	endpoint := p.serverURL + "/inference"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return asr.Result{}, fmt.Errorf("whisper: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) && !uerr.Timeout() && ctx.Err() == nil {
			return asr.Result{}, fmt.Errorf("whisper: server unreachable: %v: %w", err, asr.ErrUnavailable)
		}
		return asr.Result{}, fmt.Errorf("whisper: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return asr.Result{}, fmt.Errorf("whisper: server returned HTTP %d: %w", resp.StatusCode, asr.ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return asr.Result{}, fmt.Errorf("whisper: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return asr.Result{}, fmt.Errorf("whisper: read response body: %w", err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return asr.Result{}, fmt.Errorf("whisper: parse JSON response: %w", err)
	}

	return asr.Result{Text: result.Text}, nil
}

// Ping reports whether the whisper-server is reachable. Used by the readiness
// probe.
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.serverURL+"/", nil)
	if err != nil {
		return fmt.Errorf("whisper: create ping request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whisper: ping: %w", err)
	}
	resp.Body.Close()
	return nil
}
