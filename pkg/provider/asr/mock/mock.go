// Package mock provides a test double for the asr package.
//
// Use Provider to script transcription results and inspect which samples
// were submitted:
//
//	p := &mock.Provider{Result: asr.Result{Text: "tere"}}
//	res, _ := p.Transcribe(ctx, sample)
package mock

import (
	"context"
	"sync"

	"github.com/mkeskkula/haaldus/pkg/provider/asr"
)

// Compile-time assertion that Provider implements asr.Provider.
var _ asr.Provider = (*Provider)(nil)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	// Ctx is the context passed to Transcribe.
	Ctx context.Context
	// Sample is the audio sample passed to Transcribe.
	Sample asr.Sample
}

// Provider is a mock implementation of asr.Provider.
type Provider struct {
	mu sync.Mutex

	// Result is returned from Transcribe when Err is nil.
	Result asr.Result

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// TranscribeCalls records every call to Transcribe.
	TranscribeCalls []TranscribeCall
}

// Transcribe records the call and returns Result, Err.
func (p *Provider) Transcribe(ctx context.Context, sample asr.Sample) (asr.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranscribeCalls = append(p.TranscribeCalls, TranscribeCall{Ctx: ctx, Sample: sample})
	if p.Err != nil {
		return asr.Result{}, p.Err
	}
	return p.Result, nil
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranscribeCalls = nil
}
