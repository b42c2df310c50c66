// Package embedding provides text embedding providers: a real Ollama
// client and a deterministic stub, both behind the same narrow
// interface so deployments and tests can swap them freely.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/agromitra/agromitra/internal/metrics"
)

const requestTimeout = 30 * time.Second

// Circuit breaker configuration.
const (
	cbFailureThreshold = 5
	cbCooldown         = 30 * time.Second
)

// Circuit breaker states.
const (
	cbClosed   = iota // Normal operation.
	cbOpen            // Fail fast.
	cbHalfOpen        // Probe with one request.
)

// ErrCircuitOpen is returned when the circuit breaker is open and
// requests are rejected without calling the embedding service.
var ErrCircuitOpen = errors.New("embedding circuit breaker is open")

// OllamaEmbedder generates vector embeddings via the Ollama API.
type OllamaEmbedder struct {
	baseURL string
	model   string
	client  *http.Client

	mu              sync.Mutex
	cbState         int
	cbFailures      int
	cbLastFailureAt time.Time
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllamaEmbedder creates an embedder for the given Ollama endpoint
// and model. Connections are restricted to loopback addresses.
func NewOllamaEmbedder(baseURL, model string) *OllamaEmbedder {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, fmt.Errorf("invalid address: %w", err)
			}

			ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
			if err != nil {
				return nil, fmt.Errorf("resolving embedding host: %w", err)
			}

			for _, ip := range ips {
				if !ip.IP.IsLoopback() {
					return nil, fmt.Errorf("embedding service connections restricted to localhost")
				}
			}

			return (&net.Dialer{}).DialContext(ctx, network, addr)
		},
	}

	return &OllamaEmbedder{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: requestTimeout, Transport: transport},
		cbState: cbClosed,
	}
}

// Generate produces a vector embedding for the given text, failing fast
// while the circuit breaker is open.
func (e *OllamaEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	if err := e.cbAllow(); err != nil {
		metrics.EmbeddingRequests.WithLabelValues("rejected").Inc()

		return nil, err
	}

	result, err := e.doGenerate(ctx, text)
	if err != nil {
		e.cbRecordFailure()
		metrics.EmbeddingRequests.WithLabelValues("error").Inc()

		return nil, err
	}

	e.cbRecordSuccess()
	metrics.EmbeddingRequests.WithLabelValues("ok").Inc()

	return result, nil
}

func (e *OllamaEmbedder) doGenerate(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating embedding request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama embed API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain body so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // best-effort drain before close.
		return nil, fmt.Errorf("ollama embed API returned status %d", resp.StatusCode)
	}

	var result embedResponse

	limited := io.LimitReader(resp.Body, 10<<20) // 10 MB
	if err := json.NewDecoder(limited).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}

	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("ollama returned empty embeddings")
	}

	return result.Embeddings[0], nil
}

// cbAllow checks whether the circuit breaker permits a request.
// In closed state, all requests pass. In open state, requests are
// rejected until the cooldown expires, at which point we transition to
// half-open. In half-open state, one probe request is allowed.
func (e *OllamaEmbedder) cbAllow() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.cbState {
	case cbClosed:
		return nil
	case cbOpen:
		if time.Since(e.cbLastFailureAt) >= cbCooldown {
			e.cbState = cbHalfOpen

			return nil
		}

		return ErrCircuitOpen
	case cbHalfOpen:
		// Already probing; reject additional requests.
		return ErrCircuitOpen
	}

	return nil
}

// cbRecordSuccess records a successful call. In half-open state this
// closes the circuit breaker, restoring normal operation.
func (e *OllamaEmbedder) cbRecordSuccess() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cbFailures = 0
	e.cbState = cbClosed
	metrics.EmbeddingBreakerOpen.Set(0)
}

// cbRecordFailure records a failed call. After reaching the failure
// threshold the circuit breaker transitions to open state.
func (e *OllamaEmbedder) cbRecordFailure() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cbFailures++
	e.cbLastFailureAt = time.Now()

	if e.cbFailures >= cbFailureThreshold || e.cbState == cbHalfOpen {
		e.cbState = cbOpen
		metrics.EmbeddingBreakerOpen.Set(1)
	}
}
