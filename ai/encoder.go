package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/soukdata/souq/core"
	"golang.org/x/time/rate"
)

// Encoder wraps an Embedder with the policies catalog ingestion relies on:
// per-request timeouts, bounded retry with exponential backoff, optional
// rate limiting, and an in-process cache keyed by (text hash, model version).
//
// The cache makes encoding deterministic within a process: once a text has
// been embedded under a model version, every later call returns the same
// vector. Returned vectors are L2-normalized, so cosine similarity reduces
// to a dot product downstream.
//
// Every failure path surfaces as an error matching errors.Is(err, ErrEncoding).
// Encoder is safe for concurrent use.
type Encoder struct {
	embedder    Embedder
	version     string
	timeout     time.Duration
	maxAttempts int
	baseDelay   time.Duration
	limiter     *rate.Limiter // nil when throttling is disabled

	mu    sync.RWMutex
	cache map[cacheKey][]float32

	logger *slog.Logger
}

// cacheKey identifies one embedded text under one model version. The text is
// reduced to its content hash so the cache never pins large descriptions.
type cacheKey struct {
	text    core.ID
	version string
}

// NewEncoder creates an Encoder around the given embedder. The config is
// validated and normalized before use.
func NewEncoder(embedder Embedder, config *Config) (*Encoder, error) {
	if embedder == nil {
		return nil, errors.New("ai: embedder is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst)
	}

	return &Encoder{
		embedder:    embedder,
		version:     config.ModelVersion,
		timeout:     config.RequestTimeout,
		maxAttempts: config.MaxAttempts,
		baseDelay:   config.RetryBaseDelay,
		limiter:     limiter,
		cache:       make(map[cacheKey][]float32),
		logger:      slog.Default().With("component", "encoder"),
	}, nil
}

// ModelVersion returns the version tag stored alongside vectors produced by
// this encoder.
func (e *Encoder) ModelVersion() string {
	return e.version
}

// CacheSize returns the number of cached embeddings.
func (e *Encoder) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// Encode embeds a single text. Empty or whitespace-only text fails without
// touching the embedder. Callers own the returned slice.
func (e *Encoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, ErrEmptyText)
	}

	key := cacheKey{text: core.IDFromContent(text), version: e.version}
	if vec, ok := e.lookup(key); ok {
		return vec, nil
	}

	var vec []float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vec, embedErr = e.embedOnce(ctx, text)
		return embedErr
	}, e.maxAttempts, e.baseDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	return slices.Clone(e.store(key, NormalizeVector(vec))), nil
}

// EncodeBatch embeds texts in order. Cached texts are served from the cache;
// the rest go to the embedder in one call. Any empty text fails the whole
// batch before the embedder is contacted.
func (e *Encoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: %w (text %d)", ErrEncoding, ErrEmptyText, i)
		}
	}

	results := make([][]float32, len(texts))
	keys := make([]cacheKey, len(texts))
	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		keys[i] = cacheKey{text: core.IDFromContent(text), version: e.version}
		if vec, ok := e.lookup(keys[i]); ok {
			results[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	e.logger.Debug("encoding batch", "texts", len(texts), "cached", len(texts)-len(missTexts))
	if len(missTexts) == 0 {
		return results, nil
	}

	var vecs [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vecs, embedErr = e.embedBatchOnce(ctx, missTexts)
		return embedErr
	}, e.maxAttempts, e.baseDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	for n, i := range missIdx {
		results[i] = slices.Clone(e.store(keys[i], NormalizeVector(vecs[n])))
	}
	return results, nil
}

func (e *Encoder) embedOnce(ctx context.Context, text string) ([]float32, error) {
	if err := e.throttle(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vec, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, errors.New("embedder returned an empty vector")
	}
	return vec, nil
}

func (e *Encoder) embedBatchOnce(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.throttle(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vecs, err := e.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}
	for _, vec := range vecs {
		if len(vec) == 0 {
			return nil, errors.New("embedder returned an empty vector")
		}
	}
	return vecs, nil
}

// throttle blocks until the rate limiter admits one request. The wait is
// outside the request timeout so queueing never eats the request budget.
func (e *Encoder) throttle(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

func (e *Encoder) lookup(key cacheKey) ([]float32, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	vec, ok := e.cache[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(vec), true
}

// store caches vec under key and returns the cached value. When two
// goroutines race on the same text the first writer wins, so both callers
// observe the same vector.
func (e *Encoder) store(key cacheKey, vec []float32) []float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cached, ok := e.cache[key]; ok {
		return cached
	}
	e.cache[key] = vec
	return vec
}
