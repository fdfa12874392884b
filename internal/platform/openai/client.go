package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/tandem-backend/internal/pkg/httpx"
	"github.com/yungbote/tandem-backend/internal/platform/envutil"
	"github.com/yungbote/tandem-backend/internal/platform/logger"
)

// Client is the embedding-service client used by the matching pipeline.
type Client interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
	Dimension() int
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	embedModel string
	embedDim   int
	httpClient *http.Client

	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimRight(envutil.Str("OPENAI_BASE_URL", "https://api.openai.com"), "/")
	embedModel := envutil.Str("OPENAI_EMBED_MODEL", "text-embedding-3-small")
	embedDim := envutil.Int("OPENAI_EMBED_DIM", 1536)
	timeoutSec := envutil.Int("OPENAI_TIMEOUT_SECONDS", 60)
	maxRetries := envutil.Int("OPENAI_MAX_RETRIES", 3)
	baseDelayMS := envutil.Int("OPENAI_RETRY_BASE_MS", 1000)

	return &client{
		log:        log.With("client", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		embedModel: embedModel,
		embedDim:   embedDim,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
		baseDelay:  time.Duration(baseDelayMS) * time.Millisecond,
		maxDelay:   10 * time.Second,
	}, nil
}

func (c *client) Dimension() int { return c.embedDim }

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

// do runs a request with exponential backoff on retryable failures. Model
// warm-up and rate limiting surface as 5xx/429 and are retried; auth and
// configuration errors surface immediately. Backoff blocks only the calling
// goroutine.
func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := c.baseDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w", uErr)
			}
			return nil
		}

		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, c.maxDelay)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("Embedding request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns one vector per input, in order. A dimension mismatch or a
// non-finite component in the response is a hard failure, never retried.
func (c *client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}

	req := embeddingsRequest{Model: c.embedModel, Input: inputs}

	var resp embeddingsResponse
	if err := c.do(ctx, "POST", "/v1/embeddings", req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(inputs))
	}

	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		if c.embedDim > 0 && len(d.Embedding) != c.embedDim {
			return nil, fmt.Errorf("openai embeddings: dimension mismatch, want %d got %d", c.embedDim, len(d.Embedding))
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("openai embeddings: non-finite component at %d", i)
			}
			vec[i] = float32(v)
		}
		out[d.Index] = vec
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("openai embeddings: missing vector for input %d", i)
		}
	}
	return out, nil
}
