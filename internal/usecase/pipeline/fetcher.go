package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/johnquangdev/meeting-agent/pkg/config"
	"github.com/johnquangdev/meeting-agent/pkg/workflow"
)

// maxTranscriptSize bounds the transcript download
const maxTranscriptSize = 64 << 20

// Fetcher downloads transcript artifacts
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher downloads transcripts over HTTP, retrying transient failures
type HTTPFetcher struct {
	client *retryablehttp.Client
}

// NewHTTPFetcher creates a fetcher from the pipeline configuration
func NewHTTPFetcher(cfg *config.PipelineConfig) *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.FetchMaxRetries
	client.HTTPClient.Timeout = cfg.FetchTimeout
	client.Logger = nil

	return &HTTPFetcher{client: client}
}

// Fetch returns the body of url as text. Client errors other than 429 are permanent.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", workflow.Permanent(fmt.Errorf("build transcript request: %w", err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		err := fmt.Errorf("fetch transcript: status %d", resp.StatusCode)
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", workflow.Permanent(err)
		}
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptSize))
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(body), nil
}
