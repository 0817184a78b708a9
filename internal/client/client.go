// Package client calls a remote comparison service and falls back to the
// local engine whenever the remote call cannot produce a result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RishiKendai/veritext/internal/metrics"
	"github.com/RishiKendai/veritext/internal/models"
	"github.com/RishiKendai/veritext/internal/plagiarism"
	"github.com/rs/zerolog/log"
)

// Origin says where a result was computed.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	local      *plagiarism.Engine
}

// NewClient creates a client for the service at baseURL (e.g.
// http://localhost:8080/api). An empty baseURL always computes locally.
func NewClient(baseURL string, timeout time.Duration, local *plagiarism.Engine) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		local: local,
	}
}

// Compare returns the remote service's result, or the local engine's result
// if the remote call fails for any reason. Both paths run the same algorithm.
func (c *Client) Compare(ctx context.Context, original, comparison string) (plagiarism.Result, Origin) {
	if c.baseURL != "" {
		result, err := c.remoteCompare(ctx, original, comparison)
		if err == nil {
			return *result, OriginRemote
		}
		log.Warn().Err(err).Str("baseUrl", c.baseURL).Msg("Remote comparison failed, falling back to local engine")
		metrics.FallbackCount.Inc()
	}

	start := time.Now()
	result := c.local.Compare(original, comparison)
	metrics.ObserveComparison("local", string(result.Level), time.Since(start).Seconds())

	return result, OriginLocal
}

func (c *Client) remoteCompare(ctx context.Context, original, comparison string) (*plagiarism.Result, error) {
	url := fmt.Sprintf("%s/compare", c.baseURL)

	reqBody, err := json.Marshal(models.CompareRequest{
		OriginalText:   &original,
		ComparisonText: &comparison,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("API error (status %d): %s - %s", resp.StatusCode, errResp.Code, errResp.Error)
		}
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var result plagiarism.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if result.SimilarityScore < 0 || result.SimilarityScore > 1 {
		return nil, fmt.Errorf("remote score %v outside [0, 1]", result.SimilarityScore)
	}

	// Services that only return {similarityScore, matchingSegments}
	if result.Level == "" {
		class := c.local.Classify(result.SimilarityScore)
		result.Level, result.Description = class.Level, class.Description
	}
	if result.MatchingSegments == nil {
		result.MatchingSegments = []plagiarism.Segment{}
	}

	return &result, nil
}

// CheckHealth reports whether the remote service answers its health check.
func (c *Client) CheckHealth(ctx context.Context) bool {
	if c.baseURL == "" {
		return false
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Debug().Err(err).Str("baseUrl", c.baseURL).Msg("Health check failed")
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}
