// internal/clients/semanticindex/client.go
package semanticindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	commonhttp "smartborrow/internal/common/http"
	"smartborrow/internal/common/logger"
)

var (
	ErrIndexUnreachable = errors.New("SEMANTIC_INDEX_UNREACHABLE")
	ErrIndexTimeout     = errors.New("SEMANTIC_INDEX_TIMEOUT")
)

// Hit is one scored passage returned by the similarity search.
type Hit struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Index is the contract the embedding/similarity backend must satisfy. The
// backend itself (vector store, embedding model) is out of scope; any
// implementation returning scored passages can be substituted.
type Index interface {
	Search(ctx context.Context, text string, k int) ([]Hit, error)
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to a similarity-search HTTP service.
type Client struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		client: commonhttp.NewClient(config.Timeout),
		logger: log.WithFields(map[string]interface{}{"component": "semantic-index"}),
	}
}

func (c *Client) Search(ctx context.Context, text string, k int) ([]Hit, error) {
	requestBody := map[string]interface{}{
		"query": text,
		"k":     k,
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrIndexTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/api/index/search", bytes.NewBuffer(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIndexUnreachable, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return nil, ErrIndexTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrIndexTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrIndexUnreachable, lastErr)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrIndexUnreachable)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Results []Hit `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrIndexUnreachable, err)
	}

	c.logger.Debug("similarity search completed", map[string]interface{}{
		"k":           k,
		"resultCount": len(apiResponse.Results),
	})

	return apiResponse.Results, nil
}
