package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"
)

// JudgeOptions configure the Judge0 client
type JudgeOptions struct {
	URL               string
	APIKey            string
	APIHost           string
	Timeout           time.Duration
	MaxRetries        int
	DefaultLanguageID int
}

// Judge0Request is the submission body Judge0 expects
type Judge0Request struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin,omitempty"`
	ExpectedOutput string `json:"expected_output,omitempty"`
}

// Judge0Status is the verdict of one run
type Judge0Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Judge0Result is the synchronous (wait=true) response of Judge0
type Judge0Result struct {
	Stdout        *string       `json:"stdout"`
	Stderr        *string       `json:"stderr"`
	CompileOutput *string       `json:"compile_output"`
	Message       *string       `json:"message"`
	Status        *Judge0Status `json:"status"`
	Time          *string       `json:"time"`
	Memory        *int          `json:"memory"`
}

// Judge runs a single program against a single input
type Judge interface {
	Run(ctx context.Context, req Judge0Request) (*Judge0Result, error)
}

// JudgeClient wraps Judge0 API calls
type JudgeClient struct {
	baseURL    string
	apiKey     string
	apiHost    string
	httpClient *http.Client
	maxRetries int
	backoff    func(attempt int) time.Duration
}

// NewJudgeClient creates a new Judge0 API client
func NewJudgeClient(opts JudgeOptions) *JudgeClient {
	if opts.APIKey == "" {
		log.Println("[Judge] Warning: judge API key not set")
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &JudgeClient{
		baseURL: strings.TrimRight(opts.URL, "/"),
		apiKey:  opts.APIKey,
		apiHost: opts.APIHost,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		maxRetries: maxRetries,
		backoff: func(attempt int) time.Duration {
			return time.Duration(math.Pow(2, float64(attempt))) * time.Second
		},
	}
}

// Run submits one program and waits for its verdict
func (c *JudgeClient) Run(ctx context.Context, req Judge0Request) (*Judge0Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, "/submissions?base64_encoded=false&wait=true", body)
	if err != nil {
		return nil, err
	}

	var result Judge0Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse judge response: %w", err)
	}
	if result.Status != nil {
		log.Printf("[Judge] Result (%s)", result.Status.Description)
	}
	return &result, nil
}

// doRequest performs HTTP request with retry logic
func (c *JudgeClient) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	url := c.baseURL + path
	log.Printf("[Judge] %s %s", method, path)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[Judge] Retry attempt %d/%d for %s %s", attempt, c.maxRetries, method, path)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-RapidAPI-Key", c.apiKey)
		}
		if c.apiHost != "" {
			req.Header.Set("X-RapidAPI-Host", c.apiHost)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[Judge] ERROR: HTTP request failed (attempt %d): %v", attempt+1, err)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			backoff := c.backoff(attempt)
			log.Printf("[Judge] RATE LIMITED: Retry %d/%d in %v", attempt+1, c.maxRetries, backoff)
			lastErr = fmt.Errorf("rate limited")
			select {
			case <-time.After(backoff):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if resp.StatusCode >= 400 {
			log.Printf("[Judge] ERROR: API returned %d: %s", resp.StatusCode, string(respBody))
			return nil, fmt.Errorf("judge API error %d: %s", resp.StatusCode, string(respBody))
		}
		return respBody, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
