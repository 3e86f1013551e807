// Package client is a small http client for the nutristat api.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nutristat-api/internal/catalog"
	"nutristat-api/internal/history"
	"nutristat-api/internal/nutrition"

	"github.com/google/uuid"
)

// APIError is a non 2xx answer from the api.
type APIError struct {
	StatusCode  int      `json:"-" yaml:"-"`
	Err         string   `json:"error,omitempty" yaml:"error,omitempty"`
	Message     string   `json:"message,omitempty" yaml:"message,omitempty"`
	MissingKeys []string `json:"missing_keys,omitempty" yaml:"missing_keys,omitempty"`
}

func (e *APIError) Error() string {
	parts := []string{fmt.Sprintf("status %d", e.StatusCode)}
	if e.Err != "" {
		parts = append(parts, e.Err)
	}
	if len(e.MissingKeys) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.MissingKeys, ", "))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, ": ")
}

type PredictRequest struct {
	Height float64       `json:"tb"`
	Weight float64       `json:"bb"`
	Age    float64       `json:"usia"`
	Sex    nutrition.Sex `json:"jenis_kelamin"`
}

type PredictResult struct {
	Prediction      nutrition.Category `json:"prediction" yaml:"prediction"`
	Confidence      float64            `json:"confidence" yaml:"confidence"`
	Description     string             `json:"description" yaml:"description"`
	Recommendations []catalog.FoodItem `json:"recommendations" yaml:"recommendations"`
}

type RecommendResult struct {
	Category        nutrition.Category `json:"category" yaml:"category"`
	Recommendations []catalog.FoodItem `json:"recommendations" yaml:"recommendations"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Predict(ctx context.Context, req PredictRequest) (*PredictResult, error) {
	var out PredictResult
	if err := c.do(ctx, http.MethodPost, "/predict", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recommend asks for n foods; n < 0 leaves the server default.
func (c *Client) Recommend(ctx context.Context, category string, n int) (*RecommendResult, error) {
	q := url.Values{}
	q.Set("category", category)
	if n >= 0 {
		q.Set("n", strconv.Itoa(n))
	}
	var out RecommendResult
	if err := c.do(ctx, http.MethodGet, "/recommendations?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListHistory(ctx context.Context) ([]history.Record, error) {
	out := []history.Record{}
	if err := c.do(ctx, http.MethodGet, "/data", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetHistory(ctx context.Context, id string) (*history.Record, error) {
	var out history.Record
	if err := c.do(ctx, http.MethodGet, "/data/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil {
			apiErr.Err = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
