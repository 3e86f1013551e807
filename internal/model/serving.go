package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ServingClient calls a model server that speaks the TensorFlow Serving REST
// predict protocol.
type ServingClient struct {
	baseURL string
	name    string
	client  *http.Client
	log     *zap.SugaredLogger
}

type predictRequest struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

type modelStatus struct {
	ModelVersionStatus []struct {
		Version string `json:"version"`
		State   string `json:"state"`
	} `json:"model_version_status"`
}

func NewServingClient(baseURL, name string, timeout time.Duration, log *zap.SugaredLogger) *ServingClient {
	tr := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 2 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 2 * time.Second,
		DisableKeepAlives:   false,
	}
	return &ServingClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		name:    name,
		client:  &http.Client{Transport: tr, Timeout: timeout},
		log:     log,
	}
}

func (s *ServingClient) modelURL() string {
	return fmt.Sprintf("%s/v1/models/%s", s.baseURL, s.name)
}

// Probe fails unless the server reports at least one AVAILABLE version of
// the model.
func (s *ServingClient) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.modelURL(), nil)
	if err != nil {
		return err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach model server: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("model server responded with status %d", res.StatusCode)
	}

	var status modelStatus
	if err := json.NewDecoder(res.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode model status: %w", err)
	}
	for _, v := range status.ModelVersionStatus {
		if v.State == "AVAILABLE" {
			s.log.Infow("Model server ready", "model", s.name, "version", v.Version)
			return nil
		}
	}
	return fmt.Errorf("model %s has no available version", s.name)
}

func (s *ServingClient) Predict(ctx context.Context, input [][][]float64) ([]float64, error) {
	body, err := json.Marshal(predictRequest{Instances: input})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.modelURL()+":predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to model server: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read model server response: %w", err)
	}

	var out predictResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode model server response (status %d): %w", res.StatusCode, err)
	}
	if res.StatusCode != http.StatusOK {
		if out.Error != "" {
			return nil, fmt.Errorf("model server responded with status %d: %s", res.StatusCode, out.Error)
		}
		return nil, fmt.Errorf("model server responded with status %d", res.StatusCode)
	}
	if len(out.Predictions) != 1 {
		return nil, fmt.Errorf("model server returned %d predictions, expected 1", len(out.Predictions))
	}
	return out.Predictions[0], nil
}
