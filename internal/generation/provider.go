// Package generation talks to the external image-generation provider that
// renders custom hourglass themes from user prompts.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stilltime/api/internal/config"
)

var ErrNoOutput = errors.New("provider returned no image")

// Provider renders one image for a prompt and returns its URL. Errors are
// surfaced to the user as retryable; the service never retries on its own.
type Provider interface {
	Generate(ctx context.Context, prompt string, aspectRatio string) (string, error)
}

// ReplicateClient drives a Replicate-style sync prediction endpoint.
type ReplicateClient struct {
	baseURL string
	token   string
	model   string
	http    *http.Client
}

func NewReplicateClient(cfg config.GenerationConfig) *ReplicateClient {
	timeout := cfg.RequestTTL
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ReplicateClient{
		baseURL: strings.TrimSuffix(cfg.ProviderURL, "/"),
		token:   cfg.ProviderToken,
		model:   cfg.Model,
		http:    &http.Client{Timeout: timeout},
	}
}

type predictionRequest struct {
	Input predictionInput `json:"input"`
}

type predictionInput struct {
	Prompt        string `json:"prompt"`
	AspectRatio   string `json:"aspect_ratio"`
	NumOutputs    int    `json:"num_outputs"`
	OutputFormat  string `json:"output_format"`
	OutputQuality int    `json:"output_quality"`
}

type predictionResponse struct {
	Output []string `json:"output"`
	Error  string   `json:"error"`
	Status string   `json:"status"`
}

func (c *ReplicateClient) Generate(ctx context.Context, prompt string, aspectRatio string) (string, error) {
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}

	body, err := json.Marshal(predictionRequest{
		Input: predictionInput{
			Prompt:        prompt,
			AspectRatio:   aspectRatio,
			NumOutputs:    1,
			OutputFormat:  "png",
			OutputQuality: 90,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal prediction: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var prediction predictionResponse
	if err := json.Unmarshal(data, &prediction); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if prediction.Error != "" {
		return "", fmt.Errorf("provider error: %s", prediction.Error)
	}
	if len(prediction.Output) == 0 || prediction.Output[0] == "" {
		return "", ErrNoOutput
	}

	return prediction.Output[0], nil
}
