package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SuggestionSeparator splits the individual suggestions in a response
const SuggestionSeparator = "||"

const suggestPrompt = "Create a list of three open-ended and engaging questions formatted as a single string. " +
	"Each question should be separated by '||'. These questions are for an anonymous social messaging platform " +
	"and should be suitable for a diverse audience. Avoid personal or sensitive topics, focusing instead on " +
	"universal themes that encourage friendly interaction."

var fallbackSuggestions = []string{
	"What's a hobby you've recently started?",
	"If you could have dinner with any historical figure, who would it be?",
	"What's a simple thing that makes you happy?",
}

type Suggester interface {
	Suggest(ctx context.Context) (string, error)
}

// StaticSuggester answers with a fixed set, used when no API key is configured
type StaticSuggester struct{}

func (StaticSuggester) Suggest(context.Context) (string, error) {
	return strings.Join(fallbackSuggestions, SuggestionSeparator), nil
}

// HFSuggester asks a Hugging Face style text generation endpoint for ideas
type HFSuggester struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

func NewHFSuggester(endpoint, apiKey string, timeout time.Duration) *HFSuggester {
	return &HFSuggester{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: timeout},
	}
}

type hfRequest struct {
	Inputs string `json:"inputs"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func (s *HFSuggester) Suggest(ctx context.Context) (string, error) {
	body, err := json.Marshal(hfRequest{Inputs: suggestPrompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w, %w", ErrUpstream, err)
	}

	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w, %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w, failed to read response, %w", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w, status %d", ErrUpstream, resp.StatusCode)
	}

	var gens []hfGeneration
	if err := json.Unmarshal(respBody, &gens); err != nil {
		return "", fmt.Errorf("%w, malformed payload, %w", ErrUpstream, err)
	}

	if len(gens) == 0 {
		return "", fmt.Errorf("%w, empty payload", ErrUpstream)
	}

	// Text generation models tend to echo the prompt back
	text := strings.TrimSpace(strings.Replace(gens[0].GeneratedText, suggestPrompt, "", 1))
	if text == "" {
		return "", fmt.Errorf("%w, no generated text", ErrUpstream)
	}

	return text, nil
}
