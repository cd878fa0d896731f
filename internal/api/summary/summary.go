// Package summary produces the natural-language trip summary through the
// Gemini API. A failed or unconfigured summarizer is never fatal: callers
// treat an empty summary as a valid itinerary.
package summary

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

const systemPrompt = `Create a vivid summary of a future trip based on a list of specific locations provided by the user. Summary should be a few paragraphs, not a list. The journey should encapsulate the essence of a city, weaving through its historical, cultural, and spiritual landscapes. Do not write anything that is not directly related to the task. Do not make introductions or conclusions.`

// Summarizer turns the per-day place lists into a short narrative.
type Summarizer interface {
	Summarize(ctx context.Context, cityName string, days [][]types.ScoredPOI) (string, error)
}

// GeminiSummarizer implements Summarizer over google.golang.org/genai.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

func NewGeminiSummarizer(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	ctx, span := otel.Tracer("Summary").Start(ctx, "NewGeminiSummarizer")
	defer span.End()

	if apiKey == "" {
		err := fmt.Errorf("gemini API key is not set")
		span.RecordError(err)
		span.SetStatus(codes.Error, "API key not set")
		return nil, err
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, err
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiSummarizer{client: client, model: model}, nil
}

func tripPrompt(cityName string, days [][]types.ScoredPOI) string {
	var sb strings.Builder
	for i, day := range days {
		fmt.Fprintf(&sb, "Day %d: ", i+1)
		for _, poi := range day {
			sb.WriteString(poi.Name)
			sb.WriteString(", ")
		}
	}
	return fmt.Sprintf("City: %s, Places: %s", cityName, sb.String())
}

// Summarize asks the model for the trip narrative.
func (s *GeminiSummarizer) Summarize(ctx context.Context, cityName string, days [][]types.ScoredPOI) (string, error) {
	ctx, span := otel.Tracer("Summary").Start(ctx, "Summarize")
	defer span.End()

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		Temperature:       genai.Ptr[float32](0.5),
		MaxOutputTokens:   1000,
	}
	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(tripPrompt(cityName, days)), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Gemini generation failed")
		return "", err
	}
	span.SetStatus(codes.Ok, "Summary generated")
	return result.Text(), nil
}

// Disabled is the no-op summarizer used when no API key is configured.
type Disabled struct{}

func (Disabled) Summarize(context.Context, string, [][]types.ScoredPOI) (string, error) {
	return "", nil
}
