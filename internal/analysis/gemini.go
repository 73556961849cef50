package analysis

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// GeminiEngine answers the face analysis contract with a Gemini vision model.
type GeminiEngine struct {
	client *genai.Client
}

func NewGeminiEngine(ctx context.Context, apiKey string) (*GeminiEngine, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiEngine{client: client}, nil
}

func (e *GeminiEngine) Name() string {
	return geminiModel
}

func (e *GeminiEngine) Analyze(ctx context.Context, image []byte) (*Result, error) {
	if len(image) == 0 {
		return nil, ErrMissingImage
	}

	resized, err := ResizeImage(image, maxEngineImageSize)
	if err != nil {
		return nil, &EngineError{Kind: ErrorExecution, Err: err}
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: faceAnalysisPrompt + "\n\nAnalyze the faces in this photo."},
				{InlineData: &genai.Blob{Data: resized, MIMEType: "image/jpeg"}},
			},
		},
	}

	resp, err := e.client.Models.GenerateContent(ctx, geminiModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, &EngineError{Kind: ErrorExecution, Err: err}
	}

	content := resp.Text()
	if content == "" {
		return nil, &EngineError{Kind: ErrorResponse, Err: errors.New("no response from Gemini")}
	}

	result, err := ParseResult([]byte(content))
	if err != nil {
		return nil, &EngineError{Kind: ErrorResponse, Detail: content, Err: err}
	}
	return result, nil
}
