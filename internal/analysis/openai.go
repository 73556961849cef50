package analysis

import (
	"context"
	_ "embed"
	"encoding/base64"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

//go:embed prompts/face_analysis.txt
var faceAnalysisPrompt string

const openaiModel = openai.ChatModelGPT4_1Mini

// maxEngineImageSize is the longest edge sent to hosted engines.
const maxEngineImageSize = 800

// OpenAIEngine answers the face analysis contract with an OpenAI vision
// model. Useful where no local engine is installed.
type OpenAIEngine struct {
	client *openai.Client
}

func NewOpenAIEngine(apiKey string) *OpenAIEngine {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIEngine{client: &client}
}

func (e *OpenAIEngine) Name() string {
	return openaiModel
}

func (e *OpenAIEngine) Analyze(ctx context.Context, image []byte) (*Result, error) {
	if len(image) == 0 {
		return nil, ErrMissingImage
	}

	// Resize to save cost; face attributes survive downscaling fine.
	resized, err := ResizeImage(image, maxEngineImageSize)
	if err != nil {
		return nil, &EngineError{Kind: ErrorExecution, Err: err}
	}
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(resized)

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openaiModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(faceAnalysisPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
							openai.TextContentPart("Analyze the faces in this photo."),
							openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
								URL:    imageURL,
								Detail: "low",
							}),
						},
					},
				},
			},
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		MaxTokens: openai.Int(500),
	})
	if err != nil {
		return nil, &EngineError{Kind: ErrorExecution, Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &EngineError{Kind: ErrorResponse, Err: errors.New("no response from OpenAI")}
	}

	content := resp.Choices[0].Message.Content
	result, err := ParseResult([]byte(content))
	if err != nil {
		return nil, &EngineError{Kind: ErrorResponse, Detail: content, Err: err}
	}
	return result, nil
}
