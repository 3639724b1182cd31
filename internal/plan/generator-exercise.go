package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// exerciseDetailGenerator produces reference content for an exercise using
// the OpenAI API. It is an optional enrichment: the service falls back to
// minimal content whenever it is unavailable or fails.
type exerciseDetailGenerator struct {
	client *openai.Client
}

func newExerciseDetailGenerator(openaiAPIKey string) *exerciseDetailGenerator {
	client := openai.NewClient(option.WithAPIKey(openaiAPIKey))
	return &exerciseDetailGenerator{client: client}
}

// Generate generates detailed reference content for the named exercise.
func (eg *exerciseDetailGenerator) Generate(ctx context.Context, name string) (ExerciseDetail, error) {
	if name == "" {
		return ExerciseDetail{}, errors.New("exercise name cannot be empty")
	}

	prompt := fmt.Sprintf(`Generate a detailed description for the exercise "%s".
Include 3-5 numbered instruction steps explaining proper form, 2-3 short
coaching tips, and a markdown description following this exact structure:

## Instructions
[The numbered steps]

## Common Mistakes
[3-4 common form errors as bullet points]

Important guidelines:
- Instructions should be clear, concise, and focus on proper form
- Use simple, direct language that beginners can understand
- Highlight safety considerations where relevant

The description should be comprehensive yet concise, totaling around 150 words.`, name)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        openai.F("exercise_detail"),
		Description: openai.F("Reference content for a fitness exercise"),
		Schema:      openai.F(interface{}(exerciseDetailJSONSchema{})),
		Strict:      openai.Bool(true),
	}

	chat, err := eg.client.Chat.Completions.New(ctx,
		openai.ChatCompletionNewParams{ //nolint:exhaustruct // only need to set a few fields.
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			}),
			ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
				openai.ResponseFormatJSONSchemaParam{
					Type:       openai.F(openai.ResponseFormatJSONSchemaTypeJSONSchema),
					JSONSchema: openai.F(schemaParam),
				},
			),
			Model: openai.F(openai.ChatModelGPT4o2024_08_06),
		})
	if err != nil {
		return ExerciseDetail{}, fmt.Errorf("chat completion: %w", err)
	}

	var detail ExerciseDetail
	if err = json.Unmarshal([]byte(chat.Choices[0].Message.Content), &detail); err != nil {
		return ExerciseDetail{}, fmt.Errorf("parse exercise detail response: %w", err)
	}

	if detail.Name == "" || detail.DescriptionMarkdown == "" {
		return ExerciseDetail{}, errors.New("generated exercise detail is missing required fields")
	}
	if len(detail.Instructions) == 0 {
		return ExerciseDetail{}, errors.New("generated exercise detail has no instructions")
	}

	return detail, nil
}

type exerciseDetailJSONSchema struct{}

func (exerciseDetailJSONSchema) MarshalJSON() ([]byte, error) {
	return []byte(`{
	  "type": "object",
	  "required": ["name", "description_markdown", "instructions", "tips"],
	  "properties": {
		"name": {
		  "type": "string",
		  "description": "Name of the exercise"
		},
		"description_markdown": {
		  "type": "string",
		  "description": "Markdown description of the exercise"
		},
		"instructions": {
		  "type": "array",
		  "description": "Numbered steps explaining how to perform the exercise",
		  "items": {"type": "string"}
		},
		"tips": {
		  "type": "array",
		  "description": "Short coaching tips",
		  "items": {"type": "string"}
		}
	  },
	  "additionalProperties": false
	}`), nil
}
