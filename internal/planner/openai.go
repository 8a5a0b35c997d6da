// Package planner wraps the external collaborators the worker talks
// to: the plan-generation model and the Google route/photo lookups.
// All of them are best-effort from the worker's point of view; this
// package only reports errors and never decides what to do about them.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Danilov210/Trip-Planner/internal/models"
)

const systemPrompt = "You are an expert trip planner. Given the user's request, " +
	"return exactly one JSON object with these fields:\n" +
	"  - days: an array of day objects, each with `description`, `place`, " +
	"`coords` (lat/lng) and `image_url`\n" +
	"  - waypoints: an array of {lat, lng} for the trip path\n" +
	"Do not include any markdown, commentary, or extra keys. Only the JSON."

// OpenAIPlanner generates unstructured plan documents through the chat
// completion API. The client is created once and reused.
type OpenAIPlanner struct {
	client *openai.Client
	model  string
}

func NewOpenAIPlanner(apiKey, model string) *OpenAIPlanner {
	return &OpenAIPlanner{client: openai.NewClient(apiKey), model: model}
}

// BuildPrompt renders the natural-language request for one job.
func BuildPrompt(msg models.JobMessage) string {
	interests := "no specific interests"
	if len(msg.Interests) > 0 {
		interests = strings.Join(msg.Interests, ", ")
	}
	return fmt.Sprintf(
		"Plan a trip to %s from %s to %s with interests: %s. "+
			"Return a JSON object with a `days` array; each day has `description`, `place`, `coords` (lat/lng), and `image_url`.",
		msg.StartLocation, msg.StartDate, msg.EndDate, interests,
	)
}

// Generate asks the model for a plan and returns its raw text output.
func (p *OpenAIPlanner) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
