package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"civictrack-be/models"
)

// ClassificationResult is either Classified or Unavailable.
type ClassificationResult interface {
	classification()
}

// Classified names the department the issue was routed to.
type Classified struct {
	Department string
}

// Unavailable explains why no department could be chosen.
type Unavailable struct {
	Reason string
}

func (Classified) classification()  {}
func (Unavailable) classification() {}

// Classifier routes issue text to one of models.DepartmentNames. It never
// fails: every problem is reported as Unavailable.
type Classifier interface {
	Classify(ctx context.Context, title, detail string) ClassificationResult
}

type disabledClassifier struct {
	reason string
}

func (c disabledClassifier) Classify(context.Context, string, string) ClassificationResult {
	return Unavailable{Reason: c.reason}
}

const classificationPrompt = `You route civic complaints to a government department.
Choose the single best department from this list: %s.
Respond with JSON only, in the form {"department": "<name>"}.

Title: %s
Detail: %s`

// GroqClassifier asks an OpenAI-compatible chat-completion endpoint for the
// department.
type GroqClassifier struct {
	client      *openai.Client
	model       string
	departments []string
	logger      *zap.Logger
}

// NewGroqClassifier returns a classifier for the endpoint at baseURL. An
// empty apiKey yields a classifier that always reports Unavailable.
func NewGroqClassifier(apiKey, baseURL, model string, logger *zap.Logger) Classifier {
	if apiKey == "" {
		return disabledClassifier{reason: "GROQ_API_KEY is not set"}
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GroqClassifier{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		departments: models.DepartmentNames,
		logger:      logger,
	}
}

func (c *GroqClassifier) Classify(ctx context.Context, title, detail string) ClassificationResult {
	prompt := fmt.Sprintf(classificationPrompt, strings.Join(c.departments, ", "), title, detail)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		c.logger.Warn("department classification request failed", zap.Error(err))
		return Unavailable{Reason: "classification service error: " + err.Error()}
	}
	if len(resp.Choices) == 0 {
		return Unavailable{Reason: "classification service returned no choices"}
	}

	name, err := parseDepartment(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Warn("unparseable classification", zap.String("content", resp.Choices[0].Message.Content), zap.Error(err))
		return Unavailable{Reason: err.Error()}
	}

	for _, d := range c.departments {
		if strings.EqualFold(d, name) {
			return Classified{Department: d}
		}
	}
	return Unavailable{Reason: fmt.Sprintf("model suggested unknown department %q", name)}
}

// parseDepartment reads {"department": "<name>"} or {"department": ["<name>", ...]}
// and returns the first name.
func parseDepartment(content string) (string, error) {
	var out struct {
		Department json.RawMessage `json:"department"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return "", fmt.Errorf("classification response is not JSON: %w", err)
	}
	if len(out.Department) == 0 {
		return "", fmt.Errorf("classification response has no department")
	}

	var single string
	if err := json.Unmarshal(out.Department, &single); err == nil {
		if single = strings.TrimSpace(single); single != "" {
			return single, nil
		}
		return "", fmt.Errorf("classification response has an empty department")
	}

	var many []string
	if err := json.Unmarshal(out.Department, &many); err == nil {
		for _, name := range many {
			if name = strings.TrimSpace(name); name != "" {
				return name, nil
			}
		}
		return "", fmt.Errorf("classification response has an empty department list")
	}
	return "", fmt.Errorf("classification response department has an unexpected type")
}
