package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"haystack/ai"
)

// maxAnswerTokens bounds the length of a generated answer.
const maxAnswerTokens = 512

// Generator implements ai.Generator using the Gemini generation API.
//
// Generate fails soft: on provider error after retries it returns a
// human-readable error string with a nil error, so callers on the query
// path always have something to show.
type Generator struct {
	model  *genai.GenerativeModel
	config *ai.Config
	logger *slog.Logger
}

func newGenerator(client *genai.Client, config *ai.Config) *Generator {
	model := client.GenerativeModel(config.GenerationModel)
	model.SetTemperature(0.2)
	model.SetMaxOutputTokens(maxAnswerTokens)

	return &Generator{
		model:  model,
		config: config,
		logger: slog.Default().With("component", "gemini-generator"),
	}
}

// Generate produces text from the prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("generating answer", "promptLength", len(prompt))

	var answer string
	err := ai.RetryWithBackoff(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.config.CallTimeout)
		defer cancel()

		resp, err := g.model.GenerateContent(callCtx, genai.Text(prompt))
		if err != nil {
			return err
		}
		answer = responseText(resp)
		return nil
	}, g.config.MaxRetries, g.config.RetryBaseDelay)
	if err != nil {
		g.logger.Error("generation failed after retries", "err", err)
		return fmt.Sprintf("[generation failed: %v]", err), nil
	}

	return answer, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String())
}
