// Package generate produces candidate mod name lists from a
// chat-completion model. Model output is untrusted text: it is parsed
// defensively and handed to the validation engine as-is.
package generate

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/modsmith/modsmith-server/internal/errors"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// ChatModel is the completion capability the generator consumes.
// Satisfied by *openai.Client.
type ChatModel interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Request describes one generation round.
type Request struct {
	Version string
	Loader  string
	Theme   string
}

// History seeds the prompt with outcomes from earlier runs.
type History struct {
	// Verified mods are offered as reference points to imitate.
	Verified []string
	// Failed mods are named so the model stops suggesting them.
	Failed []string
}

// Generator turns curation requests into candidate lists.
type Generator struct {
	chat   ChatModel
	model  string
	logger *slog.Logger
}

// New builds a generator against an OpenAI-compatible API.
func New(apiKey, model string, logger *slog.Logger) *Generator {
	if model == "" {
		model = DefaultModel
		logger.Warn("generation model not set, using default", "model", DefaultModel)
	}
	return NewWithClient(openai.NewClient(apiKey), model, logger)
}

// NewWithClient builds a generator over an explicit chat client.
func NewWithClient(chat ChatModel, model string, logger *slog.Logger) *Generator {
	return &Generator{chat: chat, model: model, logger: logger}
}

// Suggest generates the primary candidate list for a request. On a
// model or parse failure it falls back to a simpler emergency prompt
// before giving up.
func (g *Generator) Suggest(ctx context.Context, req Request, history History) ([]string, error) {
	g.logger.Info("generating candidate mods",
		"version", req.Version,
		"loader", req.Loader,
		"theme", req.Theme,
	)

	candidates, err := g.complete(ctx, primaryPrompt(req, history))
	if err == nil && len(candidates) > 0 {
		return candidates, nil
	}
	if err != nil {
		g.logger.Warn("primary generation failed, trying fallback prompt", "error", err)
	}

	candidates, err = g.complete(ctx, fallbackPrompt(req))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeGeneration, "candidate generation failed")
	}
	return candidates, nil
}

// Improve requests replacements for candidates that were not found in
// the catalog. A failed improvement round returns an empty list, never
// an error: the run continues with what it has.
func (g *Generator) Improve(ctx context.Context, req Request, failed []string) []string {
	if len(failed) == 0 {
		return nil
	}

	g.logger.Info("requesting improved suggestions", "failed", len(failed))
	candidates, err := g.complete(ctx, improvementPrompt(req, failed))
	if err != nil {
		g.logger.Warn("improvement round failed", "error", err)
		return nil
	}
	return candidates
}

// complete runs one prompt and parses the response as a candidate list.
func (g *Generator) complete(ctx context.Context, prompt string) ([]string, error) {
	resp, err := g.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert Minecraft modpack curator with comprehensive knowledge of Modrinth's mod database.",
			},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	candidates, err := ExtractCandidates(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("parsed candidate list", "count", len(candidates))
	return candidates, nil
}

// arrayRe grabs the outermost JSON array from free-text model output,
// tolerating prose or code fences around it.
var arrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// ExtractCandidates parses a model response into a cleaned candidate
// list: the first JSON string array found in the text, with blank
// entries dropped and surrounding whitespace trimmed.
func ExtractCandidates(text string) ([]string, error) {
	raw := arrayRe.FindString(text)
	if raw == "" {
		raw = strings.TrimSpace(text)
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("response is not a JSON string array: %w", err)
	}

	out := names[:0]
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}
