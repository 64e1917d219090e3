package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	oai "github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/openai/openai-go/option"

	"github.com/juparave/a11yfix/internal/config"
)

// maxAltLength is the longest alt text a model may return
const maxAltLength = 125

// GenkitSuggester asks an LLM for suggestions through Genkit
type GenkitSuggester struct {
	config  config.AIConfig
	logger  *log.Logger
	genkit  *genkit.Genkit
	modelID string
}

// NewGenkit creates a GenkitSuggester for the configured provider
func NewGenkit(cfg config.AIConfig, logger *log.Logger) (*GenkitSuggester, error) {
	ctx := context.Background()

	var g *genkit.Genkit
	modelID := cfg.Model

	switch cfg.Provider {
	case "openai":
		// OpenAI-compatible API
		var opts []option.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		if modelID == "" {
			modelID = "gpt-4o-mini"
		}
		if !strings.Contains(modelID, "/") {
			modelID = "openai/" + modelID
		}
		g = genkit.Init(ctx,
			genkit.WithDefaultModel(modelID),
			genkit.WithPlugins(&oai.OpenAI{APIKey: cfg.APIKey, Opts: opts}),
		)

	case "googleai":
		if modelID == "" {
			modelID = "gemini-2.0-flash"
		}
		if !strings.Contains(modelID, "/") {
			modelID = "googleai/" + modelID
		}
		g = genkit.Init(ctx,
			genkit.WithDefaultModel(modelID),
			genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: cfg.APIKey}),
		)

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}

	return &GenkitSuggester{
		config:  cfg,
		logger:  logger,
		genkit:  g,
		modelID: modelID,
	}, nil
}

// Model returns the Genkit model name in use
func (s *GenkitSuggester) Model() string {
	return s.modelID
}

// Suggest implements Suggester
func (s *GenkitSuggester) Suggest(ctx context.Context, req Request) (Suggestion, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return Suggestion{}, err
	}

	answer, err := genkit.GenerateText(ctx, s.genkit,
		ai.WithModelName(s.modelID),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return Suggestion{}, fmt.Errorf("generating %s: %w", req.Kind, err)
	}

	out, err := parseResponse(answer)
	if err != nil {
		return Suggestion{}, fmt.Errorf("parsing response: %w", err)
	}
	out.Text = cleanText(req.Kind, out.Text)
	if out.Text == "" {
		return Suggestion{}, fmt.Errorf("model returned no %s text", req.Kind)
	}
	out.Method = s.modelID
	return out, nil
}

func buildPrompt(req Request) (string, error) {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n")

	switch req.Kind {
	case KindAltText:
		sb.WriteString("## Task\n\nWrite concise, descriptive alt text (under 125 characters) for this image.\n")
	case KindLabel:
		fmt.Fprintf(&sb, "## Task\n\nWrite a short visible label for a %s form field.\n", orUnknown(req.ElementType))
		if req.Placeholder != "" {
			fmt.Fprintf(&sb, "Placeholder text: %s\n", req.Placeholder)
		}
	case KindARIALabel:
		fmt.Fprintf(&sb, "## Task\n\nWrite an aria-label naming the purpose of this %s element.\n", orUnknown(req.ElementType))
	case KindSimplify:
		sb.WriteString("## Task\n\nRewrite the text below at a grade 8 reading level, keeping its meaning.\n")
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKind, req.Kind)
	}

	if req.ElementHTML != "" {
		sb.WriteString("\n```html\n")
		sb.WriteString(truncate(req.ElementHTML, 1000))
		sb.WriteString("\n```\n")
	}
	if req.Context != "" {
		fmt.Fprintf(&sb, "\nSurrounding text: %s\n", truncate(req.Context, 500))
	}
	sb.WriteString(outputInstructions)
	return sb.String(), nil
}

func orUnknown(s string) string {
	if s == "" {
		return "generic"
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// cleanText strips quotes a model tends to add and bounds alt text
func cleanText(kind Kind, text string) string {
	text = strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `"'`))
	if kind == KindAltText {
		if r := []rune(text); len(r) > maxAltLength {
			text = string(r[:maxAltLength-3]) + "..."
		}
	}
	return text
}

func parseResponse(text string) (Suggestion, error) {
	text = strings.TrimSpace(text)

	// Handle markdown code blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
	}
	text = strings.TrimSpace(text)

	var out Suggestion
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return Suggestion{}, fmt.Errorf("failed to parse JSON: %w\nResponse was: %s", err, text)
	}
	switch {
	case out.Confidence <= 0:
		out.Confidence = 0.5
	case out.Confidence > 1:
		out.Confidence = 1
	}
	return out, nil
}

const systemPrompt = `You are a web accessibility specialist helping fix WCAG 2.1 failures.

## Principles

1. **Describe purpose** – Say what the element is for, not what it looks like.
2. **Be brief** – Screen reader users hear every word.
3. **No filler** – Never start with "image of", "button for" or similar.
4. **Match the page** – Use the language and tone of the surrounding text.`

const outputInstructions = `
## Required Output Format

Respond with a JSON object in this exact format:

{
  "text": "The suggested text",
  "confidence": 0.85
}

confidence is your certainty between 0 and 1.

Respond ONLY with the JSON object, no additional text.`
