package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/nextbit-dev/storelift/internal/config"
	"github.com/nextbit-dev/storelift/internal/models"
	"google.golang.org/api/option"
)

// defaultGenerationTimeout caps one generation call when no timeout is
// configured.
const defaultGenerationTimeout = 45 * time.Second

// extractionPrompt demands literal extraction only: values not present on
// the page stay blank, never guessed. Output is pipe-delimited so parsing
// survives models that wrap JSON in prose.
const extractionPrompt = `You are extracting technical product attributes from the text of a retailer product page.

Rules:
- Only report values that appear LITERALLY in the text. Never infer, estimate or complete values.
- If an attribute is not present, omit its line entirely. Do not write "unknown" or "n/a".
- Answer with one line per attribute in the exact format key|value and nothing else.

Allowed keys: processor, ram, storage, display_size, display_type, resolution, aspect_ratio, touch, gpu, os, weight, battery, connectivity, ports

Page text:
%s`

// GeminiExtractor is the AI-assisted extraction layer backed by the Gemini
// API.
type GeminiExtractor struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewGeminiExtractor creates the extractor. An empty API key disables the
// layer (nil extractor).
func NewGeminiExtractor(ctx context.Context, cfg config.GeminiConfig) (*GeminiExtractor, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-3-flash-preview"
	}
	model := client.GenerativeModel(modelName)
	// Extraction must be repeatable, not creative.
	model.SetTemperature(0)

	return &GeminiExtractor{client: client, model: model, timeout: cfg.Timeout}, nil
}

// Close closes the client connection.
func (g *GeminiExtractor) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

// ExtractAttributes sends the stripped page text to the model and parses
// the response defensively. Unparseable responses degrade to an error the
// resolver treats as an empty contribution.
func (g *GeminiExtractor) ExtractAttributes(ctx context.Context, page *CandidatePage) (models.AttributeMap, error) {
	ctx, cancel := g.requestContext(ctx)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(extractionPrompt, page.Text)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty response", ErrParseFailure)
	}

	var fullText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullText.WriteString(string(txt))
		}
	}

	return ParseAttributeLines(fullText.String()), nil
}

// requestContext bounds one generation call. A hung upstream call must
// degrade this layer's contribution, never stall an enrichment worker.
func (g *GeminiExtractor) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := g.timeout
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// ParseAttributeLines parses pipe-delimited key|value lines into an
// attribute map. Every malformed line, unknown key, or filler value is
// skipped rather than raised: the AI boundary is untrusted input.
func ParseAttributeLines(text string) models.AttributeMap {
	attrs := models.NewAttributeMap()
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.Trim(line, "`"))
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" || isFillerValue(value) {
			continue
		}
		attrs.SetIfAbsent(models.AttributeKey(key), value)
	}
	return attrs
}

func isFillerValue(value string) bool {
	switch strings.ToLower(value) {
	case "unknown", "n/a", "na", "none", "-", "not specified", "not present", "null":
		return true
	}
	return false
}
