// Package semantic is the last-resort identification stage: it asks a
// language model what product a URL points at, using whatever partial
// signals the cheaper stages collected.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/fairwaylabs/linkresolver/internal/resolve"
)

// Config selects the models used by the full and quick paths.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	QuickModel string
	MaxTokens  int
}

// Resolver implements resolve.SemanticResolver on the OpenAI chat API
// with JSON-mode responses.
type Resolver struct {
	client openai.Client
	cfg    Config
	log    *zap.Logger
}

// New builds the resolver.
func New(cfg Config, log *zap.Logger) *Resolver {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.QuickModel == "" {
		cfg.QuickModel = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Resolver{
		client: openai.NewClient(opts...),
		cfg:    cfg,
		log:    log,
	}
}

const systemPrompt = `You identify consumer products from URLs and page fragments.
Respond with a single JSON object:
{
  "brand": string or null,
  "productName": string,
  "category": string or null,
  "certainty": "high" | "medium" | "low",
  "suggestedBrandMapping": {"domain": string, "brand": string, "category": string} or null
}
Rules:
- productName is the product's display name without the brand prefix.
- certainty is "high" only when the URL or content names the product explicitly.
- Set suggestedBrandMapping only when the domain itself is a brand's own store.
- Never invent a price. Never pad productName with marketing copy.`

// Resolve asks the full model to identify the product.
func (r *Resolver) Resolve(ctx context.Context, q resolve.Query) (resolve.SemanticAnswer, error) {
	raw, err := r.complete(ctx, r.cfg.Model, systemPrompt, analysisPrompt(q))
	if err != nil {
		return resolve.SemanticAnswer{}, err
	}
	return parseAnswer(raw, q)
}

const polishPrompt = `You clean up product names parsed from URLs.
Respond with a single JSON object: {"productName": string}.
Fix casing and spacing, restore model codes, drop SKU fragments. Do not
add words that are not implied by the input.`

// Polish runs the cheap model over an already-confident structural
// name. Only the name comes back; certainty is not consulted.
func (r *Resolver) Polish(ctx context.Context, q resolve.Query) (resolve.SemanticAnswer, error) {
	user := fmt.Sprintf("Brand: %s\nParsed name: %s\nURL: %s", q.Brand, q.ParsedName, q.URL)
	raw, err := r.complete(ctx, r.cfg.QuickModel, polishPrompt, user)
	if err != nil {
		return resolve.SemanticAnswer{}, err
	}
	var body struct {
		ProductName string `json:"productName"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return resolve.SemanticAnswer{}, fmt.Errorf("%w: %v", resolve.ErrMalformedResponse, err)
	}
	return resolve.SemanticAnswer{Name: strings.TrimSpace(body.ProductName)}, nil
}

func (r *Resolver) complete(ctx context.Context, model, system, user string) (string, error) {
	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature:         openai.Float(0),
		MaxCompletionTokens: openai.Int(int64(r.cfg.MaxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", resolve.ErrMalformedResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// analysisPrompt lays out everything earlier stages know about the URL.
func analysisPrompt(q resolve.Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\nDomain: %s\n", q.URL, q.Domain)
	switch {
	case q.Retailer:
		b.WriteString("Domain type: known retailer, brand must come from the product itself\n")
	case q.KnownDomain:
		fmt.Fprintf(&b, "Domain type: brand site (%s)\n", q.Brand)
	default:
		b.WriteString("Domain type: unrecognized\n")
	}
	if q.ParsedName != "" {
		fmt.Fprintf(&b, "Name parsed from URL: %s\n", q.ParsedName)
	}
	if q.Category != "" {
		fmt.Fprintf(&b, "Likely category: %s\n", q.Category)
	}
	if q.ScrapedTitle != "" {
		fmt.Fprintf(&b, "Page title: %s\n", q.ScrapedTitle)
	}
	if q.ScrapedText != "" {
		fmt.Fprintf(&b, "Page content:\n%s\n", q.ScrapedText)
	}
	b.WriteString("Identify the product.")
	return b.String()
}

type modelAnswer struct {
	Brand                 string `json:"brand"`
	ProductName           string `json:"productName"`
	Category              string `json:"category"`
	Certainty             string `json:"certainty"`
	SuggestedBrandMapping *struct {
		Domain   string `json:"domain"`
		Brand    string `json:"brand"`
		Category string `json:"category"`
	} `json:"suggestedBrandMapping"`
}

// parseAnswer converts the model's JSON into a SemanticAnswer, mapping
// certainty tiers onto confidence and capping it when the model had
// nothing but the URL to go on.
func parseAnswer(raw string, q resolve.Query) (resolve.SemanticAnswer, error) {
	var body modelAnswer
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return resolve.SemanticAnswer{}, fmt.Errorf("%w: %v", resolve.ErrMalformedResponse, err)
	}
	if body.ProductName == "" {
		return resolve.SemanticAnswer{}, resolve.ErrMalformedResponse
	}

	answer := resolve.SemanticAnswer{
		Brand:      strings.TrimSpace(body.Brand),
		Name:       strings.TrimSpace(body.ProductName),
		Category:   strings.TrimSpace(body.Category),
		Confidence: bucketConfidence(body.Certainty, q),
	}
	if m := body.SuggestedBrandMapping; m != nil && m.Domain != "" && m.Brand != "" {
		answer.Suggestion = &resolve.BrandSuggestion{
			Domain:   strings.ToLower(strings.TrimSpace(m.Domain)),
			Brand:    strings.TrimSpace(m.Brand),
			Category: strings.TrimSpace(m.Category),
		}
	}
	return answer, nil
}

// bucketConfidence maps self-reported certainty onto the documented
// tiers, then caps guesses made without any scraped page content: a
// retailer URL alone rarely names the product, a brand-site URL is
// better but still unverified.
func bucketConfidence(certainty string, q resolve.Query) float64 {
	var c float64
	switch strings.ToLower(strings.TrimSpace(certainty)) {
	case "high":
		c = 0.9
	case "medium":
		c = 0.8
	default:
		c = 0.7
	}

	noContent := q.ScrapedText == "" && q.ScrapedTitle == ""
	if noContent {
		switch {
		case q.Retailer && c > 0.6:
			c = 0.6
		case !q.Retailer && c > 0.75:
			c = 0.75
		}
	}
	return c
}
