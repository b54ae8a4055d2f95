package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/extraction/dto"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultModel         = "gemini-2.5-flash"
	DefaultFallbackModel = "gemini-2.0-flash"
	defaultMimeType      = "image/jpeg"
)

type Config struct {
	APIKey        string
	Model         string
	FallbackModel string
	Timeout       time.Duration
}

// Generator is the slice of the genai client the extractor calls.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Extractor asks Gemini for a structured reading of a bill photo, trying the primary model first
// and the fallback model when it fails.
type Extractor struct {
	gen    Generator
	cfg    Config
	logger logger.ZapLogger
}

func NewClient(ctx context.Context, cfg Config) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func NewExtractor(gen Generator, cfg Config, log logger.ZapLogger) *Extractor {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Extractor{gen: gen, cfg: cfg, logger: log}
}

func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string, knownShops, knownProducts []string) (*dto.PartialBill, error) {
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(Prompt(knownShops, knownProducts)),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}

	text, err := e.generate(ctx, e.cfg.Model, contents, config)
	if err != nil && e.cfg.FallbackModel != "" && e.cfg.FallbackModel != e.cfg.Model {
		e.logger.Warn("primary extraction model failed, trying fallback",
			zap.String("model", e.cfg.Model),
			zap.String("fallback", e.cfg.FallbackModel),
			zap.Error(err))
		text, err = e.generate(ctx, e.cfg.FallbackModel, contents, config)
	}
	if err != nil {
		return nil, err
	}
	return Parse(text)
}

func (e *Extractor) generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	resp, err := e.gen.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", model, err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini %s: %w", model, errEmpty)
	}
	return text, nil
}

var errEmpty = errors.New("no data returned")

// Parse decodes the model's JSON answer. Code fences around the document are tolerated.
func Parse(text string) (*dto.PartialBill, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var out dto.PartialBill
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}
	return &out, nil
}

// Prompt lists the master names so the model maps what it reads onto them.
func Prompt(knownShops, knownProducts []string) string {
	var b strings.Builder
	b.WriteString("Analyze this bill image. Extract the shop name, invoice number, date and every product line.\n\n")
	fmt.Fprintf(&b, "1. SHOP NAME: the bill belongs to one of these known shops: [%s].\n", strings.Join(knownShops, ", "))
	b.WriteString("   Match the text on the bill to one of these exact names. If none matches, return the closest match or the raw text.\n\n")
	fmt.Fprintf(&b, "2. PRODUCTS: the company only sells these products: [%s].\n", strings.Join(knownProducts, ", "))
	b.WriteString("   Map every line to one of these exact names, e.g. a line reading \"Coke\" becomes \"Coca Cola\" when that is on the list.\n")
	b.WriteString("   If a line cannot be mapped, return the raw text so the user can fix it.\n\n")
	b.WriteString("For each line extract the product name, retail price (rate), quantity and line total.\n")
	b.WriteString("Dates use YYYY-MM-DD. Numeric values are numbers.\n")
	return b.String()
}

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"shopName":      {Type: genai.TypeString},
		"invoiceNumber": {Type: genai.TypeString},
		"date":          {Type: genai.TypeString, Description: "Format YYYY-MM-DD"},
		"items": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"productName": {Type: genai.TypeString},
					"retailPrice": {Type: genai.TypeNumber},
					"quantity":    {Type: genai.TypeNumber},
					"total":       {Type: genai.TypeNumber},
				},
				Required: []string{"productName", "quantity", "total"},
			},
		},
		"totalAmount": {Type: genai.TypeNumber},
	},
	Required: []string{"shopName", "items", "totalAmount"},
}
