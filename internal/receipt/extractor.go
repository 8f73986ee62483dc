package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/tallyledger/tally/internal/common"
	"github.com/tallyledger/tally/internal/model"
	"github.com/tallyledger/tally/internal/service"
)

// DefaultModel is the Gemini model used for receipt extraction unless
// configured otherwise.
const DefaultModel = "gemini-2.0-flash"

// GeminiExtractor sends receipt images to the Gemini API and parses the
// response into staged items.
type GeminiExtractor struct {
	logger     *slog.Logger
	model      string
	credential string
}

// NewGeminiExtractor creates an extractor. The credential is the per-user
// secret from the settings store.
func NewGeminiExtractor(modelName, credential string) (*GeminiExtractor, error) {
	if credential == "" {
		return nil, common.ErrNoCredential
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiExtractor{
		logger:     slog.Default().With("component", "extractor"),
		model:      modelName,
		credential: credential,
	}, nil
}

// Extract sends the image with the fixed category enumeration and extraction
// instructions, then parses the first balanced JSON object out of the
// response text.
func (e *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string) (service.Extraction, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  e.credential,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return service.Extraction{}, fmt.Errorf("failed to create OCR client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractionPrompt()},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	e.logger.Info("Extracting receipt items", "model", e.model, "image_bytes", len(image))

	resp, err := client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return service.Extraction{}, fmt.Errorf("OCR call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return service.Extraction{}, fmt.Errorf("%w: empty response", common.ErrBadExtraction)
	}

	extraction, err := ParseExtraction(text)
	if err != nil {
		return service.Extraction{}, err
	}

	e.logger.Info("Extracted receipt items", "count", len(extraction.Items))
	return extraction, nil
}

// extractionPrompt builds the natural-language instructions, including the
// fixed category enumeration the provider must choose from.
func extractionPrompt() string {
	var b strings.Builder
	b.WriteString("You are a receipt reader. Extract every purchased line item from the attached receipt image.\n\n")
	b.WriteString("Return a single JSON object, no code fences, shaped exactly like:\n")
	b.WriteString(`{"date": "YYYY-MM-DD or null", "items": [{"description": "...", "price": 0.00, "category": "..."}]}` + "\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- price is the positive amount paid for that line, after line-level discounts.\n")
	b.WriteString("- category must be one of: ")
	b.WriteString(strings.Join(model.CategoryIDs(), ", "))
	b.WriteString(".\n")
	b.WriteString("- Skip totals, subtotals, tax lines, and payment lines.\n")
	b.WriteString("- If the purchase date is not visible, use null.\n")
	return b.String()
}

// Ensure GeminiExtractor implements the service contract.
var _ service.Extractor = (*GeminiExtractor)(nil)
