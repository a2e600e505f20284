package estimator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"caltext/internal/models"
)

const estimateInstructions = `You are a calorie estimation assistant. The user will describe what they ate.

Respond ONLY with valid JSON in this exact format, no other text:
{
    "items": [
        {"name": "item name", "calories": 200},
        {"name": "item name", "calories": 150}
    ],
    "total_calories": 350
}

Do NOT wrap your response in markdown code fences or backticks. Return raw JSON only.
Be reasonable with estimates. Use typical serving sizes when not specified.
Round calories to the nearest 5.`

const correctionInstructions = `You are a calorie estimation assistant helping a user correct a food log entry.

You will receive:
  - The original food entry that was logged
  - A correction or edit instruction from the user

The correction might be a full replacement ("one egg, toast, OJ") or a partial note
("sorry it was one egg not two" / "I think you overestimated the peanut butter").
Apply the correction and return updated calorie estimates.

Respond ONLY with valid JSON in this exact format, no other text:
{
    "corrected_description": "full corrected description of what was eaten",
    "items": [
        {"name": "item name", "calories": 200},
        {"name": "item name", "calories": 150}
    ],
    "total_calories": 350
}

Rules:
- corrected_description should be a clean, complete description of what was actually eaten
- If calories were disputed ("you overestimated X"), use better judgment for that item
- Round calories to the nearest 5
- Do NOT wrap your response in markdown code fences. Return raw JSON only.`

// Ensure implementation satisfies the interface
var _ Service = (*GeminiEstimator)(nil)

// Service turns free-text food descriptions into itemized calorie
// estimates. Both methods return an EstimationError on upstream failure
// or malformed model output; callers perform no store write in that case.
type Service interface {
	Estimate(ctx context.Context, description string) (*models.Estimate, error)
	// EstimateCorrection re-estimates an existing entry given the original
	// description plus the user's correction, which may be a full
	// replacement or a partial note. The returned estimate carries a clean
	// corrected description to store going forward.
	EstimateCorrection(ctx context.Context, original, instruction string) (*models.CorrectedEstimate, error)
}

// GeminiEstimator calls the Gemini API for estimates.
type GeminiEstimator struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewGeminiEstimator(ctx context.Context, model string, logger *slog.Logger) (*GeminiEstimator, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiEstimator{client: client, model: model, logger: logger}, nil
}

func (g *GeminiEstimator) Estimate(ctx context.Context, description string) (*models.Estimate, error) {
	ctx, span := otel.Tracer("Estimator").Start(ctx, "Estimate", trace.WithAttributes(
		attribute.Int("description.length", len(description)),
	))
	defer span.End()

	l := g.logger.With(slog.String("method", "Estimate"))

	prompt := fmt.Sprintf("%s\n\nWhat was eaten: %s", estimateInstructions, description)
	raw, err := g.generate(ctx, prompt)
	if err != nil {
		l.ErrorContext(ctx, "Model call failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Model call failed")
		return nil, &models.EstimationError{Reason: "model call failed", Err: err}
	}

	est, err := parseEstimate(raw)
	if err != nil {
		l.ErrorContext(ctx, "Malformed model output", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Malformed model output")
		return nil, &models.EstimationError{Reason: "malformed model output", Err: err}
	}

	l.DebugContext(ctx, "Estimate ready", slog.Int("total", est.Total), slog.Int("items", len(est.Items)))
	span.SetStatus(codes.Ok, "Estimate ready")
	return est, nil
}

func (g *GeminiEstimator) EstimateCorrection(ctx context.Context, original, instruction string) (*models.CorrectedEstimate, error) {
	ctx, span := otel.Tracer("Estimator").Start(ctx, "EstimateCorrection")
	defer span.End()

	l := g.logger.With(slog.String("method", "EstimateCorrection"))

	// The model sees both the original entry and the correction so the
	// relationship between them is unambiguous.
	prompt := fmt.Sprintf("%s\n\nOriginal entry: %s\nCorrection: %s",
		correctionInstructions, original, instruction)
	raw, err := g.generate(ctx, prompt)
	if err != nil {
		l.ErrorContext(ctx, "Model call failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Model call failed")
		return nil, &models.EstimationError{Reason: "model call failed", Err: err}
	}

	ce, err := parseCorrection(raw)
	if err != nil {
		l.ErrorContext(ctx, "Malformed model output", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Malformed model output")
		return nil, &models.EstimationError{Reason: "malformed model output", Err: err}
	}
	if ce.Description == "" {
		// Still usable: keep the user's own instruction as description.
		ce.Description = instruction
	}

	span.SetStatus(codes.Ok, "Correction ready")
	return ce, nil
}

func (g *GeminiEstimator) generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return result.Text(), nil
}

type estimateWire struct {
	Items []struct {
		Name     string `json:"name"`
		Calories int    `json:"calories"`
	} `json:"items"`
	TotalCalories        int    `json:"total_calories"`
	CorrectedDescription string `json:"corrected_description"`
}

func parseEstimate(raw string) (*models.Estimate, error) {
	wire, err := decodeWire(raw)
	if err != nil {
		return nil, err
	}
	est := wireEstimate(wire)
	return &est, nil
}

func parseCorrection(raw string) (*models.CorrectedEstimate, error) {
	wire, err := decodeWire(raw)
	if err != nil {
		return nil, err
	}
	return &models.CorrectedEstimate{
		Estimate:    wireEstimate(wire),
		Description: strings.TrimSpace(wire.CorrectedDescription),
	}, nil
}

func decodeWire(raw string) (*estimateWire, error) {
	text := stripFences(raw)
	var wire estimateWire
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, fmt.Errorf("response is not the expected JSON: %w", err)
	}
	if len(wire.Items) == 0 && wire.TotalCalories <= 0 {
		return nil, fmt.Errorf("response contains no items and no total")
	}
	return &wire, nil
}

// wireEstimate converts the wire shape, keeping the invariant that an
// entry's calories equal the sum of its items: when items are present
// their sum wins over the model's own total_calories field.
func wireEstimate(wire *estimateWire) models.Estimate {
	items := make([]models.Item, 0, len(wire.Items))
	for _, it := range wire.Items {
		items = append(items, models.Item{Label: strings.TrimSpace(it.Name), Calories: it.Calories})
	}
	total := wire.TotalCalories
	if len(items) > 0 {
		total = models.SumItems(items)
	}
	return models.Estimate{Items: items, Total: total}
}

// stripFences drops a wrapping markdown code fence. The model is told to
// return raw JSON but sometimes wraps it anyway.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if _, rest, ok := strings.Cut(text, "\n"); ok {
		text = rest
	}
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
