package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dripmax/dripmax-go/models"
)

const garmentPrompt = `You are a fashion cataloguing assistant. Classify the garment in the image.
Respond with a single JSON object and nothing else, using exactly these keys:
{"category": "", "type": "", "brand": "", "primary_color": "", "secondary_colors": [],
"pattern": "", "material": "", "size_range": "", "fit_style": "", "price_range": "", "tags": []}
Use "unknown" for anything you cannot determine from the image.`

const outfitPrompt = `You are a fashion stylist. Rate the outfit in the image.
Respond with a single JSON object and nothing else, using exactly these keys:
{"overall_feedback": "", "fit_analysis": "", "color_analysis": "",
"event_suitability": [], "item_suggestions": [], "other_suggestions": "",
"score": 0, "fit_score": 0, "color_score": 0}
Scores are numbers from 0 to 10.`

// Gemini implements GarmentAnalyzer and OutfitAnalyzer against the Google
// generative AI API.
type Gemini struct {
	apiKey string
	model  string
}

var (
	_ GarmentAnalyzer = (*Gemini)(nil)
	_ OutfitAnalyzer  = (*Gemini)(nil)
)

func NewGemini(apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	return &Gemini{apiKey: apiKey, model: model}, nil
}

func (g *Gemini) Analyze(ctx context.Context, imageURL string) (*models.GarmentAttributes, error) {
	raw, err := g.generate(ctx, garmentPrompt, imageURL)
	if err != nil {
		return nil, err
	}

	var attrs models.GarmentAttributes
	if err := json.Unmarshal(extractJSON(raw), &attrs); err != nil {
		return nil, fmt.Errorf("parse garment attributes: %w", err)
	}
	return &attrs, nil
}

func (g *Gemini) Rate(ctx context.Context, imageURL string) (*models.FeedbackDraft, error) {
	raw, err := g.generate(ctx, outfitPrompt, imageURL)
	if err != nil {
		return nil, err
	}

	var draft models.FeedbackDraft
	if err := json.Unmarshal(extractJSON(raw), &draft); err != nil {
		return nil, fmt.Errorf("parse outfit feedback: %w", err)
	}
	return &draft, nil
}

func (g *Gemini) generate(ctx context.Context, prompt, imageURL string) ([]byte, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	imgData, err := fetchImage(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.ImageData("jpeg", imgData),
	)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty gemini response")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return []byte(text), nil
		}
	}
	return nil, fmt.Errorf("gemini response contains no text part")
}

// extractJSON strips markdown code fences and any surrounding prose, leaving
// the outermost JSON object. Models wrap JSON in fences often enough that
// parsing the raw response directly is unreliable.
func extractJSON(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return []byte(s[start : end+1])
	}
	return []byte(s)
}

func fetchImage(ctx context.Context, pathOrURL string) ([]byte, error) {
	if !strings.HasPrefix(pathOrURL, "http") {
		return os.ReadFile(pathOrURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pathOrURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
