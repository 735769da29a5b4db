package insight

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/roach88/renalcare/internal/domain"
)

const (
	// DefaultGeminiBaseURL is the Google AI Studio endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultGeminiModel is used when no model is configured.
	DefaultGeminiModel = "gemini-3-flash-preview"
)

// GeminiClient implements Service over the Gemini generateContent API.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// GeminiOption configures a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithBaseURL points the client at another endpoint, e.g. a test server.
func WithBaseURL(u string) GeminiOption {
	return func(c *GeminiClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithModel selects the model.
func WithModel(model string) GeminiOption {
	return func(c *GeminiClient) {
		if m := normalizeModel(model); m != "" {
			c.model = m
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) GeminiOption {
	return func(c *GeminiClient) { c.httpClient = hc }
}

// NewGeminiClient constructs a client with the provided API key.
func NewGeminiClient(apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key required")
	}
	c := &GeminiClient{
		apiKey:     apiKey,
		model:      DefaultGeminiModel,
		baseURL:    DefaultGeminiBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ Service = (*GeminiClient)(nil)

// HealthInsights returns a free-text nephrology report.
func (c *GeminiClient) HealthInsights(ctx context.Context, vitals []domain.VitalRecord, meals []domain.Meal, meds []domain.Medication) (string, error) {
	recent, err := json.Marshal(lastVitals(vitals, RecentVitals))
	if err != nil {
		return "", err
	}
	mealsJSON, err := json.Marshal(meals)
	if err != nil {
		return "", err
	}
	medsJSON, err := json.Marshal(meds)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(insightsPrompt, recent, mealsJSON, medsJSON)
	return c.generate(ctx, generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
}

// AnalyzeLabReport extracts kidney indicators from a report scan.
func (c *GeminiClient) AnalyzeLabReport(ctx context.Context, data []byte, mimeType string) (*LabReport, error) {
	var report LabReport
	if err := c.extract(ctx, data, mimeType, labReportPrompt, labReportSchema, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// AnalyzePrescription extracts medication lines from a prescription scan.
func (c *GeminiClient) AnalyzePrescription(ctx context.Context, data []byte, mimeType string) (*PrescriptionScan, error) {
	var scan PrescriptionScan
	if err := c.extract(ctx, data, mimeType, prescriptionPrompt, prescriptionSchema, &scan); err != nil {
		return nil, err
	}
	return &scan, nil
}

// DietaryRecommendations asks for three dishes suited to chronic nephritis.
func (c *GeminiClient) DietaryRecommendations(ctx context.Context) ([]Recommendation, error) {
	text, err := c.generate(ctx, generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: dietPrompt}}}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return nil, err
	}
	var recs []Recommendation
	if err := json.Unmarshal([]byte(text), &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return recs, nil
}

// extract sends a document with a prompt and decodes the JSON reply into out.
func (c *GeminiClient) extract(ctx context.Context, data []byte, mimeType, prompt string, schema map[string]any, out any) error {
	if len(data) == 0 {
		return errors.New("document is empty")
	}
	text, err := c.generate(ctx, generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
				{Text: prompt},
			},
		}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *GeminiClient) generate(ctx context.Context, reqBody generateRequest) (string, error) {
	var resp generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	if err := c.doJSON(ctx, url, reqBody, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func normalizeModel(model string) string {
	model = strings.TrimSpace(model)
	model = strings.TrimPrefix(model, "models/")
	return model
}

func (c *GeminiClient) doJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return fmt.Errorf("gemini api error: %s", errResp.Error.Message)
		}
		return fmt.Errorf("gemini api error: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
