package insight

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/renalcare/internal/domain"
)

// fakeGemini serves generateContent with a canned candidate text and records
// the last request.
type fakeGemini struct {
	t      *testing.T
	reply  string
	status int
	last   generateRequest
	path   string
	apiKey string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.path = r.URL.Path
	f.apiKey = r.Header.Get("x-goog-api-key")
	body, err := io.ReadAll(r.Body)
	assert.NoError(f.t, err)
	assert.NoError(f.t, json.Unmarshal(body, &f.last))

	if f.status != 0 {
		w.WriteHeader(f.status)
		fmt.Fprint(w, `{"error": {"message": "quota exceeded"}}`)
		return
	}
	resp := map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"text": f.reply}}},
		}},
	}
	assert.NoError(f.t, json.NewEncoder(w).Encode(resp))
}

func newTestClient(t *testing.T, fake *fakeGemini) *GeminiClient {
	t.Helper()
	fake.t = t
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c, err := NewGeminiClient("test-key", WithBaseURL(srv.URL), WithModel("models/test-model"))
	require.NoError(t, err)
	return c
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient("  ")
	assert.Error(t, err)
}

func TestAnalyzeLabReport(t *testing.T) {
	fake := &fakeGemini{reply: `{"bloodPressureSys": 135, "bloodPressureDia": 85, "urineProtein": "2+", "creatinine": 142.3, "eGFR": 51, "reportDate": "2024-01-10"}`}
	c := newTestClient(t, fake)

	report, err := c.AnalyzeLabReport(context.Background(), []byte("scan-bytes"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, 135.0, report.BloodPressureSys)
	assert.Equal(t, "2+", report.UrineProtein)
	require.NotNil(t, report.Creatinine)
	assert.Equal(t, 142.3, *report.Creatinine)
	assert.Nil(t, report.UricAcid)
	assert.Equal(t, "2024-01-10", report.ReportDate)

	assert.Equal(t, "/models/test-model:generateContent", fake.path)
	assert.Equal(t, "test-key", fake.apiKey)
	require.Len(t, fake.last.Contents, 1)
	parts := fake.last.Contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/png", parts[0].InlineData.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("scan-bytes")), parts[0].InlineData.Data)
	require.NotNil(t, fake.last.GenerationConfig)
	assert.Equal(t, "application/json", fake.last.GenerationConfig.ResponseMimeType)
	assert.NotEmpty(t, fake.last.GenerationConfig.ResponseSchema)
}

func TestAnalyzeLabReport_Malformed(t *testing.T) {
	c := newTestClient(t, &fakeGemini{reply: "Sorry, I cannot read this."})

	_, err := c.AnalyzeLabReport(context.Background(), []byte("x"), "image/png")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestAnalyzeLabReport_EmptyDocument(t *testing.T) {
	c := newTestClient(t, &fakeGemini{reply: "{}"})

	_, err := c.AnalyzeLabReport(context.Background(), nil, "image/png")
	assert.Error(t, err)
}

func TestAnalyzePrescription(t *testing.T) {
	fake := &fakeGemini{reply: `{"prescriptionDate": "2024-01-12", "type": "western",
		"medications": [{"name": "Losartan 50mg", "dosage": "1 tablet", "frequency": "QD"},
		                {"name": "Calcitriol", "dosage": "0.25mcg", "frequency": "BID"}]}`}
	c := newTestClient(t, fake)

	scan, err := c.AnalyzePrescription(context.Background(), []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "western", scan.Type)
	require.Len(t, scan.Medications, 2)
	assert.Equal(t, ScannedMedication{Name: "Calcitriol", Dosage: "0.25mcg", Frequency: "BID"}, scan.Medications[1])
	assert.Equal(t, "application/pdf", fake.last.Contents[0].Parts[0].InlineData.MimeType)
}

func TestHealthInsights_SendsLastFiveVitals(t *testing.T) {
	fake := &fakeGemini{reply: "Kidney function is stable."}
	c := newTestClient(t, fake)

	var vitals []domain.VitalRecord
	for i := 1; i <= 7; i++ {
		vitals = append(vitals, domain.VitalRecord{ID: fmt.Sprintf("v%d", i)})
	}
	text, err := c.HealthInsights(context.Background(), vitals, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Kidney function is stable.", text)

	prompt := fake.last.Contents[0].Parts[0].Text
	assert.NotContains(t, prompt, `"id":"v2"`)
	assert.Contains(t, prompt, `"id":"v3"`)
	assert.Contains(t, prompt, `"id":"v7"`)
	assert.Nil(t, fake.last.GenerationConfig)
}

func TestDietaryRecommendations(t *testing.T) {
	c := newTestClient(t, &fakeGemini{reply: `[{"name": "Tofu", "reason": "plant protein", "recipe": "steam", "tags": ["low sodium"]}]`})

	recs, err := c.DietaryRecommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Tofu", recs[0].Name)
}

func TestGenerate_APIError(t *testing.T) {
	c := newTestClient(t, &fakeGemini{status: http.StatusTooManyRequests})

	_, err := c.HealthInsights(context.Background(), nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerate_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	t.Cleanup(srv.Close)
	c, err := NewGeminiClient("k", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.HealthInsights(context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestLabReport_IsEmpty(t *testing.T) {
	assert.True(t, LabReport{}.IsEmpty())
	assert.False(t, LabReport{Weight: 70}.IsEmpty())
}

func TestFallbackRecommendations(t *testing.T) {
	recs := FallbackRecommendations()
	assert.Len(t, recs, 3)
	for _, r := range recs {
		assert.NotEmpty(t, strings.TrimSpace(r.Name))
	}
}
