package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
	"alfredoptarigan/resume-analyzer/internal/testutil"
)

const maxFileSize = 10 << 20

// stubGenerator answers every prompt with the same raw-shaped reply.
type stubGenerator struct {
	calls int
	text  string
}

func (s *stubGenerator) Generate(ctx context.Context, req services.GenerateRequest) (services.Reply, error) {
	s.calls++
	body, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"text": s.text}}},
		}},
	})
	var raw services.RawGenerateResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return services.Reply{}, err
	}
	return services.Reply{Shape: services.ShapeRaw, Raw: &raw, Body: body}, nil
}

type memoryAuditRepo struct {
	audits []models.RequestAudit
}

func (m *memoryAuditRepo) Create(audit *models.RequestAudit) error {
	m.audits = append(m.audits, *audit)
	return nil
}

func (m *memoryAuditRepo) FindRecent(limit int) ([]models.RequestAudit, error) {
	return m.audits, nil
}

type testEnv struct {
	app       *fiber.App
	generator *stubGenerator
	uploadDir string
}

func newTestEnv(t *testing.T, apiKey string, auditRepo repositories.AuditRepository) *testEnv {
	t.Helper()

	var analysis strings.Builder
	for _, section := range services.AnalysisSections {
		analysis.WriteString("## " + section + "\n- item\n")
	}
	generator := &stubGenerator{text: analysis.String()}

	uploadDir := t.TempDir()
	storage := services.NewStorageService(uploadDir)
	resolver := services.NewStaticModelResolver("gemini-test")
	pipeline := services.NewAnalysisPipeline(
		services.PipelineConfig{APIKey: apiKey, Provider: "gemini", MaxFileSize: maxFileSize},
		services.NewDocumentExtractor(),
		resolver,
		services.NewLLMGateway(generator, nil, 5*time.Second),
		auditRepo,
	)

	app := NewApp(Dependencies{
		Storage:     storage,
		Pipeline:    pipeline,
		Resolver:    resolver,
		AuditRepo:   auditRepo,
		Provider:    "gemini",
		MaxFileSize: maxFileSize,
	})

	return &testEnv{app: app, generator: generator, uploadDir: uploadDir}
}

func uploadRequest(t *testing.T, path, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, path string, payload any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request, out any) int {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
	}
	return resp.StatusCode
}

func assertUploadDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir still holds %d files", len(entries))
	}
}

func TestAnalyzePDF(t *testing.T) {
	for _, path := range []string{"/api/analyze", "/api/v1/analyze"} {
		t.Run(path, func(t *testing.T) {
			env := newTestEnv(t, "key", nil)
			pdf := testutil.PDF("Carla Mendes Backend Engineer", "Go gRPC PostgreSQL")

			var resp models.AnalyzeResponse
			status := doRequest(t, env.app, uploadRequest(t, path, "cv.pdf", services.MimePDF, pdf), &resp)

			if status != fiber.StatusOK {
				t.Fatalf("status = %d", status)
			}
			if !strings.Contains(resp.Text, "Carla Mendes Backend Engineer") || !strings.Contains(resp.Text, "Go gRPC PostgreSQL") {
				t.Errorf("text = %q", resp.Text)
			}
			for _, section := range services.AnalysisSections {
				if !strings.Contains(resp.Analysis, section) {
					t.Errorf("analysis missing section %q", section)
				}
			}
			if env.generator.calls != 1 {
				t.Errorf("provider called %d times", env.generator.calls)
			}
			assertUploadDirEmpty(t, env.uploadDir)
		})
	}
}

func TestAnalyzeDOCX(t *testing.T) {
	env := newTestEnv(t, "key", nil)
	docx := testutil.DOCX("Pedro Alves", "Site Reliability Engineer")

	var resp models.AnalyzeResponse
	status := doRequest(t, env.app, uploadRequest(t, "/api/v1/analyze", "cv.docx", services.MimeDOCX, docx), &resp)

	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if resp.Text != "Pedro Alves\nSite Reliability Engineer" {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name        string
		apiKey      string
		fileName    string
		contentType string
		data        []byte
		wantStatus  int
		wantKind    string
	}{
		{"corrupt docx", "key", "cv.docx", services.MimeDOCX, []byte("just some text"), fiber.StatusBadRequest, "corrupt_file"},
		{"unsupported type", "key", "cv.txt", "text/plain", []byte("text"), fiber.StatusBadRequest, "unsupported_format"},
		{"empty pdf", "key", "cv.pdf", services.MimePDF, testutil.PDF("   "), fiber.StatusBadRequest, "empty_extraction"},
		{"too large", "key", "cv.pdf", services.MimePDF, bytes.Repeat([]byte("a"), 11<<20), fiber.StatusBadRequest, "file_too_large"},
		{"missing api key", "", "cv.pdf", services.MimePDF, testutil.PDF("Name"), fiber.StatusInternalServerError, "configuration_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.apiKey, nil)

			var resp models.ErrorResponse
			status := doRequest(t, env.app, uploadRequest(t, "/api/v1/analyze", tt.fileName, tt.contentType, tt.data), &resp)

			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if resp.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q (error: %q)", resp.Kind, tt.wantKind, resp.Error)
			}
			if resp.Error == "" {
				t.Error("empty error message")
			}
			if env.generator.calls != 0 {
				t.Errorf("provider called %d times", env.generator.calls)
			}
			assertUploadDirEmpty(t, env.uploadDir)
		})
	}
}

func TestAnalyzeWithoutFile(t *testing.T) {
	env := newTestEnv(t, "key", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)

	var resp models.ErrorResponse
	if status := doRequest(t, env.app, req, &resp); status != fiber.StatusBadRequest {
		t.Errorf("status = %d", status)
	}
	if resp.Kind != "invalid_input" {
		t.Errorf("kind = %q", resp.Kind)
	}
}

func TestGenerateImproved(t *testing.T) {
	env := newTestEnv(t, "key", nil)
	env.generator.text = "Complete improved résumé"

	var resp models.ImproveResponse
	req := jsonRequest(t, http.MethodPost, "/api/generate-improved", models.ImproveRequest{
		OriginalResume: "original",
		Suggestions:    "suggestions",
	})
	if status := doRequest(t, env.app, req, &resp); status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if resp.ImprovedResume != "Complete improved résumé" {
		t.Errorf("improvedResume = %q", resp.ImprovedResume)
	}
}

func TestGenerateImprovedRejectsMissingFields(t *testing.T) {
	payloads := []any{
		models.ImproveRequest{OriginalResume: "", Suggestions: "s"},
		models.ImproveRequest{OriginalResume: "o", Suggestions: " "},
		map[string]string{},
	}

	for _, payload := range payloads {
		env := newTestEnv(t, "key", nil)

		var resp models.ErrorResponse
		status := doRequest(t, env.app, jsonRequest(t, http.MethodPost, "/api/v1/generate-improved", payload), &resp)
		if status != fiber.StatusBadRequest || resp.Kind != "invalid_input" {
			t.Errorf("payload %+v: status = %d kind = %q", payload, status, resp.Kind)
		}
		if env.generator.calls != 0 {
			t.Errorf("payload %+v: provider called", payload)
		}
	}
}

func TestGenerateImprovedMalformedJSON(t *testing.T) {
	env := newTestEnv(t, "key", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-improved", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	var resp models.ErrorResponse
	if status := doRequest(t, env.app, req, &resp); status != fiber.StatusBadRequest {
		t.Errorf("status = %d", status)
	}
}

func TestModelEndpoints(t *testing.T) {
	env := newTestEnv(t, "key", nil)

	var got models.ModelResponse
	if status := doRequest(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/model", nil), &got); status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if got.Model != "gemini-test" || got.Source != "static" || got.Provider != "gemini" {
		t.Errorf("model = %+v", got)
	}

	if status := doRequest(t, env.app, httptest.NewRequest(http.MethodPost, "/api/v1/model/invalidate", nil), &got); status != fiber.StatusOK {
		t.Errorf("invalidate status = %d", status)
	}
}

func TestAuditsEndpoint(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t, "key", nil)
		status := doRequest(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/audits", nil), nil)
		if status != fiber.StatusNotFound {
			t.Errorf("status = %d", status)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		repo := &memoryAuditRepo{}
		env := newTestEnv(t, "key", repo)

		doRequest(t, env.app, jsonRequest(t, http.MethodPost, "/api/v1/generate-improved", models.ImproveRequest{OriginalResume: "o", Suggestions: "s"}), nil)

		var resp struct {
			Audits []models.RequestAudit `json:"audits"`
		}
		status := doRequest(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/audits?limit=5", nil), &resp)
		if status != fiber.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if len(resp.Audits) != 1 || resp.Audits[0].Flow != models.FlowImprove || resp.Audits[0].Outcome != "success" {
			t.Errorf("audits = %+v", resp.Audits)
		}
	})
}

func TestHealthAndIndex(t *testing.T) {
	env := newTestEnv(t, "key", nil)

	var health map[string]any
	if status := doRequest(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), &health); status != fiber.StatusOK {
		t.Errorf("health status = %d", status)
	}
	if health["status"] != "healthy" {
		t.Errorf("health = %v", health)
	}

	if status := doRequest(t, env.app, httptest.NewRequest(http.MethodGet, "/", nil), nil); status != fiber.StatusOK {
		t.Errorf("index status = %d", status)
	}
}
