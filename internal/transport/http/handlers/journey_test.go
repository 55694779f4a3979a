package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"perfeval/internal/app/server"
	"perfeval/internal/domain/evaluation"
	"perfeval/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

// TestEvaluationJourney walks the full cycle against a real database:
// HR builds a template, assigns an evaluation, both participants answer
// their side, and the derived numbers land where the weighting says.
func TestEvaluationJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		Addr:               ":0",
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		FrontendDir:        "frontend/dist",
		Environment:        "test",
		SeedTenantName:     "Journey Tenant",
		SeedAdminEmail:     "admin@journey.local",
		SeedAdminPassword:  "ChangeMe123!",
		SeedDemoData:       true,
		RunMigrations:      true,
		RunSeed:            true,
		MigrationsDir:      "../../../../migrations",
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	hrToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	employeeToken := login(t, client, ts.URL, "pedro.lima@example.com", "ChangeMe123!")
	managerToken := login(t, client, ts.URL, "marina.souza@example.com", "ChangeMe123!")

	var employeeID string
	if err := app.DB.QueryRow(context.Background(),
		"SELECT id FROM employees WHERE email = $1", "pedro.lima@example.com").Scan(&employeeID); err != nil {
		t.Fatalf("employee lookup: %v", err)
	}

	// HR builds the template from the seeded catalog.
	var categories []evaluation.Category
	mustRequest(t, client, http.MethodGet, ts.URL+"/api/v1/evaluations/categories", hrToken, nil, http.StatusOK, &categories)
	if len(categories) == 0 {
		t.Fatal("expected seeded categories")
	}

	var template evaluation.Template
	mustRequest(t, client, http.MethodPost, ts.URL+"/api/v1/evaluations/templates", hrToken, map[string]any{
		"name": "Ciclo Anual",
		"questions": []map[string]any{
			{"text": "Comunica com clareza?", "categoryId": categories[0].ID, "expectedScore": 8.0},
			{"text": "Entrega com qualidade?", "categoryId": categories[0].ID, "expectedScore": 7.0},
		},
	}, http.StatusCreated, &template)

	var ev evaluation.Evaluation
	mustRequest(t, client, http.MethodPost, ts.URL+"/api/v1/evaluations/", hrToken, map[string]any{
		"employeeId": employeeID,
		"templateId": template.ID,
		"date":       "2026-08-30",
	}, http.StatusCreated, &ev)
	if ev.Status != evaluation.StatusPending {
		t.Fatalf("fresh evaluation status = %q", ev.Status)
	}
	if len(ev.Answers) != 2 {
		t.Fatalf("answers = %d", len(ev.Answers))
	}

	// Self side answers both questions and concludes.
	mustRequest(t, client, http.MethodPut, ts.URL+"/api/v1/evaluations/"+ev.ID, employeeToken, map[string]any{
		"version":       ev.Version,
		"selfStrengths": "Comunicação com o time",
		"evaluationanswer": []map[string]any{
			{"id": ev.Answers[0].ID, "selfScore": 8.0},
			{"id": ev.Answers[1].ID, "selfScore": 6.0},
		},
	}, http.StatusOK, &ev)
	if ev.SelfStatus != evaluation.StatusConcluded {
		t.Fatalf("self status = %q, want concluded", ev.SelfStatus)
	}
	if ev.Status != evaluation.StatusPending {
		t.Fatalf("overall status = %q, want pending until both sides conclude", ev.Status)
	}

	// The listing surfaces the half-done evaluation as in progress even
	// though the persisted status is still pending.
	var summaries []evaluation.Summary
	mustRequest(t, client, http.MethodGet, ts.URL+"/api/v1/evaluations/", employeeToken, nil, http.StatusOK, &summaries)
	if len(summaries) == 0 {
		t.Fatal("expected the evaluation in the employee listing")
	}
	if summaries[0].Status != evaluation.StatusInProgress {
		t.Fatalf("listed status = %q, want %q", summaries[0].Status, evaluation.StatusInProgress)
	}

	// Manager submitting with the old version must conflict.
	req := map[string]any{
		"version": ev.Version - 1,
		"evaluationanswer": []map[string]any{
			{"id": ev.Answers[0].ID, "managerScore": 9.0},
		},
	}
	rec := doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/evaluations/"+ev.ID, managerToken, req)
	if rec.StatusCode != http.StatusConflict {
		t.Fatalf("stale write status = %d, want 409", rec.StatusCode)
	}

	mustRequest(t, client, http.MethodPut, ts.URL+"/api/v1/evaluations/"+ev.ID, managerToken, map[string]any{
		"version": ev.Version,
		"evaluationanswer": []map[string]any{
			{"id": ev.Answers[0].ID, "managerScore": 9.0},
			{"id": ev.Answers[1].ID, "managerScore": 8.0},
		},
	}, http.StatusOK, &ev)

	if ev.Status != evaluation.StatusConcluded {
		t.Fatalf("overall status = %q, want concluded", ev.Status)
	}
	if ev.Scores == nil || ev.Scores.FinalScore == nil {
		t.Fatal("expected final score")
	}
	// 0.4*avg(8,6) + 0.6*avg(9,8)
	if math.Abs(*ev.Scores.FinalScore-7.9) > 1e-9 {
		t.Fatalf("final score = %f, want 7.9", *ev.Scores.FinalScore)
	}
	if ev.Scores.Band != evaluation.BandGood {
		t.Fatalf("band = %q", ev.Scores.Band)
	}

	// Dashboard and artifacts.
	var stats struct {
		Evaluations int `json:"evaluations"`
	}
	mustRequest(t, client, http.MethodGet, ts.URL+"/api/v1/evaluations/stats", hrToken, nil, http.StatusOK, &stats)
	if stats.Evaluations == 0 {
		t.Fatal("stats must count the evaluation")
	}

	pdfReq, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/evaluations/"+ev.ID+"/report", nil)
	pdfReq.Header.Set("Authorization", "Bearer "+hrToken)
	pdfResp, err := client.Do(pdfReq)
	if err != nil {
		t.Fatalf("report request: %v", err)
	}
	defer pdfResp.Body.Close()
	if pdfResp.StatusCode != http.StatusOK {
		t.Fatalf("report status = %d", pdfResp.StatusCode)
	}
	if ct := pdfResp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("report content type = %q", ct)
	}

	var events []map[string]any
	mustRequest(t, client, http.MethodGet, ts.URL+"/api/v1/audit/events", hrToken, nil, http.StatusOK, &events)
	if len(events) == 0 {
		t.Fatal("expected audit trail for the journey")
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()

	var result struct {
		Token string `json:"token"`
	}
	mustRequest(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, http.StatusOK, &result)
	if result.Token == "" {
		t.Fatalf("empty token for %s", email)
	}
	return result.Token
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func mustRequest(t *testing.T, client *http.Client, method, url, token string, body any, wantStatus int, out any) {
	t.Helper()

	resp := doJSON(t, client, method, url, token, body)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d, want %d (body %s)", method, url, resp.StatusCode, wantStatus, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v (body %s)", err, raw)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("unmarshal data: %v (data %s)", err, env.Data)
		}
	}
}
