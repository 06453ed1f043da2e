package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"pms/internal/app/server"
	"pms/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		Environment:        "test",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		MigrationsDir:      "../../../../migrations",
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
	}
}

func TestAppraisalWorkflowJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	roleIDs := listRoleIDs(t, client, ts.URL, adminToken)
	suffix := time.Now().UnixNano()
	appraiseeID := createEmployee(t, client, ts.URL, adminToken, fmt.Sprintf("appraisee-%d@example.com", suffix), roleIDs["Employee"])
	appraiserID := createEmployee(t, client, ts.URL, adminToken, fmt.Sprintf("appraiser-%d@example.com", suffix), roleIDs["Manager"])
	reviewerID := createEmployee(t, client, ts.URL, adminToken, fmt.Sprintf("reviewer-%d@example.com", suffix), roleIDs["CEO"])

	appraiseeToken := login(t, client, ts.URL, fmt.Sprintf("appraisee-%d@example.com", suffix), "Password123!")
	appraiserToken := login(t, client, ts.URL, fmt.Sprintf("appraiser-%d@example.com", suffix), "Password123!")
	reviewerToken := login(t, client, ts.URL, fmt.Sprintf("reviewer-%d@example.com", suffix), "Password123!")

	typeID, rangeID := quarterlyType(t, client, ts.URL, adminToken)

	resp := postJSON(t, client, ts.URL+"/api/v1/appraisals", appraiserToken, map[string]any{
		"appraiseeId":     appraiseeID,
		"appraiserId":     appraiserID,
		"reviewerId":      reviewerID,
		"appraisalTypeId": typeID,
		"rangeId":         rangeID,
	})
	appraisalID := idFromData(t, resp.Data)

	// A Quarterly appraisal without explicit dates gets a derived window.
	var created struct {
		StartDate time.Time `json:"startDate"`
		EndDate   time.Time `json:"endDate"`
		Status    string    `json:"status"`
	}
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("failed to decode appraisal: %v", err)
	}
	if created.Status != "Draft" {
		t.Fatalf("expected new appraisal to be Draft, got %s", created.Status)
	}
	if created.StartDate.IsZero() || !created.EndDate.After(created.StartDate) {
		t.Fatalf("expected derived date window, got %v .. %v", created.StartDate, created.EndDate)
	}

	addGoal(t, client, ts.URL, appraiserToken, appraisalID, "Delivery", 60)

	// Weightage short of 100 blocks submission.
	postJSONStatus(t, client, ts.URL+"/api/v1/appraisals/"+appraisalID+"/submit", appraiserToken, nil, http.StatusBadRequest)

	addGoal(t, client, ts.URL, appraiserToken, appraisalID, "Quality", 40)

	// Only the appraiser may submit.
	postJSONStatus(t, client, ts.URL+"/api/v1/appraisals/"+appraisalID+"/submit", appraiseeToken, nil, http.StatusConflict)

	if status := submitAppraisal(t, client, ts.URL, appraiserToken, appraisalID); status != "Submitted" {
		t.Fatalf("expected Submitted, got %s", status)
	}

	goalIDs := appraisalGoalIDs(t, client, ts.URL, appraiserToken, appraisalID)
	if len(goalIDs) != 2 {
		t.Fatalf("expected 2 goals, got %d", len(goalIDs))
	}

	selfBody := map[string]any{"goals": map[string]any{}}
	for _, goalID := range goalIDs {
		selfBody["goals"].(map[string]any)[goalID] = map[string]any{"comment": "done", "rating": 4}
	}
	putJSON(t, client, ts.URL+"/api/v1/appraisals/"+appraisalID+"/self-assessment", appraiseeToken, selfBody)
	if status := completeStage(t, client, ts.URL, appraiseeToken, appraisalID, "self-assessment"); status != "Appraiser Evaluation" {
		t.Fatalf("expected Appraiser Evaluation, got %s", status)
	}

	appraiserBody := map[string]any{
		"goals":   map[string]any{},
		"overall": map[string]any{"comment": "solid quarter", "rating": 4},
	}
	for _, goalID := range goalIDs {
		appraiserBody["goals"].(map[string]any)[goalID] = map[string]any{"comment": "agreed", "rating": 4}
	}
	putJSON(t, client, ts.URL+"/api/v1/appraisals/"+appraisalID+"/appraiser-evaluation", appraiserToken, appraiserBody)
	if status := completeStage(t, client, ts.URL, appraiserToken, appraisalID, "appraiser-evaluation"); status != "Reviewer Evaluation" {
		t.Fatalf("expected Reviewer Evaluation, got %s", status)
	}

	putJSON(t, client, ts.URL+"/api/v1/appraisals/"+appraisalID+"/reviewer-evaluation", reviewerToken, map[string]any{
		"comment": "approved", "rating": 5,
	})
	if status := completeStage(t, client, ts.URL, reviewerToken, appraisalID, "reviewer-evaluation"); status != "Complete" {
		t.Fatalf("expected Complete, got %s", status)
	}

	// Complete appraisals are frozen.
	postJSONStatus(t, client, ts.URL+"/api/v1/appraisals/"+appraisalID+"/goals", appraiserToken, map[string]any{
		"title": "Late goal", "weightage": 10,
	}, http.StatusConflict)

	summary := getJSON(t, client, ts.URL+"/api/v1/reports/summary", adminToken)
	var summaryPayload map[string]any
	if err := json.Unmarshal(summary.Data, &summaryPayload); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if summaryPayload["appraisalsTotal"] == nil {
		t.Fatal("expected summary totals")
	}

	pdfResp := rawGet(t, client, ts.URL+"/api/v1/reports/appraisals/"+appraisalID+"/pdf", appraiserToken)
	defer pdfResp.Body.Close()
	if pdfResp.StatusCode != http.StatusOK {
		t.Fatalf("expected pdf 200, got %d", pdfResp.StatusCode)
	}
	if ct := pdfResp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected pdf content type, got %s", ct)
	}

	xlsxResp := rawGet(t, client, ts.URL+"/api/v1/reports/appraisals/export", adminToken)
	defer xlsxResp.Body.Close()
	if xlsxResp.StatusCode != http.StatusOK {
		t.Fatalf("expected export 200, got %d", xlsxResp.StatusCode)
	}
}

func TestNonParticipantCannotReadAppraisal(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	roleIDs := listRoleIDs(t, client, ts.URL, adminToken)

	suffix := time.Now().UnixNano()
	appraiseeID := createEmployee(t, client, ts.URL, adminToken, fmt.Sprintf("scope-a-%d@example.com", suffix), roleIDs["Employee"])
	appraiserID := createEmployee(t, client, ts.URL, adminToken, fmt.Sprintf("scope-b-%d@example.com", suffix), roleIDs["Manager"])
	reviewerID := createEmployee(t, client, ts.URL, adminToken, fmt.Sprintf("scope-c-%d@example.com", suffix), roleIDs["CEO"])
	createEmployee(t, client, ts.URL, adminToken, fmt.Sprintf("scope-d-%d@example.com", suffix), roleIDs["Employee"])
	outsiderToken := login(t, client, ts.URL, fmt.Sprintf("scope-d-%d@example.com", suffix), "Password123!")

	typeID, rangeID := quarterlyType(t, client, ts.URL, adminToken)
	resp := postJSON(t, client, ts.URL+"/api/v1/appraisals", adminToken, map[string]any{
		"appraiseeId":     appraiseeID,
		"appraiserId":     appraiserID,
		"reviewerId":      reviewerID,
		"appraisalTypeId": typeID,
		"rangeId":         rangeID,
	})
	appraisalID := idFromData(t, resp.Data)

	getJSONStatus(t, client, ts.URL+"/api/v1/appraisals/"+appraisalID, outsiderToken, http.StatusForbidden)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func listRoleIDs(t *testing.T, client *http.Client, baseURL, token string) map[string]int {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/roles", token)
	var roles []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp.Data, &roles); err != nil {
		t.Fatalf("failed to decode roles: %v", err)
	}
	out := make(map[string]int, len(roles))
	for _, role := range roles {
		out[role.Name] = role.ID
	}
	return out
}

func createEmployee(t *testing.T, client *http.Client, baseURL, token, email string, roleID int) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/employees", token, map[string]any{
		"name":       "Journey Tester",
		"email":      email,
		"department": "Engineering",
		"roleId":     roleID,
		"password":   "Password123!",
	})
	return idFromData(t, resp.Data)
}

func quarterlyType(t *testing.T, client *http.Client, baseURL, token string) (int, int) {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/appraisal-types", token)
	var types []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp.Data, &types); err != nil {
		t.Fatalf("failed to decode types: %v", err)
	}
	typeID := 0
	for _, at := range types {
		if at.Name == "Quarterly" {
			typeID = at.ID
		}
	}
	if typeID == 0 {
		t.Fatal("expected seeded Quarterly type")
	}

	rangesResp := getJSON(t, client, baseURL+fmt.Sprintf("/api/v1/appraisal-types/%d/ranges", typeID), token)
	var ranges []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rangesResp.Data, &ranges); err != nil {
		t.Fatalf("failed to decode ranges: %v", err)
	}
	if len(ranges) == 0 {
		t.Fatal("expected seeded quarterly ranges")
	}
	return typeID, ranges[0].ID
}

func addGoal(t *testing.T, client *http.Client, baseURL, token, appraisalID, title string, weightage int) {
	t.Helper()
	postJSON(t, client, baseURL+"/api/v1/appraisals/"+appraisalID+"/goals", token, map[string]any{
		"title":        title,
		"categoryName": "Execution",
		"weightage":    weightage,
	})
}

func submitAppraisal(t *testing.T, client *http.Client, baseURL, token, appraisalID string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/appraisals/"+appraisalID+"/submit", token, nil)
	return statusFromData(t, resp.Data)
}

func completeStage(t *testing.T, client *http.Client, baseURL, token, appraisalID, stage string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/appraisals/"+appraisalID+"/"+stage+"/complete", token, nil)
	return statusFromData(t, resp.Data)
}

func appraisalGoalIDs(t *testing.T, client *http.Client, baseURL, token, appraisalID string) []string {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/appraisals/"+appraisalID, token)
	var payload struct {
		Goals []struct {
			GoalID string `json:"goalId"`
		} `json:"goals"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode appraisal goals: %v", err)
	}
	ids := make([]string, 0, len(payload.Goals))
	for _, goal := range payload.Goals {
		ids = append(ids, goal.GoalID)
	}
	return ids
}

func idFromData(t *testing.T, data json.RawMessage) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("failed to decode response data: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected id in response")
	}
	return id
}

func statusFromData(t *testing.T, data json.RawMessage) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("failed to decode response data: %v", err)
	}
	status, _ := payload["status"].(string)
	return status
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	resp, raw := doJSON(t, client, http.MethodPost, url, token, body)
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return decodeEnvelope(t, raw)
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	resp, raw := doJSON(t, client, http.MethodPost, url, token, body)
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(raw))
	}
	return decodeEnvelope(t, raw)
}

func putJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	resp, raw := doJSON(t, client, http.MethodPut, url, token, body)
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return decodeEnvelope(t, raw)
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	resp, raw := doJSON(t, client, http.MethodGet, url, token, nil)
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return decodeEnvelope(t, raw)
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string, want int) envelope {
	t.Helper()
	resp, raw := doJSON(t, client, http.MethodGet, url, token, nil)
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(raw))
	}
	return decodeEnvelope(t, raw)
}

func rawGet(t *testing.T, client *http.Client, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	return resp, raw
}

func decodeEnvelope(t *testing.T, raw []byte) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}
