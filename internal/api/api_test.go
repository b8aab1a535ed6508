package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/pisarna/internal/auth"
	"github.com/erazemk/pisarna/internal/db"
	"github.com/erazemk/pisarna/internal/model"
	"github.com/erazemk/pisarna/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin, "Admin", "")

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return server, token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// doJSON runs an authenticated request, checks the status and decodes the
// response body into out (which may be nil).
func doJSON(t *testing.T, method, url, token string, body any, wantStatus int, out any) {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", method, url, wantStatus, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
}

// signatureDataURL builds a white canvas with a black stroke, the shape the
// capture pad submits.
func signatureDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 300, 150))
	for y := range 150 {
		for x := range 300 {
			img.Set(x, y, color.White)
		}
	}
	for x := range 300 {
		img.Set(x, 75, color.Black)
		img.Set(x, 76, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding signature: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestItemsAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	doJSON(t, "POST", server.URL+"/api/categories", token,
		map[string]string{"name": "Writing"}, http.StatusCreated, nil)

	var item model.InventoryItem
	doJSON(t, "POST", server.URL+"/api/items", token, map[string]any{
		"name":          "Ballpoint Pen",
		"category":      "Writing",
		"stockQuantity": 50,
		"unit":          "pcs",
		"threshold":     10,
	}, http.StatusCreated, &item)
	if item.ID == "" {
		t.Fatal("created item has no id")
	}

	var items []model.InventoryItem
	doJSON(t, "GET", server.URL+"/api/items", token, nil, http.StatusOK, &items)
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}

	// Unknown category is rejected.
	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name": "Stapler", "category": "missing", "unit": "pcs",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown category, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestIssueLifecycleFlow(t *testing.T) {
	server, token := setupTestServer(t)

	doJSON(t, "POST", server.URL+"/api/categories", token,
		map[string]string{"name": "Writing"}, http.StatusCreated, nil)

	var item model.InventoryItem
	doJSON(t, "POST", server.URL+"/api/items", token, map[string]any{
		"name": "Notebook", "category": "Writing", "stockQuantity": 10, "unit": "pcs", "threshold": 2,
	}, http.StatusCreated, &item)

	var employee model.Employee
	doJSON(t, "POST", server.URL+"/api/employees", token,
		map[string]string{"name": "Ana Novak", "department": "Finance"}, http.StatusCreated, &employee)

	// Create an issue for 4 notebooks. Stock is reserved immediately.
	var created issueResponse
	doJSON(t, "POST", server.URL+"/api/issues", token, map[string]any{
		"employeeId": employee.ID,
		"items":      []map[string]any{{"itemId": item.ID, "quantity": 4}},
	}, http.StatusCreated, &created)
	issue := created.Issue
	if issue.Status != model.StatusPending {
		t.Fatalf("new issue status = %q, want pending", issue.Status)
	}

	var got model.InventoryItem
	doJSON(t, "GET", server.URL+"/api/items/"+item.ID, token, nil, http.StatusOK, &got)
	if got.StockQuantity != 6 {
		t.Errorf("stock after create = %d, want 6", got.StockQuantity)
	}

	// Forcing issued without a signature fails.
	req, _ := authRequest("POST", server.URL+"/api/issues/"+issue.ID+"/status", token,
		map[string]string{"status": model.StatusIssued})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for unsigned transition, got %d", resp.StatusCode)
	}
	var errBody map[string]string
	json.NewDecoder(resp.Body).Decode(&errBody)
	resp.Body.Close()
	if errBody["kind"] != "SIGNATURE_REQUIRED" {
		t.Errorf("error kind = %q, want SIGNATURE_REQUIRED", errBody["kind"])
	}

	// Sign it. The issue flips to issued.
	var signed issueResponse
	doJSON(t, "POST", server.URL+"/api/issues/"+issue.ID+"/signature", token,
		map[string]string{"signatureData": signatureDataURL(t)}, http.StatusOK, &signed)
	if signed.Issue.Status != model.StatusIssued {
		t.Fatalf("status after signing = %q, want issued", signed.Issue.Status)
	}
	if signed.Issue.SignatureData == "" || signed.Issue.SignedDate == "" {
		t.Error("signed issue missing signature data or date")
	}

	// Partial return of 1. Issue stays issued, stock goes to 7.
	var partial issueResponse
	doJSON(t, "POST", server.URL+"/api/issues/"+issue.ID+"/returns", token, map[string]any{
		"items": []map[string]any{{"itemId": item.ID, "quantity": 1}},
	}, http.StatusOK, &partial)
	if partial.Issue.Status != model.StatusIssued {
		t.Errorf("status after partial return = %q, want issued", partial.Issue.Status)
	}
	doJSON(t, "GET", server.URL+"/api/items/"+item.ID, token, nil, http.StatusOK, &got)
	if got.StockQuantity != 7 {
		t.Errorf("stock after partial return = %d, want 7", got.StockQuantity)
	}

	// Full return via status. The remaining 3 come back.
	var returned issueResponse
	doJSON(t, "POST", server.URL+"/api/issues/"+issue.ID+"/status", token,
		map[string]string{"status": model.StatusReturned}, http.StatusOK, &returned)
	if returned.Issue.Status != model.StatusReturned {
		t.Fatalf("status = %q, want returned", returned.Issue.Status)
	}
	doJSON(t, "GET", server.URL+"/api/items/"+item.ID, token, nil, http.StatusOK, &got)
	if got.StockQuantity != 10 {
		t.Errorf("stock after full return = %d, want 10", got.StockQuantity)
	}
}

func TestIssueBlankSignatureRejected(t *testing.T) {
	server, token := setupTestServer(t)

	doJSON(t, "POST", server.URL+"/api/categories", token,
		map[string]string{"name": "Writing"}, http.StatusCreated, nil)
	var item model.InventoryItem
	doJSON(t, "POST", server.URL+"/api/items", token, map[string]any{
		"name": "Pen", "category": "Writing", "stockQuantity": 5, "unit": "pcs",
	}, http.StatusCreated, &item)
	var employee model.Employee
	doJSON(t, "POST", server.URL+"/api/employees", token,
		map[string]string{"name": "Bojan Kos", "department": "IT"}, http.StatusCreated, &employee)

	var created issueResponse
	doJSON(t, "POST", server.URL+"/api/issues", token, map[string]any{
		"employeeId": employee.ID,
		"items":      []map[string]any{{"itemId": item.ID, "quantity": 1}},
	}, http.StatusCreated, &created)

	// A blank canvas never counts as a signature.
	blank := image.NewRGBA(image.Rect(0, 0, 200, 100))
	var buf bytes.Buffer
	png.Encode(&buf, blank)
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	req, _ := authRequest("POST", server.URL+"/api/issues/"+created.Issue.ID+"/signature", token,
		map[string]string{"signatureData": dataURL})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for blank signature, got %d", resp.StatusCode)
	}
	var errBody map[string]string
	json.NewDecoder(resp.Body).Decode(&errBody)
	resp.Body.Close()
	if errBody["kind"] != "EMPTY_SIGNATURE" {
		t.Errorf("error kind = %q, want EMPTY_SIGNATURE", errBody["kind"])
	}

	// The issue is still pending and can be signed again.
	var issues []model.Issue
	doJSON(t, "GET", server.URL+"/api/issues?status=pending", token, nil, http.StatusOK, &issues)
	if len(issues) != 1 {
		t.Fatalf("expected 1 pending issue, got %d", len(issues))
	}
}

func TestInsufficientStockRejected(t *testing.T) {
	server, token := setupTestServer(t)

	doJSON(t, "POST", server.URL+"/api/categories", token,
		map[string]string{"name": "Paper"}, http.StatusCreated, nil)
	var item model.InventoryItem
	doJSON(t, "POST", server.URL+"/api/items", token, map[string]any{
		"name": "A4 Ream", "category": "Paper", "stockQuantity": 3, "unit": "ream",
	}, http.StatusCreated, &item)
	var employee model.Employee
	doJSON(t, "POST", server.URL+"/api/employees", token,
		map[string]string{"name": "Cene Zupan", "department": "HR"}, http.StatusCreated, &employee)

	req, _ := authRequest("POST", server.URL+"/api/issues", token, map[string]any{
		"employeeId": employee.ID,
		"items":      []map[string]any{{"itemId": item.ID, "quantity": 5}},
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for insufficient stock, got %d", resp.StatusCode)
	}
	var errBody map[string]string
	json.NewDecoder(resp.Body).Decode(&errBody)
	resp.Body.Close()
	if errBody["kind"] != "INSUFFICIENT_STOCK" {
		t.Errorf("error kind = %q, want INSUFFICIENT_STOCK", errBody["kind"])
	}

	// Nothing was reserved.
	var got model.InventoryItem
	doJSON(t, "GET", server.URL+"/api/items/"+item.ID, token, nil, http.StatusOK, &got)
	if got.StockQuantity != 3 {
		t.Errorf("stock after rejected issue = %d, want 3", got.StockQuantity)
	}
}

func TestCategoryInUseBlocked(t *testing.T) {
	server, token := setupTestServer(t)

	doJSON(t, "POST", server.URL+"/api/categories", token,
		map[string]string{"name": "Desk"}, http.StatusCreated, nil)
	doJSON(t, "POST", server.URL+"/api/items", token, map[string]any{
		"name": "Tape", "category": "Desk", "stockQuantity": 1, "unit": "pcs",
	}, http.StatusCreated, nil)

	req, _ := authRequest("DELETE", server.URL+"/api/categories/Desk", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for category in use, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestExportImportRoundTrip(t *testing.T) {
	server, token := setupTestServer(t)

	doJSON(t, "POST", server.URL+"/api/categories", token,
		map[string]string{"name": "Writing"}, http.StatusCreated, nil)
	doJSON(t, "POST", server.URL+"/api/items", token, map[string]any{
		"name": "Marker", "category": "Writing", "stockQuantity": 8, "unit": "pcs",
	}, http.StatusCreated, nil)

	req, _ := authRequest("GET", server.URL+"/api/export", token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	var doc json.RawMessage
	json.NewDecoder(resp.Body).Decode(&doc)
	resp.Body.Close()

	// Wipe, then import the snapshot back.
	doJSON(t, "POST", server.URL+"/api/wipe", token, nil, http.StatusOK, nil)

	var items []model.InventoryItem
	doJSON(t, "GET", server.URL+"/api/items", token, nil, http.StatusOK, &items)
	if len(items) != 0 {
		t.Fatalf("expected empty inventory after wipe, got %d items", len(items))
	}

	req, _ = http.NewRequest("POST", server.URL+"/api/import", bytes.NewReader(doc))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	doJSON(t, "GET", server.URL+"/api/items", token, nil, http.StatusOK, &items)
	if len(items) != 1 || items[0].Name != "Marker" {
		t.Errorf("inventory after import = %+v, want the exported Marker", items)
	}
}

func TestResetRestoresDefaultCategories(t *testing.T) {
	server, token := setupTestServer(t)

	doJSON(t, "POST", server.URL+"/api/categories", token,
		map[string]string{"name": "Custom"}, http.StatusCreated, nil)

	doJSON(t, "POST", server.URL+"/api/reset", token, nil, http.StatusOK, nil)

	var categories []string
	doJSON(t, "GET", server.URL+"/api/categories", token, nil, http.StatusOK, &categories)
	if len(categories) == 0 {
		t.Fatal("expected starter categories after reset")
	}
	for _, c := range categories {
		if c == "Custom" {
			t.Error("custom category survived reset")
		}
	}
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	server, token := setupTestServer(t)

	// Negative stock violates the data invariants, the whole document is rejected.
	doc := `{"inventory":[{"id":"i1","name":"Pen","category":"c","stockQuantity":-2,"unit":"pcs","threshold":0}],"issues":[],"employees":[],"categories":["c"]}`
	req, _ := http.NewRequest("POST", server.URL+"/api/import", bytes.NewReader([]byte(doc)))
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid document, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	resp, _ := http.Get(server.URL + "/api/items")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	viewer, err := store.CreateUser(ctx, database, "viewer1", string(hash), model.RoleViewer, "Viewer One", "")
	if err != nil {
		t.Fatalf("creating viewer: %v", err)
	}
	viewerToken, _ := auth.GenerateToken(testJWTSecret, viewer)

	// Viewers cannot create items (assistant+ required).
	req, _ := authRequest("POST", server.URL+"/api/items", viewerToken, map[string]string{
		"name": "Test",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for viewer creating item, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Viewers cannot access /api/users.
	req, _ = authRequest("GET", server.URL+"/api/users", viewerToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for viewer accessing users, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Viewers can still read the dashboard.
	req, _ = authRequest("GET", server.URL+"/api/dashboard", viewerToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for viewer reading dashboard, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
