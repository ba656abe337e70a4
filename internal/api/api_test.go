package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/erazemk/zaloga/internal/artifact"
	"github.com/erazemk/zaloga/internal/catalog"
	"github.com/erazemk/zaloga/internal/identity"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	log := zerolog.Nop()

	artifacts := artifact.NewManager(filepath.Join(dir, "images"), filepath.Join(dir, "pdfs"), log)
	if err := artifacts.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	users := store.New[model.User](filepath.Join(dir, "users.json"), log)
	items := store.New[model.Item](filepath.Join(dir, "db.json"), log)
	identitySvc := identity.NewService(users, log)
	catalogSvc := catalog.NewService(items, artifacts, log)

	router := NewRouter(Deps{
		Identity:  identitySvc,
		Catalog:   catalogSvc,
		Artifacts: artifacts,
		JWTSecret: testJWTSecret,
		MaxUpload: 5 << 20,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	if _, err := identitySvc.Register("admin", "password", model.RoleAdmin); err != nil {
		t.Fatalf("creating admin: %v", err)
	}

	return server, login(t, server, "admin", "password")
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	return loginResp.Token
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

// itemForm builds a multipart item form without a file part.
func itemForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
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

func TestRegisterEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	// Mismatched confirmation is rejected before the service is called.
	body, _ := json.Marshal(map[string]string{
		"username": "alice", "password": "hunter22", "confirm_password": "different", "role": "user",
	})
	resp, _ := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for mismatched passwords, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Valid registration.
	body, _ = json.Marshal(map[string]string{
		"username": "alice", "password": "hunter22", "confirm_password": "hunter22", "role": "user",
	})
	resp, _ = http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Duplicate username (different case) conflicts.
	body, _ = json.Marshal(map[string]string{
		"username": "ALICE", "password": "hunter22", "confirm_password": "hunter22", "role": "user",
	})
	resp, _ = http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate username, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestItemsAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	// Create item.
	form, contentType := itemForm(t, map[string]string{
		"name": "Widget", "category": "Electronics", "quantity": "5", "price": "9.99",
	})
	req, _ := http.NewRequest("POST", server.URL+"/api/items", form)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created struct {
		Item model.Item `json:"item"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if created.Item.ID == "" {
		t.Fatal("expected item id")
	}
	if created.Item.PDFFilename == nil {
		t.Error("expected generated PDF reference")
	}

	// List items.
	req, _ = authRequest("GET", server.URL+"/api/items?search=wid", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	var listed []model.Item
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()
	if len(listed) != 1 {
		t.Fatalf("expected 1 item, got %d", len(listed))
	}

	// Download the generated PDF.
	req, _ = authRequest("GET", server.URL+"/api/items/"+created.Item.ID+"/pdf", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for PDF download, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Update item.
	form, contentType = itemForm(t, map[string]string{
		"name": "Widget Pro", "category": "Electronics", "quantity": "3", "price": "19.99",
	})
	req, _ = http.NewRequest("PUT", server.URL+"/api/items/"+created.Item.ID, form)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Delete item.
	req, _ = authRequest("DELETE", server.URL+"/api/items/"+created.Item.ID, token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Gone now.
	req, _ = authRequest("GET", server.URL+"/api/items/"+created.Item.ID, token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestItemWritesRequireAdmin(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{
		"username": "bob", "password": "hunter22", "confirm_password": "hunter22", "role": "user",
	})
	resp, _ := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	resp.Body.Close()
	token := login(t, server, "bob", "hunter22")

	form, contentType := itemForm(t, map[string]string{
		"name": "Widget", "category": "Electronics", "quantity": "1", "price": "1.00",
	})
	req, _ := http.NewRequest("POST", server.URL+"/api/items", form)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin create, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Reads are fine for regular users.
	req, _ = authRequest("GET", server.URL+"/api/items", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for non-admin list, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUsersEndpointAdminOnly(t *testing.T) {
	server, adminToken := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{
		"username": "carol", "password": "hunter22", "confirm_password": "hunter22", "role": "user",
	})
	resp, _ := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	resp.Body.Close()
	userToken := login(t, server, "carol", "hunter22")

	req, _ := authRequest("GET", server.URL+"/api/users", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/users", adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}
	var users []map[string]any
	json.NewDecoder(resp.Body).Decode(&users)
	resp.Body.Close()
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if _, leaked := u["password"]; leaked {
			t.Error("user responses must not contain credential material")
		}
	}
}

func TestCategoriesAndDashboard(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("GET", server.URL+"/api/categories", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var categories []string
	json.NewDecoder(resp.Body).Decode(&categories)
	resp.Body.Close()
	if len(categories) != len(model.Categories) {
		t.Errorf("expected %d categories, got %d", len(model.Categories), len(categories))
	}

	req, _ = authRequest("GET", server.URL+"/api/dashboard", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for dashboard, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedRequests(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/items")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
