package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/normalize"
	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/store"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// setupTestServer wires the handlers against in-memory stores so the full
// flow runs without Postgres or a PDF toolchain.
func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	accounts = store.NewMemoryStore()
	creds = store.NewMemoryCredentials()
	sessions = newSessionManager()
	normalizer = normalize.New(nil)
	jwtSecret = []byte("test-secret")
	r := gin.New()
	setupRoutes(r)
	return r
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(b)
}

func loginAs(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	resp := performRequest(r, http.MethodPost, "/login",
		jsonBody(t, map[string]string{"email": email, "password": password}), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}
	return token
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 6), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFullIntakeFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Register
	resp := performRequest(r, http.MethodPost, "/register",
		jsonBody(t, map[string]string{"email": "alice@example.com", "password": "secret1"}), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 2. Duplicate registration is rejected
	resp = performRequest(r, http.MethodPost, "/register",
		jsonBody(t, map[string]string{"email": "alice@example.com", "password": "secret1"}), "", "application/json")
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate register, got %d", resp.Code)
	}

	token := loginAs(t, r, "alice@example.com", "secret1")

	// 3. Wizard starts at the welcome step and is gated on acceptance
	resp = performRequest(r, http.MethodPost, "/wizard/next", nil, token, "")
	var step map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &step)
	if moved, _ := step["moved"].(bool); moved {
		t.Fatalf("wizard advanced past welcome without acceptance: %+v", step)
	}
	resp = performRequest(r, http.MethodPut, "/account/acceptance",
		jsonBody(t, map[string]bool{"accepted": true}), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("acceptance failed status=%d", resp.Code)
	}
	resp = performRequest(r, http.MethodPost, "/wizard/next", nil, token, "")
	step = map[string]any{}
	_ = json.Unmarshal(resp.Body.Bytes(), &step)
	if moved, _ := step["moved"].(bool); !moved {
		t.Fatalf("wizard did not advance after acceptance: %+v", step)
	}
	if idx, _ := step["step_index"].(float64); idx != 1 {
		t.Fatalf("expected step 1, got %v", step["step_index"])
	}

	// 4. Taxpayer info
	resp = performRequest(r, http.MethodPut, "/account/taxpayer",
		jsonBody(t, map[string]string{"name": "Alice Smith", "tax_id": "123-45-6789", "occupation": "Engineer"}),
		token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("taxpayer update failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 5. Dependent
	resp = performRequest(r, http.MethodPost, "/account/dependents",
		jsonBody(t, map[string]string{"name": "Sam", "relationship": "Son"}), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("add dependent failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 6. Select the W-2 income category
	resp = performRequest(r, http.MethodPost, "/categories/income/select",
		jsonBody(t, map[string]string{"category": "W-2 Forms"}), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("select category failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 7. Upload a general income document (multipart)
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, _ := mw.CreateFormFile("files", "w2-scan.png")
	_, _ = fw.Write(pngBytes(t))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, "/uploads/income", buf, token, mw.FormDataContentType())
	if resp.Code != 200 {
		t.Fatalf("income upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var upResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &upResp)
	if n, _ := upResp["uploaded"].(float64); n != 1 {
		t.Fatalf("expected 1 uploaded income doc, got %v", upResp["uploaded"])
	}

	// 8. Slot upload
	buf = &bytes.Buffer{}
	mw = multipart.NewWriter(buf)
	fw, _ = mw.CreateFormFile("file", "license.png")
	_, _ = fw.Write(pngBytes(t))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, "/uploads/slot/primary_license", buf, token, mw.FormDataContentType())
	if resp.Code != 200 {
		t.Fatalf("slot upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 9. Submit and inspect the composed document
	resp = performRequest(r, http.MethodPost, "/submit", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("submit failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var sub map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &sub)
	doc, _ := sub["document"].(string)
	if !strings.Contains(doc, "Sam") {
		t.Fatalf("document missing dependent name")
	}
	if !strings.Contains(doc, "W-2 Forms (Employment Income)") {
		t.Fatalf("document missing selected category heading")
	}
	if !strings.Contains(doc, "0 document(s)") {
		t.Fatalf("document missing zero-count for category without files")
	}
	if ref, _ := sub["reference"].(string); ref == "" {
		t.Fatalf("empty submission reference")
	}
	if fn, _ := sub["filename"].(string); !strings.HasPrefix(fn, "Alice Smith - Tax Intake Summary - ") {
		t.Fatalf("unexpected filename %v", sub["filename"])
	}
	if sub["portal_url"] != securePortalURL {
		t.Fatalf("unexpected portal url %v", sub["portal_url"])
	}

	// 10. Re-submit reuses the same reference
	resp = performRequest(r, http.MethodPost, "/submit", nil, token, "")
	var sub2 map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &sub2)
	if sub2["reference"] != sub["reference"] {
		t.Fatalf("re-submit minted new reference: %v vs %v", sub2["reference"], sub["reference"])
	}

	// 11. Logout persists; a fresh login resumes from the stored snapshot
	resp = performRequest(r, http.MethodPost, "/logout", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("logout failed status=%d", resp.Code)
	}
	token = loginAs(t, r, "alice@example.com", "secret1")
	resp = performRequest(r, http.MethodGet, "/account", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("account read failed status=%d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Alice Smith") {
		t.Fatalf("resumed account lost taxpayer name: %s", resp.Body.String())
	}

	// 12. Unauthorized access is rejected
	unauth := performRequest(r, http.MethodGet, "/account", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized account read, got %d", unauth.Code)
	}
}

func TestCategorySelectionLifecycle(t *testing.T) {
	r := setupTestServer(t)
	resp := performRequest(r, http.MethodPost, "/register",
		jsonBody(t, map[string]string{"email": "bob@example.com", "password": "secret1"}), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("register failed status=%d", resp.Code)
	}
	token := loginAs(t, r, "bob@example.com", "secret1")

	// unknown category is rejected
	resp = performRequest(r, http.MethodPost, "/categories/income/select",
		jsonBody(t, map[string]string{"category": "Lottery Winnings"}), token, "application/json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", resp.Code)
	}

	// select, set detail, attach a file
	resp = performRequest(r, http.MethodPost, "/categories/deduction/select",
		jsonBody(t, map[string]string{"category": "Charitable Donations"}), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("select failed status=%d", resp.Code)
	}
	resp = performRequest(r, http.MethodPut, "/categories/deduction/detail",
		jsonBody(t, map[string]string{"category": "Charitable Donations", "detail": "$1,200 to local shelter"}),
		token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("detail failed status=%d", resp.Code)
	}
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	_ = mw.WriteField("category", "Charitable Donations")
	fw, _ := mw.CreateFormFile("files", "receipt.png")
	_, _ = fw.Write(pngBytes(t))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, "/categories/deduction/files", buf, token, mw.FormDataContentType())
	if resp.Code != 200 {
		t.Fatalf("category files failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// deselect keeps the entry because it has files; the files survive
	resp = performRequest(r, http.MethodPost, "/categories/deduction/deselect",
		jsonBody(t, map[string]string{"category": "Charitable Donations"}), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("deselect failed status=%d", resp.Code)
	}
	resp = performRequest(r, http.MethodGet, "/account", nil, token, "")
	body := resp.Body.String()
	if !strings.Contains(body, "receipt.png") {
		t.Fatalf("deselect dropped uploaded files: %s", body)
	}
	if !strings.Contains(body, `"selected":false`) {
		t.Fatalf("deselect did not clear selection flag")
	}

	// an untouched selection deselects to nothing
	resp = performRequest(r, http.MethodPost, "/categories/income/select",
		jsonBody(t, map[string]string{"category": "1099-INT"}), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("select failed status=%d", resp.Code)
	}
	resp = performRequest(r, http.MethodPost, "/categories/income/deselect",
		jsonBody(t, map[string]string{"category": "1099-INT"}), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("deselect failed status=%d", resp.Code)
	}
	resp = performRequest(r, http.MethodGet, "/account", nil, token, "")
	if strings.Contains(resp.Body.String(), "1099-INT") {
		t.Fatalf("untouched deselected category left residue")
	}

	// files for a category that is not selected
	buf = &bytes.Buffer{}
	mw = multipart.NewWriter(buf)
	_ = mw.WriteField("category", "1098")
	fw, _ = mw.CreateFormFile("files", "mortgage.png")
	_, _ = fw.Write(pngBytes(t))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, "/categories/deduction/files", buf, token, mw.FormDataContentType())
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for files on unselected category, got %d", resp.Code)
	}
}

func TestDependentRemoval(t *testing.T) {
	r := setupTestServer(t)
	resp := performRequest(r, http.MethodPost, "/register",
		jsonBody(t, map[string]string{"email": "carol@example.com", "password": "secret1"}), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("register failed status=%d", resp.Code)
	}
	token := loginAs(t, r, "carol@example.com", "secret1")

	resp = performRequest(r, http.MethodPost, "/account/dependents",
		jsonBody(t, map[string]string{"name": "Kid One"}), token, "application/json")
	var dep map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &dep)
	id, _ := dep["id"].(string)
	if id == "" {
		t.Fatalf("no dependent id returned")
	}

	resp = performRequest(r, http.MethodDelete, "/account/dependents/"+id, nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("remove dependent failed status=%d", resp.Code)
	}
	resp = performRequest(r, http.MethodDelete, "/account/dependents/"+id, nil, token, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 removing missing dependent, got %d", resp.Code)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	r := setupTestServer(t)
	resp := performRequest(r, http.MethodPost, "/register",
		jsonBody(t, map[string]string{"email": "dave@example.com", "password": "secret1"}), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("register failed status=%d", resp.Code)
	}
	resp = performRequest(r, http.MethodPost, "/login",
		jsonBody(t, map[string]string{"email": "dave@example.com", "password": "wrong"}), "", "application/json")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodPost, "/login",
		jsonBody(t, map[string]string{"email": "nobody@example.com", "password": "secret1"}), "", "application/json")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", resp.Code)
	}
}
