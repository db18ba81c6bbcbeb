//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// Environment variable names for E2E test configuration.
const (
	EnvServerURL = "E2E_SERVER_URL"
	EnvAPIKey    = "E2E_API_KEY"
	EnvBasicUser = "E2E_BASIC_USER"
	EnvBasicPass = "E2E_BASIC_PASS"
)

// Default configuration values.
const (
	DefaultServerURL = "http://localhost:8080"
	DefaultTimeout   = 15 * time.Second
)

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// e2eServerURL returns the base URL of the server under test.
func e2eServerURL() string {
	return getEnvOrDefault(EnvServerURL, DefaultServerURL)
}

// skipIfServerUnavailable skips the test when the server does not answer /health.
func skipIfServerUnavailable(t *testing.T) {
	t.Helper()

	base := e2eServerURL()
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(base + "/health")
	if err != nil {
		t.Skipf("Server unavailable at %s: %v", base, err)
	}
	resp.Body.Close()
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type listResponse struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

type itemResponse struct {
	ID          string  `json:"id"`
	ListID      string  `json:"listId"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	CategoryID  string  `json:"categoryId"`
	IsCompleted bool    `json:"isCompleted"`
	Priority    string  `json:"priority"`
	Version     int64   `json:"version"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// doRequest performs an HTTP request and returns the status, headers and body.
func doRequest(
	t *testing.T,
	client *http.Client,
	method, url string,
	payload any,
	headers map[string]string,
) (int, http.Header, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to encode payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	return resp.StatusCode, resp.Header, respBody
}

// buildAuthHeaders returns JSON headers plus credentials from the environment.
func buildAuthHeaders(t *testing.T) map[string]string {
	t.Helper()

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	if apiKey := os.Getenv(EnvAPIKey); apiKey != "" {
		headers["X-API-Key"] = apiKey
		return headers
	}

	user := os.Getenv(EnvBasicUser)
	pass := os.Getenv(EnvBasicPass)
	if user != "" && pass != "" {
		creds := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
		headers["Authorization"] = "Basic " + creds
	}

	return headers
}

func withHeader(headers map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		out[k] = v
	}
	out[key] = value
	return out
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("Failed to parse response %s: %v", body, err)
	}
	return v
}

// createList creates a list owned by userID and registers its cleanup.
func createList(t *testing.T, client *http.Client, base string, headers map[string]string, userID, name string) listResponse {
	t.Helper()

	status, _, body := doRequest(t, client, http.MethodPost, base+"/shoppingLists",
		map[string]any{"userId": userID, "name": name}, headers)
	if status != http.StatusCreated {
		t.Fatalf("createList: expected 201, got %d. Body: %s", status, body)
	}

	list := decode[listResponse](t, body)
	t.Cleanup(func() {
		doRequest(t, client, http.MethodDelete, base+"/shoppingLists/"+list.ID, nil, headers)
	})
	return list
}

// createItem creates an item and returns it with its ETag.
func createItem(t *testing.T, client *http.Client, base string, headers map[string]string, payload map[string]any) (itemResponse, string) {
	t.Helper()

	status, respHeaders, body := doRequest(t, client, http.MethodPost, base+"/shoppingItems", payload, headers)
	if status != http.StatusCreated {
		t.Fatalf("createItem: expected 201, got %d. Body: %s", status, body)
	}
	return decode[itemResponse](t, body), respHeaders.Get("ETag")
}
