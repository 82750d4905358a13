package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/models"
)

// generateAPIKey generates a valid API key of specified length
func generateAPIKey(length int) string {
	key := make([]byte, length)
	for i := range key {
		key[i] = 'a' + byte(i%26)
	}
	return string(key)
}

func newAuthApp(keys []string, enabled bool) *fiber.App {
	app := fiber.New()
	app.Use(APIKeyAuth(logging.NewNop(), keys, enabled))
	app.Get("/v1/sessions", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected bool
	}{
		{"exactly 32 chars", generateAPIKey(32), true},
		{"longer than 32 chars", generateAPIKey(64), true},
		{"31 chars", generateAPIKey(31), false},
		{"empty", "", false},
		{"32 spaces", "                                ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateAPIKey(tt.key); got != tt.expected {
				t.Errorf("ValidateAPIKey(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"abcdefghijklmnop", "abcd****"},
		{"abcd", "****"},
		{"", "****"},
		{"abcde", "abcd****"},
	}

	for _, tt := range tests {
		if got := maskAPIKey(tt.key); got != tt.expected {
			t.Errorf("maskAPIKey(%q) = %q, want %q", tt.key, got, tt.expected)
		}
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	app := newAuthApp(nil, false)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/sessions", nil))
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	validKey := generateAPIKey(32)
	app := newAuthApp([]string{generateAPIKey(40), validKey}, true)

	tests := []struct {
		name       string
		headerName string
		headerVal  string
	}{
		{"X-API-Key header", "X-API-Key", validKey},
		{"Authorization Bearer header", "Authorization", "Bearer " + validKey},
		{"Authorization plain header", "Authorization", validKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/sessions", nil)
			req.Header.Set(tt.headerName, tt.headerVal)

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}
			if resp.StatusCode != fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("Expected status 200, got %d, body: %s", resp.StatusCode, string(body))
			}
		})
	}
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	app := newAuthApp([]string{generateAPIKey(32)}, true)

	tests := []struct {
		name       string
		headerName string
		headerVal  string
	}{
		{"missing API key", "", ""},
		{"wrong API key", "X-API-Key", generateAPIKey(32) + "wrong"},
		{"short API key", "X-API-Key", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/sessions", nil)
			if tt.headerName != "" {
				req.Header.Set(tt.headerName, tt.headerVal)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}
			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Fatalf("Expected status 401, got %d", resp.StatusCode)
			}

			var errResp models.ErrorResponse
			body, _ := io.ReadAll(resp.Body)
			if err := json.Unmarshal(body, &errResp); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			if errResp.Error.Code != "UNAUTHORIZED" || errResp.Error.Path != "/v1/sessions" {
				t.Errorf("Unexpected error body: %+v", errResp.Error)
			}
		})
	}
}

func TestAPIKeyAuth_WeakKeysRejected(t *testing.T) {
	weakKeys := []string{"a", "short", generateAPIKey(31)}
	app := newAuthApp(weakKeys, true)

	for _, weakKey := range weakKeys {
		req := httptest.NewRequest("GET", "/v1/sessions", nil)
		req.Header.Set("X-API-Key", weakKey)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to test request: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("Weak key %q should be rejected, got status %d", maskAPIKey(weakKey), resp.StatusCode)
		}
	}
}

func TestMatchesAny(t *testing.T) {
	keys := [][]byte{[]byte(generateAPIKey(32)), []byte(generateAPIKey(33))}

	if !matchesAny(generateAPIKey(33), keys) {
		t.Error("Expected configured key to match")
	}
	if matchesAny(generateAPIKey(34), keys) {
		t.Error("Expected unknown key not to match")
	}
	if matchesAny(generateAPIKey(32), nil) {
		t.Error("Expected no match without keys")
	}
}
