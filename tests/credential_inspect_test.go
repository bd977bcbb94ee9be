//go:build e2e

package tests

import (
	"net/http"
	"testing"
)

func TestInspect(t *testing.T) {

	t.Run("StoredHash", func(t *testing.T) {

		// Arrange
		stored := hashPassword(t, "correct horse")

		// Act
		status, body := doJSON(t, http.MethodPost, "/api/v1/credential/inspect", map[string]string{"hash": stored.Hash})

		// Assert
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		var data struct {
			Algorithm   string `json:"algorithm"`
			NeedsRehash bool   `json:"needs_rehash"`
		}
		decodeSuccess(t, body, &data)
		if data.Algorithm != stored.Algorithm || data.NeedsRehash {
			t.Fatalf("unexpected inspect result %+v", data)
		}
	})

	t.Run("Malformed", func(t *testing.T) {

		// Act
		status, body := doJSON(t, http.MethodPost, "/api/v1/credential/inspect", map[string]string{"hash": "$argon2i$broken"})

		// Assert
		if status != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", status)
		}
		if env := decodeError(t, body); env.Error["hash"] == "" {
			t.Fatalf("expected hash field error")
		}
	})
}
