//go:build e2e

package tests

import (
	"net/http"
	"testing"
)

type hashData struct {
	Hash       string `json:"hash"`
	Algorithm  string `json:"algorithm"`
	Descriptor string `json:"descriptor"`
}

type verifyData struct {
	Valid       bool `json:"valid"`
	NeedsRehash bool `json:"needs_rehash"`
}

func hashPassword(t *testing.T, password string) hashData {
	t.Helper()

	status, body := doJSON(t, http.MethodPost, "/api/v1/credential/hash", map[string]string{"password": password})
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("hash failed: status=%d message=%q", status, errEnv.Message)
	}

	var data hashData
	decodeSuccess(t, body, &data)

	return data
}

func verifyPassword(t *testing.T, password, stored string) verifyData {
	t.Helper()

	payload := map[string]string{
		"password": password,
		"hash":     stored,
	}

	status, body := doJSON(t, http.MethodPost, "/api/v1/credential/verify", payload)
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("verify failed: status=%d message=%q", status, errEnv.Message)
	}

	var data verifyData
	decodeSuccess(t, body, &data)

	return data
}
