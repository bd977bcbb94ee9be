//go:build e2e

package tests

import (
	"testing"
)

func TestVerify(t *testing.T) {
	stored := hashPassword(t, "correct horse").Hash

	t.Run("Match", func(t *testing.T) {

		// Act
		resp := verifyPassword(t, "correct horse", stored)

		// Assert
		if !resp.Valid || resp.NeedsRehash {
			t.Fatalf("expected valid=true needs_rehash=false, got %+v", resp)
		}
	})

	t.Run("Mismatch", func(t *testing.T) {

		// Act
		resp := verifyPassword(t, "wrong battery", stored)

		// Assert
		if resp.Valid {
			t.Fatalf("expected valid=false")
		}
	})

	t.Run("MalformedHash", func(t *testing.T) {

		// Act
		resp := verifyPassword(t, "correct horse", "$argon2i$v=19$m=0,t=0,p=0$AAAA$AAAA")

		// Assert
		if resp.Valid {
			t.Fatalf("expected valid=false for a malformed hash")
		}
	})
}
