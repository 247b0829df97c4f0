package utils

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// Config loading refuses to run without a JWT secret.
	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "test-secret")
	}
	os.Exit(m.Run())
}
