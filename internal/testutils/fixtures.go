package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// LoadFixture loads a fixture file from the package testdata directory
func LoadFixture(t *testing.T, filename string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		// Try the repository-level testdata directory
		data, err = os.ReadFile(filepath.Join("..", "..", "testdata", filename))
		if err != nil {
			t.Fatalf("Failed to load fixture %s: %v", filename, err)
		}
	}
	return data
}

// WaitForCondition waits for a condition to be met or timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, interval time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}
	t.Fatal("Condition not met within timeout")
}
