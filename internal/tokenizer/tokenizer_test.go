package tokenizer

import (
	"os"
	"path/filepath"
	"testing"
)

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

func TestCountBytesText(t *testing.T) {
	result, err := CountBytes(testCounter{}, []byte("hello"))
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if !result.Counted || result.Tokens != len([]rune("hello")) {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCountBytesBinary(t *testing.T) {
	result, err := CountBytes(testCounter{}, []byte{0x00, 0x01, 0x02})
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if result.Counted {
		t.Fatalf("expected binary data to be skipped")
	}
}

func TestCountBytesNilCounter(t *testing.T) {
	if _, err := CountBytes(nil, []byte("x")); err == nil {
		t.Fatalf("expected error for nil counter")
	}
}

func TestCountFile(t *testing.T) {
	artifactPath := filepath.Join(t.TempDir(), "output.txt")
	if err := os.WriteFile(artifactPath, []byte("----\na.txt\nhello\n--END--\n"), 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	result, err := CountFile(testCounter{}, artifactPath)
	if err != nil {
		t.Fatalf("CountFile error: %v", err)
	}
	if result.Tokens != len([]rune("----\na.txt\nhello\n--END--\n")) {
		t.Fatalf("unexpected token count %d", result.Tokens)
	}
	if _, missingErr := CountFile(testCounter{}, filepath.Join(t.TempDir(), "absent")); missingErr == nil {
		t.Fatalf("expected error for missing file")
	}
}
