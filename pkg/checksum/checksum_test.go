package checksum

import (
	"strings"
	"testing"
)

// SHA-256 of "hello world"
const helloWorldSHA256 = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func TestCalculateSHA256(t *testing.T) {
	sum, err := CalculateSHA256(strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != helloWorldSHA256 {
		t.Errorf("sum = %s, want %s", sum, helloWorldSHA256)
	}
}

func TestCalculateSHA256_Empty(t *testing.T) {
	sum, err := CalculateSHA256(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// SHA-256 of empty input
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if sum != want {
		t.Errorf("sum = %s, want %s", sum, want)
	}
}

func TestVerifySHA256_Match(t *testing.T) {
	ok, err := VerifySHA256(strings.NewReader("hello world"), helloWorldSHA256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected checksum to verify")
	}
}

func TestVerifySHA256_Mismatch(t *testing.T) {
	ok, err := VerifySHA256(strings.NewReader("tampered"), helloWorldSHA256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected checksum mismatch")
	}
}
