package signer

import (
	"strings"
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	s := New(5 * time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	body := []byte(`{"city":"Miami"}`)

	sig := s.Sign("secret", "POST", "/v1/events/lookup", now, body)
	date := now.Format(DateLayout)

	if err := s.Verify("secret", "POST", "/v1/events/lookup", date, sig, now, body); err != nil {
		t.Fatalf("Verify() = %v, want nil", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	s := New(5 * time.Minute)
	now := time.Now()
	body := []byte(`{}`)

	sig := s.Sign("secret", "POST", "/v1/events/lookup", now, body)
	date := now.UTC().Format(DateLayout)

	if err := s.Verify("other", "POST", "/v1/events/lookup", date, sig, now, body); err != ErrInvalidSignature {
		t.Fatalf("Verify() = %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	s := New(5 * time.Minute)
	now := time.Now()

	sig := s.Sign("secret", "POST", "/v1/events/lookup", now, []byte(`{"city":"Miami"}`))
	date := now.UTC().Format(DateLayout)

	err := s.Verify("secret", "POST", "/v1/events/lookup", date, sig, now, []byte(`{"city":"Boston"}`))
	if err != ErrInvalidSignature {
		t.Fatalf("Verify() = %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyRejectsExpiredDate(t *testing.T) {
	s := New(5 * time.Minute)
	at := time.Now().Add(-time.Hour)
	body := []byte(`{}`)

	sig := s.Sign("secret", "GET", "/v1/deployments/city-events", at, body)
	date := at.UTC().Format(DateLayout)

	err := s.Verify("secret", "GET", "/v1/deployments/city-events", date, sig, time.Now(), body)
	if err != ErrExpiredSignature {
		t.Fatalf("Verify() = %v, want ErrExpiredSignature", err)
	}
}

func TestStringToSignLayout(t *testing.T) {
	got := StringToSign("post", "/v1/events/lookup", "20260301T120000Z", []byte("abc"))
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("StringToSign() has %d lines, want 4", len(lines))
	}
	if lines[0] != "POST" {
		t.Errorf("method line = %q, want uppercased POST", lines[0])
	}
	if lines[1] != "/v1/events/lookup" || lines[2] != "20260301T120000Z" {
		t.Errorf("unexpected path/date lines: %q %q", lines[1], lines[2])
	}
	if len(lines[3]) != 64 {
		t.Errorf("body hash length = %d, want 64 hex chars", len(lines[3]))
	}
}

func TestGenerateCredentials(t *testing.T) {
	apiKey, secret, err := GenerateCredentials()
	if err != nil {
		t.Fatalf("GenerateCredentials() error = %v", err)
	}
	if !strings.HasPrefix(apiKey, "cek_") {
		t.Errorf("api key %q missing cek_ prefix", apiKey)
	}
	if len(secret) != 64 {
		t.Errorf("secret length = %d, want 64 hex chars", len(secret))
	}

	apiKey2, secret2, err := GenerateCredentials()
	if err != nil {
		t.Fatalf("GenerateCredentials() error = %v", err)
	}
	if apiKey == apiKey2 || secret == secret2 {
		t.Error("credentials are not unique across calls")
	}
}
