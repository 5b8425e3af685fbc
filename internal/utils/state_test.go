package utils

import "testing"

func TestStateTokenRoundTrip(t *testing.T) {
	tok, err := NewStateToken("s3cret")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if err := VerifyStateToken("s3cret", tok); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestStateTokenWrongSecret(t *testing.T) {
	tok, err := NewStateToken("s3cret")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if err := VerifyStateToken("other", tok); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestStateTokenGarbage(t *testing.T) {
	if err := VerifyStateToken("s3cret", "not-a-jwt"); err == nil {
		t.Fatalf("expected verification failure on garbage input")
	}
}
