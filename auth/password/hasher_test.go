package password

import (
	"strings"
	"testing"

	apperrors "github.com/kbukum/userservice/errors"
)

func testHashers() map[string]Hasher {
	return map[string]Hasher{
		"bcrypt":   NewBcryptHasher(WithCost(4)),
		"argon2id": NewArgon2Hasher(WithArgon2Memory(1024), WithArgon2Threads(1)),
	}
}

func TestHasher_RoundTrip(t *testing.T) {
	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			for _, pw := range []string{"pw1", "secret123", "correct horse battery staple", "pässwörd"} {
				hash, err := h.Hash(pw)
				if err != nil {
					t.Fatalf("Hash(%q): %v", pw, err)
				}
				if strings.Contains(hash, pw) {
					t.Errorf("hash must not contain the password: %q", hash)
				}
				ok, err := h.Verify(pw, hash)
				if err != nil {
					t.Fatalf("Verify: %v", err)
				}
				if !ok {
					t.Errorf("Verify(%q, Hash(%q)) = false", pw, pw)
				}
			}
		})
	}
}

func TestHasher_WrongPassword(t *testing.T) {
	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash("pw1")
			if err != nil {
				t.Fatalf("Hash: %v", err)
			}
			for _, wrong := range []string{"pw2", "PW1", "pw1 ", "wrongpw"} {
				ok, err := h.Verify(wrong, hash)
				if err != nil {
					t.Errorf("mismatch must not error, got %v", err)
				}
				if ok {
					t.Errorf("Verify(%q) should be false", wrong)
				}
			}
			if ok, err := h.Verify("", hash); ok || err != nil {
				t.Errorf("empty password: got (%v, %v), want (false, nil)", ok, err)
			}
		})
	}
}

func TestHasher_Salted(t *testing.T) {
	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			a, err := h.Hash("secret123")
			if err != nil {
				t.Fatalf("Hash: %v", err)
			}
			b, err := h.Hash("secret123")
			if err != nil {
				t.Fatalf("Hash: %v", err)
			}
			if a == b {
				t.Error("two hashes of the same password must differ")
			}
			for _, hash := range []string{a, b} {
				if ok, _ := h.Verify("secret123", hash); !ok {
					t.Errorf("hash %q should verify", hash)
				}
			}
		})
	}
}

func TestHasher_EmptyPassword(t *testing.T) {
	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			_, err := h.Hash("")
			if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestHasher_MalformedHash(t *testing.T) {
	tests := []struct {
		hasher string
		hash   string
	}{
		{"bcrypt", ""},
		{"bcrypt", "plaintext"},
		{"bcrypt", "$2a$"},
		{"bcrypt", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$a2V5"},
		{"argon2id", ""},
		{"argon2id", "$2a$04$abcdefghijklmnopqrstuu"},
		{"argon2id", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA"},
		{"argon2id", "$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5"},
		{"argon2id", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5"},
		{"argon2id", "$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5"},
		{"argon2id", "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5"},
		{"argon2id", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$"},
		{"argon2id", "argon2id$v=19$m=1024,t=1,p=1$c2FsdA$a2V5$"},
	}

	hashers := testHashers()
	for _, tt := range tests {
		t.Run(tt.hasher+"/"+tt.hash, func(t *testing.T) {
			ok, err := hashers[tt.hasher].Verify("pw1", tt.hash)
			if ok {
				t.Error("malformed hash must never verify")
			}
			if !apperrors.Is(err, apperrors.ErrCodeMalformedHash) {
				t.Errorf("expected MALFORMED_HASH, got %v", err)
			}
		})
	}
}

func TestBcrypt_HashEncodesCost(t *testing.T) {
	h := NewBcryptHasher(WithCost(5))
	hash, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$05$") {
		t.Errorf("expected $2a$05$ prefix, got %q", hash)
	}
	if h.Cost() != 5 {
		t.Errorf("expected cost 5, got %d", h.Cost())
	}
}

func TestBcrypt_IgnoresInvalidCost(t *testing.T) {
	if h := NewBcryptHasher(WithCost(99)); h.Cost() != 12 {
		t.Errorf("out-of-range cost should keep the default, got %d", h.Cost())
	}
}

func TestBcrypt_RejectsOverlongPassword(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))
	_, err := h.Hash(strings.Repeat("a", 73))
	if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for 73 bytes, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("a", 72)); err != nil {
		t.Errorf("72 bytes should be accepted: %v", err)
	}
}

func TestMinLength(t *testing.T) {
	h := NewBcryptHasher(WithCost(4), WithMinLength(8))
	if _, err := h.Hash("short"); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT below min length, got %v", err)
	}
	if _, err := h.Hash("long-enough"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestArgon2_HashEncodesParameters(t *testing.T) {
	h := NewArgon2Hasher(WithArgon2Time(2), WithArgon2Memory(2048), WithArgon2Threads(2))
	hash, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=2048,t=2,p=2$") {
		t.Errorf("unexpected encoding %q", hash)
	}

	// A hasher with different parameters still verifies: they come from the hash.
	other := NewArgon2Hasher(WithArgon2Memory(1024), WithArgon2Threads(1))
	if ok, err := other.Verify("pw1", hash); !ok || err != nil {
		t.Errorf("expected cross-parameter verify to succeed, got (%v, %v)", ok, err)
	}
}

func TestRandomString(t *testing.T) {
	a, err := RandomString(16)
	if err != nil {
		t.Fatalf("RandomString: %v", err)
	}
	b, _ := RandomString(16)
	if a == b {
		t.Error("random strings should differ")
	}
	if len(a) != 22 {
		t.Errorf("expected 22 base64 chars for 16 bytes, got %d", len(a))
	}
}
