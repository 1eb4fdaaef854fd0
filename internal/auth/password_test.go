package auth

import (
	"strings"
	"testing"
)

func TestHashSecret(t *testing.T) {
	hash, err := HashSecret("changeme")
	if err != nil {
		t.Fatalf("HashSecret error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashSecret returned empty hash")
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}
}

func TestCheckPassword_Correct(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("changeme", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Fatal("Correct password was rejected")
	}
}

func TestCheckPassword_Wrong(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("wrongpassword", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if valid {
		t.Fatal("Wrong password was accepted")
	}
}

func TestCheckPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password share a salt")
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if NeedsRehash(hash) {
		t.Fatal("fresh hash reported as needing rehash")
	}

	// Different memory parameter than the current defaults.
	stale := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"
	if !NeedsRehash(stale) {
		t.Fatal("stale-parameter hash not flagged for rehash")
	}
	if NeedsRehash("") == false {
		t.Fatal("empty hash should need rehash")
	}
}

func TestNormalizeAnswer(t *testing.T) {
	cases := map[string]string{
		"Fluffy":     "fluffy",
		"  Fluffy  ": "fluffy",
		"FLUFFY":     "fluffy",
		"fluffy":     "fluffy",
	}
	for in, want := range cases {
		if got := NormalizeAnswer(in); got != want {
			t.Errorf("NormalizeAnswer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheckAnswer_CaseAndWhitespaceInsensitive(t *testing.T) {
	hash, err := HashAnswer("  Mrs Higgins ")
	if err != nil {
		t.Fatalf("HashAnswer error: %v", err)
	}

	for _, answer := range []string{"mrs higgins", "MRS HIGGINS", " mrs Higgins  "} {
		valid, err := CheckAnswer(answer, hash)
		if err != nil {
			t.Fatalf("CheckAnswer(%q) error: %v", answer, err)
		}
		if !valid {
			t.Errorf("CheckAnswer(%q) rejected equivalent answer", answer)
		}
	}

	valid, err := CheckAnswer("mr higgins", hash)
	if err != nil {
		t.Fatalf("CheckAnswer error: %v", err)
	}
	if valid {
		t.Fatal("CheckAnswer accepted a different answer")
	}
}
