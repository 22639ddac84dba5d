package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "s3cret" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash %q", hash)
	}
	if !h.Check("s3cret", hash) {
		t.Fatalf("Check rejected the right password")
	}
	if h.Check("wrong", hash) {
		t.Fatalf("Check accepted a wrong password")
	}
	if h.Check("s3cret", "not-a-bcrypt-hash") {
		t.Fatalf("Check accepted a malformed hash")
	}
}

func TestNewHasherCost(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, bcrypt.DefaultCost},
		{bcrypt.MaxCost + 1, bcrypt.DefaultCost},
		{bcrypt.MinCost, bcrypt.MinCost},
		{12, 12},
	}

	for _, tc := range cases {
		if got := NewHasher(tc.in).Cost(); got != tc.want {
			t.Errorf("NewHasher(%d).Cost() = %d, want %d", tc.in, got, tc.want)
		}
	}
}
