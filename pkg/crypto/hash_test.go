package crypto

import (
	"testing"

	"github.com/Klingon-tech/artdressup/pkg/types"
)

func TestHash_KnownVectors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"empty input", []byte{}, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{"hello", []byte("hello"), "ea8f163db38682925e4491c5e58d4bb3506ef8c14eb78a86e908c5624a67200f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hash(tt.input).String(); got != tt.want {
				t.Errorf("Hash(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestAccountHash_DistinctAccounts(t *testing.T) {
	a := AccountHash("alice.testnet")
	b := AccountHash("bob.testnet")
	if a == b {
		t.Fatal("different accounts share a namespace")
	}
	if a != AccountHash(types.AccountID("alice.testnet")) {
		t.Fatal("AccountHash is not deterministic")
	}
}

func TestImplicitAccount(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	acct := ImplicitAccount(key.PublicKey())
	if !acct.IsImplicit() {
		t.Fatalf("ImplicitAccount = %q, not implicit", acct)
	}
	if err := acct.Validate(); err != nil {
		t.Fatalf("implicit account fails validation: %v", err)
	}
	if key.Account() != string(acct) {
		t.Fatalf("PrivateKey.Account() = %s, want %s", key.Account(), acct)
	}
}
