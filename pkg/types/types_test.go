package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestAccountID_Validate(t *testing.T) {
	tests := []struct {
		id    AccountID
		valid bool
	}{
		{"alice", true},
		{"alice.testnet", true},
		{"dev.artdressup.testnet", true},
		{"a_b-c.d", true},
		{"0123456789abcdef0123456789abcdef01234567", true},
		{"a", false},
		{"", false},
		{"Alice", false},
		{".alice", false},
		{"alice.", false},
		{"al..ice", false},
		{"al-.ice", false},
		{"alice@near", false},
		{AccountID(string(make([]byte, 65))), false},
	}
	for _, tt := range tests {
		err := tt.id.Validate()
		if tt.valid && err != nil {
			t.Errorf("Validate(%q) error: %v", tt.id, err)
		}
		if !tt.valid {
			if err == nil {
				t.Errorf("Validate(%q) = nil, want error", tt.id)
			} else if !errors.Is(err, ErrInvalidAccountID) {
				t.Errorf("Validate(%q) error = %v, want ErrInvalidAccountID", tt.id, err)
			}
		}
	}
}

func TestAccountID_IsImplicit(t *testing.T) {
	addr := Address{0xde, 0xad, 0xbe, 0xef}
	if !addr.Account().IsImplicit() {
		t.Errorf("%q should be implicit", addr.Account())
	}
	if AccountID("alice.testnet").IsImplicit() {
		t.Error("named account reported as implicit")
	}
	if AccountID("zz23456789abcdef0123456789abcdef01234567").IsImplicit() {
		t.Error("non-hex 40-char id reported as implicit")
	}
}

func TestTokenID_Validate(t *testing.T) {
	if err := TokenID("tokenX").Validate(); err != nil {
		t.Errorf("Validate(tokenX) error: %v", err)
	}
	if err := TokenID("").Validate(); !errors.Is(err, ErrInvalidTokenID) {
		t.Errorf("Validate(\"\") error = %v, want ErrInvalidTokenID", err)
	}
	long := TokenID(make([]byte, MaxTokenIDLen+1))
	if err := long.Validate(); !errors.Is(err, ErrInvalidTokenID) {
		t.Errorf("Validate(long) error = %v, want ErrInvalidTokenID", err)
	}
}

func TestAmount_NEAR(t *testing.T) {
	if got := NEAR(10).String(); got != "10000000000000000000000000" {
		t.Errorf("NEAR(10) = %s", got)
	}
	if got := NEAR(9).NEARString(); got != "9" {
		t.Errorf("NEAR(9).NEARString() = %s, want 9", got)
	}
	if !NEAR(9).LessThan(NEAR(20)) {
		t.Error("9 NEAR should be less than 20 NEAR")
	}
	if NEAR(20).Sub(NEAR(9)).Cmp(NEAR(11)) != 0 {
		t.Error("20 - 9 NEAR should equal 11 NEAR")
	}
	if !Yocto(1).Sub(Yocto(2)).IsNegative() {
		t.Error("1 - 2 yocto should be negative")
	}
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount("20000000000000000000000000")
	if err != nil {
		t.Fatalf("ParseAmount error: %v", err)
	}
	if a.Cmp(NEAR(20)) != 0 {
		t.Errorf("ParseAmount = %s, want 20 NEAR", a)
	}
	for _, bad := range []string{"", "abc", "-1", "1.5"} {
		if _, err := ParseAmount(bad); err == nil {
			t.Errorf("ParseAmount(%q) = nil error, want error", bad)
		}
	}
}

func TestParseNEAR(t *testing.T) {
	a, err := ParseNEAR("1.5")
	if err != nil {
		t.Fatalf("ParseNEAR error: %v", err)
	}
	if a.String() != "1500000000000000000000000" {
		t.Errorf("ParseNEAR(1.5) = %s", a)
	}
	if _, err := ParseNEAR("-1"); err == nil {
		t.Error("ParseNEAR(-1) should fail")
	}
}

func TestAmount_JSON(t *testing.T) {
	data, err := json.Marshal(NEAR(1))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `"1000000000000000000000000"` {
		t.Errorf("Marshal = %s", data)
	}

	var a Amount
	if err := json.Unmarshal([]byte(`"42"`), &a); err != nil {
		t.Fatalf("Unmarshal quoted error: %v", err)
	}
	if a.Cmp(Yocto(42)) != 0 {
		t.Errorf("Unmarshal quoted = %s, want 42", a)
	}
	if err := json.Unmarshal([]byte(`7`), &a); err != nil {
		t.Fatalf("Unmarshal bare error: %v", err)
	}
	if a.Cmp(Yocto(7)) != 0 {
		t.Errorf("Unmarshal bare = %s, want 7", a)
	}
	if err := json.Unmarshal([]byte(`"-5"`), &a); err == nil {
		t.Error("Unmarshal negative should fail")
	}
}

func TestHexToHash(t *testing.T) {
	h := Hash{0x01, 0x02}
	parsed, err := HexToHash(h.String())
	if err != nil {
		t.Fatalf("HexToHash error: %v", err)
	}
	if parsed != h {
		t.Errorf("HexToHash = %s, want %s", parsed, h)
	}
	if _, err := HexToHash("abcd"); err == nil {
		t.Error("HexToHash(short) should fail")
	}
}
