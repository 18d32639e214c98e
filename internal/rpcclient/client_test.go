package rpcclient

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/Klingon-tech/artdressup/internal/contract"
	"github.com/Klingon-tech/artdressup/internal/escrow"
	"github.com/Klingon-tech/artdressup/internal/host"
	"github.com/Klingon-tech/artdressup/internal/ledger"
	klog "github.com/Klingon-tech/artdressup/internal/log"
	"github.com/Klingon-tech/artdressup/internal/rpc"
	"github.com/Klingon-tech/artdressup/internal/storage"
	"github.com/Klingon-tech/artdressup/pkg/crypto"
	"github.com/Klingon-tech/artdressup/pkg/types"
	"github.com/rs/zerolog"
)

const (
	contractAcct = types.AccountID("artdressup.testnet")
	operator     = types.AccountID("owner.testnet")
)

type testEnv struct {
	client   *Client
	host     *host.Host
	opKey    *crypto.PrivateKey
	userKey  *crypto.PrivateKey
	userAcct types.AccountID
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	opKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	userKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	userAcct := crypto.ImplicitAccount(userKey.PublicKey())

	h, err := host.New(storage.NewMemory(), host.Config{
		ContractID: contractAcct,
		AccessKeys: map[types.AccountID][]string{
			operator: {hex.EncodeToString(opKey.PublicKey())},
		},
	})
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	alloc := map[types.AccountID]types.Amount{
		userAcct: types.NEAR(50),
		operator: types.NEAR(10),
	}
	if _, err := h.Genesis(contract.InitParams{Owner: operator, SequenceNumbering: true}, alloc); err != nil {
		t.Fatalf("genesis: %v", err)
	}

	srv := rpc.New("127.0.0.1:0", h)
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		client:   New("http://" + srv.Addr() + "/"),
		host:     h,
		opKey:    opKey,
		userKey:  userKey,
		userAcct: userAcct,
	}
}

func TestClient_ReserveMintBurn(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client

	if err := c.CreateReservation(env.userKey, env.userAcct, "hat-7", types.NEAR(20)); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	list, ok, err := c.GetReservations(env.userAcct)
	if err != nil || !ok || len(list) != 1 || list[0].TokenID != "hat-7" {
		t.Fatalf("GetReservations = (%v, %v, %v)", list, ok, err)
	}

	title := "Hat"
	tok, err := c.CompleteReservation(env.opKey, operator, env.userAcct, "hat-7", ledger.TokenMetadata{Title: &title}, types.Zero)
	if err != nil {
		t.Fatalf("CompleteReservation: %v", err)
	}
	if tok.OwnerID != env.userAcct || *tok.Metadata.Title != "Hat #1" {
		t.Errorf("minted token = %+v", tok)
	}

	if _, ok, _ := c.GetReservations(env.userAcct); ok {
		t.Error("reservation still present after completion")
	}
	got, err := c.Token("hat-7")
	if err != nil || got.OwnerID != env.userAcct {
		t.Fatalf("Token = (%+v, %v)", got, err)
	}
	toks, err := c.TokensForOwner(env.userAcct, 0, 0)
	if err != nil || len(toks) != 1 {
		t.Errorf("TokensForOwner = (%d, %v), want 1", len(toks), err)
	}
	if n, err := c.TotalSupply(); err != nil || n != 1 {
		t.Errorf("TotalSupply = (%d, %v), want 1", n, err)
	}

	if err := c.DelNFT(env.userKey, env.userAcct, "hat-7"); err != nil {
		t.Fatalf("DelNFT: %v", err)
	}
	err = c.DelNFT(env.userKey, env.userAcct, "hat-7")
	if !IsKind(err, "token_not_found") {
		t.Errorf("second DelNFT error = %v, want token_not_found", err)
	}

	counters, err := c.Counters()
	if err != nil {
		t.Fatal(err)
	}
	if counters.MintSequence != 1 || counters.Burned != 1 {
		t.Errorf("counters = %+v", counters)
	}
	if n, _ := c.Nonce(env.userAcct); n != 2 {
		t.Errorf("nonce = %d, want 2", n)
	}

	// Pay out the fee and the refund.
	d := escrow.NewDispatcher(env.host, contractAcct, 0, zerolog.Nop())
	if n, err := d.DispatchOnce(); err != nil || n != 2 {
		t.Fatalf("DispatchOnce = (%d, %v), want 2 transfers", n, err)
	}
	bal, err := c.Balance(env.userAcct)
	if err != nil {
		t.Fatal(err)
	}
	if bal.Balance.Cmp(types.NEAR(40)) != 0 {
		t.Errorf("user balance = %s NEAR, want 40", bal.NEAR)
	}
	fee, _ := c.Balance(contract.DefaultFeeAccount)
	if fee.Balance.Cmp(contract.ReservationFee) != 0 {
		t.Errorf("fee account balance = %s NEAR, want 9", fee.NEAR)
	}
}

func TestClient_OwnerAndMetadata(t *testing.T) {
	env := setupTestEnv(t)
	c := env.client

	owner, err := c.OwnerID()
	if err != nil || owner != operator {
		t.Fatalf("OwnerID = (%s, %v)", owner, err)
	}
	meta, err := c.Metadata()
	if err != nil || meta.Symbol != "ADU" {
		t.Fatalf("Metadata = (%+v, %v)", meta, err)
	}

	_, err = c.SetOwnerID(env.userKey, env.userAcct, env.userAcct)
	if !IsKind(err, "unauthorized") {
		t.Errorf("SetOwnerID by non-owner error = %v, want unauthorized", err)
	}
	next := types.AccountID("next-owner.testnet")
	got, err := c.SetOwnerID(env.opKey, operator, next)
	if err != nil || got != next {
		t.Fatalf("SetOwnerID = (%s, %v)", got, err)
	}
	if owner, _ := c.OwnerID(); owner != next {
		t.Errorf("owner = %s, want %s", owner, next)
	}
}

func TestClient_RejectedCall(t *testing.T) {
	env := setupTestEnv(t)

	err := env.client.CreateReservation(env.userKey, env.userAcct, "cheap", types.NEAR(5))
	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != rpc.CodePrecondition || rpcErr.Kind != "insufficient_deposit" {
		t.Errorf("error = %+v", rpcErr)
	}
	if n, _ := env.client.Nonce(env.userAcct); n != 0 {
		t.Errorf("nonce after rejected call = %d, want 0", n)
	}
}

func TestClient_Call_InvalidEndpoint(t *testing.T) {
	client := New("http://127.0.0.1:1/") // nothing listens on port 1

	var result rpc.SupplyResult
	err := client.Call("nft_totalSupply", nil, &result)
	if err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClient_Call_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	var raw json.RawMessage
	err := env.client.Call("nonexistent_method", nil, &raw)
	if err == nil {
		t.Fatal("expected error for unknown method")
	}

	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32601 {
		t.Errorf("error code = %d, want -32601", rpcErr.Code)
	}
	if rpcErr.Kind != "" {
		t.Errorf("kind = %q, want empty", rpcErr.Kind)
	}
}

func TestRPCError_FromWire(t *testing.T) {
	tests := []struct {
		name     string
		wire     string
		wantKind string
		wantMsg  string
	}{
		{"contract error", `{"code":-32002,"message":"too little","data":{"kind":"insufficient_deposit"}}`,
			"insufficient_deposit", "rpc error -32002 (insufficient_deposit): too little"},
		{"no data", `{"code":-32601,"message":"method not found"}`,
			"", "rpc error -32601: method not found"},
		{"null data", `{"code":-32603,"message":"boom","data":null}`,
			"", "rpc error -32603: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var wire rpcError
			if err := json.Unmarshal([]byte(tt.wire), &wire); err != nil {
				t.Fatal(err)
			}
			re := wire.toRPCError()
			if re.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", re.Kind, tt.wantKind)
			}
			if re.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", re.Error(), tt.wantMsg)
			}
		})
	}
}

func TestIsKind_Wrapped(t *testing.T) {
	err := fmt.Errorf("reserve: %w", &RPCError{Code: -32000, Kind: "token_not_found"})
	if !IsKind(err, "token_not_found") {
		t.Error("IsKind should see through wrapping")
	}
	if IsKind(err, "not_owner") {
		t.Error("IsKind matched the wrong kind")
	}
	if IsKind(fmt.Errorf("plain"), "token_not_found") {
		t.Error("IsKind matched a non-RPC error")
	}
}
