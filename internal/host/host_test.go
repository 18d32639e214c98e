package host

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Klingon-tech/artdressup/internal/contract"
	"github.com/Klingon-tech/artdressup/internal/escrow"
	"github.com/Klingon-tech/artdressup/internal/ledger"
	"github.com/Klingon-tech/artdressup/internal/log"
	"github.com/Klingon-tech/artdressup/internal/reservation"
	"github.com/Klingon-tech/artdressup/internal/storage"
	"github.com/Klingon-tech/artdressup/pkg/crypto"
	"github.com/Klingon-tech/artdressup/pkg/types"
	"github.com/rs/zerolog"
)

const (
	contractAcct = types.AccountID("artdressup.testnet")
	operator     = types.AccountID("owner.testnet")
	alice        = types.AccountID("alice.testnet")
	bob          = types.AccountID("bob.testnet")
)

func newTestHost(t *testing.T, db storage.DB, cfg Config) *Host {
	t.Helper()
	if cfg.ContractID == "" {
		cfg.ContractID = contractAcct
	}
	h, err := New(db, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.logger = zerolog.Nop()
	h.SetClock(func() time.Time { return time.Unix(1700000000, 0) })
	alloc := map[types.AccountID]types.Amount{
		alice:    types.NEAR(100),
		bob:      types.NEAR(100),
		operator: types.NEAR(100),
	}
	ok, err := h.Genesis(contract.InitParams{Owner: operator, SequenceNumbering: true}, alloc)
	if err != nil || !ok {
		t.Fatalf("Genesis = (%v, %v)", ok, err)
	}
	return h
}

func args(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func outbox(t *testing.T, db storage.DB) []escrow.Transfer {
	t.Helper()
	pending, err := escrow.NewOutbox(db).Pending()
	if err != nil {
		t.Fatal(err)
	}
	return pending
}

func balance(t *testing.T, h *Host, account types.AccountID) types.Amount {
	t.Helper()
	b, err := h.Balance(account)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func reservations(t *testing.T, h *Host, account types.AccountID) ([]reservation.Reservation, bool) {
	t.Helper()
	var (
		rs []reservation.Reservation
		ok bool
	)
	err := h.View(func(c *contract.Contract) error {
		var err error
		rs, ok, err = c.GetReservations(account)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	return rs, ok
}

func TestGenesis_Once(t *testing.T) {
	db := storage.NewMemory()
	h := newTestHost(t, db, Config{})
	ok, err := h.Genesis(contract.InitParams{Owner: alice}, map[types.AccountID]types.Amount{alice: types.NEAR(1)})
	if err != nil || ok {
		t.Fatalf("second Genesis = (%v, %v), want (false, nil)", ok, err)
	}
	if b := balance(t, h, alice); b.Cmp(types.NEAR(100)) != 0 {
		t.Errorf("alice balance = %s NEAR, want 100", b.NEARString())
	}
}

func TestCall_CreateReservationMovesDeposit(t *testing.T) {
	db := storage.NewMemory()
	h := newTestHost(t, db, Config{})

	_, err := h.Call(alice, contract.MinReservationDeposit, MethodCreateReservation, args(t, CreateReservationArgs{TokenID: "tokenX"}))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if b := balance(t, h, alice); b.Cmp(types.NEAR(80)) != 0 {
		t.Errorf("alice balance = %s NEAR, want 80", b.NEARString())
	}
	if b := balance(t, h, contractAcct); b.Cmp(types.NEAR(20)) != 0 {
		t.Errorf("contract balance = %s NEAR, want 20", b.NEARString())
	}
	pending := outbox(t, db)
	if len(pending) != 1 || pending[0].To != contract.DefaultFeeAccount {
		t.Fatalf("outbox = %+v, want one fee transfer", pending)
	}
	rs, ok := reservations(t, h, alice)
	if !ok || len(rs) != 1 || rs[0].ReservationTime != uint64(time.Unix(1700000000, 0).UnixNano()) {
		t.Errorf("reservations = %+v", rs)
	}
}

func TestCall_FailureLeavesNoTrace(t *testing.T) {
	db := storage.NewMemory()
	h := newTestHost(t, db, Config{})
	if _, err := h.Call(alice, contract.MinReservationDeposit, MethodCreateReservation, args(t, CreateReservationArgs{TokenID: "tokenX"})); err != nil {
		t.Fatal(err)
	}
	before := balance(t, h, alice)

	_, err := h.Call(alice, contract.MinReservationDeposit, MethodCreateReservation, args(t, CreateReservationArgs{TokenID: "tokenX"}))
	if !errors.Is(err, contract.ErrDuplicateReservation) {
		t.Fatalf("error = %v, want ErrDuplicateReservation", err)
	}
	if after := balance(t, h, alice); after.Cmp(before) != 0 {
		t.Errorf("deposit kept after failed call: %s -> %s", before, after)
	}
	if n := len(outbox(t, db)); n != 1 {
		t.Errorf("outbox has %d transfers, want 1", n)
	}
}

func TestCall_InsufficientBalance(t *testing.T) {
	db := storage.NewMemory()
	h := newTestHost(t, db, Config{})
	_, err := h.Call("carol.testnet", contract.MinReservationDeposit, MethodCreateReservation, args(t, CreateReservationArgs{TokenID: "tokenX"}))
	if !errors.Is(err, escrow.ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}
	if _, ok := reservations(t, h, "carol.testnet"); ok {
		t.Error("reservation recorded without funds")
	}
}

func TestCall_MethodChecks(t *testing.T) {
	h := newTestHost(t, storage.NewMemory(), Config{})
	tests := []struct {
		name    string
		deposit types.Amount
		method  string
		args    json.RawMessage
		want    error
	}{
		{"unknown method", types.Zero, "nft_transfer", nil, ErrUnknownMethod},
		{"deposit on del_nft", types.NEAR(1), MethodDelNFT, json.RawMessage(`{"token_id":"x"}`), ErrNotPayable},
		{"malformed args", contract.MinReservationDeposit, MethodCreateReservation, json.RawMessage(`{"token_id":5}`), ErrInvalidArgs},
		{"non-owner clear", types.Zero, MethodDelReservations, json.RawMessage(`{"account_id":"alice.testnet"}`), contract.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Call(alice, tt.deposit, tt.method, tt.args)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCall_FullLifecycle(t *testing.T) {
	db := storage.NewMemory()
	h := newTestHost(t, db, Config{})

	if _, err := h.Call(alice, contract.MinReservationDeposit, MethodCreateReservation, args(t, CreateReservationArgs{TokenID: "tokenX"})); err != nil {
		t.Fatal(err)
	}
	sword := "Sword"
	res, err := h.Call(operator, types.Zero, MethodCompleteReservation, args(t, CompleteReservationArgs{
		AccountID: alice,
		TokenID:   "tokenX",
		Metadata:  ledger.TokenMetadata{Title: &sword},
	}))
	if err != nil {
		t.Fatalf("complete_reservation: %v", err)
	}
	tok := res.(*ledger.JSONToken)
	if *tok.Metadata.Title != "Sword #1" || tok.OwnerID != alice {
		t.Fatalf("minted %+v", tok)
	}
	if _, ok := reservations(t, h, alice); ok {
		t.Error("reservation survived completion")
	}

	d := escrow.NewDispatcher(h, contractAcct, time.Millisecond, zerolog.Nop())
	if paid, err := d.DispatchOnce(); err != nil || paid != 1 {
		t.Fatalf("DispatchOnce = (%d, %v), want (1, nil)", paid, err)
	}
	if b := balance(t, h, contract.DefaultFeeAccount); b.Cmp(contract.ReservationFee) != 0 {
		t.Errorf("fee account balance = %s, want %s", b, contract.ReservationFee)
	}

	if _, err := h.Call(bob, types.Zero, MethodDelNFT, args(t, DelNFTArgs{TokenID: "tokenX"})); !errors.Is(err, contract.ErrNotOwner) {
		t.Fatalf("bob burn error = %v, want ErrNotOwner", err)
	}
	if _, err := h.Call(alice, types.Zero, MethodDelNFT, args(t, DelNFTArgs{TokenID: "tokenX"})); err != nil {
		t.Fatalf("alice burn: %v", err)
	}
	if paid, err := d.DispatchOnce(); err != nil || paid != 1 {
		t.Fatalf("DispatchOnce refund = (%d, %v), want (1, nil)", paid, err)
	}
	if b := balance(t, h, alice); b.Cmp(types.NEAR(90)) != 0 {
		t.Errorf("alice balance = %s NEAR, want 90", b.NEARString())
	}
	if b := balance(t, h, contractAcct); b.Cmp(types.NEAR(1)) != 0 {
		t.Errorf("contract balance = %s NEAR, want 1", b.NEARString())
	}

	var counters contract.Counters
	_ = h.View(func(c *contract.Contract) error {
		var err error
		counters, err = c.Counters()
		return err
	})
	if counters.MintSequence != 1 || counters.Burned != 1 {
		t.Errorf("counters = %+v, want mint 1 burned 1", counters)
	}
}

func TestCall_Badger(t *testing.T) {
	db, err := storage.NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	defer db.Close()
	h := newTestHost(t, db, Config{})

	if _, err := h.Call(alice, contract.MinReservationDeposit, MethodCreateReservation, args(t, CreateReservationArgs{TokenID: "tokenX"})); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Call(alice, types.Zero, MethodCreateReservation, args(t, CreateReservationArgs{TokenID: "tokenY"})); !errors.Is(err, contract.ErrInsufficientDeposit) {
		t.Fatalf("error = %v, want ErrInsufficientDeposit", err)
	}
	rs, ok := reservations(t, h, alice)
	if !ok || len(rs) != 1 || rs[0].TokenID != "tokenX" {
		t.Errorf("reservations = %+v, want [tokenX]", rs)
	}
}

func TestSubmit_ImplicitAccount(t *testing.T) {
	db := storage.NewMemory()
	h := newTestHost(t, db, Config{})
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	caller := crypto.ImplicitAccount(key.PublicKey())
	if err := h.Exclusive(func(db storage.DB) error {
		return escrow.NewBook(db).Credit(caller, types.NEAR(50))
	}); err != nil {
		t.Fatal(err)
	}

	env := &Envelope{
		Caller:  caller,
		Method:  MethodCreateReservation,
		Args:    args(t, CreateReservationArgs{TokenID: "tokenX"}),
		Deposit: contract.MinReservationDeposit,
		Nonce:   1,
	}
	if err := env.Sign(key); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Submit(env); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if n, _ := h.Nonce(caller); n != 1 {
		t.Errorf("nonce = %d, want 1", n)
	}

	// Replaying the same envelope fails on the nonce.
	if _, err := h.Submit(env); !errors.Is(err, ErrBadNonce) {
		t.Fatalf("replay error = %v, want ErrBadNonce", err)
	}

	// Tampering breaks the signature.
	env.Nonce = 2
	if _, err := h.Submit(env); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("tampered error = %v, want ErrBadSignature", err)
	}
}

func TestSubmit_NamedAccount(t *testing.T) {
	key, _ := crypto.GenerateKey()
	stranger, _ := crypto.GenerateKey()
	pub := hexKey(key)
	h := newTestHost(t, storage.NewMemory(), Config{AccessKeys: map[types.AccountID][]string{operator: {pub}}})

	env := &Envelope{
		Caller: operator,
		Method: MethodDelReservations,
		Args:   args(t, DelReservationsArgs{AccountID: alice}),
		Nonce:  1,
	}
	if err := env.Sign(stranger); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Submit(env); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("stranger error = %v, want ErrUnknownKey", err)
	}

	if err := env.Sign(key); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Submit(env); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestSubmit_FailedCallKeepsNonce(t *testing.T) {
	key, _ := crypto.GenerateKey()
	h := newTestHost(t, storage.NewMemory(), Config{AccessKeys: map[types.AccountID][]string{alice: {hexKey(key)}}})

	env := &Envelope{
		Caller: alice,
		Method: MethodDelReservations,
		Args:   args(t, DelReservationsArgs{AccountID: bob}),
		Nonce:  5,
	}
	if err := env.Sign(key); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Submit(env); !errors.Is(err, contract.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	if n, _ := h.Nonce(alice); n != 0 {
		t.Errorf("nonce = %d after failed call, want 0", n)
	}
}

func TestNew_RejectsBadAccessKey(t *testing.T) {
	_, err := New(storage.NewMemory(), Config{
		ContractID: contractAcct,
		AccessKeys: map[types.AccountID][]string{alice: {"zz"}},
	})
	if err == nil {
		t.Fatal("New accepted a malformed access key")
	}
}

func TestSigningHash_Canonical(t *testing.T) {
	base := &Envelope{Caller: alice, Method: MethodDelReservations, Args: json.RawMessage(`{"account_id":"bob.testnet","extra":1}`), Deposit: types.Zero, Nonce: 1}
	want, err := base.SigningHash()
	if err != nil {
		t.Fatal(err)
	}
	variants := []string{
		`{"account_id": "bob.testnet", "extra": 1}`,
		`{"extra":1,"account_id":"bob.testnet"}`,
		"{\n  \"extra\": 1,\n  \"account_id\": \"bob.testnet\"\n}",
	}
	for _, v := range variants {
		e := *base
		e.Args = json.RawMessage(v)
		got, err := e.SigningHash()
		if err != nil {
			t.Fatalf("SigningHash(%s): %v", v, err)
		}
		if got != want {
			t.Errorf("SigningHash(%s) differs from compact form", v)
		}
	}

	other := *base
	other.Args = json.RawMessage(`{"account_id":"carol.testnet","extra":1}`)
	if h, _ := other.SigningHash(); h == want {
		t.Error("different args produced the same hash")
	}
	bad := *base
	bad.Args = json.RawMessage(`{"account_id":`)
	if _, err := bad.SigningHash(); !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("malformed args error = %v, want ErrInvalidArgs", err)
	}
}

func hexKey(k *crypto.PrivateKey) string {
	return hex.EncodeToString(k.PublicKey())
}

func TestCall_InvalidIDs(t *testing.T) {
	db := storage.NewMemory()
	h := newTestHost(t, db, Config{})
	tests := []struct {
		name    string
		caller  types.AccountID
		deposit types.Amount
		method  string
		args    json.RawMessage
		want    error
	}{
		{"empty reservation id", alice, contract.MinReservationDeposit, MethodCreateReservation, json.RawMessage(`{"token_id":""}`), types.ErrInvalidTokenID},
		{"missing reservation id", alice, contract.MinReservationDeposit, MethodCreateReservation, nil, types.ErrInvalidTokenID},
		{"bad completion account", operator, types.Zero, MethodCompleteReservation, json.RawMessage(`{"account_id":"A","token_id":"x","metadata":{"title":"t"}}`), types.ErrInvalidAccountID},
		{"empty burn id", alice, types.Zero, MethodDelNFT, json.RawMessage(`{"token_id":""}`), types.ErrInvalidTokenID},
		{"bad clear account", operator, types.Zero, MethodDelReservations, json.RawMessage(`{"account_id":"-x"}`), types.ErrInvalidAccountID},
		{"bad new owner", operator, types.Zero, MethodSetOwnerID, json.RawMessage(`{"new_owner_id":""}`), types.ErrInvalidAccountID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := balance(t, h, tt.caller)
			_, err := h.Call(tt.caller, tt.deposit, tt.method, tt.args)
			if !errors.Is(err, ErrInvalidArgs) || !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want ErrInvalidArgs wrapping %v", err, tt.want)
			}
			if got := balance(t, h, tt.caller); got.Cmp(before) != 0 {
				t.Errorf("balance moved from %s to %s", before, got)
			}
		})
	}
	if n := len(outbox(t, db)); n != 0 {
		t.Errorf("outbox has %d transfers after rejected calls", n)
	}
}

func TestCall_LogsCallerAccount(t *testing.T) {
	h := newTestHost(t, storage.NewMemory(), Config{})
	var hostBuf, contractBuf bytes.Buffer
	h.logger = log.NewJSONLogger(&hostBuf, "debug")
	h.callLogger = log.NewJSONLogger(&contractBuf, "debug")

	if _, err := h.Call(alice, contract.MinReservationDeposit, MethodCreateReservation, args(t, CreateReservationArgs{TokenID: "logged"})); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Call(alice, types.Zero, MethodDelNFT, args(t, DelNFTArgs{TokenID: "missing"})); err == nil {
		t.Fatal("expected del_nft of a missing token to fail")
	}

	entries := decodeLogLines(t, &hostBuf)
	if len(entries) != 2 {
		t.Fatalf("host log has %d entries, want 2: %s", len(entries), hostBuf.String())
	}
	committed, rejected := entries[0], entries[1]
	if committed["message"] != "Call committed" || committed["account"] != string(alice) || committed["method"] != MethodCreateReservation {
		t.Errorf("committed entry = %v", committed)
	}
	// Nonce-less call: reservation entry, vector length and record, the
	// outbox transfer and two balances.
	if w, _ := committed["writes"].(float64); w < 4 {
		t.Errorf("writes = %v, want at least 4", committed["writes"])
	}
	if rejected["message"] != "Call rejected" || rejected["account"] != string(alice) {
		t.Errorf("rejected entry = %v", rejected)
	}

	var created map[string]interface{}
	for _, e := range decodeLogLines(t, &contractBuf) {
		if e["message"] == "Reservation created" {
			created = e
		}
	}
	if created == nil || created["account"] != string(alice) || created["token_id"] != "logged" {
		t.Errorf("contract entry = %v, want account and token_id", created)
	}
}

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var e map[string]interface{}
		if err := json.Unmarshal(line, &e); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		out = append(out, e)
	}
	return out
}
