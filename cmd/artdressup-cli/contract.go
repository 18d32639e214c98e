package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/Klingon-tech/artdressup/internal/contract"
	"github.com/Klingon-tech/artdressup/internal/ledger"
	"github.com/Klingon-tech/artdressup/internal/rpcclient"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// ── Calls ───────────────────────────────────────────────────────────────

func cmdReserve(client *rpcclient.Client, args []string, ksDir string) {
	fs := flag.NewFlagSet("reserve", flag.ExitOnError)
	keyName := fs.String("key", "", "Key to sign with")
	tokenID := fs.String("token", "", "Token id to reserve")
	depositStr := fs.String("deposit", contract.MinReservationDeposit.NEARString(), "Attached deposit in NEAR")
	fs.Parse(args)

	if *keyName == "" || *tokenID == "" {
		fatal("Usage: artdressup-cli reserve --key <name> --token <id> [--deposit <NEAR>]")
	}
	if err := types.TokenID(*tokenID).Validate(); err != nil {
		fatal("%v", err)
	}
	deposit, err := types.ParseNEAR(*depositStr)
	if err != nil {
		fatal("invalid deposit: %v", err)
	}

	key, caller := unlockKey(ksDir, *keyName)
	defer key.Zero()
	if err := client.CreateReservation(key, caller, types.TokenID(*tokenID), deposit); err != nil {
		fatal("create_reservation: %v", err)
	}

	fmt.Printf("Reserved %s for %s (%s NEAR attached)\n", *tokenID, caller, deposit.NEARString())
}

// metadataFlags are the per-field overrides of complete.
type metadataFlags struct {
	file          string
	title         string
	description   string
	media         string
	mediaHash     string
	copies        uint64
	extra         string
	reference     string
	referenceHash string
}

func (f *metadataFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.file, "metadata", "", "JSON file with token metadata")
	fs.StringVar(&f.title, "title", "", "Token title")
	fs.StringVar(&f.description, "description", "", "Token description")
	fs.StringVar(&f.media, "media", "", "Media URL")
	fs.StringVar(&f.mediaHash, "media-hash", "", "Media hash (base64 sha256)")
	fs.Uint64Var(&f.copies, "copies", 0, "Number of copies")
	fs.StringVar(&f.extra, "extra", "", "Extra data")
	fs.StringVar(&f.reference, "reference", "", "Reference URL")
	fs.StringVar(&f.referenceHash, "reference-hash", "", "Reference hash (base64 sha256)")
}

// build loads the metadata file, if any, and applies the set flags on top.
func (f *metadataFlags) build() (ledger.TokenMetadata, error) {
	var meta ledger.TokenMetadata
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return meta, fmt.Errorf("read metadata: %w", err)
		}
		if err := json.Unmarshal(data, &meta); err != nil {
			return meta, fmt.Errorf("parse metadata: %w", err)
		}
	}
	set := func(dst **string, v string) {
		if v != "" {
			s := v
			*dst = &s
		}
	}
	set(&meta.Title, f.title)
	set(&meta.Description, f.description)
	set(&meta.Media, f.media)
	set(&meta.MediaHash, f.mediaHash)
	set(&meta.Extra, f.extra)
	set(&meta.Reference, f.reference)
	set(&meta.ReferenceHash, f.referenceHash)
	if f.copies > 0 {
		n := f.copies
		meta.Copies = &n
	}
	if meta.Title == nil {
		return meta, fmt.Errorf("title is required")
	}
	if err := meta.Validate(); err != nil {
		return meta, err
	}
	return meta, nil
}

func cmdComplete(client *rpcclient.Client, args []string, ksDir string) {
	fs := flag.NewFlagSet("complete", flag.ExitOnError)
	keyName := fs.String("key", "", "Owner key to sign with")
	account := fs.String("account", "", "Account holding the reservation")
	tokenID := fs.String("token", "", "Reserved token id")
	depositStr := fs.String("deposit", "0", "Attached deposit in NEAR")
	var mf metadataFlags
	mf.register(fs)
	fs.Parse(args)

	if *keyName == "" || *account == "" || *tokenID == "" {
		fmt.Fprintf(os.Stderr, `Usage: artdressup-cli complete [flags]

Required:
  --key <name>        Owner key to sign with
  --account <id>      Account holding the reservation
  --token <id>        Reserved token id
  --title <t>         Token title (or "title" in --metadata)

Optional:
  --metadata <file>   JSON token metadata; flags override its fields
  --description, --media, --media-hash, --copies,
  --extra, --reference, --reference-hash
  --deposit <NEAR>    Attached deposit (default: 0)
`)
		os.Exit(1)
	}

	meta, err := mf.build()
	if err != nil {
		fatal("metadata: %v", err)
	}
	deposit, err := types.ParseNEAR(*depositStr)
	if err != nil {
		fatal("invalid deposit: %v", err)
	}

	key, caller := unlockKey(ksDir, *keyName)
	defer key.Zero()
	tok, err := client.CompleteReservation(key, caller, types.AccountID(*account), types.TokenID(*tokenID), meta, deposit)
	if err != nil {
		fatal("complete_reservation: %v", err)
	}

	fmt.Println("Token minted!")
	printJSON(tok)
}

func cmdBurn(client *rpcclient.Client, args []string, ksDir string) {
	fs := flag.NewFlagSet("burn", flag.ExitOnError)
	keyName := fs.String("key", "", "Key of the token owner")
	tokenID := fs.String("token", "", "Token id to burn")
	fs.Parse(args)

	if *keyName == "" || *tokenID == "" {
		fatal("Usage: artdressup-cli burn --key <name> --token <id>")
	}

	key, caller := unlockKey(ksDir, *keyName)
	defer key.Zero()
	if err := client.DelNFT(key, caller, types.TokenID(*tokenID)); err != nil {
		fatal("del_nft: %v", err)
	}

	fmt.Printf("Burned %s, %s NEAR refund scheduled to %s\n", *tokenID, contract.BurnRefund.NEARString(), caller)
}

func cmdClear(client *rpcclient.Client, args []string, ksDir string) {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	keyName := fs.String("key", "", "Owner key to sign with")
	account := fs.String("account", "", "Account whose reservations are deleted")
	fs.Parse(args)

	if *keyName == "" || *account == "" {
		fatal("Usage: artdressup-cli clear --key <name> --account <id>")
	}

	key, caller := unlockKey(ksDir, *keyName)
	defer key.Zero()
	if err := client.DelReservations(key, caller, types.AccountID(*account)); err != nil {
		fatal("del_reservations: %v", err)
	}

	fmt.Printf("Reservations of %s deleted\n", *account)
}

func cmdOwner(client *rpcclient.Client, args []string, ksDir string) {
	if len(args) == 0 {
		owner, err := client.OwnerID()
		if err != nil {
			fatal("contract_getOwnerId: %v", err)
		}
		fmt.Println(owner)
		return
	}
	if args[0] != "set" {
		fatal("Usage: artdressup-cli owner [set --key <name> --to <id>]")
	}

	fs := flag.NewFlagSet("owner set", flag.ExitOnError)
	keyName := fs.String("key", "", "Current owner key")
	to := fs.String("to", "", "New owner account")
	fs.Parse(args[1:])

	if *keyName == "" || *to == "" {
		fatal("Usage: artdressup-cli owner set --key <name> --to <id>")
	}

	key, caller := unlockKey(ksDir, *keyName)
	defer key.Zero()
	owner, err := client.SetOwnerID(key, caller, types.AccountID(*to))
	if err != nil {
		fatal("set_owner_id: %v", err)
	}
	fmt.Printf("Owner is now %s\n", owner)
}

// ── Views ───────────────────────────────────────────────────────────────

func cmdReservations(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: artdressup-cli reservations <account>")
	}
	list, ok, err := client.GetReservations(types.AccountID(args[0]))
	if err != nil {
		fatal("contract_getReservations: %v", err)
	}
	if !ok {
		fmt.Println("No reservations.")
		return
	}
	for _, r := range list {
		fmt.Printf("%-24s reserved at %d\n", r.TokenID, r.ReservationTime)
	}
}

func cmdCounters(client *rpcclient.Client) {
	counters, err := client.Counters()
	if err != nil {
		fatal("contract_getCounters: %v", err)
	}
	if counters.SequenceEnabled {
		fmt.Printf("Mint sequence: %d\n", counters.MintSequence)
	} else {
		fmt.Println("Mint sequence: disabled")
	}
	fmt.Printf("Burned:        %d\n", counters.Burned)
}

func cmdMetadata(client *rpcclient.Client) {
	meta, err := client.Metadata()
	if err != nil {
		fatal("nft_metadata: %v", err)
	}
	printJSON(meta)
}

func cmdToken(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: artdressup-cli token <id>")
	}
	tok, err := client.Token(types.TokenID(args[0]))
	if err != nil {
		fatal("nft_token: %v", err)
	}
	printJSON(tok)
}

func cmdTokens(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("tokens", flag.ExitOnError)
	owner := fs.String("owner", "", "Only list tokens of this account")
	from := fs.Uint64("from", 0, "Start index")
	limit := fs.Uint64("limit", 0, "Max tokens (0 = default)")
	fs.Parse(args)

	var (
		toks []*ledger.JSONToken
		err  error
	)
	if *owner != "" {
		toks, err = client.TokensForOwner(types.AccountID(*owner), *from, *limit)
	} else {
		toks, err = client.Tokens(*from, *limit)
	}
	if err != nil {
		fatal("list tokens: %v", err)
	}
	if len(toks) == 0 {
		fmt.Println("No tokens.")
		return
	}
	for _, t := range toks {
		title := ""
		if t.Metadata != nil && t.Metadata.Title != nil {
			title = *t.Metadata.Title
		}
		fmt.Printf("%-24s %-40s %s\n", t.TokenID, t.OwnerID, title)
	}
}

func cmdSupply(client *rpcclient.Client, args []string) {
	var (
		n   uint64
		err error
	)
	if len(args) > 0 {
		n, err = client.SupplyForOwner(types.AccountID(args[0]))
	} else {
		n, err = client.TotalSupply()
	}
	if err != nil {
		fatal("supply: %v", err)
	}
	fmt.Println(strconv.FormatUint(n, 10))
}

func cmdBalance(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: artdressup-cli balance <account>")
	}
	bal, err := client.Balance(types.AccountID(args[0]))
	if err != nil {
		fatal("account_getBalance: %v", err)
	}
	fmt.Printf("Account: %s\n", bal.AccountID)
	fmt.Printf("Balance: %s NEAR (%s yocto)\n", bal.NEAR, bal.Balance)
}

func cmdNonce(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: artdressup-cli nonce <account>")
	}
	n, err := client.Nonce(types.AccountID(args[0]))
	if err != nil {
		fatal("account_getNonce: %v", err)
	}
	fmt.Println(n)
}
