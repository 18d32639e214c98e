// artdressup-cli is a command-line client for an artdressupd node.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Klingon-tech/artdressup/config"
	"github.com/Klingon-tech/artdressup/internal/rpcclient"
	"golang.org/x/term"
)

// keystoreDir returns the keystore path matching artdressupd's layout:
// <datadir>/<network>/keystore
func keystoreDir(dataDir, network string) string {
	return filepath.Join(dataDir, network, "keystore")
}

// defaultRPCURL returns the local node endpoint for network.
func defaultRPCURL(network string) string {
	port := config.Default(config.NetworkType(network)).RPC.Port
	return fmt.Sprintf("http://127.0.0.1:%d", port)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	rpcURL := ""
	dataDir := config.DefaultDataDir()
	network := "mainnet"

	// Scan for --rpc, --datadir and --network before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		case args[0] == "--testnet":
			network = "testnet"
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if network != "mainnet" && network != "testnet" {
		fatal("unknown network %q (want mainnet or testnet)", network)
	}
	if rpcURL == "" {
		rpcURL = defaultRPCURL(network)
	}
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	ksDir := keystoreDir(dataDir, network)
	client := rpcclient.New(rpcURL)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "keys":
		cmdKeys(cmdArgs, ksDir)
	case "reserve":
		cmdReserve(client, cmdArgs, ksDir)
	case "reservations":
		cmdReservations(client, cmdArgs)
	case "complete":
		cmdComplete(client, cmdArgs, ksDir)
	case "burn":
		cmdBurn(client, cmdArgs, ksDir)
	case "clear":
		cmdClear(client, cmdArgs, ksDir)
	case "owner":
		cmdOwner(client, cmdArgs, ksDir)
	case "counters":
		cmdCounters(client)
	case "metadata":
		cmdMetadata(client)
	case "token":
		cmdToken(client, cmdArgs)
	case "tokens":
		cmdTokens(client, cmdArgs)
	case "supply":
		cmdSupply(client, cmdArgs)
	case "balance":
		cmdBalance(client, cmdArgs)
	case "nonce":
		cmdNonce(client, cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: artdressup-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         RPC endpoint (default: http://127.0.0.1:3030, testnet :3130)
  --datadir <path>    Data directory (default: ~/.artdressup)
  --network <net>     mainnet (default) or testnet
  --testnet           Shorthand for --network=testnet

Keys:
  keys new --name <n> [--account <id>] [--slot <n>]
                                  Generate a mnemonic and store its key
  keys import --name <n> --mnemonic "..." [--account <id>] [--slot <n>]
                                  Import a key from a mnemonic
  keys list                       List stored keys
  keys show <name>                Show a stored key
  keys delete <name>              Delete a stored key

Reservations:
  reserve --key <k> --token <id> [--deposit <NEAR>]
                                  Reserve a token (deposit default: 20 NEAR)
  reservations <account>          Show reservations of an account
  complete --key <k> --account <id> --token <id> --title <t> [opts]
                                  Mint a reserved token (owner only)
  clear --key <k> --account <id>  Delete all reservations of an account (owner only)
  burn --key <k> --token <id>     Burn a token you own (10 NEAR refund)

Contract:
  owner                           Show the contract owner
  owner set --key <k> --to <id>   Transfer ownership (owner only)
  counters                        Show mint sequence and burn counters
  metadata                        Show collection metadata
  token <id>                      Show a minted token
  tokens [--owner <id>] [--from <n>] [--limit <n>]
                                  List minted tokens
  supply [<account>]              Show total supply or supply of an account

Accounts:
  balance <account>               Show account balance
  nonce <account>                 Show last used nonce
`)
}

// ── Output helpers ──────────────────────────────────────────────────────

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal("encode output: %v", err)
	}
	fmt.Println(string(data))
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
