package main

import (
	"flag"
	"fmt"

	"github.com/Klingon-tech/artdressup/internal/keys"
	"github.com/Klingon-tech/artdressup/pkg/crypto"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

func cmdKeys(args []string, ksDir string) {
	if len(args) < 1 {
		fatal("Usage: artdressup-cli keys <new|import|list|show|delete> [flags]")
	}

	switch args[0] {
	case "new":
		cmdKeysNew(args[1:], ksDir)
	case "import":
		cmdKeysImport(args[1:], ksDir)
	case "list":
		cmdKeysList(ksDir)
	case "show":
		cmdKeysShow(args[1:], ksDir)
	case "delete":
		cmdKeysDelete(args[1:], ksDir)
	default:
		fatal("Unknown keys command: %s\nUsage: artdressup-cli keys <new|import|list|show|delete> [flags]", args[0])
	}
}

func cmdKeysNew(args []string, ksDir string) {
	fs := flag.NewFlagSet("keys new", flag.ExitOnError)
	name := fs.String("name", "", "Key name")
	account := fs.String("account", "", "Named account the key signs for (default: implicit account)")
	slot := fs.Uint("slot", 0, "HD account slot")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: artdressup-cli keys new --name <name> [--account <id>] [--slot <n>]")
	}

	mnemonic, err := keys.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	storeKey(ksDir, *name, mnemonic, uint32(*slot), types.AccountID(*account))
}

func cmdKeysImport(args []string, ksDir string) {
	fs := flag.NewFlagSet("keys import", flag.ExitOnError)
	name := fs.String("name", "", "Key name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	account := fs.String("account", "", "Named account the key signs for (default: implicit account)")
	slot := fs.Uint("slot", 0, "HD account slot")
	fs.Parse(args)

	if *name == "" || *mnemonic == "" {
		fatal("Usage: artdressup-cli keys import --name <name> --mnemonic \"word1 word2 ...\"")
	}
	if !keys.ValidateMnemonic(*mnemonic) {
		fatal("invalid mnemonic")
	}

	storeKey(ksDir, *name, *mnemonic, uint32(*slot), types.AccountID(*account))
}

func storeKey(ksDir, name, mnemonic string, slot uint32, account types.AccountID) {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}

	ks, err := keys.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	info, err := ks.Create(name, mnemonic, slot, account, password, keys.DefaultParams())
	if err != nil {
		fatal("store key: %v", err)
	}

	fmt.Printf("Key stored: %s\n", info.Name)
	fmt.Printf("Account:    %s\n", info.AccountID)
	fmt.Printf("Public key: %s\n", info.PublicKey)
}

func cmdKeysList(ksDir string) {
	ks, err := keys.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	infos, err := ks.List()
	if err != nil {
		fatal("list keys: %v", err)
	}
	if len(infos) == 0 {
		fmt.Println("No keys found.")
		return
	}
	for _, info := range infos {
		fmt.Printf("%-16s %s\n", info.Name, info.AccountID)
	}
}

func cmdKeysShow(args []string, ksDir string) {
	if len(args) < 1 {
		fatal("Usage: artdressup-cli keys show <name>")
	}
	ks, err := keys.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	info, err := ks.Info(args[0])
	if err != nil {
		fatal("%v", err)
	}
	printJSON(info)
}

func cmdKeysDelete(args []string, ksDir string) {
	if len(args) < 1 {
		fatal("Usage: artdressup-cli keys delete <name>")
	}
	ks, err := keys.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	if err := ks.Delete(args[0]); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Key deleted: %s\n", args[0])
}

// unlockKey prompts for the password of a stored key and returns the
// private key with the account it signs for.
func unlockKey(ksDir, name string) (*crypto.PrivateKey, types.AccountID) {
	ks, err := keys.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	key, info, err := ks.Load(name, password)
	if err != nil {
		fatal("unlock key %s: %v", name, err)
	}
	return key, info.AccountID
}
