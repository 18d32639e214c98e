// derive_key.go prints the signing key, pubkey and implicit account for a
// mnemonic. It produces the testnet operator constants in config.
// Usage: go run scripts/derive_key.go "<mnemonic>" [slot]
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/Klingon-tech/artdressup/internal/keys"
	"github.com/Klingon-tech/artdressup/pkg/crypto"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_key \"<mnemonic>\" [slot]")
		os.Exit(1)
	}
	var slot uint64
	if len(os.Args) > 2 {
		var err error
		slot, err = strconv.ParseUint(os.Args[2], 10, 32)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	key, err := keys.KeyFromMnemonic(os.Args[1], "", uint32(slot))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	pub := key.PublicKey()
	fmt.Printf("privkey=%s\n", hex.EncodeToString(key.Serialize()))
	fmt.Printf("pubkey=%s\n", hex.EncodeToString(pub))
	fmt.Printf("account=%s\n", crypto.ImplicitAccount(pub))
}
