package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Klingon-tech/artdressup/pkg/types"
)

func TestContractGenesis_DefaultsValid(t *testing.T) {
	for _, network := range []NetworkType{Mainnet, Testnet} {
		if err := ContractGenesisFor(network).Validate(); err != nil {
			t.Errorf("%s genesis invalid: %v", network, err)
		}
	}
}

func TestTestnetImplicitAccount_IsImplicit(t *testing.T) {
	if !types.AccountID(TestnetImplicitAccount).IsImplicit() {
		t.Errorf("%s is not an implicit account id", TestnetImplicitAccount)
	}
}

func TestContractGenesis_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ContractGenesis)
		wantErr bool
	}{
		{"bad contract id", func(g *ContractGenesis) { g.ContractID = "Bad!" }, true},
		{"missing owner", func(g *ContractGenesis) { g.Owner = "" }, true},
		{"bad fee account", func(g *ContractGenesis) { g.FeeAccount = "-x" }, true},
		{"bad alloc account", func(g *ContractGenesis) { g.Alloc["UPPER"] = types.NEAR(1) }, true},
		{"short access key", func(g *ContractGenesis) { g.AccessKeys["bob.testnet"] = []string{"02ab"} }, true},
		{"implicit access key", func(g *ContractGenesis) {
			g.AccessKeys[TestnetImplicitAccount] = []string{TestnetOperatorPubKey}
		}, true},
		{"metadata without symbol", func(g *ContractGenesis) { g.Metadata.Symbol = "" }, true},
		{"no metadata", func(g *ContractGenesis) { g.Metadata = nil }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := TestnetContractGenesis()
			tt.mutate(g)
			err := g.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContractGenesis_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.json")
	g := TestnetContractGenesis()
	if err := g.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadContractGenesis(path, Mainnet)
	if err != nil {
		t.Fatalf("LoadContractGenesis: %v", err)
	}
	if loaded.ContractID != g.ContractID || loaded.Owner != g.Owner {
		t.Errorf("loaded %s/%s, want %s/%s", loaded.ContractID, loaded.Owner, g.ContractID, g.Owner)
	}
	alloc := loaded.AllocAmounts()
	if alloc[TestnetImplicitAccount].Cmp(types.NEAR(1_000)) != 0 {
		t.Errorf("alloc = %s, want 1000 NEAR", alloc[TestnetImplicitAccount].NEARString())
	}
	if keys := loaded.AccessKeyMap()["owner.artdressup.testnet"]; len(keys) != 1 {
		t.Errorf("access keys = %v", keys)
	}
}

func TestLoadContractGenesis_MissingUsesDefault(t *testing.T) {
	g, err := LoadContractGenesis(filepath.Join(t.TempDir(), "none.json"), Testnet)
	if err != nil {
		t.Fatalf("LoadContractGenesis: %v", err)
	}
	if g.ContractID != "artdressup.testnet" {
		t.Errorf("ContractID = %s, want testnet default", g.ContractID)
	}
}

func TestLoadContractGenesis_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.json")
	if err := os.WriteFile(path, []byte(`{"contract_id":"x","owner_id":"owner.testnet"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadContractGenesis(path, Testnet); err == nil {
		t.Error("1-char contract id accepted")
	}
}
