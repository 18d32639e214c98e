package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("got %d values from a missing file", len(values))
	}
}

func TestLoadFile_ParsesAndApplies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artdressup.conf")
	content := `# comment
network = testnet
rpc.port = 4000
rpc.allowed = 127.0.0.1, 10.0.0.0/8
rpc.cors = "*"
dispatch.interval = 500ms
storage.gcinterval = 0s
log.level = debug
log.json = yes
unknown.key = ignored
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if values["rpc.cors"] != "*" {
		t.Errorf("rpc.cors = %q, want quotes stripped", values["rpc.cors"])
	}

	cfg := DefaultMainnet()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Network != Testnet {
		t.Errorf("Network = %s, want testnet", cfg.Network)
	}
	if cfg.RPC.Port != 4000 {
		t.Errorf("RPC.Port = %d, want 4000", cfg.RPC.Port)
	}
	if len(cfg.RPC.AllowedIPs) != 2 || cfg.RPC.AllowedIPs[1] != "10.0.0.0/8" {
		t.Errorf("RPC.AllowedIPs = %v", cfg.RPC.AllowedIPs)
	}
	if cfg.Dispatch.Interval != 500*time.Millisecond {
		t.Errorf("Dispatch.Interval = %v, want 500ms", cfg.Dispatch.Interval)
	}
	if cfg.Storage.GCInterval != 0 {
		t.Errorf("Storage.GCInterval = %v, want 0", cfg.Storage.GCInterval)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestApplyFileConfig_BadValue(t *testing.T) {
	cfg := DefaultMainnet()
	if err := ApplyFileConfig(cfg, map[string]string{"rpc.port": "abc"}); err == nil {
		t.Error("non-numeric rpc.port accepted")
	}
	if err := ApplyFileConfig(cfg, map[string]string{"dispatch.interval": "soon"}); err == nil {
		t.Error("bad duration accepted")
	}
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artdressup.conf")
	if err := WriteDefaultConfig(path, Testnet); err != nil {
		t.Fatalf("WriteDefaultConfig: %v", err)
	}
	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	cfg := DefaultMainnet()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Network != Testnet || cfg.RPC.Port != 3130 {
		t.Errorf("network=%s port=%d, want testnet 3130", cfg.Network, cfg.RPC.Port)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"--testnet", "--rpc=false", "--rpc-port", "9999", "--dispatch-interval", "5s", "--log-json"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if f.Network != "testnet" {
		t.Errorf("Network = %q, want testnet", f.Network)
	}

	cfg := DefaultTestnet()
	ApplyFlags(cfg, f)
	if cfg.RPC.Enabled {
		t.Error("--rpc=false did not disable RPC")
	}
	if cfg.RPC.Port != 9999 {
		t.Errorf("RPC.Port = %d, want 9999", cfg.RPC.Port)
	}
	if cfg.Dispatch.Interval != 5*time.Second {
		t.Errorf("Dispatch.Interval = %v, want 5s", cfg.Dispatch.Interval)
	}
	if !cfg.Log.JSON {
		t.Error("--log-json not applied")
	}
	if !cfg.Dispatch.Enabled {
		t.Error("unset --dispatch changed the default")
	}
}

func TestParseFlags_StrayPositional(t *testing.T) {
	if _, err := parseFlags([]string{"--log-json", "oops", "--rpc-port=1"}, io.Discard); err == nil {
		t.Error("positional argument before a flag was not reported")
	}
}

func TestBuild_CreatesDirsAndConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := build(&Flags{Network: "testnet", DataDir: dir, LogLevel: "warn"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, p := range []string{cfg.StateDir(), cfg.KeystoreDir(), cfg.ConfigFile()} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s not created: %v", p, err)
		}
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %s, want warn (flag beats file)", cfg.Log.Level)
	}
	if cfg.ContractGenesisFile() != filepath.Join(dir, "testnet", "contract.json") {
		t.Errorf("ContractGenesisFile = %s", cfg.ContractGenesisFile())
	}
}
