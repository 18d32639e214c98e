package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRPCURL(t *testing.T) {
	tests := []struct {
		network string
		want    string
	}{
		{"mainnet", "http://127.0.0.1:3030"},
		{"testnet", "http://127.0.0.1:3130"},
	}
	for _, tt := range tests {
		if got := defaultRPCURL(tt.network); got != tt.want {
			t.Errorf("defaultRPCURL(%q) = %q, want %q", tt.network, got, tt.want)
		}
	}
}

func TestKeystoreDir(t *testing.T) {
	got := keystoreDir("/data", "testnet")
	if got != filepath.Join("/data", "testnet", "keystore") {
		t.Errorf("keystoreDir = %s", got)
	}
}

func TestMetadataFlags_Build(t *testing.T) {
	tests := []struct {
		name    string
		flags   metadataFlags
		want    string
		wantErr bool
	}{
		{"title only", metadataFlags{title: "Hat"}, "Hat", false},
		{"missing title", metadataFlags{description: "no title"}, "", true},
		{"media hash without media", metadataFlags{title: "Hat", mediaHash: "abc"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := tt.flags.build()
			if (err != nil) != tt.wantErr {
				t.Fatalf("build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && *meta.Title != tt.want {
				t.Errorf("title = %q, want %q", *meta.Title, tt.want)
			}
		})
	}
}

func TestMetadataFlags_FileWithOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	data := `{"title":"From file","description":"kept","copies":3}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	f := metadataFlags{file: path, title: "Override"}
	meta, err := f.build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if *meta.Title != "Override" {
		t.Errorf("title = %q, want flag override", *meta.Title)
	}
	if meta.Description == nil || *meta.Description != "kept" {
		t.Errorf("description = %v, want kept from file", meta.Description)
	}
	if meta.Copies == nil || *meta.Copies != 3 {
		t.Errorf("copies = %v, want 3", meta.Copies)
	}
}

func TestMetadataFlags_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	f := metadataFlags{file: path, title: "x"}
	if _, err := f.build(); err == nil {
		t.Error("expected parse error")
	}
	f = metadataFlags{file: filepath.Join(t.TempDir(), "missing.json"), title: "x"}
	if _, err := f.build(); err == nil {
		t.Error("expected read error")
	}
}
