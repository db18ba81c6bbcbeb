package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/shoplist/internal/auth"
	"github.com/vyrodovalexey/shoplist/internal/config"
	"github.com/vyrodovalexey/shoplist/internal/store"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level defaults to info", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			logger, err := initLogger(tt.level)

			// Assert
			if err != nil {
				t.Fatalf("initLogger() error = %v", err)
			}
			if logger == nil {
				t.Error("initLogger() returned nil logger")
			}
		})
	}
}

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr bool
	}{
		{name: "memory", cfg: &config.Config{StoreDriver: config.StoreDriverMemory}},
		{name: "sqlite", cfg: &config.Config{StoreDriver: config.StoreDriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "shop.db")}},
		{name: "unknown driver", cfg: &config.Config{StoreDriver: "postgres"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			st, err := openStore(tt.cfg, zap.NewNop())

			// Assert
			if tt.wantErr {
				if err == nil {
					t.Error("openStore() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("openStore() error = %v", err)
			}
			defer st.Close()
			if err := st.Ping(context.Background()); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestSeedStore(t *testing.T) {
	// Arrange
	auth.HashCost = 4
	fixture := filepath.Join(t.TempDir(), "seed.yaml")
	data := []byte("lists:\n  - id: l1\n    user_id: u1\n    name: Weekly\nitems:\n  - id: i1\n    list_id: l1\n    name: Bread\n    quantity: 1\n    price: 2\n")
	if err := os.WriteFile(fixture, data, 0o600); err != nil {
		t.Fatal(err)
	}
	st := store.NewMemoryStore()
	cfg := &config.Config{SeedFile: fixture}

	// Act
	err := seedStore(context.Background(), cfg, st, zap.NewNop())

	// Assert
	if err != nil {
		t.Fatalf("seedStore() error = %v", err)
	}
	categories, _ := st.ListCategories(context.Background())
	if len(categories) != 11 {
		t.Errorf("len(categories) = %d, want 11", len(categories))
	}
	item, err := st.GetItem(context.Background(), "i1")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if item.Category != "Bakery" {
		t.Errorf("Category = %q, want Bakery", item.Category)
	}
}

func TestSeedStore_MissingFile(t *testing.T) {
	cfg := &config.Config{SeedFile: "/nonexistent/seed.yaml"}

	if err := seedStore(context.Background(), cfg, store.NewMemoryStore(), zap.NewNop()); err == nil {
		t.Error("seedStore() expected error, got nil")
	}
}

func TestCreateAuthenticator(t *testing.T) {
	tests := []struct {
		name       string
		cfg        *config.Config
		wantNil    bool
		wantMethod auth.AuthMethod
		wantErr    bool
	}{
		{name: "none", cfg: &config.Config{AuthMode: "none"}, wantNil: true},
		{name: "empty mode", cfg: &config.Config{}, wantNil: true},
		{name: "basic", cfg: &config.Config{AuthMode: "basic"}, wantMethod: auth.AuthMethodBasic},
		{name: "apikey", cfg: &config.Config{AuthMode: "apikey", APIKeys: "k1:cli"}, wantMethod: auth.AuthMethodAPIKey},
		{name: "apikey invalid", cfg: &config.Config{AuthMode: "apikey", APIKeys: "broken"}, wantErr: true},
		{name: "multi basic only", cfg: &config.Config{AuthMode: "multi"}, wantMethod: auth.AuthMethodMulti},
		{name: "multi with keys", cfg: &config.Config{AuthMode: "multi", APIKeys: "k1:cli"}, wantMethod: auth.AuthMethodMulti},
		{name: "multi invalid keys", cfg: &config.Config{AuthMode: "multi", APIKeys: "broken"}, wantErr: true},
		{name: "unknown", cfg: &config.Config{AuthMode: "oidc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			authenticator, err := createAuthenticator(tt.cfg, store.NewMemoryStore(), zap.NewNop())

			// Assert
			if tt.wantErr {
				if err == nil {
					t.Error("createAuthenticator() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("createAuthenticator() error = %v", err)
			}
			if tt.wantNil {
				if authenticator != nil {
					t.Errorf("createAuthenticator() = %v, want nil", authenticator)
				}
				return
			}
			if authenticator.Method() != tt.wantMethod {
				t.Errorf("Method() = %s, want %s", authenticator.Method(), tt.wantMethod)
			}
		})
	}
}
