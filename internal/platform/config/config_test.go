package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("unexpected read timeout %v", cfg.Server.ReadTimeout)
	}
	if cfg.Cart.Backend != CartBackendFile {
		t.Fatalf("expected file cart backend, got %q", cfg.Cart.Backend)
	}
	if cfg.Cart.Namespace != "shamanicca-cart" {
		t.Fatalf("unexpected cart namespace %q", cfg.Cart.Namespace)
	}
	if cfg.Stripe.Currency != "USD" {
		t.Fatalf("unexpected default currency %q", cfg.Stripe.Currency)
	}
	if cfg.Listing.PageSize != 12 || cfg.Listing.MaxPageSize != 48 {
		t.Fatalf("unexpected listing defaults %+v", cfg.Listing)
	}
}

func TestLoadEnvMapOverrides(t *testing.T) {
	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"STORE_SERVER_PORT":         "9090",
			"STORE_SERVER_READ_TIMEOUT": "5s",
			"WC_STORE_URL":              "https://store.example.com",
			"CART_BACKEND":              "firestore",
			"FIRESTORE_PROJECT_ID":      "demo-project",
			"STRIPE_CURRENCY":           "eur",
			"LISTING_PAGE_SIZE":         "24",
		}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("unexpected read timeout %v", cfg.Server.ReadTimeout)
	}
	if cfg.Commerce.StoreURL != "https://store.example.com" {
		t.Fatalf("unexpected store url %q", cfg.Commerce.StoreURL)
	}
	if cfg.Cart.Backend != CartBackendFirestore {
		t.Fatalf("expected firestore backend, got %q", cfg.Cart.Backend)
	}
	if cfg.Stripe.Currency != "EUR" {
		t.Fatalf("expected currency uppercased, got %q", cfg.Stripe.Currency)
	}
	if cfg.Listing.PageSize != 24 {
		t.Fatalf("unexpected page size %d", cfg.Listing.PageSize)
	}
}

func TestLoadRejectsUnknownCartBackend(t *testing.T) {
	_, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{"CART_BACKEND": "redis"}),
	)
	if err == nil {
		t.Fatal("expected error for unsupported cart backend")
	}
}

func TestLoadFirestoreBackendRequiresProject(t *testing.T) {
	_, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{"CART_BACKEND": "firestore"}),
	)
	if err == nil {
		t.Fatal("expected error when firestore backend lacks a project id")
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	contents := "# local overrides\nexport STORE_SERVER_PORT=7070\nWC_STORE_URL=\"https://dotenv.example.com\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed writing env file: %v", err)
	}

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Fatalf("expected dotenv port 7070, got %q", cfg.Server.Port)
	}
	if cfg.Commerce.StoreURL != "https://dotenv.example.com" {
		t.Fatalf("expected quoted value unwrapped, got %q", cfg.Commerce.StoreURL)
	}
}
