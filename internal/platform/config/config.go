package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second

	defaultCommerceTimeout = 10 * time.Second
	defaultCMSTimeout      = 5 * time.Second
	defaultCurrency        = "USD"
	defaultCartNamespace   = "shamanicca-cart"
	defaultCartBackend     = CartBackendFile
	defaultCartStateDir    = "./data/carts"
	defaultPageSize        = 12
	defaultMaxPageSize     = 48
)

// CartBackend selects the durable storage implementation backing cart state.
const (
	CartBackendFile      = "file"
	CartBackendFirestore = "firestore"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Commerce  CommerceConfig
	Printful  PrintfulConfig
	CMS       CMSConfig
	Stripe    StripeConfig
	Cart      CartConfig
	Firestore FirestoreConfig
	Listing   ListingConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CommerceConfig holds the WooCommerce store endpoint and credentials.
type CommerceConfig struct {
	StoreURL       string
	ConsumerKey    string
	ConsumerSecret string
	GraphQLURL     string
	Timeout        time.Duration
}

// PrintfulConfig holds fulfilment provider credentials.
type PrintfulConfig struct {
	APIKey string
}

// CMSConfig points at the blog/content backend and an optional local content directory.
type CMSConfig struct {
	BaseURL    string
	ContentDir string
	Timeout    time.Duration
}

// StripeConfig collects payment provider settings.
type StripeConfig struct {
	APIKey     string
	SuccessURL string
	CancelURL  string
	Currency   string
}

// CartConfig controls cart persistence.
type CartConfig struct {
	Backend   string
	StateDir  string
	Namespace string
}

// FirestoreConfig stores database parameters for the optional firestore cart backend.
type FirestoreConfig struct {
	ProjectID       string
	EmulatorHost    string
	CredentialsFile string
}

// ListingConfig sets the paging defaults for product and article listings.
type ListingConfig struct {
	PageSize    int
	MaxPageSize int
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "STORE_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "STORE_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "STORE_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "STORE_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Commerce: CommerceConfig{
			StoreURL:       stringWithDefault(lookup, "WC_STORE_URL", ""),
			ConsumerKey:    stringWithDefault(lookup, "WC_CONSUMER_KEY", ""),
			ConsumerSecret: stringWithDefault(lookup, "WC_CONSUMER_SECRET", ""),
			GraphQLURL:     stringWithDefault(lookup, "WC_GRAPHQL_URL", ""),
			Timeout:        durationWithDefault(lookup, "WC_TIMEOUT", defaultCommerceTimeout),
		},
		Printful: PrintfulConfig{
			APIKey: stringWithDefault(lookup, "PRINTFUL_API_KEY", ""),
		},
		CMS: CMSConfig{
			BaseURL:    stringWithDefault(lookup, "CMS_BASE_URL", ""),
			ContentDir: stringWithDefault(lookup, "CMS_CONTENT_DIR", ""),
			Timeout:    durationWithDefault(lookup, "CMS_TIMEOUT", defaultCMSTimeout),
		},
		Stripe: StripeConfig{
			APIKey:     stringWithDefault(lookup, "STRIPE_SECRET_KEY", ""),
			SuccessURL: stringWithDefault(lookup, "STRIPE_SUCCESS_URL", ""),
			CancelURL:  stringWithDefault(lookup, "STRIPE_CANCEL_URL", ""),
			Currency:   strings.ToUpper(stringWithDefault(lookup, "STRIPE_CURRENCY", defaultCurrency)),
		},
		Cart: CartConfig{
			Backend:   strings.ToLower(stringWithDefault(lookup, "CART_BACKEND", defaultCartBackend)),
			StateDir:  stringWithDefault(lookup, "CART_STATE_DIR", defaultCartStateDir),
			Namespace: stringWithDefault(lookup, "CART_NAMESPACE", defaultCartNamespace),
		},
		Firestore: FirestoreConfig{
			ProjectID:       stringWithDefault(lookup, "FIRESTORE_PROJECT_ID", ""),
			EmulatorHost:    stringWithDefault(lookup, "FIRESTORE_EMULATOR_HOST", ""),
			CredentialsFile: stringWithDefault(lookup, "FIRESTORE_CREDENTIALS_FILE", ""),
		},
		Listing: ListingConfig{
			PageSize:    intWithDefault(lookup, "LISTING_PAGE_SIZE", defaultPageSize),
			MaxPageSize: intWithDefault(lookup, "LISTING_MAX_PAGE_SIZE", defaultMaxPageSize),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cart.Backend {
	case CartBackendFile, CartBackendFirestore:
	default:
		return fmt.Errorf("config: unsupported cart backend %q", c.Cart.Backend)
	}
	if c.Cart.Backend == CartBackendFirestore && strings.TrimSpace(c.Firestore.ProjectID) == "" {
		return errors.New("config: firestore cart backend requires FIRESTORE_PROJECT_ID")
	}
	if c.Listing.PageSize <= 0 || c.Listing.MaxPageSize <= 0 {
		return errors.New("config: listing page sizes must be positive")
	}
	if c.Listing.PageSize > c.Listing.MaxPageSize {
		return errors.New("config: LISTING_PAGE_SIZE may not exceed LISTING_MAX_PAGE_SIZE")
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
