package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = []string{}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "memcached"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}

	expected := `database.driver must be "valkey" or "redis", got "memcached"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_EndpointScheme(t *testing.T) {
	cfg := validConfig()
	cfg.Vision.Endpoint = "vision.googleapis.com/v1/images:annotate"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for endpoint without scheme")
	}
}

func TestValidate_EmptyCategory(t *testing.T) {
	cfg := validConfig()
	cfg.Vision.ProductCategories = []string{"apparel", " "}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for blank category")
	}
	if !strings.Contains(err.Error(), "product_categories[1]") {
		t.Errorf("error should name the blank index, got %q", err.Error())
	}
}

func TestValidate_VisionTimeoutExceedsWriteTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Vision.TimeoutSec = 90

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when vision timeout outlives the write timeout")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Vision.Endpoint != DefaultVisionEndpoint {
		t.Errorf("expected default endpoint, got %q", cfg.Vision.Endpoint)
	}
	if cfg.Vision.ProductSet != DefaultProductSet {
		t.Errorf("expected default product set, got %q", cfg.Vision.ProductSet)
	}
	if len(cfg.Vision.ProductCategories) != 1 || cfg.Vision.ProductCategories[0] != "apparel" {
		t.Errorf("expected [apparel], got %v", cfg.Vision.ProductCategories)
	}
	if cfg.Vision.MaxResults != 5 {
		t.Errorf("expected MaxResults=5, got %d", cfg.Vision.MaxResults)
	}
	if cfg.Vision.TimeoutSec != 30 {
		t.Errorf("expected TimeoutSec=30, got %d", cfg.Vision.TimeoutSec)
	}
	if cfg.Handoff.TTLSec != 600 {
		t.Errorf("expected TTLSec=600, got %d", cfg.Handoff.TTLSec)
	}
	if cfg.Handoff.KeyPrefix != "prodlens:" {
		t.Errorf("expected KeyPrefix='prodlens:', got %q", cfg.Handoff.KeyPrefix)
	}
	if cfg.Upload.MaxBytes != 10<<20 {
		t.Errorf("expected MaxBytes=10MiB, got %d", cfg.Upload.MaxBytes)
	}
	if cfg.Session.CookieName != "prodlens_session" {
		t.Errorf("expected CookieName=prodlens_session, got %q", cfg.Session.CookieName)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 5, WriteTimeoutSec: 90, ShutdownSec: 5},
		Vision:  VisionConfig{MaxResults: 10, ProductCategories: []string{"homegoods-v2"}},
		Handoff: HandoffConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 5 {
		t.Errorf("expected ReadTimeoutSec=5, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 90 {
		t.Errorf("expected WriteTimeoutSec=90, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Vision.MaxResults != 10 {
		t.Errorf("expected MaxResults=10, got %d", cfg.Vision.MaxResults)
	}
	if cfg.Vision.ProductCategories[0] != "homegoods-v2" {
		t.Errorf("expected homegoods-v2, got %v", cfg.Vision.ProductCategories)
	}
	if cfg.Handoff.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Handoff.KeyPrefix)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("PRODLENS_TEST_KEY", "secret-key")

	cfg, err := Parse([]byte(`
http:
  port: 8080
database:
  addrs: ["localhost:6379"]
vision:
  api_key: ${PRODLENS_TEST_KEY}
  product_set: ${PRODLENS_TEST_UNSET:-projects/p/locations/l/productSets/s}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Vision.APIKey != "secret-key" {
		t.Errorf("expected expanded api key, got %q", cfg.Vision.APIKey)
	}
	if cfg.Vision.ProductSet != "projects/p/locations/l/productSets/s" {
		t.Errorf("expected default product set, got %q", cfg.Vision.ProductSet)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
