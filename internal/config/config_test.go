//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

const validConfig = `
database:
  url: "postgres://u:p@localhost:5432/db"
vnpay:
  tmn_code: "TMN1"
  hash_secret: "SECRET"
  pay_url: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
  return_url: "https://music.example.com/return"
`

func TestLoadConfig(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		cfg, err := LoadConfig(writeTempConfig(t, validConfig), false)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Server.Port != 8088 {
			t.Errorf("expected default port 8088, got %d", cfg.Server.Port)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
			t.Errorf("log defaults wrong: %+v", cfg.Log)
		}
		if cfg.RateLimit.Requests != 10 || cfg.RateLimit.Window != time.Minute {
			t.Errorf("rate limit defaults wrong: %+v", cfg.RateLimit)
		}
	})

	t.Run("dev flag lands in runtime", func(t *testing.T) {
		cfg, err := LoadConfig(writeTempConfig(t, validConfig), true)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if !cfg.Runtime.Dev {
			t.Error("expected Runtime.Dev to be true")
		}
	})

	t.Run("rejects missing gateway credentials", func(t *testing.T) {
		broken := strings.Replace(validConfig, `hash_secret: "SECRET"`, `hash_secret: ""`, 1)
		if _, err := LoadConfig(writeTempConfig(t, broken), false); err == nil {
			t.Fatal("expected error for empty hash secret")
		}
	})

	t.Run("rejects missing database url", func(t *testing.T) {
		broken := strings.Replace(validConfig, `url: "postgres://u:p@localhost:5432/db"`, `url: ""`, 1)
		if _, err := LoadConfig(writeTempConfig(t, broken), false); err == nil {
			t.Fatal("expected error for empty database url")
		}
	})

	t.Run("rejects auth without a secret", func(t *testing.T) {
		withAuth := validConfig + "\nauth:\n  enabled: true\n"
		if _, err := LoadConfig(writeTempConfig(t, withAuth), false); err == nil {
			t.Fatal("expected error when auth is enabled without a secret")
		}
	})

	t.Run("fails on a missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
