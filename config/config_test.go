package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HEXSHOP_SHOP_API_PATH", "hexshop")
	t.Setenv("HEXSHOP_WEB_SECRET", "")
	t.Setenv("HEXSHOP_WEB_PORT", "")
	t.Setenv("HEXSHOP_SYSTEM_WORKER_DIR", t.TempDir())
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Web.Port != 8080 {
		t.Fatalf("web port default, got %d", cfg.Web.Port)
	}
	if cfg.Session.CookieName != "hexToken" {
		t.Fatalf("cookie name default, got %q", cfg.Session.CookieName)
	}
	if cfg.ShopTimeout() != 15*time.Second {
		t.Fatalf("shop timeout default, got %s", cfg.ShopTimeout())
	}
	if cfg.SessionIdleTimeout() != 30*time.Minute {
		t.Fatalf("idle timeout default, got %s", cfg.SessionIdleTimeout())
	}
	if len(cfg.Web.Secret) != 64 {
		t.Fatalf("expected a generated 32 byte secret, got %q", cfg.Web.Secret)
	}
}

func TestDefaultSecretIsPerProcess(t *testing.T) {
	a, b := DefaultAppConfig().Web.Secret, DefaultAppConfig().Web.Secret
	if a == "" || a == b {
		t.Fatalf("default secrets must be random, got %q and %q", a, b)
	}
}

func TestLoadConfigRequiresAPIPath(t *testing.T) {
	t.Setenv("HEXSHOP_SYSTEM_WORKER_DIR", t.TempDir())
	t.Setenv("HEXSHOP_SHOP_API_PATH", "")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil || !strings.Contains(err.Error(), "shop.api_path") {
		t.Fatalf("expected api path error, got %v", err)
	}
}

func TestLoadConfigRejectsEmptySecret(t *testing.T) {
	t.Setenv("HEXSHOP_SYSTEM_WORKER_DIR", t.TempDir())
	t.Setenv("HEXSHOP_SHOP_API_PATH", "hexshop")
	t.Setenv("HEXSHOP_WEB_SECRET", "")
	file := filepath.Join(t.TempDir(), "hexshop.yml")
	if err := os.WriteFile(file, []byte("web:\n  secret: \"\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadConfig(file)
	if err == nil || !strings.Contains(err.Error(), "web.secret") {
		t.Fatalf("expected secret error, got %v", err)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hexshop.yml")
	yml := `
system:
  workdir: ` + dir + `
web:
  port: 9000
shop:
  base_url: http://remote.test/v2
  api_path: from-file
session:
  cookie_name: shopToken
`
	if err := os.WriteFile(file, []byte(yml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("HEXSHOP_SYSTEM_WORKER_DIR", "")
	t.Setenv("HEXSHOP_SHOP_API_PATH", "from-env")
	t.Setenv("HEXSHOP_WEB_PORT", "9100")
	t.Setenv("HEXSHOP_SESSION_SECURE", "true")

	cfg, err := LoadConfig(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Shop.BaseURL != "http://remote.test/v2" {
		t.Fatalf("base url from file, got %q", cfg.Shop.BaseURL)
	}
	if cfg.Shop.APIPath != "from-env" {
		t.Fatalf("api path env override, got %q", cfg.Shop.APIPath)
	}
	if cfg.Web.Port != 9100 {
		t.Fatalf("port env override, got %d", cfg.Web.Port)
	}
	if cfg.Session.CookieName != "shopToken" || !cfg.Session.Secure {
		t.Fatalf("session config, got %+v", cfg.Session)
	}
	if cfg.ListenAddr() != "0.0.0.0:9100" {
		t.Fatalf("listen addr, got %q", cfg.ListenAddr())
	}
}

func TestLoadConfigRejectsEmptyBaseURL(t *testing.T) {
	t.Setenv("HEXSHOP_SYSTEM_WORKER_DIR", t.TempDir())
	file := filepath.Join(t.TempDir(), "hexshop.yml")
	if err := os.WriteFile(file, []byte("shop:\n  base_url: \"\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(file); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}
