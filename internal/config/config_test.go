package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadParsesDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  listen: ":9000"
auth:
  secret: "s3cret"
  tokenLifetime: 45m
cache:
  backend: "memcached"
  entityTTL: 2h
  listTTL: 90s
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if conf.Server.Listen != ":9000" {
		t.Errorf("listen = %q", conf.Server.Listen)
	}
	if conf.Cache.Backend != "memcached" {
		t.Errorf("backend = %q", conf.Cache.Backend)
	}
	if conf.Auth.TokenLifetime.Std() != 45*time.Minute {
		t.Errorf("tokenLifetime = %v", conf.Auth.TokenLifetime.Std())
	}
	if conf.Cache.EntityTTL.Std() != 2*time.Hour {
		t.Errorf("entityTTL = %v", conf.Cache.EntityTTL.Std())
	}
	if conf.Cache.ListTTL.Std() != 90*time.Second {
		t.Errorf("listTTL = %v", conf.Cache.ListTTL.Std())
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  listen: \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if conf.Server.Listen != ":8000" {
		t.Errorf("listen default = %q", conf.Server.Listen)
	}
	if conf.Cache.Backend != "redis" {
		t.Errorf("backend default = %q", conf.Cache.Backend)
	}
	if conf.Cache.EntityTTL.Std() != time.Hour {
		t.Errorf("entityTTL default = %v", conf.Cache.EntityTTL.Std())
	}
	if conf.Cache.ListTTL.Std() != 5*time.Minute {
		t.Errorf("listTTL default = %v", conf.Cache.ListTTL.Std())
	}
	if conf.Upload.MaxSizeBytes != 5<<20 {
		t.Errorf("maxSizeBytes default = %d", conf.Upload.MaxSizeBytes)
	}
}
