package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := "request_expiry_seconds: 30\nmax_coins_per_trade: 5000\nrate_limits:\n  trade_request_max: 2\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tn, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.RequestExpirySeconds != 30 {
		t.Fatalf("request expiry: %d", tn.RequestExpirySeconds)
	}
	if tn.MaxCoinsPerTrade != 5000 {
		t.Fatalf("max coins: %d", tn.MaxCoinsPerTrade)
	}
	if tn.RateLimits.TradeRequestMax != 2 {
		t.Fatalf("request max: %d", tn.RateLimits.TradeRequestMax)
	}
	// Keys the file does not set keep their defaults.
	if tn.SessionIdleSeconds != 600 || tn.RateLimits.ConfirmMax != 10 {
		t.Fatalf("defaults lost: %+v", tn)
	}
}

func TestLoadMissingFile(t *testing.T) {
	tn, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist, got %v", err)
	}
	if tn.RequestExpirySeconds != 60 {
		t.Fatalf("defaults not returned on missing file: %+v", tn)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("request_expiry_seconds: [oops"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("malformed yaml accepted")
	}
}
