package shkb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudkucooland/HomeKitBridges/SensiboHKBridge/sensibo"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "sensibo.json")
	if err := os.WriteFile(fn, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return fn
}

func TestLoadConfigDefaults(t *testing.T) {
	conf, err := LoadConfig(writeConfig(t, `{"ID":"abc123","APIKey":"secret"}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if conf.Pin != "80899303" || conf.ListenAddr != ":8998" || conf.PollInterval != 60 {
		t.Fatalf("unexpected defaults: %+v", conf)
	}
	if conf.BaseURL != sensibo.DefaultBaseURL {
		t.Fatalf("unexpected base url: %s", conf.BaseURL)
	}
	if conf.RequestTimeout() != 10*time.Second {
		t.Fatalf("unexpected timeout: %s", conf.RequestTimeout())
	}
}

func TestLoadConfigClampsPollInterval(t *testing.T) {
	conf, err := LoadConfig(writeConfig(t, `{"ID":"abc123","APIKey":"secret","PollInterval":1,"Timeout":-3}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if conf.PollInterval != minPollInterval {
		t.Fatalf("expected poll interval %d, got %d", minPollInterval, conf.PollInterval)
	}
	if conf.Timeout != 10 {
		t.Fatalf("expected timeout reset to 10, got %d", conf.Timeout)
	}

	conf, err = LoadConfig(writeConfig(t, `{"ID":"abc123","APIKey":"secret","PollInterval":99999}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if conf.PollInterval != maxPollInterval {
		t.Fatalf("expected poll interval %d, got %d", maxPollInterval, conf.PollInterval)
	}
}

func TestLoadConfigRequiresCredentials(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"ID":"abc123"}`))
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := LoadConfig(writeConfig(t, `{not json`)); err == nil {
		t.Fatal("expected error for bad json")
	}
}
