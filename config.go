package shkb

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/brutella/hap/log"

	"github.com/cloudkucooland/HomeKitBridges/SensiboHKBridge/sensibo"
)

const (
	minPollInterval = 10
	maxPollInterval = 3600
)

type Config struct {
	Name         string // shown in HomeKit, defaults to the pod's room name
	ID           string // pod id from the Sensibo app or /users/me/pods
	APIKey       string // https://home.sensibo.com/me/api
	Pin          string // HomeKit setup pin (80899303)
	ListenAddr   string // ip:port for /metrics and /status, empty disables
	PollInterval int    // seconds between full refreshes
	BaseURL      string
	Timeout      int // seconds per Sensibo request
}

var ErrMissingCredentials = errors.New("config: ID and APIKey are required")

func LoadConfig(filename string) (*Config, error) {
	conf := Config{
		Pin:          "80899303",
		ListenAddr:   ":8998",
		PollInterval: 60,
		BaseURL:      sensibo.DefaultBaseURL,
		Timeout:      10,
	}

	raw, err := os.ReadFile(filename)
	if err != nil {
		log.Info.Printf("unable to read config %s: %s", filename, err.Error())
		return nil, err
	}

	if err := json.Unmarshal(raw, &conf); err != nil {
		log.Info.Printf("unable to parse config %s: %s", filename, err.Error())
		return nil, err
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	conf.PollInterval = clampPollInterval(conf.PollInterval)
	if conf.Timeout <= 0 {
		conf.Timeout = 10
	}

	log.Info.Printf("using config for pod %s (poll %ds)", conf.ID, conf.PollInterval)
	return &conf, nil
}

func (c *Config) Validate() error {
	if c.ID == "" || c.APIKey == "" {
		return ErrMissingCredentials
	}
	return nil
}

// RequestTimeout is handed to the http.Client; the core has no timeouts of its own
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func clampPollInterval(i int) int {
	if i < minPollInterval {
		return minPollInterval
	}
	if i > maxPollInterval {
		return maxPollInterval
	}
	return i
}
