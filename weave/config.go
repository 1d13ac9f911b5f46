// CLAUDE:SUMMARY Configuration structs (browser, locator defaults) and YAML loader for weave.
package weave

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/testweave/locator"
)

// Config holds all weave configuration.
type Config struct {
	// DBPath is the SQLite audit database. Empty disables auditing.
	DBPath string `yaml:"db_path"`

	// TestIDAttribute is the default attribute for testid= locators.
	TestIDAttribute string `yaml:"test_id_attribute"`

	// BlockPrivateHosts rejects navigation to private or loopback
	// addresses. Off by default: local dev servers are the usual target.
	BlockPrivateHosts bool `yaml:"block_private_hosts"`

	Browser BrowserConfig `yaml:"browser"`
}

// BrowserConfig controls the Chrome instance behind the service.
type BrowserConfig struct {
	RemoteURL        string        `yaml:"remote_url"`
	Headful          bool          `yaml:"headful"`
	MemoryLimitMB    int64         `yaml:"memory_limit_mb"`
	RecycleInterval  time.Duration `yaml:"recycle_interval"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
	XvfbDisplay      string        `yaml:"xvfb_display"`
}

func (c *Config) defaults() {
	if c.TestIDAttribute == "" {
		c.TestIDAttribute = locator.DefaultTestIDAttribute
	}
	if c.Browser.MemoryLimitMB <= 0 {
		c.Browser.MemoryLimitMB = 1024
	}
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = 4 * time.Hour
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
