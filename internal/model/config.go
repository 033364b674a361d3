package model

type Config struct {
	Vault   VaultConfig   `yaml:"vault"`
	Filter  FilterConfig  `yaml:"filter"`
	Ranking RankingConfig `yaml:"ranking"`
	Scan    ScanConfig    `yaml:"scan"`
	Watcher WatcherConfig `yaml:"watcher"`
	Logging LoggingConfig `yaml:"logging"`
}

type VaultConfig struct {
	Origins []OriginConfig `yaml:"origins"`
}

// OriginConfig describes one document origin. Kind selects the origin
// implementation; the remaining fields apply per kind.
type OriginConfig struct {
	Kind    string   `yaml:"kind"`              // subtree | daily | tagged
	Path    string   `yaml:"path,omitempty"`    // directory relative to the vault root
	Pattern string   `yaml:"pattern,omitempty"` // daily: Go time layout for note names
	Tags    []string `yaml:"tags,omitempty"`    // tagged: frontmatter tags to match
}

type FilterConfig struct {
	Statuses map[string]bool `yaml:"statuses"`
}

type RankingConfig struct {
	Tiers []TierConfig `yaml:"tiers"`
}

type TierConfig struct {
	Symbol   string `yaml:"symbol"`
	Priority int    `yaml:"priority"`
}

type ScanConfig struct {
	BatchSize     int  `yaml:"batch_size"`
	CurrentPeriod bool `yaml:"current_period"`
}

type WatcherConfig struct {
	DebounceSec float64 `yaml:"debounce_sec"`
	Notify      bool    `yaml:"notify"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// ApplyDefaults fills zero-valued fields with usable defaults.
func (c *Config) ApplyDefaults() {
	if len(c.Vault.Origins) == 0 {
		c.Vault.Origins = []OriginConfig{{Kind: "subtree", Path: "."}}
	}
	for i := range c.Vault.Origins {
		o := &c.Vault.Origins[i]
		if o.Kind == "daily" && o.Pattern == "" {
			o.Pattern = "2006-01-02"
		}
	}
	if len(c.Filter.Statuses) == 0 {
		c.Filter.Statuses = map[string]bool{" ": true, "/": true, "!": true, "+": true}
	}
	if len(c.Ranking.Tiers) == 0 {
		c.Ranking.Tiers = []TierConfig{
			{Symbol: "/", Priority: 1},
			{Symbol: "!", Priority: 2},
			{Symbol: "+", Priority: 3},
		}
	}
	if c.Scan.BatchSize <= 0 {
		c.Scan.BatchSize = 50
	}
	if c.Watcher.DebounceSec <= 0 {
		c.Watcher.DebounceSec = 0.5
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// FilterSet converts the YAML statuses map to a StatusFilterSet. Multi-rune
// keys are reduced to their first rune; empty keys mean the open symbol.
func (c *Config) FilterSet() StatusFilterSet {
	set := make(StatusFilterSet, len(c.Filter.Statuses))
	for key, included := range c.Filter.Statuses {
		set[symbolOf(key)] = included
	}
	return set
}

// Tiers converts the YAML tier list to RankTiers, preserving order.
func (c *Config) Tiers() []RankTier {
	tiers := make([]RankTier, 0, len(c.Ranking.Tiers))
	for _, t := range c.Ranking.Tiers {
		tiers = append(tiers, RankTier{Symbol: symbolOf(t.Symbol), Priority: t.Priority})
	}
	return tiers
}

func symbolOf(s string) rune {
	if s == "" {
		return StatusOpen
	}
	return []rune(s)[0]
}
