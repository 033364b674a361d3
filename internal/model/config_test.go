package model

import "testing"

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if len(cfg.Vault.Origins) != 1 || cfg.Vault.Origins[0].Kind != "subtree" {
		t.Errorf("origins: got %+v, want single subtree origin", cfg.Vault.Origins)
	}
	if !cfg.Filter.Statuses[" "] {
		t.Error("default filter should include the open status")
	}
	if len(cfg.Ranking.Tiers) != 3 {
		t.Errorf("tiers: got %d, want 3", len(cfg.Ranking.Tiers))
	}
	if cfg.Scan.BatchSize != 50 {
		t.Errorf("batch_size: got %d, want 50", cfg.Scan.BatchSize)
	}
	if cfg.Watcher.DebounceSec != 0.5 {
		t.Errorf("debounce_sec: got %v, want 0.5", cfg.Watcher.DebounceSec)
	}
}

func TestApplyDefaults_DailyPattern(t *testing.T) {
	cfg := Config{Vault: VaultConfig{Origins: []OriginConfig{{Kind: "daily", Path: "journal"}}}}
	cfg.ApplyDefaults()

	if cfg.Vault.Origins[0].Pattern != "2006-01-02" {
		t.Errorf("pattern: got %q, want 2006-01-02", cfg.Vault.Origins[0].Pattern)
	}
}

func TestFilterSet(t *testing.T) {
	cfg := Config{Filter: FilterConfig{Statuses: map[string]bool{
		" ": true,
		"x": false,
		"":  true, // empty key means the open symbol
	}}}

	set := cfg.FilterSet()
	if !set[StatusOpen] {
		t.Error("open symbol should be included")
	}
	if set[StatusDone] {
		t.Error("done symbol should be excluded")
	}
}

func TestTiers(t *testing.T) {
	cfg := Config{Ranking: RankingConfig{Tiers: []TierConfig{
		{Symbol: "/", Priority: 1},
		{Symbol: "!", Priority: 2},
	}}}

	tiers := cfg.Tiers()
	if len(tiers) != 2 {
		t.Fatalf("tiers: got %d, want 2", len(tiers))
	}
	if tiers[0].Symbol != '/' || tiers[0].Priority != 1 {
		t.Errorf("tier 0: got %+v", tiers[0])
	}
	if tiers[1].Symbol != '!' || tiers[1].Priority != 2 {
		t.Errorf("tier 1: got %+v", tiers[1])
	}
}
