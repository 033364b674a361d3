// Package status reports a summary of the vault's current task state.
package status

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/notedeck/taskscan/internal/filter"
	"github.com/notedeck/taskscan/internal/model"
	"github.com/notedeck/taskscan/internal/rank"
	"github.com/notedeck/taskscan/internal/scan"
	"github.com/notedeck/taskscan/internal/vault"
)

// VaultStatus is the summary printed by "taskscan status".
type VaultStatus struct {
	Documents int            `json:"documents"`
	Tasks     int            `json:"tasks"`
	ByStatus  map[string]int `json:"by_status,omitempty"`
	Top       *TopSummary    `json:"top,omitempty"`
}

type TopSummary struct {
	DocumentID string `json:"document_id"`
	LineNumber int    `json:"line_number"`
	Status     string `json:"status"`
	Text       string `json:"text"`
}

// Collect scans the whole vault once and summarizes the result.
func Collect(vaultDir string, cfg model.Config, logger *log.Logger) (VaultStatus, error) {
	store := vault.NewFSStore(vaultDir, cfg.Vault.Origins)
	level := scan.ParseLogLevel(cfg.Logging.Level)

	session := scan.NewSession(store, logger, level)
	session.Initialize(vault.Scope{CurrentPeriodOnly: cfg.Scan.CurrentPeriod})

	pred := filter.Compile(cfg.FilterSet())
	tasks, err := session.CollectAll(cfg.Scan.BatchSize, pred)
	if err != nil {
		return VaultStatus{}, fmt.Errorf("scan vault: %w", err)
	}

	summary := VaultStatus{
		Documents: session.DocumentCount(),
		Tasks:     len(tasks),
		ByStatus:  make(map[string]int),
	}
	for _, task := range tasks {
		summary.ByStatus[task.StatusString()]++
	}

	ranker := rank.NewRanker(store, nil, logger, level)
	if res := ranker.Rank(tasks, cfg.Tiers()); res.Top != nil {
		summary.Top = &TopSummary{
			DocumentID: string(res.Top.DocumentID),
			LineNumber: res.Top.LineNumber,
			Status:     res.Top.StatusString(),
			Text:       res.Top.RawLine,
		}
	}
	return summary, nil
}

// Run collects the vault status and prints it to stdout.
func Run(vaultDir string, cfg model.Config, logger *log.Logger, jsonOutput bool) error {
	summary, err := Collect(vaultDir, cfg, logger)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	Print(os.Stdout, summary)
	return nil
}

// Print writes the human-readable summary.
func Print(w io.Writer, s VaultStatus) {
	fmt.Fprintf(w, "documents: %d\n", s.Documents)
	fmt.Fprintf(w, "tasks:     %d\n", s.Tasks)

	symbols := make([]string, 0, len(s.ByStatus))
	for sym := range s.ByStatus {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	for _, sym := range symbols {
		fmt.Fprintf(w, "  [%s] %d\n", sym, s.ByStatus[sym])
	}

	if s.Top != nil {
		fmt.Fprintf(w, "top:       %s (%s:%d)\n", s.Top.Text, s.Top.DocumentID, s.Top.LineNumber)
	} else {
		fmt.Fprintln(w, "top:       none")
	}
}
