package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/notedeck/taskscan/internal/events"
	"github.com/notedeck/taskscan/internal/filter"
	"github.com/notedeck/taskscan/internal/lock"
	"github.com/notedeck/taskscan/internal/model"
	"github.com/notedeck/taskscan/internal/notify"
	"github.com/notedeck/taskscan/internal/rank"
	"github.com/notedeck/taskscan/internal/scan"
	"github.com/notedeck/taskscan/internal/setup"
	"github.com/notedeck/taskscan/internal/status"
	"github.com/notedeck/taskscan/internal/vault"
	"github.com/notedeck/taskscan/internal/watch"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "scan":
		runScan(os.Args[2:])
	case "top":
		runTop(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "version":
		fmt.Printf("taskscan %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`taskscan - checkbox task discovery and ranking for markdown vaults

usage: taskscan <command> [options]

commands:
  init [dir]      create .taskscan/ with the default configuration
  scan            list matching tasks in bounded pages
  top             print the current top task
  status          summarize the vault's task state
  watch           watch the vault and keep the top task current
  version         print version
  help            show this help`)
}

func runInit(args []string) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := setup.Init(dir); err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("initialized %s\n", filepath.Join(dir, setup.ConfigDir))
}

// loadVault loads the vault's configuration with defaults applied.
func loadVault(dir string) model.Config {
	cfg, err := setup.LoadConfig(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newLogger(cfg model.Config) (*log.Logger, scan.LogLevel) {
	return log.New(os.Stderr, "taskscan ", log.LstdFlags), scan.ParseLogLevel(cfg.Logging.Level)
}

func runScan(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	dir := fs.String("dir", ".", "vault directory")
	count := fs.Int("count", 0, "page size (defaults to scan.batch_size)")
	all := fs.Bool("all", false, "drain every page")
	jsonOut := fs.Bool("json", false, "JSON output")
	currentPeriod := fs.Bool("current-period", false, "restrict to the current day")
	fs.Parse(args)

	vaultDir := *dir
	cfg := loadVault(vaultDir)
	if *currentPeriod {
		cfg.Scan.CurrentPeriod = true
	}
	target := *count
	if target <= 0 {
		target = cfg.Scan.BatchSize
	}

	logger, level := newLogger(cfg)
	store := vault.NewFSStore(vaultDir, cfg.Vault.Origins)
	session := scan.NewSession(store, logger, level)
	session.Initialize(vault.Scope{CurrentPeriodOnly: cfg.Scan.CurrentPeriod})

	pred := filter.Compile(cfg.FilterSet())

	var tasks []model.TaskLine
	hasMore := false
	if *all {
		collected, err := session.CollectAll(target, pred)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scan: %v\n", err)
			os.Exit(1)
		}
		tasks = collected
	} else {
		batch, err := session.FetchNextBatch(target, pred)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scan: %v\n", err)
			os.Exit(1)
		}
		tasks = batch.Tasks
		hasMore = batch.HasMore
	}

	if *jsonOut {
		printJSON(map[string]any{"tasks": taskPayload(tasks), "has_more": hasMore})
		return
	}
	for _, task := range tasks {
		fmt.Printf("%s:%d  %s\n", task.DocumentID, task.LineNumber, task.RawLine)
	}
	if hasMore {
		fmt.Println("(more available)")
	}
}

func runTop(args []string) {
	fs := flag.NewFlagSet("top", flag.ExitOnError)
	dir := fs.String("dir", ".", "vault directory")
	jsonOut := fs.Bool("json", false, "JSON output")
	fs.Parse(args)

	vaultDir := *dir
	cfg := loadVault(vaultDir)
	logger, level := newLogger(cfg)

	store := vault.NewFSStore(vaultDir, cfg.Vault.Origins)
	session := scan.NewSession(store, logger, level)
	session.Initialize(vault.Scope{CurrentPeriodOnly: cfg.Scan.CurrentPeriod})

	tasks, err := session.CollectAll(cfg.Scan.BatchSize, filter.Compile(cfg.FilterSet()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "top: %v\n", err)
		os.Exit(1)
	}

	res := rank.NewRanker(store, nil, logger, level).Rank(tasks, cfg.Tiers())
	if res.Top == nil {
		if *jsonOut {
			printJSON(map[string]any{"top": nil})
			return
		}
		fmt.Println("no top task")
		return
	}

	if *jsonOut {
		printJSON(map[string]any{"top": map[string]any{
			"document_id": string(res.Top.DocumentID),
			"line_number": res.Top.LineNumber,
			"status":      res.Top.StatusString(),
			"text":        res.Top.RawLine,
		}})
		return
	}
	fmt.Printf("%s:%d  %s\n", res.Top.DocumentID, res.Top.LineNumber, res.Top.RawLine)
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	dir := fs.String("dir", ".", "vault directory")
	jsonOut := fs.Bool("json", false, "JSON output")
	fs.Parse(args)

	vaultDir := *dir
	cfg := loadVault(vaultDir)
	logger, _ := newLogger(cfg)
	if err := status.Run(vaultDir, cfg, logger, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "status: %v\n", err)
		os.Exit(1)
	}
}

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	dir := fs.String("dir", ".", "vault directory")
	logLevel := fs.String("log-level", "", "override logging.level")
	fs.Parse(args)

	vaultDir := *dir
	cfg := loadVault(vaultDir)
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	logger, level := newLogger(cfg)

	// One watcher per vault.
	lockPath := filepath.Join(vaultDir, setup.ConfigDir, "watch.lock")
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		os.Exit(1)
	}
	fileLock := lock.NewFileLock(lockPath)
	if err := fileLock.TryLock(); err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		os.Exit(1)
	}
	defer fileLock.Unlock()

	bus := events.NewBus(64)
	defer bus.Close()

	eventLog, err := events.NewEventLog(setup.LogPath(vaultDir), 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		os.Exit(1)
	}
	defer eventLog.Close()
	detach := eventLog.Attach(bus)
	defer detach()

	w := watch.New(vaultDir, cfg, bus, logger, level)
	if cfg.Watcher.Notify {
		w.SetNotifyFunc(notify.Send)
	}
	if err := w.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		os.Exit(1)
	}
	defer w.Stop()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	logger.Printf("received signal=%s, shutting down", sig)
}

func taskPayload(tasks []model.TaskLine) []map[string]any {
	out := make([]map[string]any, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, map[string]any{
			"document_id": string(task.DocumentID),
			"line_number": task.LineNumber,
			"status":      task.StatusString(),
			"text":        task.RawLine,
		})
	}
	return out
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}
