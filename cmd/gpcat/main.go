// Command gpcat catalogs a Google Photos Takeout export into a
// resumable SQLite database. Grounded on the teacher's main.go
// (flag parsing -> library open -> action dispatch), adapted from the
// teacher's import/create/update/sync actions down to this tool's
// single scan operation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/bleemesser/gpcat/internal/catalog"
	"github.com/bleemesser/gpcat/internal/catalogerr"
	"github.com/bleemesser/gpcat/internal/cli"
	"github.com/bleemesser/gpcat/internal/config"
	"github.com/bleemesser/gpcat/internal/scanner"
)

func main() {
	os.Exit(run())
}

func run() int {
	args, err := cli.Parse(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gpcat:", err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "gpcat: config:", err)
		return 2
	}
	if v := args.GetFlag("worker-threads"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkerThreads = n
		}
	}
	if v := args.GetFlag("worker-processes"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkerProcesses = n
		}
	}
	if v := args.GetFlag("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := args.GetFlag("log-format"); v != "" {
		cfg.LogFormat = v
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "gpcat: config:", err)
		return 2
	}

	log := newLogger(cfg)

	catalogPath := args.GetFlagDefault("catalog", "gpcat.db")
	cat, err := catalog.Open(catalogPath)
	if err != nil {
		log.WithError(err).Error("open catalog")
		return 1
	}
	defer cat.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	orch := &scanner.Orchestrator{Catalog: cat, Config: cfg, Log: log}
	stats, err := orch.Run(ctx, args.Root())
	if err != nil {
		if fe, ok := catalogerr.AsFatal(err); ok {
			log.WithError(fe).WithField("category", fe.Category).Error("scan aborted")
		} else {
			log.WithError(err).Error("scan failed")
		}
		return 1
	}

	log.WithFields(logrus.Fields{
		"new":       stats.Summary.New,
		"changed":   stats.Summary.Changed,
		"unchanged": stats.Summary.Unchanged,
		"missing":   stats.Summary.Missing,
		"errors":    stats.Summary.Errors,
	}).Info("scan complete")
	return 0
}

func newLogger(cfg config.Config) *logrus.Entry {
	l := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		l.SetLevel(level)
	}
	if cfg.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logrus.NewEntry(l)
}
