// Package main is the vecagent CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/vecagent/internal/agent"
	"github.com/hyperjump/vecagent/internal/cli"
	"github.com/hyperjump/vecagent/internal/config"
	"github.com/hyperjump/vecagent/internal/metrics"
	"github.com/hyperjump/vecagent/internal/models"
	"github.com/hyperjump/vecagent/internal/server"
	"github.com/hyperjump/vecagent/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/vecagent/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development). When neither exists the built-in
// defaults are used. Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	if path == "" {
		return config.Default(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "insert":
		runInsert()
	case "search":
		runSearch()
	case "build":
		runBuild()
	case "version", "--version", "-v":
		fmt.Printf("vecagent version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// serve runs the API listener, and the metrics listener when enabled, until ctx is done or
// a listener fails. Engine creation failure is fatal.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	coord := agent.NewCoordinator(cfg.Index.Coordinator(),
		agent.WithLogger(logger),
		agent.WithRecorder(metrics.NewCollector(reg)),
	)
	if err := coord.Initialize(); err != nil {
		logger.Fatal("Failed to initialize index", zap.Error(err))
	}

	srv := server.NewServer(coord, cfg, logger)
	var metricsSrv *http.Server
	if cfg.Metrics.EnabledOrDefault() {
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr(), Handler: metrics.Handler(reg)}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	if metricsSrv != nil {
		g.Go(func() error {
			logger.Info("Starting metrics server", zap.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Stop(shutdownCtx)
		if metricsSrv != nil {
			err = errors.Join(err, metricsSrv.Shutdown(shutdownCtx))
		}
		return err
	})
	return g.Wait()
}

func runInsert() {
	fs := flag.NewFlagSet("insert", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "agent URL")
	id := fs.String("id", "", "vector id")
	vector := fs.String("vector", "", "comma separated vector components, e.g. 1,0,-0.5")
	file := fs.String("file", "", `file with one {"id": ..., "vector": [...]} object per line, sent over the insert stream ("-" for stdin)`)
	_ = fs.Parse(os.Args[2:])

	client := cli.NewClient(*serverURL)
	ctx := context.Background()

	if *file != "" {
		objs, err := readObjectsFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", *file, err)
			os.Exit(1)
		}
		var failed int
		err = client.StreamInsert(ctx, objs, func(obj *models.Object, reply *models.StreamLocation) {
			if reply.Error != nil {
				failed++
				fmt.Fprintf(os.Stderr, "%s: %s: %s\n", obj.ID, reply.Error.Type, reply.Error.Error)
			}
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Insert stream failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Inserted %d of %d vectors\n", len(objs)-failed, len(objs))
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	if *id == "" || *vector == "" {
		fs.Usage()
		os.Exit(1)
	}
	vec, err := cli.ParseVector(*vector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid vector: %v\n", err)
		os.Exit(1)
	}
	loc, err := client.Insert(ctx, *id, vec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Insert failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Inserted %s on %s\n", loc.UUID, loc.Name)
}

func readObjectsFile(path string) ([]*models.Object, error) {
	if path == "-" {
		return cli.ReadObjects(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cli.ReadObjects(f)
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "agent URL")
	vector := fs.String("vector", "", "comma separated query components")
	k := fs.Uint("k", 10, "number of neighbors")
	epsilon := fs.Float64("epsilon", 0.1, "search radius expansion")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	_ = fs.Parse(os.Args[2:])

	if *vector == "" {
		fs.Usage()
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	vec, err := cli.ParseVector(*vector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid vector: %v\n", err)
		os.Exit(1)
	}
	response, err := cli.NewClient(*serverURL).Search(context.Background(), vec, uint32(*k), float32(*epsilon))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "agent URL")
	poolSize := fs.Uint("pool-size", 0, "build parallelism (0 = agent default)")
	_ = fs.Parse(os.Args[2:])

	start := time.Now()
	if err := cli.NewClient(*serverURL).CreateIndex(context.Background(), uint32(*poolSize)); err != nil {
		fmt.Fprintf(os.Stderr, "Build failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Index built in %s\n", time.Since(start).Round(time.Millisecond))
}

func printUsage() {
	fmt.Print(`vecagent - vector index agent

Usage:
  vecagent server [-config path] [-debug]
  vecagent insert [-server url] -id ID -vector 1,0,...
  vecagent insert [-server url] -file vectors.jsonl
  vecagent search [-server url] -vector 1,0,... [-k 10] [-epsilon 0.1] [-output text|compact|json]
  vecagent build  [-server url] [-pool-size N]
  vecagent version
  vecagent help
`)
}
