package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cyra/ngxlog/internal/config"
	"github.com/cyra/ngxlog/internal/logging"
	"github.com/cyra/ngxlog/internal/pipeline"
	"github.com/cyra/ngxlog/internal/watch"
)

var (
	configPath  = flag.String("config", "", "Path to an optional YAML configuration file")
	dirFlag     = flag.String("dir", "", "Directory holding access-stream.log and error.log")
	outFlag     = flag.String("out", "", "Output path (default combined_data.<format>)")
	formatFlag  = flag.String("format", "", "Output format: csv, xlsx, jsonl")
	workersFlag = flag.Int("workers", 0, "Files processed concurrently")
	watchFlag   = flag.Bool("watch", false, "Rerun whenever an input file or the config changes")
	showVersion = flag.Bool("version", false, "Print version and exit")
	version     = "dev" // Set via ldflags: -X main.version=v1.0.0
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("ngxlog version", version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.Logging.Level), cfg.Logging.JSON)

	if cfg.Input.Dir == "" {
		dir, err := promptDir(os.Stdin, os.Stdout, "Enter the directory where Nginx logs are stored: ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read directory: %v\n", err)
			os.Exit(1)
		}
		cfg.Input.Dir = dir
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := pipeline.New(cfg, logger).Run(ctx, cfg.Input.Dir)
	if err != nil {
		logger.Errorf("run failed: %v", err)
		fmt.Fprintf(os.Stderr, "An error occurred: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Data extraction complete. Combined data saved to %s.\n", res.OutputPath)

	if !cfg.Watch.Enabled {
		return
	}

	dir := cfg.Input.Dir
	w := &watch.Watcher{
		Dir:        dir,
		ConfigPath: *configPath,
		Debounce:   cfg.Watch.Debounce,
		Store:      config.NewStore(cfg),
		Logger:     logger,
		Reload:     loadConfig,
		OnChange: func(ctx context.Context, cfg *config.Config) {
			res, err := pipeline.New(cfg, logger).Run(ctx, dir)
			if err != nil {
				logger.Errorf("rerun failed, previous output kept: %v", err)
				return
			}
			fmt.Printf("Data extraction complete. Combined data saved to %s.\n", res.OutputPath)
		},
	}
	logger.Infof("watching %s for changes", dir)
	if err := w.Run(ctx); err != nil {
		logger.Errorf("watch stopped: %v", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// loadConfig reads path (or the defaults when empty) and applies command line overrides.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if *dirFlag != "" {
		cfg.Input.Dir = *dirFlag
	}
	if *outFlag != "" {
		cfg.Output.Path = *outFlag
	}
	if *formatFlag != "" {
		if *outFlag == "" && cfg.Output.Path == config.DefaultOutputPath(cfg.Output.Format, cfg.Output.Compression) {
			cfg.Output.Path = ""
		}
		cfg.Output.Format = *formatFlag
	}
	if *workersFlag > 0 {
		cfg.Input.Workers = *workersFlag
	}
	if *watchFlag {
		cfg.Watch.Enabled = true
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Input.Dir != "" {
		if err := checkDir(cfg.Input.Dir); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// promptDir asks until an existing directory is entered.
func promptDir(in io.Reader, out io.Writer, prompt string) (string, error) {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", errors.New("no directory given")
		}
		dir := strings.TrimSpace(sc.Text())
		if dir != "" && checkDir(dir) == nil {
			return dir, nil
		}
		fmt.Fprintln(out, "Invalid directory. Please try again.")
	}
}

// signalContext returns a context that is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
