package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pstuifzand/doctree/internal/app"
	"github.com/pstuifzand/doctree/internal/config"
	"github.com/pstuifzand/doctree/internal/history"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default ~/.config/doctree/config.toml)")
	quiet := flag.Bool("q", false, "Do not print command output")
	flag.Parse()

	if err := run(*configPath, *quiet, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the script named by args[0], or stdin
func run(configPath string, quiet bool, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logFile, err := os.Create(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var out io.Writer = os.Stdout
	if quiet {
		out = io.Discard
	}
	application := app.NewApp(cfg, out, os.Stderr, log.Default())
	defer application.Close()

	if dir, err := history.DefaultDir(); err == nil {
		if m, err := history.NewManager(dir); err == nil {
			application.SetHistory(m)
		} else {
			log.Printf("find history disabled: %v", err)
		}
	}

	// the script comes from the first argument, or stdin
	script := io.Reader(os.Stdin)
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		script = f
	}

	return application.Run(script)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromFile(path)
}
