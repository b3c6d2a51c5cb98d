// Command cresthome is an MCP stdio server exposing remote-control tools for
// a Crestron Home controller: room and device discovery, shade and scene
// control, thermostats, sensors, and natural-language device resolution.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/germanamz/cresthome/pkg/crestron"
	"github.com/germanamz/cresthome/pkg/hometools"
	"github.com/germanamz/cresthome/pkg/tools/mcpserver"
)

const version = "0.3.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cresthome [flags]\n\nServe Crestron Home control tools over MCP on stdin/stdout.\n\nFlags:\n")
		flag.PrintDefaults()
	}

	configPath := flag.String("config", "cresthome.yaml", "path to configuration file (ignored if missing)")
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	timeoutSeconds := flag.Int("timeout", 0, "controller request timeout in seconds (overrides the config file)")
	insecure := flag.Bool("insecure", true, "skip TLS certificate verification (overrides the config file)")
	flag.Parse()

	// Flags left at their defaults must not shadow the config file, so only
	// the ones the user actually passed become overrides.
	var timeoutOverride *int
	var insecureOverride *bool
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			timeoutOverride = timeoutSeconds
		case "insecure":
			insecureOverride = insecure
		}
	})

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(*configPath, timeoutOverride, insecureOverride); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, timeoutSeconds *int, insecure *bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.applyOverrides(timeoutSeconds, insecure)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{
		Timeout: cfg.Timeout(),
		Transport: &http.Transport{
			// Controllers use self-signed certificates.
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.SkipTLSVerify()}, //nolint:gosec
		},
	}

	sessions := crestron.NewSessionManager(client)
	dispatcher := crestron.NewDispatcher(sessions, client)

	if cfg.Host != "" && cfg.AuthToken != "" {
		if _, err := sessions.Authenticate(ctx, cfg.Host, cfg.AuthToken); err != nil {
			// The client can still authenticate through the tool.
			fmt.Fprintf(os.Stderr, "warning: startup authentication failed: %v\n", err)
		}
	}

	server := mcpserver.New("cresthome", version)
	server.RegisterBox(hometools.New(sessions, dispatcher).Tools())

	err = server.Serve(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
