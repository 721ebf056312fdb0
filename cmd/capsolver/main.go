// Command capsolver runs Capsolver tasks from the shell.
//
//	capsolver [-config file.yaml] [-key KEY] balance
//	capsolver [-config file.yaml] [-key KEY] solve -variant recaptchav2proxyless -params '{"websiteURL":"...","websiteKey":"..."}'
//	capsolver [-config file.yaml] [-key KEY] run -task task.json [-poll=false]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	capsolver "github.com/anatolykoptev/go-capsolver"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "capsolver:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("capsolver", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	key := fs.String("key", os.Getenv("CAPSOLVER_API_KEY"), "API key (default $CAPSOLVER_API_KEY)")
	verbose := fs.Int("verbose", 0, "log poll status when non-zero")
	timeout := fs.Duration("timeout", 3*time.Minute, "overall deadline")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("missing command: balance, solve, run or variants")
	}

	fc, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	cfg := fc.Client
	if *key != "" {
		cfg.APIKey = *key
	}
	if *verbose != 0 {
		cfg.Verbose = *verbose
	}
	cfg.Logger = newLogger(stderr, fc.Log.Level, fc.Log.Format)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "variants" {
		fmt.Fprintln(stdout, strings.Join(capsolver.Variants(), "\n"))
		return nil
	}

	client, err := capsolver.NewClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, *timeout)
	defer cancel()

	switch cmd {
	case "balance":
		bal, err := client.Balance(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%.4f\n", bal)
		return nil
	case "solve":
		return runSolve(ctx, client, rest, stdout, stderr)
	case "run":
		return runTask(ctx, client, rest, stdout, stderr)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func runSolve(ctx context.Context, client *capsolver.Client, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("solve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	variant := fs.String("variant", "", "task variant, see `capsolver variants`")
	params := fs.String("params", "{}", "JSON object of task parameters")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var p map[string]any
	if err := json.Unmarshal([]byte(*params), &p); err != nil {
		return fmt.Errorf("parse -params: %w", err)
	}
	sol, err := client.SolveVariant(ctx, *variant, p)
	if err != nil {
		return err
	}
	return printJSON(stdout, sol)
}

func runTask(ctx context.Context, client *capsolver.Client, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	taskPath := fs.String("task", "", "JSON file holding the task record (\"-\" for stdin)")
	poll := fs.Bool("poll", true, "poll getTaskResult after createTask")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var data []byte
	var err error
	if *taskPath == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*taskPath)
	}
	if err != nil {
		return fmt.Errorf("read task: %w", err)
	}
	var task capsolver.CustomTask
	if err := json.Unmarshal(data, &task); err != nil {
		return fmt.Errorf("parse task: %w", err)
	}
	sol, err := client.RunTask(ctx, task, *poll)
	if err != nil {
		return err
	}
	return printJSON(stdout, sol)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newLogger builds the slog logger for the CLI.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
