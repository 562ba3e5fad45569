// Package main is the hookline command line interface.
//
// hookline loads Lua plugins, registers their hook functions, and
// dispatches hook invocations from the command line or from stdin.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/hookline/hook"
	"github.com/dshills/hookline/internal/config"
	"github.com/dshills/hookline/internal/logger"
	"github.com/dshills/hookline/plugin"
	"github.com/dshills/hookline/registry"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	configPath  string
	pluginPaths string
	logLevel    string
	contextJSON string
	first       bool
	async       bool
	watch       bool
}

func run() int {
	opts := parseFlags()

	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	paths := cfg.Plugins.Paths
	if opts.pluginPaths != "" {
		paths = strings.Split(opts.pluginPaths, ",")
	}
	var loaderOpts []plugin.LoaderOption
	if len(paths) > 0 {
		loaderOpts = append(loaderOpts, plugin.WithPaths(paths...))
	}
	loader := plugin.NewLoader(loaderOpts...)

	reg := registry.New()
	mgr := plugin.NewManager(loader, reg)
	defer mgr.Close()

	if err := mgr.LoadAll(); err != nil {
		logger.Warn().Err(err).Msg("some plugins failed to load")
	}
	if len(mgr.Plugins()) == 0 {
		logger.Warn().Msg("no plugins loaded")
	}

	eng := hook.New(reg, hook.WithExceptionsBubble(cfg.Engine.ExceptionsBubble))

	// Single invocation: hookline [options] <hook> [json-context]
	if flag.NArg() > 0 {
		ctxJSON := opts.contextJSON
		if flag.NArg() > 1 {
			ctxJSON = flag.Arg(1)
		}
		ctx, err := parseContext(ctxJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		out, ok := dispatch(eng, opts, flag.Arg(0), ctx)
		fmt.Println(out)
		if !ok {
			return 1
		}
		return 0
	}

	return serve(eng, mgr, loader, opts, cfg)
}

// serve reads invocations from stdin, one per line, as
// "<hook-name> [json-context]", and prints one JSON result per line.
func serve(eng *hook.Engine, mgr *plugin.Manager, loader *plugin.Loader, opts options, cfg config.Config) int {
	if opts.watch || cfg.Plugins.Watch {
		w, err := plugin.NewWatcher(loader.Paths(), func() {
			if err := mgr.Reload(); err != nil {
				logger.Warn().Err(err).Msg("plugin reload failed")
			}
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer w.Close()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		os.Stdin.Close()
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		hookName, rest, _ := strings.Cut(line, " ")
		ctx, err := parseContext(strings.TrimSpace(rest))
		if err != nil {
			out, _ := sjson.Set(`{}`, "error", err.Error())
			fmt.Println(out)
			continue
		}
		out, _ := dispatch(eng, opts, hookName, ctx)
		fmt.Println(out)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseContext decodes a JSON object into an invocation context. Empty
// input means an empty context.
func parseContext(s string) (hook.Context, error) {
	if s == "" {
		return nil, nil
	}
	if !gjson.Valid(s) {
		return nil, fmt.Errorf("invalid context JSON: %s", s)
	}
	v := gjson.Parse(s).Value()
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("context must be a JSON object, got %s", s)
	}
	return hook.Context(m), nil
}

// dispatch runs one hook invocation and renders the outcome as JSON.
func dispatch(eng *hook.Engine, opts options, hookName string, ctx hook.Context) (string, bool) {
	var results []any
	var err error

	switch {
	case opts.first && opts.async:
		var v any
		v, err = eng.ACallFirst(hookName, ctx, nil, nil).Await()
		results, _ = v.([]any)
	case opts.first:
		results, err = eng.CallFirst(hookName, ctx)
	case opts.async:
		var v any
		v, err = eng.ACallAll(hookName, ctx, nil).Await()
		results, _ = v.([]any)
	default:
		results, err = eng.CallAll(hookName, ctx)
	}

	out, _ := sjson.Set(`{}`, "hook", hookName)
	if err != nil {
		out, _ = sjson.Set(out, "error", err.Error())
		return out, false
	}
	if results == nil {
		results = []any{}
	}
	out, _ = sjson.Set(out, "results", results)
	return out, true
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.pluginPaths, "plugins", "", "Comma-separated plugin search paths")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.contextJSON, "context", "", "Invocation context as a JSON object")
	flag.BoolVar(&opts.first, "first", false, "Stop at the first hook function that produces a value")
	flag.BoolVar(&opts.async, "async", false, "Dispatch hook functions concurrently")
	flag.BoolVar(&opts.watch, "watch", false, "Reload plugins when their sources change")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "hookline - plugin hook dispatcher\n\n")
		fmt.Fprintf(os.Stderr, "Usage: hookline [options] [hook-name [json-context]]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  hookline export '{\"path\": \"doc.md\"}'   Run one hook\n")
		fmt.Fprintf(os.Stderr, "  hookline -first resolve                  First-match dispatch\n")
		fmt.Fprintf(os.Stderr, "  hookline -watch                          Serve invocations from stdin\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("hookline %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts
}
