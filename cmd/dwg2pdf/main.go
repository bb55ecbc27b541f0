package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/jxskiss/mcli"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/investit/dwg2pdf/internal/config"
	"github.com/investit/dwg2pdf/internal/convert"
)

// version is set at build time via ldflags.
var version = "3.0.0"

type cliArgs struct {
	Input      string        `cli:"input, DWG or DXF drawing to convert"`
	Output     string        `cli:"output, PDF file to write"`
	Margin     float64       `cli:"-m, --margin, page margin in mm (default 5)"`
	Color      string        `cli:"--color, source keeps the drawing colors, black prints everything black (default black)"`
	Background string        `cli:"--background, white or none (default white)"`
	Page       string        `cli:"--page, auto, a0 to a4, letter, legal or tabloid (default auto)"`
	Layouts    string        `cli:"--layouts, model or all to add one page per paperspace layout (default model)"`
	Stamp      bool          `cli:"--stamp, add a plot stamp with file name, layout, date and QR code"`
	Debug      bool          `cli:"--debug-extents, outline the drawing extents and the margins"`
	Dwg2dxf    string        `cli:"--dwg2dxf, path of the dwg2dxf executable"`
	Timeout    time.Duration `cli:"--timeout, limit for the DWG to DXF conversion (default 5m0s)"`
	Config     string        `cli:"--config, config file (default dwg2pdf.yaml in the working directory, next to dwg2pdf or in ~/.config/dwg2pdf)"`
	Verbose    bool          `cli:"-v, --verbose, log diagnostics"`
	LogLevel   string        `cli:"--log-level, debug, info, warn or error"`
	Version    bool          `cli:"--version, print the version and exit"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	var args cliArgs
	fs, err := mcli.Parse(&args,
		mcli.WithArgs(argv),
		mcli.WithErrorHandling(flag.ContinueOnError))
	if errors.Is(err, flag.ErrHelp) {
		return convert.ExitOK
	}
	if err != nil {
		return convert.ExitInput
	}
	if args.Version {
		fmt.Fprintf(stdout, "dwg2pdf %s\n", version)
		return convert.ExitOK
	}
	if args.Input == "" || args.Output == "" {
		fmt.Fprintln(stderr, "Error: input and output paths are required")
		fs.SetOutput(stderr)
		fs.Usage()
		return convert.ExitInput
	}

	cfg, err := config.Load(args.Config)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return convert.ExitInput
	}
	applyFlags(cfg, &args, setFlags(fs))
	logger.Configure(logFlags(cfg.LogLevel, args.Verbose))
	if cfg.File != "" {
		logger.Debugf("using config file %s", cfg.File)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return convert.ExitInput
	}

	// pdfcpu only reads back the page count, its config dir is not needed
	api.DisableConfigDir()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	_, err = convert.New(stdout, stderr).Run(ctx, convert.Job{
		Input:   args.Input,
		Output:  args.Output,
		Options: cfg.RenderOptions(""),
		Dwg2dxf: cfg.Dwg2dxf,
		Timeout: cfg.Timeout,
	})
	return convert.ExitCode(err)
}

func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

// applyFlags lets flags given on the command line win over the config file
// and environment.
func applyFlags(cfg *config.Config, args *cliArgs, set map[string]bool) {
	if set["margin"] || set["m"] {
		cfg.Margin = args.Margin
	}
	if set["color"] {
		cfg.Color = args.Color
	}
	if set["background"] {
		cfg.Background = args.Background
	}
	if set["page"] {
		cfg.Page = args.Page
	}
	if set["layouts"] {
		cfg.Layouts = args.Layouts
	}
	if set["stamp"] {
		cfg.Stamp = args.Stamp
	}
	if set["debug-extents"] {
		cfg.Debug = args.Debug
	}
	if set["dwg2dxf"] {
		cfg.Dwg2dxf = args.Dwg2dxf
	}
	if set["timeout"] {
		cfg.Timeout = args.Timeout
	}
	if set["log-level"] {
		cfg.LogLevel = args.LogLevel
	}
}

func logFlags(level string, verbose bool) logger.Flags {
	flags := logger.Flags{
		Level:       level,
		LogToStderr: true,
	}
	if verbose {
		flags.LevelCount = 1
	}
	return flags
}
