// Package convert runs the DWG -> DXF -> PDF pipeline and reports its
// progress the way the command line tool prints it.
package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/investit/dwg2pdf/internal/dwg"
	"github.com/investit/dwg2pdf/internal/dxf"
	"github.com/investit/dwg2pdf/internal/render"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitInput       = 1
	ExitToolMissing = 2
	ExitDWG         = 3
	ExitRender      = 4
)

// Error is a pipeline failure tagged with the exit code it maps to.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for err. Errors that did not come
// from the pipeline count as input errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ExitInput
}

type Job struct {
	Input   string
	Output  string
	Options render.Options
	// Dwg2dxf is an explicit converter path, empty to search for it.
	Dwg2dxf string
	Timeout time.Duration
}

type Result struct {
	Input     string
	Output    string
	Pages     int
	Layouts   []string
	Size      int64
	Recovered bool
	Warnings  []string
	Elapsed   time.Duration
}

// Pipeline prints progress to Stdout and failures to Stderr.
type Pipeline struct {
	Stdout io.Writer
	Stderr io.Writer
}

func New(stdout, stderr io.Writer) *Pipeline {
	return &Pipeline{Stdout: stdout, Stderr: stderr}
}

// Run converts job.Input to job.Output. The returned error is an *Error and
// has already been reported on Stderr.
func (p *Pipeline) Run(ctx context.Context, job Job) (*Result, error) {
	started := time.Now()
	input, err := filepath.Abs(job.Input)
	if err != nil {
		return nil, p.fail(ExitInput, err)
	}
	output, err := filepath.Abs(job.Output)
	if err != nil {
		return nil, p.fail(ExitInput, err)
	}
	if info, err := os.Stat(input); err != nil || info.IsDir() {
		return nil, p.fail(ExitInput, fmt.Errorf("Input file not found: %s", input))
	}
	ext := strings.ToLower(filepath.Ext(input))
	if ext != ".dwg" && ext != ".dxf" {
		return nil, p.fail(ExitInput, fmt.Errorf("Unsupported format '%s'. Expected .dwg or .dxf", ext))
	}
	opts := job.Options
	if opts.Source == "" {
		opts.Source = filepath.Base(input)
	}
	if err := opts.Validate(); err != nil {
		return nil, p.fail(ExitInput, err)
	}

	rsl := &Result{Input: input, Output: output}
	total, step := 1, 1
	dxfPath := input
	if ext == ".dwg" {
		total = 2
		tool, err := dwg.Locate(job.Dwg2dxf)
		if err != nil {
			return nil, p.fail(ExitToolMissing, err)
		}
		logger.Debugf("using %s", tool)
		conv, err := dwg.NewConverter(tool, job.Timeout)
		if err != nil {
			return nil, p.fail(ExitDWG, err)
		}
		defer func() {
			if err := conv.Close(); err != nil {
				logger.Warnf("removing temp dir: %v", err)
			}
		}()

		t0 := p.begin(step, total, "DWG -> DXF")
		converted, err := conv.Convert(ctx, input)
		if err != nil {
			return nil, p.failStep(ExitDWG, err)
		}
		if converted.Recovered {
			fmt.Fprint(p.Stdout, "CRASHED (partial DXF recovered) ")
		}
		p.done(t0)
		rsl.Recovered = converted.Recovered
		dxfPath = converted.DXFPath
		step++
	}

	t0 := p.begin(step, total, "DXF -> PDF")
	rendered, err := renderFile(dxfPath, output, opts)
	if err != nil {
		return nil, p.failStep(ExitRender, err)
	}
	p.done(t0)

	rsl.Pages = rendered.Pages
	rsl.Layouts = rendered.Layouts
	rsl.Warnings = rendered.Warnings
	if info, err := os.Stat(output); err == nil {
		rsl.Size = info.Size()
	}
	if n, err := api.PageCountFile(output); err != nil {
		logger.Warnf("reading back %s: %v", output, err)
	} else if n != rsl.Pages {
		logger.Warnf("%s has %d pages, expected %d", output, n, rsl.Pages)
		rsl.Pages = n
	}
	rsl.Elapsed = time.Since(started)

	fmt.Fprintf(p.Stdout, "\nDone: %s -> %s (%d %s, %.0f KB, %.2fs total)\n",
		filepath.Base(input), filepath.Base(output), rsl.Pages, plural(rsl.Pages, "page"),
		float64(rsl.Size)/1024, rsl.Elapsed.Seconds())
	return rsl, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func (p *Pipeline) begin(step, total int, name string) time.Time {
	fmt.Fprintf(p.Stdout, "[%d/%d] %s ... ", step, total, name)
	return time.Now()
}

func (p *Pipeline) done(t0 time.Time) {
	fmt.Fprintf(p.Stdout, "OK (%.2fs)\n", time.Since(t0).Seconds())
}

func (p *Pipeline) fail(code int, err error) error {
	fmt.Fprintf(p.Stderr, "Error: %v\n", err)
	return &Error{Code: code, Err: err}
}

func (p *Pipeline) failStep(code int, err error) error {
	fmt.Fprintln(p.Stderr, "FAILED")
	return p.fail(code, err)
}

// renderFile reads the DXF at path and writes the PDF to output.
func renderFile(path, output string, opts render.Options) (*render.Result, error) {
	doc, err := dxf.ReadFile(path)
	if err != nil {
		return nil, err
	}
	for _, w := range doc.Warnings {
		logger.Warnf("%s: %s", filepath.Base(path), w)
	}
	var rsl *render.Result
	err = writeAtomic(output, func(w io.Writer) error {
		var err error
		rsl, err = render.Render(doc, opts, w)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, w := range rsl.Warnings {
		logger.Warnf("%s", w)
	}
	return rsl, nil
}

// writeAtomic writes to a temp file next to path and renames it into place,
// so a failed write leaves no output behind. Missing directories are created.
func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".dwg2pdf-*.pdf")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
