// Package dwg converts DWG drawings to DXF by running LibreDWG's dwg2dxf.
package dwg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
)

// DefaultTimeout limits a single dwg2dxf run.
const DefaultTimeout = 300 * time.Second

var ErrNoOutput = errors.New("dwg2dxf produced no output.")

// Result describes the intermediate DXF.
type Result struct {
	DXFPath string
	// Recovered is set when dwg2dxf crashed and the partial DXF it left
	// behind was repaired.
	Recovered bool
	Stdout    string
	Stderr    string
}

// Converter runs dwg2dxf into a private temp dir that lives until Close.
type Converter struct {
	tool    string
	timeout time.Duration
	tempDir string
	exec    executor
}

func NewConverter(tool string, timeout time.Duration) (*Converter, error) {
	return newConverter(defaultExec, tool, timeout)
}

func newConverter(ex executor, tool string, timeout time.Duration) (*Converter, error) {
	tempDir, err := os.MkdirTemp("", "dwg2pdf_")
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Converter{
		tool:    tool,
		timeout: timeout,
		tempDir: tempDir,
		exec:    ex,
	}, nil
}

// Convert writes <stem>.dxf for the DWG at input into the temp dir.
func (c *Converter) Convert(ctx context.Context, input string) (*Result, error) {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	rsl := &Result{DXFPath: filepath.Join(c.tempDir, stem+".dxf")}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Capture stdout & stderr to show on error
	var outBuf, errBuf bytes.Buffer
	args := []string{input, "-o", rsl.DXFPath, "-y"}
	logger.Debugf("running %s %s", c.tool, strings.Join(args, " "))
	code, err := c.exec.Run(ctx, c.tool, args, &outBuf, &errBuf)
	rsl.Stdout, rsl.Stderr = outBuf.String(), errBuf.String()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("dwg2dxf timed out after %s", c.timeout)
		}
		return nil, fmt.Errorf("running dwg2dxf: %w", err)
	}

	if code != 0 {
		if nonEmpty(rsl.DXFPath) {
			repaired, rerr := RepairTruncated(rsl.DXFPath)
			if rerr != nil {
				logger.Warnf("repairing partial DXF: %v", rerr)
			}
			if repaired {
				logger.Infof("dwg2dxf exited with %d, recovered partial DXF %s", code, rsl.DXFPath)
				rsl.Recovered = true
				return rsl, nil
			}
		}
		stderr := strings.TrimSpace(rsl.Stderr)
		if stderr == "" {
			stderr = "unknown error"
		}
		return nil, fmt.Errorf("dwg2dxf failed (exit %d): %s", code, stderr)
	}
	if !nonEmpty(rsl.DXFPath) {
		return nil, ErrNoOutput
	}
	return rsl, nil
}

// Close removes the temp dir and the DXF in it.
func (c *Converter) Close() error {
	if c.tempDir != "" {
		return os.RemoveAll(c.tempDir)
	}
	return nil
}

func nonEmpty(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// entityStarts are the record types a truncated DXF may be cut back to.
var entityStarts = map[string]bool{
	"LINE": true, "ARC": true, "CIRCLE": true, "LWPOLYLINE": true,
	"POLYLINE": true, "INSERT": true, "MTEXT": true, "TEXT": true,
	"DIMENSION": true, "HATCH": true, "SPLINE": true, "ELLIPSE": true,
	"SOLID": true, "POINT": true, "ATTRIB": true, "ATTDEF": true,
	"BLOCK": true, "ENDBLK": true, "VIEWPORT": true, "LEADER": true,
	"MLINE": true, "3DFACE": true, "TRACE": true, "SEQEND": true,
}

var repairTrailer = []byte("\n  0\nENDSEC\n  0\nEOF\n")

// RepairTruncated closes a DXF that ends without EOF. The file is cut before
// the last record that starts with a known entity type, the possibly partial
// one, and ENDSEC/EOF are appended. Bytes before the cut are kept verbatim.
// It reports whether the file was rewritten.
func RepairTruncated(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	repaired, ok := repairTruncated(data)
	if !ok {
		return false, nil
	}
	if err := os.WriteFile(path, repaired, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func repairTruncated(data []byte) ([]byte, bool) {
	if bytes.HasSuffix(bytes.TrimRight(data, " \t\r\n"), []byte("EOF")) {
		return nil, false
	}
	lines := bytes.Split(data, []byte("\n"))
	cut := -1
	for i := len(lines) - 2; i > 0; i-- {
		if string(bytes.TrimSpace(lines[i])) == "0" && entityStarts[string(bytes.TrimSpace(lines[i+1]))] {
			cut = i
			break
		}
	}
	if cut < 0 {
		return nil, false
	}
	rsl := bytes.Join(lines[:cut], []byte("\n"))
	return append(rsl, repairTrailer...), true
}
