//go:build mage

// Package main contains Mage build targets for dwg2pdf.
package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	distDir = "dist"
	binName = "dwg2pdf"
	cmdPkg  = "./cmd/dwg2pdf"
	version = "3.0.0"
)

// libreDWGFiles are copied next to the Windows binary. LIBREDWG_DIR points
// at an unpacked LibreDWG release.
var libreDWGFiles = []string{"dwg2dxf.exe", "libredwg-0.dll"}

const libreDWGNotice = `dwg2dxf.exe and libredwg-0.dll are part of GNU LibreDWG, licensed under the
GNU General Public License v3. The corresponding source code is available at
https://www.gnu.org/software/libredwg/ and https://github.com/LibreDWG/libredwg.
`

func ldflags() string {
	return "-s -w -X main.version=" + version
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", ldflags(), "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs all unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Windows cross-compiles bin/dwg2pdf.exe.
func Windows() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName+".exe")
	env := map[string]string{"GOOS": "windows", "GOARCH": "amd64", "CGO_ENABLED": "0"}
	if err := sh.RunWithV(env, "go", "build", "-ldflags", ldflags(), "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Package zips the Windows binary together with dwg2dxf and the LibreDWG
// DLL into dist/.
func Package() error {
	mg.Deps(Windows)
	libreDWG := os.Getenv("LIBREDWG_DIR")
	if libreDWG == "" {
		return fmt.Errorf("LIBREDWG_DIR is not set")
	}
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", distDir, err)
	}
	out := filepath.Join(distDir, fmt.Sprintf("%s-%s-windows-amd64.zip", binName, version))
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	files := map[string]string{binName + ".exe": filepath.Join(binDir, binName+".exe")}
	for _, name := range libreDWGFiles {
		files[name] = filepath.Join(libreDWG, name)
	}
	for _, name := range append([]string{binName + ".exe"}, libreDWGFiles...) {
		if err := addFile(zw, name, files[name]); err != nil {
			return err
		}
	}
	w, err := zw.Create("LIBREDWG-NOTICE.txt")
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, libreDWGNotice); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	fmt.Printf("Packaged %s\n", out)
	return nil
}

func addFile(zw *zip.Writer, name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	defer src.Close()
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// Clean removes build output.
func Clean() error {
	for _, dir := range []string{binDir, distDir} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}
