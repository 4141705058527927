// Package rewrite implements the class-file rewriting pipeline: it walks an
// API JAR entry by entry, injects parameter-name attributes into the classes
// that belong to the published API surface, and mirrors everything else into
// the output directory untouched.
package rewrite

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jarweave/jarweave/internal/archive"
	"github.com/jarweave/jarweave/internal/classfile"
	"github.com/jarweave/jarweave/internal/metadata"
)

// packageInfoClass has no methods and is never worth parsing, regardless of
// what the API declaration says about its package.
const packageInfoClass = "package-info.class"

// Rewriter drives the per-entry classify/rewrite/copy loop
type Rewriter struct {
	index  *metadata.Index
	logger *zap.Logger
}

// NewRewriter creates a rewriter backed by the given metadata index
func NewRewriter(index *metadata.Index, logger *zap.Logger) *Rewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rewriter{index: index, logger: logger}
}

// Rewrite expands the input JAR into outputDir, rewriting public-API class
// entries and copying every other entry byte-for-byte. Any read, parse, or
// write failure aborts the whole invocation; there is no partial recovery.
func (rw *Rewriter) Rewrite(inputJar, outputDir string) error {
	r, err := archive.OpenReader(inputJar)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			// directories materialize implicitly under their entries
			continue
		}
		if err := rw.processEntry(f, outputDir); err != nil {
			return err
		}
	}

	return nil
}

func (rw *Rewriter) processEntry(f *zip.File, outputDir string) error {
	dest, err := entryDestination(outputDir, f.Name)
	if err != nil {
		return err
	}

	if rw.shouldRewrite(f.Name) {
		data, err := archive.ReadEntry(f)
		if err != nil {
			return err
		}
		rewritten, changed, err := rw.rewriteClass(f.Name, data)
		if err != nil {
			return err
		}
		if changed {
			rw.logger.Debug("rewrote class entry", zap.String("entry", f.Name))
			return writeFile(dest, bytes.NewReader(rewritten))
		}
		// nothing matched; emit the original bytes
		return writeFile(dest, bytes.NewReader(data))
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	return writeFile(dest, rc)
}

// shouldRewrite classifies an entry: class files on the public API surface
// are rewritten, everything else is copied through.
func (rw *Rewriter) shouldRewrite(name string) bool {
	if path.Base(name) == packageInfoClass {
		return false
	}
	if !strings.HasSuffix(name, ".class") {
		return false
	}
	return rw.index.IsPublicAPI(strings.TrimSuffix(name, ".class"))
}

func (rw *Rewriter) rewriteClass(name string, data []byte) ([]byte, bool, error) {
	cf, err := classfile.ParseBytes(data)
	if err != nil {
		return nil, false, fmt.Errorf("entry %s: %w", name, err)
	}

	changed, err := InjectParameterNames(cf, rw.index)
	if err != nil {
		return nil, false, fmt.Errorf("entry %s: %w", name, err)
	}
	if !changed {
		return nil, false, nil
	}

	out, err := cf.Bytes()
	if err != nil {
		return nil, false, fmt.Errorf("entry %s: %w", name, err)
	}
	return out, true, nil
}

// entryDestination resolves an entry name below outputDir, rejecting names
// that would escape it.
func entryDestination(outputDir, name string) (string, error) {
	if strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("entry %s escapes output directory", name)
	}
	dest := filepath.Join(outputDir, filepath.FromSlash(name))
	if !strings.HasPrefix(dest, filepath.Clean(outputDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %s escapes output directory", name)
	}
	return dest, nil
}

// writeFile streams content to dest, creating parent directories as needed
func writeFile(dest string, content io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, content); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dest, err)
	}
	return nil
}
