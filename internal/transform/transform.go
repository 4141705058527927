// Package transform exposes the parameter-name rewrite as an artifact
// transform: a pure function from one resolved API JAR to a directory of
// derived files, suitable for caching by the build system driving it.
package transform

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jarweave/jarweave/internal/metadata"
	"github.com/jarweave/jarweave/internal/rewrite"
	"github.com/jarweave/jarweave/internal/utils"
)

// apiArchivePrefix is the fixed artifact name prefix of the platform API JAR
// the transform applies to.
const apiArchivePrefix = "platform-api"

// Params are the immutable transform parameters, supplied once at
// registration and reused for every invocation. Both feed the cache key, so
// a version bump or metadata change invalidates prior outputs.
type Params struct {
	// Version is the platform version the API JAR is qualified with
	Version string

	// MetadataPath locates the metadata archive holding the API declaration
	// and the parameter-name index
	MetadataPath string
}

// Validate checks the parameters before registration
func (p Params) Validate() error {
	if p.Version == "" {
		return fmt.Errorf("transform requires a platform version")
	}
	if p.MetadataPath == "" {
		return fmt.Errorf("transform requires a metadata archive path")
	}
	if _, err := os.Stat(p.MetadataPath); err != nil {
		return fmt.Errorf("metadata archive not accessible: %w", err)
	}
	return nil
}

// Transform is one registered parameter-name transform
type Transform struct {
	params Params
	logger *zap.Logger
}

// New creates a transform with the given parameters
func New(params Params, logger *zap.Logger) (*Transform, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transform{params: params, logger: logger}, nil
}

// Params returns the transform's registration parameters
func (t *Transform) Params() Params { return t.params }

// ArchiveName returns the archive file name the transform applies to
func (t *Transform) ArchiveName() string {
	return fmt.Sprintf("%s-%s.jar", apiArchivePrefix, t.params.Version)
}

// AppliesTo reports whether the input file is the API JAR for the configured
// version. Anything else passes through untouched.
func (t *Transform) AppliesTo(inputPath string) bool {
	return filepath.Base(inputPath) == t.ArchiveName()
}

// Apply runs the transform: the API JAR for the configured version is
// expanded into outputDir with parameter names injected; any other input is
// copied into outputDir as the sole, unmodified output.
func (t *Transform) Apply(inputPath, outputDir string) error {
	if !t.AppliesTo(inputPath) {
		t.logger.Debug("input is not the API archive, passing through",
			zap.String("input", inputPath),
			zap.String("expected", t.ArchiveName()))
		dest := filepath.Join(outputDir, filepath.Base(inputPath))
		if err := utils.CopyFile(inputPath, dest); err != nil {
			return fmt.Errorf("failed to pass through %s: %w", inputPath, err)
		}
		return nil
	}

	index, err := metadata.Open(t.params.MetadataPath)
	if err != nil {
		return err
	}
	t.logger.Info("rewriting API archive",
		zap.String("input", inputPath),
		zap.String("version", t.params.Version),
		zap.Int("signatures", index.EntryCount()))

	return rewrite.NewRewriter(index, t.logger).Rewrite(inputPath, outputDir)
}
