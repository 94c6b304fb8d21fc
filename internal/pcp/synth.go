package pcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rowjay/insights-synth/internal/errs"
	"github.com/rowjay/insights-synth/internal/util"
)

const (
	DefaultGeneratorTimeout  = 60 * time.Second
	DefaultCompressorTimeout = 60 * time.Second
)

// Synthesizer runs the generator and compressor for one unit at a time.
type Synthesizer struct {
	GeneratorPath     string
	GeneratorTimeout  time.Duration
	GeneratorEnv      map[string]string
	CompressorPath    string
	CompressorArgs    []string
	CompressorSuffix  string
	CompressorTimeout time.Duration
	Log               zerolog.Logger
}

// Validate checks that both external programs can be found.
func (s *Synthesizer) Validate() error {
	if err := util.RequireBinary(s.GeneratorPath); err != nil {
		return errs.Generation("check generator", "%w", err)
	}
	if err := util.RequireBinary(s.CompressorPath); err != nil {
		return errs.Compression("check compressor", "%w", err)
	}
	return nil
}

func (s *Synthesizer) Unit(base string) Unit {
	return NewUnit(base, s.CompressorSuffix)
}

// Synthesize clears any previous files for base from workDir, runs the
// generator there and verifies the three raw files were created.
func (s *Synthesizer) Synthesize(ctx context.Context, base, profile, workDir string) ([]string, error) {
	unit := s.Unit(base)
	for _, name := range unit.allVariants() {
		if err := os.Remove(filepath.Join(workDir, name)); err != nil && !os.IsNotExist(err) {
			return nil, errs.Generation("clear stale unit", "%w", err)
		}
	}

	generator, err := util.ResolveBinary(s.GeneratorPath)
	if err != nil {
		return nil, errs.Generation("resolve generator", "%w", err)
	}
	start := time.Now()
	res, err := util.RunCaptured(ctx, s.GeneratorTimeout, workDir, generator, []string{base, profile}, s.GeneratorEnv)
	if err != nil {
		return nil, errs.Generation("run generator", "%v: %s", err, res.Diagnostic())
	}
	s.Log.Debug().Str("unit", base).Str("profile", profile).Dur("elapsed", time.Since(start)).Msg("generator finished")

	if missing := Missing(workDir, unit.RawFiles()); len(missing) > 0 {
		return nil, errs.Generation("verify generator output", "expected file not created: %s", strings.Join(missing, ", "))
	}
	return unit.RawFiles(), nil
}

// Compress compresses the samples and metadata files of base in place and
// returns the final file names. Compression stops at the first failure.
func (s *Synthesizer) Compress(ctx context.Context, base, workDir string) ([]string, error) {
	unit := s.Unit(base)
	compressor, err := util.ResolveBinary(s.CompressorPath)
	if err != nil {
		return nil, errs.Compression("resolve compressor", "%w", err)
	}
	for _, name := range unit.CompressTargets() {
		if _, err := os.Stat(filepath.Join(workDir, name)); err != nil {
			return nil, errs.Compression("compress "+name, "%w", err)
		}
		args := append(append([]string{}, s.CompressorArgs...), name)
		res, err := util.RunCaptured(ctx, s.CompressorTimeout, workDir, compressor, args, nil)
		if err != nil {
			return nil, errs.Compression("compress "+name, "%v: %s", err, res.Diagnostic())
		}
		// Compressors that keep their input would leave a second copy in the unit.
		if err := os.Remove(filepath.Join(workDir, name)); err != nil && !os.IsNotExist(err) {
			return nil, errs.Compression("compress "+name, "remove source: %w", err)
		}
		s.Log.Debug().Str("file", name).Str("to", name+s.CompressorSuffix).Msg("compressed")
	}

	final := unit.FinalFiles()
	if missing := Missing(workDir, final); len(missing) > 0 {
		return nil, errs.Compression("verify compressed unit", "missing after compression: %s", strings.Join(missing, ", "))
	}
	return final, nil
}
