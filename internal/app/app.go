package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rowjay/insights-synth/internal/archive"
	"github.com/rowjay/insights-synth/internal/catalog"
	"github.com/rowjay/insights-synth/internal/compress"
	"github.com/rowjay/insights-synth/internal/config"
	"github.com/rowjay/insights-synth/internal/errs"
	"github.com/rowjay/insights-synth/internal/layout"
	"github.com/rowjay/insights-synth/internal/lock"
	"github.com/rowjay/insights-synth/internal/manifest"
	"github.com/rowjay/insights-synth/internal/notify"
	"github.com/rowjay/insights-synth/internal/pcp"
	"github.com/rowjay/insights-synth/internal/provenance"
	"github.com/rowjay/insights-synth/internal/storage"
	"github.com/rowjay/insights-synth/internal/util"
)

const DefaultPattern = "undersized"

// State is a step of a generate run. Runs move through the states in
// declaration order and never go back.
type State string

const (
	StateStart              State = "START"
	StateExtracted          State = "EXTRACTED"
	StateAudited            State = "AUDITED"
	StateLayoutResolved     State = "LAYOUT_RESOLVED"
	StateCleaned            State = "CLEANED"
	StateSynthesized        State = "SYNTHESIZED"
	StateCompressed         State = "COMPRESSED"
	StateManifestUpdated    State = "MANIFEST_UPDATED"
	StateProvenanceResolved State = "PROVENANCE_RESOLVED"
	StatePackaged           State = "PACKAGED"
	StateDone               State = "DONE"
)

type App struct {
	Cfg      *config.Config
	Synth    *pcp.Synthesizer
	Storage  storage.Storage
	Log      zerolog.Logger
	Notifier notify.Notifier
}

func New(cfg *config.Config, store storage.Storage, log zerolog.Logger, notifier notify.Notifier) *App {
	synth := &pcp.Synthesizer{
		GeneratorPath:     cfg.Generator.Path,
		GeneratorTimeout:  cfg.Generator.Timeout,
		GeneratorEnv:      cfg.Generator.Env,
		CompressorPath:    cfg.Compressor.Path,
		CompressorArgs:    cfg.Compressor.Args,
		CompressorSuffix:  cfg.Compressor.Suffix,
		CompressorTimeout: cfg.Compressor.Timeout,
		Log:               log,
	}
	return &App{Cfg: cfg, Synth: synth, Storage: store, Log: log, Notifier: notifier}
}

type GenerateOptions struct {
	Input   string
	Pattern string
	// Output is the archive name without extension. Empty derives it from
	// the input name and pattern.
	Output string
}

type GenerateResult struct {
	Input              string
	Profile            catalog.Profile
	Key                string
	Object             storage.ObjectInfo
	UnitFiles          []string
	ProvenanceInjected bool
	Provenance         provenance.Report
	Duration           time.Duration
}

// run carries the state of one Generate call between steps.
type run struct {
	opts    GenerateOptions
	profile catalog.Profile
	state   State

	root    string
	found   provenance.Finding
	layout  layout.Layout
	unit    pcp.Unit
	result  *GenerateResult
	tmpl    *catalog.Provenance
	scratch string
}

// Generate turns one input bundle into a synthetic bundle for opts.Pattern.
// The scratch area is always removed; on any error nothing is written to
// the output backend.
func (a *App) Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	start := time.Now()
	if opts.Pattern == "" {
		opts.Pattern = DefaultPattern
	}
	if opts.Output == "" {
		opts.Output = util.DefaultOutputName(opts.Input, opts.Pattern)
	}
	r := &run{opts: opts, state: StateStart, result: &GenerateResult{Input: opts.Input}}

	var opErr error
	defer func() {
		r.result.Duration = time.Since(start)
		a.notify(start, r, opErr)
	}()

	res, err := a.generate(ctx, r)
	if err != nil {
		opErr = err
		a.Log.Error().Err(err).Str("state", string(r.state)).Str("kind", string(errs.KindOf(err))).Msg("generate failed")
		return nil, err
	}
	return res, nil
}

func (a *App) generate(ctx context.Context, r *run) (*GenerateResult, error) {
	profile, err := catalog.LookupProfile(r.opts.Pattern)
	if err != nil {
		return nil, err
	}
	r.profile = profile
	r.result.Profile = profile

	tmpl, err := catalog.ProvenanceTemplates()
	if err != nil {
		return nil, err
	}
	r.tmpl = tmpl

	if _, err := os.Stat(r.opts.Input); err != nil {
		return nil, fmt.Errorf("input archive: %w", err)
	}
	if err := a.Synth.Validate(); err != nil {
		return nil, err
	}

	if a.Cfg.Global.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Cfg.Global.OperationTimeout)
		defer cancel()
	}

	scratch, err := os.MkdirTemp(a.Cfg.Global.ScratchDir, "synthgen-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	r.scratch = scratch
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			a.Log.Warn().Err(rmErr).Str("scratch", scratch).Msg("remove scratch dir")
		}
	}()

	a.Log.Info().
		Str("input", r.opts.Input).
		Str("pattern", profile.Name).
		Str("output", r.opts.Output).
		Float64("expected_cpu_percent", profile.CPUUsagePercent).
		Float64("expected_memory_percent", profile.MemoryUsagePercent).
		Msg("generate started")

	steps := []struct {
		next State
		fn   func(context.Context, *run) error
	}{
		{StateExtracted, a.extract},
		{StateAudited, a.audit},
		{StateLayoutResolved, a.resolve},
		{StateCleaned, a.clean},
		{StateSynthesized, a.synthesize},
		{StateCompressed, a.compress},
		{StateManifestUpdated, a.updateManifest},
		{StateProvenanceResolved, a.resolveProvenance},
		{StatePackaged, a.pack},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", strings.ToLower(string(step.next)), err)
		}
		if err := step.fn(ctx, r); err != nil {
			return nil, fmt.Errorf("%s: %w", strings.ToLower(string(step.next)), err)
		}
		r.state = step.next
		a.Log.Debug().Str("state", string(r.state)).Msg("state transition")
	}
	r.state = StateDone
	a.Log.Debug().Str("state", string(r.state)).Msg("state transition")
	return r.result, nil
}

func (a *App) extract(_ context.Context, r *run) error {
	root, err := archive.Extract(r.opts.Input, r.scratch)
	if err != nil {
		return err
	}
	r.root = root
	a.Log.Info().Str("root", filepath.Base(root)).Msg("archive extracted")
	return nil
}

func (a *App) audit(_ context.Context, r *run) error {
	r.found = provenance.Audit(r.root)
	a.Log.Info().
		Bool("command_output", r.found.CommandOutput).
		Bool("manifest_entry", r.found.ManifestEntry).
		Bool("present", r.found.Present()).
		Msg("cloud provenance audited")
	return nil
}

func (a *App) resolve(_ context.Context, r *run) error {
	l, err := layout.Resolve(r.root, r.tmpl.CommandsDir)
	if err != nil {
		return err
	}
	r.layout = l
	a.Log.Info().
		Str("time_series_dir", rel(r.root, l.TimeSeriesDir)).
		Str("manifest_dir", rel(r.root, l.ManifestDir)).
		Msg("layout resolved")
	return nil
}

// clean drops every plain file in the time-series directory so the old unit
// is never mixed with the new one.
func (a *App) clean(_ context.Context, r *run) error {
	entries, err := os.ReadDir(r.layout.TimeSeriesDir)
	if err != nil {
		return fmt.Errorf("read time-series dir: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(r.layout.TimeSeriesDir, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
	}
	a.Log.Info().Int("removed", removed).Msg("time-series dir cleaned")
	return nil
}

func (a *App) synthesize(ctx context.Context, r *run) error {
	base := util.UnitName(r.profile.Name)
	r.unit = a.Synth.Unit(base)
	_, err := a.Synth.Synthesize(ctx, base, r.profile.Name, r.layout.TimeSeriesDir)
	return err
}

func (a *App) compress(ctx context.Context, r *run) error {
	files, err := a.Synth.Compress(ctx, r.unit.Base, r.layout.TimeSeriesDir)
	if err != nil {
		return err
	}
	r.result.UnitFiles = files
	return nil
}

func (a *App) updateManifest(_ context.Context, r *run) error {
	paths := r.unit.RelPaths(layout.TimeSeriesRel)
	err := manifest.UpdateTimeSeries(r.layout.ManifestDir, paths)
	switch {
	case errors.Is(err, manifest.ErrNotFound):
		a.Log.Warn().Str("file", manifest.TimeSeriesFile).Msg("time-series manifest entry not found, skipping update")
		return nil
	case err != nil:
		return err
	}
	listed, err := manifest.ReadTimeSeries(r.layout.ManifestDir)
	if err != nil {
		return err
	}
	if !slices.Equal(listed, paths) {
		return errs.Manifest("verify "+manifest.TimeSeriesFile, "lists %v, want %v", listed, paths)
	}
	a.Log.Info().Strs("files", paths).Msg("time-series manifest updated")
	return nil
}

func (a *App) resolveProvenance(_ context.Context, r *run) error {
	if r.found.Present() {
		a.Log.Info().Msg("cloud provenance present, nothing to inject")
		return nil
	}
	report, err := provenance.Inject(r.root)
	if err != nil {
		return err
	}
	r.result.ProvenanceInjected = true
	r.result.Provenance = report
	a.Log.Info().
		Int("commands", len(report.Commands)).
		Int("documents", len(report.Documents)).
		Strs("skipped", report.Skipped).
		Msg("cloud provenance injected")
	return nil
}

func (a *App) pack(ctx context.Context, r *run) error {
	key, err := a.outputKey(r.opts.Output)
	if err != nil {
		return errs.Package("output name", "%w", err)
	}
	r.result.Key = key

	guard, err := lock.Acquire(ctx, a.Cfg.Global.LockDir, key)
	if err != nil {
		return errs.Package("lock output", "%w", err)
	}
	defer guard.Release()
	a.Log.Debug().Str("lock", guard.Path()).Msg("output lock held")

	exists, err := a.Storage.Exists(ctx, key)
	if err != nil {
		return errs.Package("check "+a.Storage.Location(key), "%w", err)
	}
	if exists {
		a.Log.Warn().Str("location", a.Storage.Location(key)).Msg("replacing existing output")
	}

	obj, err := archive.Pack(ctx, r.root, a.Cfg.Output.Compression, a.Storage, key)
	if err != nil {
		return errs.Package("write "+a.Storage.Location(key), "%w", err)
	}
	r.result.Object = obj
	a.Log.Info().Str("location", obj.Location).Int64("size", obj.Size).Msg("output written")
	return nil
}

func (a *App) outputKey(name string) (string, error) {
	kind := a.Cfg.Output.Compression
	if kind == "" {
		kind = compress.TypeGzip
	}
	ext, err := compress.Extension(kind)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(name, ext) {
		name += ext
	}
	if a.Cfg.Output.Prefix == "" {
		return name, nil
	}
	return path.Join(a.Cfg.Output.Prefix, name), nil
}

func (a *App) notify(start time.Time, r *run, opErr error) {
	if a.Notifier == nil {
		return
	}
	event := notify.Event{
		Type:       "generate",
		Message:    fmt.Sprintf("generate %s from %s", r.opts.Pattern, filepath.Base(r.opts.Input)),
		Status:     statusFromErr(opErr),
		Input:      r.opts.Input,
		Output:     r.result.Object.Location,
		Pattern:    r.opts.Pattern,
		Provenance: r.result.ProvenanceInjected,
		StartedAt:  start,
		EndedAt:    time.Now(),
		Duration:   time.Since(start).String(),
	}
	if opErr != nil {
		event.Error = opErr.Error()
		event.ErrorKind = string(errs.KindOf(opErr))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.Notifier.Notify(ctx, event); err != nil {
		a.Log.Warn().Err(err).Msg("notification failed")
	}
}

func statusFromErr(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

func rel(root, p string) string {
	if r, err := filepath.Rel(root, p); err == nil {
		return filepath.ToSlash(r)
	}
	return p
}
