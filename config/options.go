// Package config decodes the inliner's configuration surface (spec.md §6)
// from TOML, following the same open-unmarshal-validate shape as chai's
// mods.LoadModule.
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// ImportStatsMode controls emission of imported-function statistics (spec
// §6 "inliner-function-import-stats").
type ImportStatsMode int

const (
	// ImportStatsNone disables all import-stats tracking.
	ImportStatsNone ImportStatsMode = iota
	// ImportStatsBasic enables bookkeeping without per-callee detail.
	ImportStatsBasic
	// ImportStatsVerbose additionally dumps per-callee detail at pass end.
	ImportStatsVerbose
)

// Options is the decoded, validated configuration consumed by inline.NewSession.
type Options struct {
	// DisableInlinedAllocaMerging, when true, skips the Alloca Merger
	// entirely (spec §6 "disable-inlined-alloca-merging").
	DisableInlinedAllocaMerging bool

	// InsertLifetime is forwarded to the body-cloner so lifetime-start/end
	// markers may be inserted around inlined stack slots (spec §6
	// "insert_lifetime").
	InsertLifetime bool

	// ImportStats selects the import-stats tracking mode.
	ImportStats ImportStatsMode
}

// Default returns the zero-config defaults: merging enabled, lifetime
// markers inserted, import stats off — for callers embedding the pass
// without a config file.
func Default() *Options {
	return &Options{
		DisableInlinedAllocaMerging: false,
		InsertLifetime:              true,
		ImportStats:                 ImportStatsNone,
	}
}

// ConfigFileName is the default file name Load searches for when given a
// directory rather than a file path.
const ConfigFileName = "chaiinline.toml"

type tomlFile struct {
	Inline *tomlInline `toml:"inline"`
}

type tomlInline struct {
	DisableInlinedAllocaMerging bool   `toml:"disable-inlined-alloca-merging"`
	InsertLifetime              bool   `toml:"insert-lifetime"`
	FunctionImportStats         string `toml:"inliner-function-import-stats"`
}

// Load opens and decodes the TOML configuration file at path (or, if path is
// a directory, at path/ConfigFileName), validating its contents the way
// mods.LoadModule validates a module file.
func Load(path string) (*Options, error) {
	finfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if finfo.IsDir() {
		path = filepath.Join(path, ConfigFileName)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	buf, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var tf tomlFile
	if err := toml.Unmarshal(buf, &tf); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	opts := Default()
	if tf.Inline == nil {
		return opts, nil
	}

	opts.DisableInlinedAllocaMerging = tf.Inline.DisableInlinedAllocaMerging
	opts.InsertLifetime = tf.Inline.InsertLifetime

	mode, err := validateImportStats(tf.Inline.FunctionImportStats)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	opts.ImportStats = mode

	return opts, nil
}

func validateImportStats(s string) (ImportStatsMode, error) {
	switch s {
	case "", "no":
		return ImportStatsNone, nil
	case "basic":
		return ImportStatsBasic, nil
	case "verbose":
		return ImportStatsVerbose, nil
	default:
		return ImportStatsNone, fmt.Errorf("%q is not a valid inliner-function-import-stats value", s)
	}
}
