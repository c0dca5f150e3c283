package runcontext

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pkg/errors"

	"github.com/fmuio/fmu-go/fmuenv"
	"github.com/fmuio/fmu-go/fmuerrors"
	"github.com/fmuio/fmu-go/metadata"
)

// DefaultEnsembleName is assumed when the directory layout is flat and no
// ensemble folder exists between the case root and the realization folder.
const DefaultEnsembleName = "iter-0"

var realizationFolderPattern = regexp.MustCompile(`^realization-(\d+)$`)

// Config is the input for establishing a RunContext.
type Config struct {
	// CasepathProposed is an explicitly supplied candidate case root,
	// needed when the context is case-scoped and nothing can be detected
	// from a runpath.
	CasepathProposed string

	// Resolution is the resolved execution context, from Resolve.
	Resolution Resolution

	// Env is the environment snapshot, from fmuenv.Probe or a test.
	Env fmuenv.Environment

	// StartDir is the directory the upward walk starts from. Defaults to
	// the current working directory.
	StartDir string
}

// RunContext is the authoritative description of where the process runs and
// where exports go.
type RunContext struct {
	Context      Context
	Preprocessed bool

	// Env is the environment snapshot the context was established from.
	Env fmuenv.Environment

	InsideTool            bool
	InsideOrchestratedRun bool

	// Runpath is the realization-scoped folder, empty outside a
	// realization run.
	Runpath string

	// Casepath is the case root, empty when no case could be located.
	Casepath string

	// CaseMetadata is the parsed case document, nil when unavailable.
	CaseMetadata *metadata.CaseDocument

	EnsembleName    string
	RealizationName string

	// ExportRoot is the folder that, joined with an artifact's share path,
	// forms the absolute export path.
	ExportRoot string

	Warnings fmuerrors.Warnings
}

// New establishes the run context: it combines the resolved execution
// context with filesystem evidence found by walking upward from the start
// directory (or the runpath) looking for the case-metadata file.
//
// A case root that is expected but cannot be located is a warning here, not
// an error: the metadata assembler needs the case UUID and can give a far
// more actionable failure at that point.
func New(cfg Config) (*RunContext, error) {
	rc := &RunContext{
		Context:               cfg.Resolution.Context,
		Preprocessed:          cfg.Resolution.Preprocessed,
		Env:                   cfg.Env,
		InsideTool:            cfg.Env.InsideTool(),
		InsideOrchestratedRun: cfg.Env.InsideOrchestrator(),
		Warnings:              cfg.Resolution.Warnings,
	}

	startDir := cfg.StartDir
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "cannot determine working directory")
		}
		startDir = wd
	}

	if cfg.Env.Runpath != "" {
		abs, err := filepath.Abs(cfg.Env.Runpath)
		if err != nil {
			return nil, errors.Wrap(err, "cannot resolve runpath")
		}
		rc.Runpath = abs
	}

	rc.establishCasepath(cfg.CasepathProposed, startDir)
	rc.loadCaseMetadata()
	rc.establishNames(cfg.Env)
	rc.establishExportRoot(cfg.Env, startDir)

	return rc, nil
}

func (rc *RunContext) establishCasepath(proposed, startDir string) {
	if proposed != "" {
		if metadata.CasepathHasMetadata(proposed) {
			rc.Casepath = proposed
			return
		}
		rc.Warnings.Add(fmuerrors.WarnUser,
			"could not detect case metadata for the proposed casepath %s, "+
				"will try to detect the case root from the runpath", proposed)
	}

	walkFrom := rc.Runpath
	if walkFrom == "" {
		walkFrom = startDir
	}
	if found := findCaseRoot(walkFrom); found != "" {
		rc.Casepath = found
		return
	}

	if rc.Context == ContextCase || rc.Context == ContextEnsemble || rc.Context == ContextRealization {
		rc.Warnings.Add(fmuerrors.WarnUser,
			"could not auto detect the case metadata, please provide the "+
				"'casepath' as input. Metadata will be empty!")
	}
}

// findCaseRoot walks upward from start until a directory containing the
// case-metadata file is found, or the filesystem root is reached.
func findCaseRoot(start string) string {
	dir := start
	for {
		if metadata.CasepathHasMetadata(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (rc *RunContext) loadCaseMetadata() {
	if rc.Casepath == "" {
		return
	}
	doc, err := metadata.LoadCaseMetadata(rc.Casepath)
	if err != nil {
		rc.Warnings.Add(fmuerrors.WarnUser,
			"the case metadata under %s could not be parsed: %s. Metadata will be empty!",
			rc.Casepath, err)
		return
	}
	rc.CaseMetadata = doc
}

// establishNames extracts the ensemble and realization names from the last
// two runpath segments. A flat layout, with the realization folder directly
// under the case root, falls back to the default ensemble name.
func (rc *RunContext) establishNames(env fmuenv.Environment) {
	if rc.Runpath == "" || rc.Context == ContextCase {
		return
	}

	base := filepath.Base(rc.Runpath)
	parent := filepath.Base(filepath.Dir(rc.Runpath))

	switch {
	case realizationFolderPattern.MatchString(parent):
		rc.EnsembleName = base
		rc.RealizationName = parent
	case realizationFolderPattern.MatchString(base):
		rc.EnsembleName = DefaultEnsembleName
		rc.RealizationName = base
	default:
		rc.EnsembleName = DefaultEnsembleName
		rc.RealizationName = fmt.Sprintf("realization-%d", env.RealizationNumber)
	}
}

// establishExportRoot picks the folder exports are rooted at:
// realization runs export under the runpath, case and ensemble contexts
// under the case root, anything else under the start directory. An
// interactive modeling-tool session exports relative to the project root,
// two levels above its model folder.
func (rc *RunContext) establishExportRoot(env fmuenv.Environment, startDir string) {
	switch {
	case rc.Context == ContextRealization && rc.Runpath != "":
		rc.ExportRoot = rc.Runpath
	case rc.Context == ContextEnsemble && rc.Casepath != "":
		rc.ExportRoot = filepath.Join(rc.Casepath, rc.EnsembleName)
	case rc.Casepath != "":
		rc.ExportRoot = rc.Casepath
	case env.ToolMode == fmuenv.ToolInteractive:
		rc.ExportRoot = filepath.Dir(filepath.Dir(startDir))
	default:
		rc.ExportRoot = startDir
	}
}

// RealizationID returns the integer id parsed from the realization folder
// name, or the environment-provided number when the name is absent.
func (rc *RunContext) RealizationID() int {
	if m := realizationFolderPattern.FindStringSubmatch(rc.RealizationName); m != nil {
		id, err := strconv.Atoi(m[1])
		if err == nil {
			return id
		}
	}
	return rc.Env.RealizationNumber
}
