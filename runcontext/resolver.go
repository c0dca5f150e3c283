// Package runcontext resolves where in the experiment hierarchy the calling
// process executes, and establishes the paths everything else hangs off.
package runcontext

import (
	"strings"

	"github.com/fmuio/fmu-go/fmuenv"
	"github.com/fmuio/fmu-go/fmuerrors"
)

// Context is the logical execution context of the calling process.
type Context string

const (
	// ContextNone means outside any orchestrated run, e.g. a standalone
	// script or an interactive modeling-tool session.
	ContextNone Context = ""
	// ContextCase means an orchestrator case-level pre-run hook.
	ContextCase Context = "case"
	// ContextEnsemble means an ensemble-level export.
	ContextEnsemble Context = "ensemble"
	// ContextRealization means an orchestrator-managed realization run.
	ContextRealization Context = "realization"
)

// removedContextSymlink is a removed option that must raise, not be ignored.
const removedContextSymlink = "case_symlink_realization"

// deprecatedContextPreprocessed is a deprecated alias for the preprocessed
// flag.
const deprecatedContextPreprocessed = "preprocessed"

// ParseContext parses a context string. The legacy literal "iteration" is
// normalized to ensemble.
func ParseContext(s string) (Context, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return ContextNone, nil
	case "case":
		return ContextCase, nil
	case "ensemble", "iteration":
		return ContextEnsemble, nil
	case "realization":
		return ContextRealization, nil
	default:
		return ContextNone, fmuerrors.NewValidationError(
			"invalid fmu_context %q, valid contexts are: case, ensemble, realization", s)
	}
}

// Resolution is the immutable outcome of resolving the execution context.
type Resolution struct {
	Context      Context
	Preprocessed bool
	Warnings     fmuerrors.Warnings
}

// Resolve decides the effective execution context from the caller's explicit
// request, the preprocessed flag and the environment-derived context.
//
// An explicit request wins over the environment. Recoverable oddities come
// back as warnings on the Resolution; only two combinations fail: the removed
// "case_symlink_realization" option, and preprocessed data in a realization
// context.
func Resolve(explicit string, preprocessed bool, env fmuenv.Environment) (Resolution, error) {
	var warnings fmuerrors.Warnings

	if strings.EqualFold(explicit, removedContextSymlink) {
		return Resolution{}, fmuerrors.NewValidationError(
			"fmu_context 'case_symlink_realization' is no longer supported; " +
				"export the data as preprocessed outside the orchestrator and " +
				"re-export with fmu_context='case' in a pre-run workflow")
	}

	if strings.EqualFold(explicit, deprecatedContextPreprocessed) {
		warnings.Add(fmuerrors.WarnDeprecation,
			"using fmu_context='preprocessed' is deprecated, use the explicit "+
				"'preprocessed' argument instead")
		explicit = ""
		preprocessed = true
	}

	envContext := fromEnvContext(env.ContextFromEnv())

	resolved := envContext
	if explicit != "" {
		requested, err := ParseContext(explicit)
		if err != nil {
			return Resolution{}, err
		}
		resolved = requested

		if requested == ContextRealization && envContext == ContextCase {
			warnings.Add(fmuerrors.WarnUser,
				"fmu_context is set to 'realization', but no realization runpath "+
					"was detected from the environment. Did you mean fmu_context='case'?")
		}
		if requested == ContextEnsemble && envContext == ContextRealization {
			warnings.Add(fmuerrors.WarnUser,
				"fmu_context is set to 'ensemble', but a realization environment "+
					"was detected. Did you mean fmu_context='realization'?")
		}
	}

	if preprocessed && resolved == ContextRealization {
		return Resolution{}, fmuerrors.NewValidationError(
			"cannot export preprocessed data in fmu_context='realization'; " +
				"preprocessed data belongs to fmu_context='case' or outside the orchestrator")
	}

	return Resolution{Context: resolved, Preprocessed: preprocessed, Warnings: warnings}, nil
}

func fromEnvContext(c fmuenv.Context) Context {
	switch c {
	case fmuenv.ContextRealization:
		return ContextRealization
	case fmuenv.ContextCase:
		return ContextCase
	default:
		return ContextNone
	}
}
