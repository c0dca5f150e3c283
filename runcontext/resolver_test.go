package runcontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuio/fmu-go/fmuenv"
	"github.com/fmuio/fmu-go/fmuerrors"
)

func TestResolveExplicitWinsOverEnvironment(t *testing.T) {
	env := fmuenv.Environment{Runpath: "/scratch/f/case/realization-0/iter-0"}

	res, err := Resolve("case", false, env)
	require.NoError(t, err)
	assert.Equal(t, ContextCase, res.Context)
	assert.False(t, res.Preprocessed)
}

func TestResolveFromEnvironmentWhenNoExplicit(t *testing.T) {
	tests := []struct {
		name string
		env  fmuenv.Environment
		want Context
	}{
		{"realization from runpath", fmuenv.Environment{Runpath: "/r"}, ContextRealization},
		{"case from experiment id", fmuenv.Environment{ExperimentID: "x"}, ContextCase},
		{"none outside orchestrator", fmuenv.Environment{}, ContextNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Resolve("", false, tc.env)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Context)
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestResolveIterationNormalizesToEnsemble(t *testing.T) {
	res, err := Resolve("iteration", false, fmuenv.Environment{ExperimentID: "x"})
	require.NoError(t, err)
	assert.Equal(t, ContextEnsemble, res.Context)
}

func TestResolveRealizationInCaseHookWarns(t *testing.T) {
	// Asking for realization-scoped export from a case-level pre-run hook is
	// legal but usually a mistake.
	env := fmuenv.Environment{ExperimentID: "x"}

	res, err := Resolve("realization", false, env)
	require.NoError(t, err)
	assert.Equal(t, ContextRealization, res.Context)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "fmu_context='case'")
}

func TestResolveRemovedSymlinkOptionRaises(t *testing.T) {
	_, err := Resolve("case_symlink_realization", false, fmuenv.Environment{})
	require.Error(t, err)

	var verr *fmuerrors.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "no longer supported")
}

func TestResolvePreprocessedAlias(t *testing.T) {
	res, err := Resolve("preprocessed", false, fmuenv.Environment{ExperimentID: "x"})
	require.NoError(t, err)
	assert.True(t, res.Preprocessed)
	assert.Equal(t, ContextCase, res.Context, "context resolves as if no explicit context was given")

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, fmuerrors.WarnDeprecation, res.Warnings[0].Kind)
}

func TestResolvePreprocessedRealizationIsIllegal(t *testing.T) {
	_, err := Resolve("realization", true, fmuenv.Environment{Runpath: "/r"})
	require.Error(t, err)

	// Same failure when the context comes from the environment alone.
	_, err = Resolve("", true, fmuenv.Environment{Runpath: "/r"})
	require.Error(t, err)
}

func TestResolvePreprocessedLegalForCaseAndNone(t *testing.T) {
	res, err := Resolve("case", true, fmuenv.Environment{ExperimentID: "x"})
	require.NoError(t, err)
	assert.True(t, res.Preprocessed)

	res, err = Resolve("", true, fmuenv.Environment{})
	require.NoError(t, err)
	assert.Equal(t, ContextNone, res.Context)
	assert.True(t, res.Preprocessed)
}

func TestResolveInvalidContext(t *testing.T) {
	_, err := Resolve("bogus", false, fmuenv.Environment{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid fmu_context")
}
