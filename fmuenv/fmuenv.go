// Package fmuenv probes the process environment for orchestrator and
// modeling-tool signals.
//
// This is the only package in fmu-go that reads environment variables. Every
// other component consumes the plain Environment struct by injection, which
// keeps their behavior deterministic under test.
package fmuenv

import (
	"os"
	"strconv"
)

// Environment variable names set by the orchestrator (ERT) at startup and
// during forward-model steps.
const (
	EnvRunpath           = "_ERT_RUNPATH"
	EnvExperimentID      = "_ERT_EXPERIMENT_ID"
	EnvEnsembleID        = "_ERT_ENSEMBLE_ID"
	EnvSimulationMode    = "_ERT_SIMULATION_MODE"
	EnvRealizationNumber = "_ERT_REALIZATION_NUMBER"
	EnvIterationNumber   = "_ERT_ITERATION_NUMBER"

	// EnvToolExecMode is set when the interactive modeling tool is started
	// by its launcher, and holds "interactive" or "batch".
	EnvToolExecMode = "RUNRMS_EXEC_MODE"
)

// Context is the execution context derived from orchestrator variables.
type Context string

const (
	ContextNone        Context = ""
	ContextCase        Context = "case"
	ContextRealization Context = "realization"
)

// ToolMode reports how the interactive modeling tool is running, if at all.
type ToolMode string

const (
	ToolNone        ToolMode = ""
	ToolInteractive ToolMode = "interactive"
	ToolBatch       ToolMode = "batch"
)

// Environment is a snapshot of all signals fmu-go consumes from the process
// environment. The zero value means "no orchestrator, no modeling tool".
type Environment struct {
	Runpath           string
	ExperimentID      string
	EnsembleID        string
	SimulationMode    string
	RealizationNumber int
	IterationNumber   int
	ToolMode          ToolMode
}

// Probe reads the process environment once and returns the snapshot.
func Probe() Environment {
	return Environment{
		Runpath:           os.Getenv(EnvRunpath),
		ExperimentID:      os.Getenv(EnvExperimentID),
		EnsembleID:        os.Getenv(EnvEnsembleID),
		SimulationMode:    os.Getenv(EnvSimulationMode),
		RealizationNumber: intFromEnv(EnvRealizationNumber),
		IterationNumber:   intFromEnv(EnvIterationNumber),
		ToolMode:          ToolMode(os.Getenv(EnvToolExecMode)),
	}
}

func intFromEnv(name string) int {
	n, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return 0
	}
	return n
}

// ContextFromEnv infers the orchestrator context. A runpath means a
// realization forward-model step; an experiment id without a runpath means a
// case-level pre-run hook; neither means outside the orchestrator.
func (e Environment) ContextFromEnv() Context {
	if e.Runpath != "" {
		return ContextRealization
	}
	if e.ExperimentID != "" {
		return ContextCase
	}
	return ContextNone
}

// InsideOrchestrator reports whether any orchestrator signal is present.
func (e Environment) InsideOrchestrator() bool {
	return e.ContextFromEnv() != ContextNone
}

// InsideTool reports whether the process runs under the modeling tool,
// interactively or in batch.
func (e Environment) InsideTool() bool {
	return e.ToolMode == ToolInteractive || e.ToolMode == ToolBatch
}
