// Package diagnostics carries the handful of process-wide runtime flags
// that toggle the compiler's optional invariant checks. Flags are read
// once at start-up into an immutable DiagConfig and passed down
// explicitly; nothing in this codebase consults the environment directly
// outside of New.
package diagnostics

import (
	"os"
	"strconv"
)

// DiagConfig is read once in cmd/ppg's run invocation and threaded down
// through the pipeline by value. Never add a package-level var holding
// one of these; that would reintroduce the global mutable state the
// design explicitly avoids.
type DiagConfig struct {
	// NoTest mirrors NO_TEST. No code reads it; cmd/ppg bundles no
	// self-test scenarios.
	NoTest bool
	// DebugGPU mirrors DEBUG_GPU. No code reads it; ExecuteGPU does not
	// receive a DiagConfig.
	DebugGPU bool
	// DebugCPUExec mirrors DEBUG_CPU_EXEC. No code reads it; ExecuteST
	// logs every task whenever its logger is at debug level.
	DebugCPUExec bool
	// DebugTxp is true when DEBUG_TXP is set to any non-false value. No
	// code reads it, and no transcript dump is produced.
	DebugTxp bool
	// InspectTxp gates the compiler's Step D invariant checks (density,
	// gap-free layout) (INSPECT_TXP).
	InspectTxp bool
	// InspectInsGen gates the compiler's Step E mutation-overlap
	// diagnostic (INSPECT_INS_GEN).
	InspectInsGen bool
	// PanicInspectErr (PANIC_INSPECT_ERR) changes the failure reason the
	// compiler reports for an InspectInsGen overlap finding. The
	// transcript is still skipped like any other TranscriptFailure and the
	// run continues; InspectTxp failures do not consult it.
	PanicInspectErr bool
	// RunSelectedTest mirrors RUN_SELECTED_TEST. No code reads it.
	RunSelectedTest string
}

func envBool(name string) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return v != ""
	}
	return b
}

// New reads the diagnostic environment variables once and returns an
// immutable snapshot.
func New() DiagConfig {
	return DiagConfig{
		NoTest:          envBool("NO_TEST"),
		DebugGPU:        envBool("DEBUG_GPU"),
		DebugCPUExec:    envBool("DEBUG_CPU_EXEC"),
		DebugTxp:        envBool("DEBUG_TXP"),
		InspectTxp:      envBool("INSPECT_TXP"),
		InspectInsGen:   envBool("INSPECT_INS_GEN"),
		PanicInspectErr: envBool("PANIC_INSPECT_ERR"),
		RunSelectedTest: os.Getenv("RUN_SELECTED_TEST"),
	}
}
