package redact

import "errors"

// Pipeline stage names recorded on wrapped errors and log lines.
const (
	StageLoad   = "load"
	StageSelect = "select"
	StageBlur   = "blur"
	StageSave   = "save"
)

// ErrDetectionUnavailable reports that automatic region detection produced
// nothing usable. The pipeline recovers by falling back to the layout
// catalog; the sentinel only surfaces as an error when the catalog yields no
// regions either.
var ErrDetectionUnavailable = errors.New("automatic detection unavailable")
