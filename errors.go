package vmcore

import "fmt"

// ScriptError is a compile or runtime failure in user script. The engine
// halts the current event, skips the remaining handlers of the same
// dispatch (every later subscriber of that category and sub-code), and
// continues the frame pipeline unless always_abort is set.
type ScriptError struct {
	Category EventCategory
	Sub      int32
	Instance InstanceID
	Message  string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script error in category %d sub %d (instance %d): %s",
		e.Category, e.Sub, e.Instance, e.Message)
}

// AssetReferenceError is a script reference to a missing asset ID. It is
// treated as a ScriptError by the dispatch pipeline (same recovery path)
// but kept as a distinct type so callers can distinguish the two with
// errors.As when reporting diagnostics.
type AssetReferenceError struct {
	Kind string
	ID   int32
}

func (e *AssetReferenceError) Error() string {
	return fmt.Sprintf("reference to missing %s asset %d", e.Kind, e.ID)
}

// LoadError is reported by the external package loader. The engine never
// starts if construction fails with one.
type LoadError struct {
	Message string
}

func (e *LoadError) Error() string { return "package load error: " + e.Message }

// ResourceError reports failure to allocate a texture or surface from the
// renderer. It is fatal: the frame loop aborts.
type ResourceError struct {
	Message string
}

func (e *ResourceError) Error() string { return "resource exhaustion: " + e.Message }

// SnapshotError reports a serialization or deserialization failure. A
// failed Load leaves the engine unchanged; a failed Save simply does not
// produce output (the caller's prior state is untouched).
type SnapshotError struct {
	Op      string
	Message string
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s error: %s", e.Op, e.Message)
}

// FatalError wraps a ResourceError, a SnapshotError, or (when AlwaysAbort
// is set) a ScriptError returned from Engine.Frame to mark that the frame
// loop must stop.
type FatalError struct {
	Cause error
}

func (e *FatalError) Error() string { return "fatal: " + e.Cause.Error() }
func (e *FatalError) Unwrap() error { return e.Cause }
