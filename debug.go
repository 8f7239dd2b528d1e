package vmcore

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// debugEnabled gates diagnostic stderr output and the extra consistency
// assertions scattered through the engine. There is no logging library
// wired in here: none of the repos in the retrieval pack that this module
// was learned from depend on one, so vmcore follows the same
// fmt.Fprintf(os.Stderr, ...) convention used throughout the teacher's
// debug.go.
var debugEnabled bool

// SetDebug turns diagnostic logging and debug-only assertions on or off.
func SetDebug(on bool) {
	debugEnabled = on
}

// Debug reports whether debug mode is active.
func Debug() bool {
	return debugEnabled
}

func debugf(format string, args ...any) {
	if !debugEnabled {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[vmcore] "+format+"\n", args...)
}

// FrameStats collects per-frame timing, printed only when debug mode is on.
// Mirrors the shape of the teacher's debugStats, one field per pipeline
// stage that is expensive enough to be worth isolating.
type FrameStats struct {
	EventDispatch   time.Duration
	Movement        time.Duration
	Collision       time.Duration
	Particles       time.Duration
	Draw            time.Duration
	InstanceCount   int
	TileCount       int
	DispatchedCount int
}

func (s FrameStats) log() {
	if !debugEnabled {
		return
	}
	total := s.EventDispatch + s.Movement + s.Collision + s.Particles + s.Draw
	debugf("dispatch: %v | movement: %v | collision: %v | particles: %v | draw: %v | total: %v",
		s.EventDispatch, s.Movement, s.Collision, s.Particles, s.Draw, total)
	debugf("instances: %d | tiles: %d | handlers run: %d", s.InstanceCount, s.TileCount, s.DispatchedCount)
}

// debugAssertOwnerGoroutine panics in debug mode if called from a different
// goroutine than the one that created the engine. This is a debug-only
// guard rather than a mutex: the engine is documented as single-threaded
// cooperative, and taking a lock would suggest concurrent access is an
// intended usage.
func debugAssertOwnerGoroutine(owner, current uint64, op string) {
	if !debugEnabled {
		return
	}
	if owner != 0 && owner != current {
		panic(fmt.Sprintf("vmcore debug: %s called from goroutine %d, engine owned by %d", op, current, owner))
	}
}

// currentGoroutineID parses the running goroutine's ID out of its own
// stack trace header ("goroutine 123 [running]:"). It is debug-only
// scaffolding for debugAssertOwnerGoroutine, never called outside
// SetDebug(true) sessions, so its cost and fragility (the format is not a
// committed Go API) are acceptable for a development-time assertion.
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	field := strings.Fields(string(buf[:n]))
	if len(field) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(field[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
