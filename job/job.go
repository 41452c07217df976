// Package job runs blocking work off the owning goroutine and hands the
// results back to it.
//
// A Job carries two closures. Work runs on a pool worker and records its
// results in the job's Data document. The continuation runs later on
// whichever goroutine calls Pool.Update, typically once per frame of a game
// or UI loop, and receives the same Data. Work always finishes before its
// continuation starts; the relative order of different jobs is unspecified.
//
// Jobs cannot be cancelled. A caller that loses interest simply ignores the
// continuation.
package job

import (
	"sync/atomic"

	"github.com/ogahub/ogalib"
)

// State tracks a job through its lifecycle.
type State int32

const (
	Pending State = iota
	Running
	Completed
	Dispatched
	Done
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Dispatched:
		return "dispatched"
	case Done:
		return "done"
	}
	return "unknown"
}

// Func is the signature shared by work and continuation closures.
type Func func(j *Job)

// Job is a unit of asynchronous work.
type Job struct {
	// ID is unique within the pool that created the job.
	ID uint64

	// Data is owned by the work closure while it runs and by the
	// continuation afterwards. Nothing else may touch it.
	Data *ogalib.Value

	work         Func
	continuation Func
	state        atomic.Int32
}

// State returns the current lifecycle state.
func (j *Job) State() State { return State(j.state.Load()) }

func (j *Job) setState(s State) { j.state.Store(int32(s)) }

// Failed reports whether the work recorded "success": false.
func (j *Job) Failed() bool {
	it := j.Data.Lookup("success")
	return it.Ok() && it.IsBool() && !it.Bool()
}
