// Package async splits store I/O from state changes.
//
// A component operation that needs the network returns a Task. The caller
// runs the Task off the event loop, then calls Apply on the Result from the
// event loop. Tasks never touch component state; Apply never blocks.
package async

import "context"

// Task performs deferred I/O. It must not touch the state of the component
// that created it.
type Task func(ctx context.Context) Result

// Result is the outcome of a Task. Apply folds it into the owning component
// and may return a follow-up Task (nil when there is none).
type Result interface {
	Apply() Task
}

// Run executes task and applies its result, following up until no Task
// remains. It is the synchronous driver used by CLI commands and tests.
func Run(ctx context.Context, task Task) {
	for task != nil {
		task = task(ctx).Apply()
	}
}
