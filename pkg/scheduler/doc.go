// Package scheduler implements a typed worker pool for executing async work
// with futures.
//
// The scheduler manages a fixed pool of workers that execute work functions
// concurrently. Work is submitted via AddWork and returns a Future that can
// be used to retrieve the result or cancel the work. The pool is parametric
// in the result type, so callers that gather homogeneous results (for
// example, one outcome per matrix branch) get them back without assertions.
//
// # Work Execution Flow
//
//  1. Client calls AddWork(fn)
//  2. Scheduler creates a workRequest with a buffered result channel and a
//     cancellable context derived from the main context
//  3. The run() event loop queues the request and calls dispatch()
//  4. dispatch() pairs available workers with pending work
//  5. The worker calls fn(ctx), sends Result{Data, Err} on the channel and
//     returns to the pool
//  6. Client receives the result via future.C()
//
// # Panic Recovery
//
// Workers recover from panics in work functions and report them as errors
// on the future, so a panicking branch cannot take down the pool or its
// sibling branches.
//
// # Cancellation
//
//   - future.Stop() cancels an individual work's context
//   - scheduler.Close() cancels the main context and waits for in-flight
//     work before returning (idempotent, uses sync.Once)
//
// # Usage Example
//
//	sched := scheduler.NewScheduler[string](4)
//	defer sched.Close()
//
//	future := sched.AddWork(func(ctx context.Context) (string, error) {
//	    return "done", nil
//	})
//
//	result := <-future.C()
//	if result.Err != nil {
//	    // Handle error
//	}
package scheduler
