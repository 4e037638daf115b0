// Package sched provides the concurrent scheduling core of a lightweight
// process runtime: a bounded process registry with identity recycling,
// reduction-budgeted multi-queue schedulers with dirty CPU/IO pools, and a
// trap protocol for suspending long-running built-in operations.
//
// The byte-code interpreter is not part of this module; it plugs in as a
// scheduler.Executor callback and communicates exclusively through the
// process descriptor's atomic fields and resume slot.
//
// End-users typically interact with the engine via the high-level Service
// façade exposed by the root package:
//
//	srv, _ := sched.New(sched.WithExecutor(interp))
//	rt := srv.Runtime()
//	_ = rt.Start(ctx)
//	id, _ := rt.Spawn(ctx, proc.WithPriority(proc.Normal))
//	_ = rt.Kill(id)
//	rt.Shutdown()
//
// For more details see the README and individual sub-packages.
package sched
