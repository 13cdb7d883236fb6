// Package ttlmap provides Store, a concurrent key-value container in which every entry
// carries its own lifetime and is logically removed once its deadline passed.
//
// Key Features:
//
//   - Per-entry lifetimes: PutWithLifetime stores a value with its own lifetime, Put uses the
//     configured default lifetime.
//   - Renewal: RenewKey resets a key's deadline explicitly. With Options.RenewOnRead every
//     successful Get (and every hit of GetOrCompute) resets the deadline as well, using the
//     lifetime of the last put or renewal.
//   - Atomic get-or-create: GetOrCompute invokes the initializer at most once per key while the
//     created value is alive, even under concurrent callers and concurrent cleanup passes.
//   - Lazy expiry: there is no background goroutine. Every read and write runs a cleanup pass
//     first; reads also compare deadlines themselves, so an expired value is never returned.
//
// Architecture:
//
// The store keeps three structures:
//
//  1. xsync.MapOf: the entry table, mapping a key to an immutable entry (value, lifetime,
//     deadline). A pointer to an entry doubles as its deadline record.
//  2. util.LockFreeMPSC: every write pushes the newly installed entry into this queue. Any
//     number of goroutines can push without locking.
//  3. util.MapHeap: the deadline heap, ordered by deadline and indexed by key. It is only
//     touched by the cleanup pass, which holds a mutex (taken with TryLock, so concurrent
//     callers skip a pass that is already running instead of waiting for it).
//
// A cleanup pass drains the queue into the heap and then pops records while their deadline is
// not after now. A popped record removes the value only if the entry table still points to the
// same entry (checked with MapOf.Compute, i.e. atomically with respect to concurrent writers).
// Replacing, renewing or removing a key installs a new entry or none, which turns the old record
// into a tombstone: it is discarded when it surfaces and never deletes the newer value. Because
// the check is made on the identity of the record and not on the key, a put racing with a
// sweep of the same key can not lose the new value.
//
// Lifetimes <= 0:
//
// A lifetime <= 0 stores an entry whose deadline is the current time. It is never visible to
// readers and is removed by the next cleanup pass. Put still reports the replaced value.
//
// Usage:
//
//	s := ttlmap.New[string, int](&ttlmap.Options{
//		DefaultLifetime: 5 * time.Second,
//		RenewOnRead:     true,
//	})
//
//	s.Put("a", 1)
//	s.PutWithLifetime("b", 2, time.Minute)
//
//	if v, ok := s.Get("a"); ok {
//		// ...
//	}
//
//	v, loaded := s.GetOrCompute("c", time.Minute, func() int { return expensive() })
package ttlmap
