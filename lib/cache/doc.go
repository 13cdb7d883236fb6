/*
Package cache provides a uniform get-or-create façade over pluggable backing stores.

A Backing decides the lifecycle of stored values:

  - Unbounded: values live until they are deleted or the cache is cleared
  - Weak: values may be reclaimed by the garbage collector once nothing else references them
  - NoOp: nothing is stored, every lookup misses
  - TTL: values expire after a fixed lifetime (see package ttlmap)

The Cache façade adds hit, miss and create counters on top of any backing. They are kept in a
VictoriaMetrics metrics.Set owned by the cache and exported with Cache.WritePrometheus:

	c := cache.New[string, *User](cache.NewUnbounded[string, *User](), nil)
	u, err := c.GetOrCreate("alice", loadUser)

GetOrCreate invokes the initializer at most once per key even under concurrent callers, for
every backing except NoOp (which never stores and therefore calls it on every request).

The package also defines the Lookup capability interface, implemented by the Cache, by
ttlmap.Store, by segmap.Map and by plain functions through LookupFunc.
*/
package cache
