package bench

import (
	"testing"

	"github.com/ValentinKolb/kvkit/lib/cache"
	"github.com/ValentinKolb/kvkit/lib/segmap"
	"github.com/ValentinKolb/kvkit/lib/seq"
	"github.com/ValentinKolb/kvkit/lib/ttlmap"
)

// --------------------------------------------------------------------------
// Expiring store
// --------------------------------------------------------------------------

func (r *runner) newStore(name string) *ttlmap.Store[string, int] {
	return ttlmap.New[string, int](&ttlmap.Options{
		DefaultLifetime: r.conf.Lifetime,
		RenewOnRead:     r.conf.RenewOnRead,
		Name:            name,
		Registry:        r.registry,
	})
}

func (r *runner) benchTTL() {
	r.benchmark("ttl-put", func(b *testing.B) {
		store := r.newStore("ttl-put")
		keys := r.keys("ttl-put")

		b.SetParallelism(r.conf.Threads)
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				store.Put(keys[counter%len(keys)], counter)
				counter++
			}
		})
	})

	r.benchmark("ttl-get", func(b *testing.B) {
		store := r.newStore("ttl-get")
		keys := r.keys("ttl-get")
		for i, k := range keys {
			store.Put(k, i)
		}

		b.SetParallelism(r.conf.Threads)
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				store.Get(keys[counter%len(keys)])
				counter++
			}
		})
	})

	r.benchmark("ttl-get-or-compute", func(b *testing.B) {
		store := r.newStore("ttl-get-or-compute")
		keys := r.keys("ttl-get-or-compute")

		b.SetParallelism(r.conf.Threads)
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				store.GetOrCompute(keys[counter%len(keys)], r.conf.Lifetime, func() int { return counter })
				counter++
			}
		})
	})

	r.benchmark("ttl-mixed", func(b *testing.B) {
		store := r.newStore("ttl-mixed")
		keys := r.keys("ttl-mixed")

		b.SetParallelism(r.conf.Threads)
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := keys[counter%len(keys)]
				switch counter % 4 {
				case 0:
					store.Put(key, counter)
				case 1:
					store.Get(key)
				case 2:
					store.Remove(key)
				case 3:
					store.ContainsKey(key)
				}
				counter++
			}
		})
	})
}

// --------------------------------------------------------------------------
// Layered cache
// --------------------------------------------------------------------------

type value struct {
	n int
}

// newCache creates the cache of a benchmark. testing.Benchmark runs the benchmark function once
// per b.N step, so only the cache of the last step is kept for the metrics output.
func (r *runner) newCache(name string, backing cache.Backing[string, *value]) *cache.Cache[string, *value] {
	c := cache.New(backing, &cache.Options{Name: name})
	r.trackMetrics(name, c)
	return c
}

func (r *runner) benchCache() {
	backings := []struct {
		name    string
		factory func() cache.Backing[string, *value]
	}{
		{"unbounded", func() cache.Backing[string, *value] { return cache.NewUnbounded[string, *value]() }},
		{"weak", func() cache.Backing[string, *value] { return cache.NewWeak[string, value]() }},
		{"ttl", func() cache.Backing[string, *value] { return cache.NewTTL[string, *value](r.conf.Lifetime, nil) }},
		{"noop", func() cache.Backing[string, *value] { return cache.NewNoOp[string, *value]() }},
	}

	for _, backing := range backings {
		name := "cache-" + backing.name + "-get-or-create"
		r.benchmark(name, func(b *testing.B) {
			c := r.newCache(name, backing.factory())
			keys := r.keys(name)
			values := make([]*value, len(keys))
			for i := range values {
				values[i] = &value{n: i}
			}

			b.SetParallelism(r.conf.Threads)
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				counter := 0
				for pb.Next() {
					i := counter % len(keys)
					_, _ = c.GetOrCreate(keys[i], func(string) *value { return values[i] })
					counter++
				}
			})
		})
	}
}

// --------------------------------------------------------------------------
// Interval map
// --------------------------------------------------------------------------

func (r *runner) benchSegmap() {
	span := r.conf.Keys * 10

	r.benchmark("segmap-set", func(b *testing.B) {
		m := segmap.New[int, int](0)

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			x := (i * 7) % span
			_ = m.Set(x, x+1+i%10, i)
		}
	})

	r.benchmark("segmap-get", func(b *testing.B) {
		m := segmap.New[int, int](0)
		for i := 0; i < r.conf.Keys; i++ {
			_ = m.Set(i*10, i*10+5, i)
		}

		b.SetParallelism(r.conf.Threads)
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				m.Get(counter % span)
				counter++
			}
		})
	})
}

// --------------------------------------------------------------------------
// Lazy sequence
// --------------------------------------------------------------------------

func (r *runner) benchSeq() {
	items := make([]int, r.conf.Keys)
	for i := range items {
		items[i] = i
	}

	r.benchmark("seq-chain", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			s := seq.Of(-1).WithSlice(items).With(1, 2, 3)
			for s.HasNext() {
				s.Next()
			}
		}
	})

	r.benchmark("seq-repeatable", func(b *testing.B) {
		rep, err := seq.FromSlice(items).Repeatable()
		if err != nil {
			b.Fatal(err)
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			for range rep.All() {
			}
		}
	})
}
