package testing

import (
	"testing"

	"github.com/ValentinKolb/kvkit/lib/cache"
)

const benchKeys = 10_000

// RunBackingBenchmarks runs all benchmarks for a backing implementation
func RunBackingBenchmarks(b *testing.B, name string, factory BackingFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Store", func(b *testing.B) {
			benchmarkStore(b, factory())
		})

		b.Run("Load", func(b *testing.B) {
			benchmarkLoad(b, factory())
		})

		b.Run("LoadOrCompute", func(b *testing.B) {
			benchmarkLoadOrCompute(b, factory())
		})

		b.Run("Mixed", func(b *testing.B) {
			benchmarkMixed(b, factory())
		})
	})
}

// prepare returns pre-formatted keys and values, so the timed loops do not allocate
func prepare() ([]string, []*Item) {
	keys := make([]string, benchKeys)
	for i := range keys {
		keys[i] = key(i)
	}
	return keys, items(benchKeys)
}

func benchmarkStore(b *testing.B, backing cache.Backing[string, *Item]) {
	keys, values := prepare()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			backing.Store(keys[counter%benchKeys], values[counter%benchKeys])
			counter++
		}
	})
}

func benchmarkLoad(b *testing.B, backing cache.Backing[string, *Item]) {
	keys, values := prepare()
	for i, k := range keys {
		backing.Store(k, values[i])
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			backing.Load(keys[counter%benchKeys])
			counter++
		}
	})
}

func benchmarkLoadOrCompute(b *testing.B, backing cache.Backing[string, *Item]) {
	keys, values := prepare()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			i := counter % benchKeys
			_, _, _ = backing.LoadOrCompute(keys[i], func() (*Item, error) {
				return values[i], nil
			})
			counter++
		}
	})
}

func benchmarkMixed(b *testing.B, backing cache.Backing[string, *Item]) {
	keys, values := prepare()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			i := counter % benchKeys
			switch counter % 4 {
			case 0:
				backing.Store(keys[i], values[i])
			case 1, 2:
				backing.Load(keys[i])
			case 3:
				backing.Delete(keys[i])
			}
			counter++
		}
	})
}
