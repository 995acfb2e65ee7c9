package inject

import (
	"reflect"
	"sync"
	"testing"
)

// Benchmark service types
type BenchService struct {
	Name string
}

type BenchDep1 struct{ Value int }
type BenchDep2 struct{ Value int }
type BenchDep3 struct{ Value int }

type BenchServiceWith1Dep struct {
	Dep1 *BenchDep1
}

type BenchServiceWith3Deps struct {
	Dep1 *BenchDep1
	Dep2 *BenchDep2
	Dep3 *BenchDep3
}

type BenchCollector struct {
	Deps []*BenchDep1
}

// Constructors for benchmarks
func NewBenchService() *BenchService { return &BenchService{Name: "bench"} }
func NewBenchDep1() *BenchDep1       { return &BenchDep1{Value: 1} }
func NewBenchDep2() *BenchDep2       { return &BenchDep2{Value: 2} }
func NewBenchDep3() *BenchDep3       { return &BenchDep3{Value: 3} }

func NewBenchServiceWith1Dep(dep1 *BenchDep1) *BenchServiceWith1Dep {
	return &BenchServiceWith1Dep{Dep1: dep1}
}

func NewBenchServiceWith3Deps(dep1 *BenchDep1, dep2 *BenchDep2, dep3 *BenchDep3) *BenchServiceWith3Deps {
	return &BenchServiceWith3Deps{Dep1: dep1, Dep2: dep2, Dep3: dep3}
}

func NewBenchCollector(deps []*BenchDep1) *BenchCollector {
	return &BenchCollector{Deps: deps}
}

func setupBenchBuilder(b *testing.B) *Builder {
	b.Helper()
	return NewBuilder().
		Constructor(NewBenchService).
		Constructor(NewBenchDep1).
		Constructor(NewBenchDep2).
		Constructor(NewBenchDep3).
		InjectConstructor(NewBenchServiceWith1Dep).
		InjectConstructor(NewBenchServiceWith3Deps).
		InjectConstructor(NewBenchCollector)
}

func setupBenchContainer(b *testing.B) Container {
	b.Helper()
	c, err := setupBenchBuilder(b).Build()
	if err != nil {
		b.Fatalf("failed to build container: %v", err)
	}
	return c
}

// BenchmarkResolution measures cached lookups for different dependency
// counts.
func BenchmarkResolution(b *testing.B) {
	cases := []struct {
		name   string
		target reflect.Type
	}{
		{"0deps", reflect.TypeOf((*BenchService)(nil))},
		{"1dep", reflect.TypeOf((*BenchServiceWith1Dep)(nil))},
		{"3deps", reflect.TypeOf((*BenchServiceWith3Deps)(nil))},
		{"collection", reflect.TypeOf((*BenchCollector)(nil))},
	}

	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			c := setupBenchContainer(b)
			if _, err := c.FindService(tc.target); err != nil {
				b.Fatalf("failed to resolve: %v", err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				if _, err := c.FindService(tc.target); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkFirstResolution measures building the graph in a fresh
// container.
func BenchmarkFirstResolution(b *testing.B) {
	builder := setupBenchBuilder(b)
	target := reflect.TypeOf((*BenchServiceWith3Deps)(nil))

	b.ReportAllocs()
	for b.Loop() {
		c, err := builder.Build()
		if err != nil {
			b.Fatal(err)
		}
		if _, err := c.FindService(target); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuild(b *testing.B) {
	builder := setupBenchBuilder(b)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := builder.Build(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkResolve_Generic(b *testing.B) {
	c := setupBenchContainer(b)
	if _, err := Resolve[*BenchServiceWith1Dep](c); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		if _, err := Resolve[*BenchServiceWith1Dep](c); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConcurrentResolution(b *testing.B) {
	c := setupBenchContainer(b)
	target := reflect.TypeOf((*BenchServiceWith3Deps)(nil))

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := c.FindService(target); err != nil {
				b.Error(err)
			}
		}
	})
}

// BenchmarkContendedFirstResolution measures many goroutines racing for
// the first resolution of the same type.
func BenchmarkContendedFirstResolution(b *testing.B) {
	builder := setupBenchBuilder(b)
	target := reflect.TypeOf((*BenchServiceWith3Deps)(nil))

	const workers = 16

	b.ReportAllocs()
	for b.Loop() {
		c, err := builder.Build()
		if err != nil {
			b.Fatal(err)
		}

		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := c.FindService(target); err != nil {
					b.Error(err)
				}
			}()
		}
		wg.Wait()
	}
}
