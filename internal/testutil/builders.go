package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/junioryono/inject"
)

// NewBuilder returns a Builder that logs to the test.
func NewBuilder(t *testing.T, opts ...inject.Option) *inject.Builder {
	t.Helper()
	opts = append([]inject.Option{inject.WithLogger(zaptest.NewLogger(t))}, opts...)
	return inject.NewBuilder(opts...)
}

// MustBuild builds b and fails the test if there's an error
func MustBuild(t *testing.T, b *inject.Builder) inject.Container {
	t.Helper()
	c, err := b.Build()
	require.NoError(t, err, "failed to build container")
	return c
}

// Wheels returns n wheels with distinct positions.
func Wheels(n int) []*Wheel {
	positions := []string{"front-left", "front-right", "rear-left", "rear-right"}
	wheels := make([]*Wheel, n)
	for i := range wheels {
		wheels[i] = &Wheel{Position: positions[i%len(positions)]}
	}
	return wheels
}

// CarBuilder returns a builder with a fuel pump, four wheels and a
// CarFactory.
func CarBuilder(t *testing.T, factory *CarFactory) *inject.Builder {
	t.Helper()
	b := NewBuilder(t).Singleton(&FuelPump{ID: "pump"})
	for _, wheel := range Wheels(4) {
		b.Singleton(wheel)
	}
	return b.Factory(factory)
}
