package graph

import (
	"fmt"
	"reflect"
	"strings"
)

// CircularDependencyError represents a dependency chain that requests a
// service type it is already resolving.
type CircularDependencyError struct {
	Node reflect.Type
	Path []reflect.Type
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	if len(e.Path) == 0 {
		b.WriteString(fmt.Sprintf("    %s\n", typeName(e.Node)))
		b.WriteString("      ↓\n")
		b.WriteString(fmt.Sprintf("    %s (cycle)\n", typeName(e.Node)))
	} else {
		for i, node := range e.Path {
			b.WriteString(fmt.Sprintf("    %s\n", typeName(node)))
			if i < len(e.Path)-1 {
				b.WriteString("      ↓\n")
			}
		}
		b.WriteString("      ↓\n")
		b.WriteString(fmt.Sprintf("    %s (cycle)\n", typeName(e.Node)))
	}

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Use an interface to break the dependency\n")
	b.WriteString("  • Resolve one side lazily through an injected Container\n")
	b.WriteString("  • Restructure to remove the circular relationship\n")

	return b.String()
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
