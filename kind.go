package inject

import (
	"encoding/json"
	"fmt"
)

// DefinitionKind identifies how a ServiceDefinition creates its service.
type DefinitionKind int

const (
	// ConstantKind definitions wrap an existing instance.
	ConstantKind DefinitionKind = iota

	// ConstructorKind definitions call the injectable constructor of a type,
	// or allocate its zero value when the type has no declared constructors.
	ConstructorKind

	// MethodKind definitions call a service method on a factory.
	MethodKind
)

// String returns the string representation of the DefinitionKind.
func (k DefinitionKind) String() string {
	switch k {
	case ConstantKind:
		return "Constant"
	case ConstructorKind:
		return "Constructor"
	case MethodKind:
		return "Method"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// IsValid checks if the definition kind is valid.
func (k DefinitionKind) IsValid() bool {
	return k >= ConstantKind && k <= MethodKind
}

// MarshalText implements encoding.TextMarshaler.
func (k DefinitionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *DefinitionKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Constant", "constant":
		*k = ConstantKind
	case "Constructor", "constructor":
		*k = ConstructorKind
	case "Method", "method":
		*k = MethodKind
	default:
		return fmt.Errorf("invalid definition kind: %q", string(text))
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (k DefinitionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *DefinitionKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	return k.UnmarshalText([]byte(s))
}
