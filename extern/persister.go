package extern

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/qwas982/svm/value"
)

// Persister writes a popped data value as JSON/UTF-8 to a popped path.
type Persister struct{}

func NewPersister() *Persister { return &Persister{} }

func (p *Persister) Name() string { return "Persister" }

// Invoke pops path then data (spec.md §6's "Pops 2 (path, data)" lists pops
// in pop-order: the caller pushes data then path, so path sits on top),
// marshals data to JSON, and writes it to path.
func (p *Persister) Invoke(pop func() (value.Value, error), push func(value.Value) error) error {
	path, err := pop()
	if err != nil {
		return fmt.Errorf("persister: %w", err)
	}
	data, err := pop()
	if err != nil {
		return fmt.Errorf("persister: %w", err)
	}

	encoded, err := json.Marshal(jsonValue(data))
	if err != nil {
		return fmt.Errorf("persister: encode: %w", err)
	}

	if err := os.WriteFile(path.String(), encoded, 0600); err != nil {
		return fmt.Errorf("persister: write: %w", err)
	}

	if err := push(value.NewInt(1)); err != nil {
		return fmt.Errorf("persister: %w", err)
	}
	return nil
}

// jsonValue converts a tagged value.Value into a plain Go value that
// encoding/json renders sensibly (numbers/bools/strings, not the internal
// struct layout).
func jsonValue(v value.Value) interface{} {
	switch v.Kind {
	case value.Int:
		return v.I
	case value.Float:
		return v.F
	case value.Bool:
		return v.B
	case value.String:
		return v.S
	default:
		return v.String()
	}
}
