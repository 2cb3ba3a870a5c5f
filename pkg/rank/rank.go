package rank

import (
	"slices"
	"strings"

	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/layout"
)

// Engine names accepted by [New].
const (
	EngineDot     = "dot"
	EngineLayered = "layered"
)

// DefaultEngine is used when no engine is configured.
const DefaultEngine = EngineDot

// Engines lists the available engine names.
func Engines() []string { return []string{EngineDot, EngineLayered} }

// New returns the ranker with the given name. An empty name selects
// [DefaultEngine].
func New(name string) (layout.Ranker, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineDot:
		return NewDot(), nil
	case EngineLayered:
		return Layered{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidEngine, "unknown layout engine %q (want one of %s)",
		name, strings.Join(Engines(), ", "))
}

// Valid reports whether name selects a known engine.
func Valid(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return name == "" || slices.Contains(Engines(), name)
}
