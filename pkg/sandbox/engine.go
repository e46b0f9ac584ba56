package sandbox

import "github.com/bytecodealliance/wasmtime-go/v25"

// Engine wraps a compilation context shared across many Bot instances and
// many games. Modules are compiled once and reused, per the
// tournament driver's "shared, pre-compiled module cache" requirement.
type Engine struct {
	inner *wasmtime.Engine
}

// NewEngine builds an Engine configured for fuel metering.
func NewEngine() *Engine {
	cfg := wasmtime.NewConfig()
	cfg.SetConsumeFuel(true)
	cfg.SetCraneliftOptLevel(wasmtime.OptLevelSpeed)
	return &Engine{inner: wasmtime.NewEngineWithConfig(cfg)}
}

// Compile loads and validates a bot module's bytecode once; the resulting
// Module can be instantiated into many independent Bots.
func (e *Engine) Compile(wasmBytes []byte) (*wasmtime.Module, error) {
	mod, err := wasmtime.NewModule(e.inner, wasmBytes)
	if err != nil {
		return nil, &ModuleLoadError{Reason: err.Error()}
	}
	return mod, nil
}
