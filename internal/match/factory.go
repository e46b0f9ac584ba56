package match

import (
	"github.com/bytecodealliance/wasmtime-go/v25"
	"github.com/ensigame/ensi/internal/turn"
	"github.com/ensigame/ensi/pkg/game"
	"github.com/ensigame/ensi/pkg/sandbox"
)

// SandboxFactory adapts a pre-compiled module into a BotFactory, so the
// tournament driver can compile each bot's bytecode once and share the
// *wasmtime.Module across every game that plays it.
type SandboxFactory struct {
	Engine           *sandbox.Engine
	Module           *wasmtime.Module
	MemoryLimitBytes int64
}

// NewSandboxFactory builds a factory around an already-compiled module.
func NewSandboxFactory(engine *sandbox.Engine, module *wasmtime.Module) *SandboxFactory {
	return &SandboxFactory{Engine: engine, Module: module, MemoryLimitBytes: sandbox.DefaultMemoryLimit}
}

// NewBot instantiates a fresh sandbox for playerID from the shared module.
func (f *SandboxFactory) NewBot(playerID game.PlayerID) (turn.Bot, error) {
	bot, err := sandbox.NewBot(f.Engine, f.Module, playerID, f.MemoryLimitBytes)
	if err != nil {
		return nil, err
	}
	return bot, nil
}
