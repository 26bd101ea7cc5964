package executor

import (
	"fmt"
	"sync"
)

type DispatchFunc func(payload []byte) error

// DispatchExecutor routes targets to registered local functions, for
// deployments where the actions live in the same process as the ledger.
type DispatchExecutor struct {
	sync.RWMutex

	funcs map[string]DispatchFunc
}

func NewDispatchExecutor() *DispatchExecutor {
	return &DispatchExecutor{
		funcs: map[string]DispatchFunc{},
	}
}

func (e *DispatchExecutor) Register(target string, fn DispatchFunc) {
	e.Lock()
	defer e.Unlock()

	e.funcs[target] = fn
}

func (e *DispatchExecutor) HasTarget(target string) bool {
	e.RLock()
	defer e.RUnlock()

	_, found := e.funcs[target]
	return found
}

func (e *DispatchExecutor) Execute(target string, payload []byte) error {
	e.RLock()
	fn, found := e.funcs[target]
	e.RUnlock()

	if !found {
		return fmt.Errorf("unknown target: %s", target)
	}

	return fn(payload)
}
