package ledger

import (
	"fmt"

	"conclave.io/conclave/lib/membership"
	"conclave.io/conclave/lib/storage"
)

// testExecutor records invocations and fails while `err` is set.
type testExecutor struct {
	calls    int
	targets  []string
	payloads [][]byte
	err      error
}

func (e *testExecutor) Execute(target string, payload []byte) error {
	e.calls++
	e.targets = append(e.targets, target)
	e.payloads = append(e.payloads, payload)
	return e.err
}

func testMakeAddresses(n int) []string {
	var addresses []string
	for i := 0; i < n; i++ {
		addresses = append(addresses, fmt.Sprintf("GTEST%03d", i))
	}
	return addresses
}

func testMakeLedger(members int, threshold uint64) (*Ledger, []string, *testExecutor, *storage.LevelDBBackend) {
	addresses := testMakeAddresses(members)

	registry, err := membership.NewRegistry(addresses[0], addresses[1:]...)
	if err != nil {
		panic(err)
	}

	st := storage.NewTestStorage()
	ex := &testExecutor{}

	l, err := NewLedger(st, registry, ex, threshold)
	if err != nil {
		panic(err)
	}

	return l, addresses, ex, st
}
