package executor

// Executor performs a proposal's target action. The ledger treats it as
// opaque: a nil error is success, anything else is failure, and there is no
// other outcome channel. Implementations must not retry on their own; a
// qualifying vote gets exactly one invocation attempt.
type Executor interface {
	Execute(target string, payload []byte) error
}
