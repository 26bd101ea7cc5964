package metrics

const (
	Namespace       = "conclave"
	LedgerSubsystem = "ledger"
	APISubsystem    = "api"
)
