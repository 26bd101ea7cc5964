package common

const (
	HTTPCacheMemoryAdapterName = "mem"
	HTTPCacheRedisAdapterName  = "redis"

	// HTTPCachePoolSize is the default number of cached responses held by
	// the in-memory adapter.
	HTTPCachePoolSize = 10000
)

// Config carries the node's non-core tunables; the ledger's own parameters
// are passed to it directly.
type Config struct {
	HTTPCacheAdapter    string
	HTTPCachePoolSize   int
	HTTPCacheRedisAddrs map[string]string
}

func NewConfig() Config {
	p := Config{}

	p.HTTPCachePoolSize = HTTPCachePoolSize

	return p
}
