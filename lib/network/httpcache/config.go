package httpcache

import (
	"errors"

	"conclave.io/conclave/lib/common"
)

func NewAdapter(cfg common.Config) (Adapter, error) {
	switch cfg.HTTPCacheAdapter {
	case common.HTTPCacheMemoryAdapterName:
		adapter := NewMemCacheAdapter(cfg.HTTPCachePoolSize)
		return adapter, nil
	case common.HTTPCacheRedisAdapterName:
		opt := &RedisRingOptions{Addrs: cfg.HTTPCacheRedisAddrs}
		adapter := NewRedisCacheAdapter(opt)
		return adapter, nil
	default:
		return nil, errors.New("adapter not found")
	}
}
