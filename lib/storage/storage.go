package storage

type Serializable interface {
	Serialize() ([]byte, error)
}

type IterItem struct {
	N     uint64
	Key   []byte
	Value []byte
}

// Clone copies the underlying buffers; goleveldb reuses the iterator's
// key/value slices between moves.
func (i IterItem) Clone() IterItem {
	key := make([]byte, len(i.Key))
	copy(key, i.Key)
	value := make([]byte, len(i.Value))
	copy(value, i.Value)

	return IterItem{
		N:     i.N,
		Key:   key,
		Value: value,
	}
}

type Item struct {
	Key   string
	Value interface{}
}
