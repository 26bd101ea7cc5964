package storage

import (
	"fmt"
	"io/ioutil"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"conclave.io/conclave/lib/errors"
)

func TestLevelDBBackendInitFileStorage(t *testing.T) {
	path, _ := ioutil.TempDir("/tmp", "conclave")
	defer CleanDB(path)

	st := &LevelDBBackend{}
	defer st.Close()

	config, _ := NewConfigFromString("file://" + path)
	if err := st.Init(config); err != nil {
		t.Errorf("failed to initialize file db: %v", err)
	}
}

func TestLevelDBBackendInitMemStorage(t *testing.T) {
	st := &LevelDBBackend{}
	defer st.Close()

	config, _ := NewConfigFromString("memory://")
	if err := st.Init(config); err != nil {
		t.Errorf("failed to initialize mem db: %v", err)
	}
}

func TestLevelDBBackendNew(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	key := "showme"
	input := map[int]string{
		90: "99",
		91: "91",
		92: "92",
	}
	if err := st.New(key, input); err != nil {
		t.Errorf("failed to 'New' in leveldb: %v", err)
		return
	}

	fetched := map[int]string{}
	err := st.Get(key, &fetched)
	if err != nil {
		t.Errorf("failed to 'Get' in leveldb: %v", err)
		return
	}

	if !reflect.DeepEqual(input, fetched) {
		t.Errorf("failed to 'Get' the same input in leveldb")
		return
	}

	if err := st.New(key, input); err == nil {
		t.Errorf("'New' only for new key in leveldb")
		return
	}
}

func TestLevelDBBackendNews(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	input := map[string]int{}
	for i := 0; i < 100; i++ {
		input[fmt.Sprintf("%d", i)] = i
	}
	var args []Item
	for k, v := range input {
		args = append(
			args,
			Item{k, v},
		)
	}

	if err := st.News(args...); err != nil {
		t.Errorf("failed to `News`: %v", err)
	}

	for _, i := range args {
		if exists, err := st.Has(i.Key); !exists || err != nil {
			if !exists {
				t.Errorf("failed to `News`, key, '%s' is missing", i.Key)
			} else {
				t.Errorf("failed to `News`: %v", err)
			}
		}
	}
}

func TestLevelDBBackendHas(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	key := "showme"
	if exists, _ := st.Has(key); exists {
		t.Error("failed to 'Has' in leveldb")
		return
	}

	st.New(key, 10)

	if exists, _ := st.Has(key); !exists {
		t.Error("failed to 'Has' in leveldb")
	}
}

func TestLevelDBBackendGetRawNotFound(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	_, err := st.GetRaw("findme")
	require.Equal(t, errors.StorageRecordDoesNotExist, err)
}

func TestLevelDBBackendSetRequiresExisting(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	key := "showme"
	err := st.Set(key, 10)
	require.Equal(t, errors.StorageRecordDoesNotExist, err)

	require.NoError(t, st.New(key, 10))
	require.NoError(t, st.Set(key, 20))

	var fetched int
	require.NoError(t, st.Get(key, &fetched))
	require.Equal(t, 20, fetched)
}

func TestLevelDBBackendRemove(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	key := "showme"
	require.NoError(t, st.New(key, 10))
	require.NoError(t, st.Remove(key))

	exists, _ := st.Has(key)
	require.False(t, exists)

	require.Equal(t, errors.StorageRecordDoesNotExist, st.Remove(key))
}

func TestLevelDBBackendGetIterator(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	total := 30
	for i := 0; i < total; i++ {
		require.NoError(t, st.New(fmt.Sprintf("pp-%03d", i), i))
	}
	require.NoError(t, st.New("zz-0", 99)) // out of prefix

	{ // forward
		it, closeFunc := st.GetIterator("pp-", nil)
		var keys []string
		for {
			item, hasNext := it()
			if !hasNext {
				break
			}
			keys = append(keys, string(item.Key))
		}
		closeFunc()

		require.Equal(t, total, len(keys))
		require.Equal(t, "pp-000", keys[0])
		require.Equal(t, fmt.Sprintf("pp-%03d", total-1), keys[len(keys)-1])
	}

	{ // reverse + limit
		options := NewDefaultListOptions(true, nil, 10)
		it, closeFunc := st.GetIterator("pp-", options)
		var keys []string
		for {
			item, hasNext := it()
			if !hasNext {
				break
			}
			keys = append(keys, string(item.Key))
		}
		closeFunc()

		require.Equal(t, 10, len(keys))
		require.Equal(t, fmt.Sprintf("pp-%03d", total-1), keys[0])
	}
}

func TestLevelDBBackendTransaction(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	{ // commit
		ts, err := st.OpenTransaction()
		require.NoError(t, err)
		require.NoError(t, ts.New("showme", 10))
		require.NoError(t, ts.Commit())

		exists, _ := st.Has("showme")
		require.True(t, exists)
	}

	{ // discard
		ts, err := st.OpenTransaction()
		require.NoError(t, err)
		require.NoError(t, ts.New("findme", 10))
		require.NoError(t, ts.Discard())

		exists, _ := st.Has("findme")
		require.False(t, exists)
	}
}

func TestLevelDBBackendDiscardNotInTransaction(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	require.Equal(t, errors.NotTransaction, st.Discard())
	require.Equal(t, errors.NotTransaction, st.Commit())
}
