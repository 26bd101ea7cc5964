package executor

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatchExecutor(t *testing.T) {
	ex := NewDispatchExecutor()

	var got []byte
	ex.Register("payout", func(payload []byte) error {
		got = payload
		return nil
	})
	ex.Register("failing", func(payload []byte) error {
		return fmt.Errorf("boom")
	})

	require.True(t, ex.HasTarget("payout"))
	require.False(t, ex.HasTarget("missing"))

	require.NoError(t, ex.Execute("payout", []byte("showme")))
	require.Equal(t, []byte("showme"), got)

	require.Error(t, ex.Execute("failing", nil))
	require.Error(t, ex.Execute("missing", nil))
}

func TestHTTPExecutor(t *testing.T) {
	var calls int
	var received []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		b := make([]byte, r.ContentLength)
		r.Body.Read(b)
		received = b
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ex, err := NewHTTPExecutor(5 * time.Second)
	require.NoError(t, err)
	defer ex.Close()

	require.NoError(t, ex.Execute(ts.URL, []byte("findme")))
	require.Equal(t, 1, calls)
	require.Equal(t, []byte("findme"), received)
}

func TestHTTPExecutorFailureSingleAttempt(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	ex, err := NewHTTPExecutor(5 * time.Second)
	require.NoError(t, err)
	defer ex.Close()

	require.Error(t, ex.Execute(ts.URL, nil))
	require.Equal(t, 1, calls)
}
