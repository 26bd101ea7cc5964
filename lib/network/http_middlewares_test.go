package network

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func TestRecoverMiddleware(t *testing.T) {
	panicMsg := "Don't panic,just use go"

	router := mux.NewRouter()
	router.Use(RecoverMiddleware(false))
	router.HandleFunc("/test", func(w http.ResponseWriter, r *http.Request) {
		panic(panicMsg)
	})

	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 500, resp.StatusCode)
	require.Equal(t, "application/problem+json", resp.Header["Content-Type"][0])

	bs, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)

	var msg map[string]interface{}
	err = json.Unmarshal(bs, &msg)
	require.NoError(t, err)
	require.Equal(t, "panic: "+panicMsg, msg["detail"])
}
