package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorsClone(t *testing.T) {
	require.Equal(t, ProposalNotFound, ProposalNotFound)

	e := ProposalNotFound.Clone()
	e0 := ProposalNotFound.Clone()
	require.NotEqual(t, fmt.Sprintf("%p", e), fmt.Sprintf("%p", e0))

	{
		e.Code = 200
		require.NotEqual(t, e.Code, e0.Code)
	}

	{
		e0.SetData("showme", "killme")
		require.NotEqual(t, e.Data, e0.Data)
	}
}

func TestErrorsSerialize(t *testing.T) {
	e := Unauthorized.Clone().SetData("address", "GABC")

	b, err := e.Serialize()
	require.NoError(t, err)
	require.Contains(t, string(b), `"code":100`)
	require.Contains(t, string(b), `"address":"GABC"`)
}
