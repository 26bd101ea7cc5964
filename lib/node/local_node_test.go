package node

import (
	"testing"

	"github.com/stretchr/testify/require"

	"conclave.io/conclave/lib/common"
	"conclave.io/conclave/lib/common/keypair"
)

func TestNewLocalNodeDefaultAlias(t *testing.T) {
	kp := keypair.Random()
	endpoint, err := common.ParseEndpoint("https://localhost:12345")
	require.NoError(t, err)

	n, err := NewLocalNode(kp, endpoint, "")
	require.NoError(t, err)
	require.Equal(t, MakeAlias(kp.Address()), n.Alias())
	require.Equal(t, kp.Address(), n.Address())
}

func TestLocalNodePublishEndpoint(t *testing.T) {
	kp := keypair.Random()
	bind, _ := common.ParseEndpoint("https://localhost:12345")
	publish, _ := common.ParseEndpoint("https://conclave.example.com:443")

	n, err := NewLocalNode(kp, bind, "n1")
	require.NoError(t, err)
	require.Equal(t, bind, n.Endpoint())

	n.SetPublishEndpoint(publish)
	require.Equal(t, publish, n.Endpoint())
	require.Equal(t, bind, n.BindEndpoint())
}
