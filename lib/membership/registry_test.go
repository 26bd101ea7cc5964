package membership

import (
	"testing"

	"github.com/stretchr/testify/require"

	"conclave.io/conclave/lib/errors"
	"conclave.io/conclave/lib/storage"
)

func TestNewRegistryCollapsesDuplicates(t *testing.T) {
	r, err := NewRegistry("GOWNER", "GA", "GB", "GA", "GOWNER")
	require.NoError(t, err)
	require.Equal(t, 3, r.Len())
	require.True(t, r.IsMember("GA"))
	require.True(t, r.IsMember("GB"))
}

func TestNewRegistryIncludesOwner(t *testing.T) {
	r, err := NewRegistry("GOWNER", "GA")
	require.NoError(t, err)
	require.True(t, r.IsMember("GOWNER"))
}

func TestNewRegistryOwnerOnly(t *testing.T) {
	r, err := NewRegistry("GOWNER")
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())
	require.True(t, r.IsMember("GOWNER"))
}

func TestNewRegistryRejectsBlankAddress(t *testing.T) {
	_, err := NewRegistry("GOWNER", " ")
	require.Equal(t, errors.InvalidMemberAddress, err)
}

func TestRegistryIsMember(t *testing.T) {
	r, _ := NewRegistry("GOWNER", "GA", "GB")
	require.True(t, r.IsMember("GA"))
	require.False(t, r.IsMember("GZ"))
	require.False(t, r.IsMember(""))
}

func TestRegistrySaveOnce(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	r, _ := NewRegistry("GOWNER", "GA")
	require.NoError(t, r.Save(st))
	require.Equal(t, errors.RegistryAlreadyExists, r.Save(st))
}

func TestGetRegistryRoundTrip(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	r, _ := NewRegistry("GOWNER", "GB", "GA")
	require.NoError(t, r.Save(st))

	fetched, err := GetRegistry(st)
	require.NoError(t, err)
	require.Equal(t, r.Members, fetched.Members)
	require.True(t, fetched.IsMember("GB"))
}

func TestGetRegistryMissing(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	_, err := GetRegistry(st)
	require.Equal(t, errors.RegistryDoesNotExist, err)
}
