package membership

import (
	"sort"
	"strings"

	"conclave.io/conclave/lib/common"
	"conclave.io/conclave/lib/errors"
	"conclave.io/conclave/lib/storage"
)

// Registry is the immutable council membership. It is written exactly once,
// at genesis, and only read afterwards; there are no add/remove operations.
//
// models
//  * 'registry'
// 	- 'ms-registry': `Registry`

const RegistryKey string = "ms-registry"

type Registry struct {
	Members []string `json:"members"` // sorted, unique
}

// NewRegistry builds the membership set from the constructing principal and
// the initial members. Duplicates collapse and the owner is always a member,
// even when omitted from `members`.
func NewRegistry(owner string, members ...string) (*Registry, error) {
	seen := map[string]struct{}{}
	var collected []string

	for _, address := range append([]string{owner}, members...) {
		if len(strings.TrimSpace(address)) < 1 {
			return nil, errors.InvalidMemberAddress
		}
		if _, found := seen[address]; found {
			continue
		}
		seen[address] = struct{}{}
		collected = append(collected, address)
	}

	sort.Strings(collected)

	return &Registry{Members: collected}, nil
}

func (r *Registry) IsMember(address string) bool {
	i := sort.SearchStrings(r.Members, address)
	return i < len(r.Members) && r.Members[i] == address
}

func (r *Registry) Len() int {
	return len(r.Members)
}

func (r *Registry) String() string {
	return string(common.MustMarshalJSON(r))
}

func (r *Registry) Serialize() (encoded []byte, err error) {
	encoded, err = common.EncodeJSONValue(r)
	return
}

func (r *Registry) Save(st *storage.LevelDBBackend) (err error) {
	if err = st.New(RegistryKey, r); err != nil {
		if err == errors.StorageRecordAlreadyExists {
			err = errors.RegistryAlreadyExists
		}
		return
	}

	return
}

func ExistsRegistry(st *storage.LevelDBBackend) (bool, error) {
	return st.Has(RegistryKey)
}

func GetRegistry(st *storage.LevelDBBackend) (r *Registry, err error) {
	if err = st.Get(RegistryKey, &r); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.RegistryDoesNotExist
		}
		return
	}

	return
}
