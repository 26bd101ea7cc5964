package common

import (
	"bytes"
	"encoding/json"
	"net/url"
	"os"
	"strings"

	uuid "github.com/satori/go.uuid"

	"conclave.io/conclave/lib/errors"
)

func GetUniqueIDFromUUID() string {
	return uuid.Must(uuid.NewV1(), nil).String()
}

func GenerateUUID() string {
	return uuid.Must(uuid.NewV4(), nil).String()
}

func GetENVValue(key, defaultValue string) (v string) {
	var found bool
	if v, found = os.LookupEnv(key); !found {
		return defaultValue
	}

	return
}

func GetUrlQuery(query url.Values, key, defaultValue string) string {
	v := query.Get(key)
	if len(v) > 0 {
		return v
	}

	return defaultValue
}

func InStringArray(a []string, s string) (index int, found bool) {
	var h string
	for index, h = range a {
		found = h == s
		if found {
			return
		}
	}

	index = -1
	return
}

var (
	TrueQueryStringValue  = []string{"true", "yes", "1"}
	FalseQueryStringValue = []string{"false", "no", "0"}
)

// ParseBoolQueryString parses a boolean value from a query string: 'true',
// '1', 'yes' are `true`; 'false', '0', 'no' are `false`; anything else is
// `errors.InvalidQueryString`.
func ParseBoolQueryString(v string) (yesno bool, err error) {
	if _, yesno = InStringArray(TrueQueryStringValue, strings.ToLower(v)); yesno {
		return
	}
	if _, ok := InStringArray(FalseQueryStringValue, strings.ToLower(v)); ok {
		yesno = false
		return
	}

	err = errors.InvalidQueryString
	return
}

//
// Function to wrap calls to `json.Unmarshal` that cannot fail
//
// This function should only be used when doing calls that cannot fail,
// e.g. reading the content of the on-disk storage which was serialized by
// conclave itself. It ensures no silent corruption of data can happen.
func MustUnmarshalJSON(data []byte, v interface{}) {
	if err := json.Unmarshal(data, v); err != nil {
		panic(err)
	}
}

func MustMarshalJSON(o interface{}) []byte {
	b, _ := json.Marshal(o)
	return b
}

func JSONMarshalWithoutEscapeHTML(o interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(o); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
