package network

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"conclave.io/conclave/lib/common"
)

func TestHTTP2NetworkConfigHTTPSAndTLS(t *testing.T) {
	var nodeName string = "showme"
	{ // HTTPS + TLSCertFile + TLSKeyFile
		queryValues := url.Values{}
		queryValues.Set("TLSCertFile", "faketlscert")
		queryValues.Set("TLSKeyFile", "faketlskey")

		endpoint := &common.Endpoint{
			Scheme:   "https",
			Host:     "localhost:12345",
			RawQuery: queryValues.Encode(),
		}

		_, err := NewHTTP2NetworkConfigFromEndpoint(nodeName, endpoint)
		require.Nil(t, err)
	}

	{ // HTTPS + TLSCertFile
		queryValues := url.Values{}
		queryValues.Set("TLSCertFile", "faketlscert")

		endpoint := &common.Endpoint{
			Scheme:   "https",
			Host:     "localhost:12345",
			RawQuery: queryValues.Encode(),
		}

		_, err := NewHTTP2NetworkConfigFromEndpoint(nodeName, endpoint)
		require.NotNil(t, err)
	}

	{ // HTTPS + TLSKeyFile
		queryValues := url.Values{}
		queryValues.Set("TLSKeyFile", "faketlskey")

		endpoint := &common.Endpoint{
			Scheme:   "https",
			Host:     "localhost:12345",
			RawQuery: queryValues.Encode(),
		}

		_, err := NewHTTP2NetworkConfigFromEndpoint(nodeName, endpoint)
		require.NotNil(t, err)
	}

	{ // HTTP
		endpoint := &common.Endpoint{
			Scheme: "http",
			Host:   "localhost:12345",
		}

		_, err := NewHTTP2NetworkConfigFromEndpoint(nodeName, endpoint)
		require.Nil(t, err)
	}
}

func TestHTTP2NetworkConfigTimeouts(t *testing.T) {
	queryValues := url.Values{}
	queryValues.Set("ReadTimeout", "10s")
	queryValues.Set("WriteTimeout", "1m")

	endpoint := &common.Endpoint{
		Scheme:   "http",
		Host:     "localhost:12345",
		RawQuery: queryValues.Encode(),
	}

	config, err := NewHTTP2NetworkConfigFromEndpoint("showme", endpoint)
	require.Nil(t, err)
	require.Equal(t, 10*time.Second, config.ReadTimeout)
	require.Equal(t, time.Minute, config.WriteTimeout)

	queryValues.Set("ReadTimeout", "-1s")
	endpoint.RawQuery = queryValues.Encode()
	_, err = NewHTTP2NetworkConfigFromEndpoint("showme", endpoint)
	require.NotNil(t, err)
}
