package executor

import (
	"fmt"
	"net/http"
	"time"

	logging "github.com/inconshreveable/log15"

	"conclave.io/conclave/lib/common"
)

var log logging.Logger = logging.New("module", "executor")

func SetLogging(level logging.Lvl, handler logging.Handler) {
	common.SetLogging(log, level, handler)
}

// HTTPExecutor POSTs the proposal payload to the target endpoint. A
// transport error or a non-2xx response is failure. The underlying client
// carries no retry wrapper.
type HTTPExecutor struct {
	client *common.HTTP2Client
}

func NewHTTPExecutor(timeout time.Duration) (*HTTPExecutor, error) {
	client, err := common.NewHTTP2Client(timeout, 0, false)
	if err != nil {
		return nil, err
	}

	return &HTTPExecutor{client: client}, nil
}

func (e *HTTPExecutor) Execute(target string, payload []byte) error {
	endpoint, err := common.ParseEndpoint(target)
	if err != nil {
		return err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/octet-stream")

	response, err := e.client.Post(endpoint.String(), payload, headers)
	if err != nil {
		log.Error("execution request failed", "target", target, "error", err)
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		log.Error("execution rejected", "target", target, "status", response.StatusCode)
		return fmt.Errorf("target returned status %d", response.StatusCode)
	}

	return nil
}

func (e *HTTPExecutor) Close() {
	e.client.Close()
}
