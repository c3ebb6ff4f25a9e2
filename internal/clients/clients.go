// Package clients holds the HTTP clients for the services the gateway
// orchestrates: the core CRUD API (which also fronts STT), the OCR service,
// and the chatbot service. Each is deployed behind its own base URL.
package clients

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"medinote-gateway/internal/metrics"
)

const defaultTimeout = 30 * time.Second

func newClient(service, baseURL string) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout)

	client.OnAfterResponse(func(c *resty.Client, res *resty.Response) error {
		metrics.ObserveUpstream(service, res.Time())
		return nil
	})

	return client
}

// detailBody is the error envelope all three upstream services use.
type detailBody struct {
	Detail string `json:"detail"`
}

// upstreamError extracts the server-provided detail message from a non-2xx
// response, falling back to a templated message with the status code.
func upstreamError(res *resty.Response, op string) error {
	var body detailBody
	if err := json.Unmarshal(res.Body(), &body); err == nil && body.Detail != "" {
		return fmt.Errorf("%s: %s", op, body.Detail)
	}
	return fmt.Errorf("%s failed (%d)", op, res.StatusCode())
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
