package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/akgarg/urlshortener-gateway/src/reqctx"
)

// Replies larger than this are not auth service replies.
const maxReplyBytes = 64 << 10

var tracer = otel.Tracer("auth.client")

type successReply struct {
	Success bool `json:"success"`
}

type rpcClient struct {
	httpClient *http.Client
}

func newRpcClient(timeout time.Duration) rpcClient {
	return rpcClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// post sends body as JSON to url and decodes the "success" field of the reply.
// A reply that is not JSON decodes as success=false.
func (c rpcClient) post(ctx context.Context, spanName string, url string, body interface{}) (int, bool, error) {
	ctx, span := tracer.Start(ctx, spanName,
		trace.WithAttributes(attribute.String("http.url", url)),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	payload, err := json.Marshal(body)
	if err != nil {
		return 0, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if id := reqctx.CorrelationID(ctx); id != "" {
		req.Header.Set(RequestIdHeader, id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	res, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, false, err
	}
	defer res.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxReplyBytes))
	if err != nil {
		return res.StatusCode, false, fmt.Errorf("reading reply from %s: %w", url, err)
	}

	var reply successReply
	if len(raw) > 0 && json.Unmarshal(raw, &reply) != nil {
		reply.Success = false
	}
	return res.StatusCode, reply.Success, nil
}
