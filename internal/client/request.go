package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfeidau/recruitify/internal/telemetry"
)

const tracerName = "github.com/wolfeidau/recruitify/internal/client"

// do sends a JSON request and decodes the JSON response into out.
// Every failure is returned as a *FetchError.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	m := telemetry.GetMetrics()
	opAttr := metric.WithAttributes(attribute.String("op", op))
	started := time.Now()

	m.ProviderRequestsTotal.Add(ctx, 1, opAttr)

	err := c.roundTrip(ctx, op, method, path, in, out)

	m.ProviderRequestDuration.Record(ctx, float64(time.Since(started).Milliseconds()), opAttr)

	if err != nil {
		m.ProviderErrorsTotal.Add(ctx, 1, opAttr)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		log.Debug().Err(err).Str("op", op).Msg("provider request failed")

		return err
	}

	return nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return &FetchError{Op: op, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
	}

	endpoint := c.baseURL.String() + path

	attempt := 0
	data, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			telemetry.GetMetrics().ProviderRetriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
			log.Debug().Str("op", op).Int("attempt", attempt).Msg("retrying provider request")
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, backoff.Permanent(&FetchError{Op: op, Err: err})
		}

		req.Header.Set("Accept", "application/json")
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if noCache(ctx) {
			req.Header.Set("Cache-Control", "no-cache")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			ferr := &FetchError{Op: op, Err: err}
			if ctx.Err() != nil || ferr.Unauthorized() {
				return nil, backoff.Permanent(ferr)
			}
			return nil, ferr
		}
		defer resp.Body.Close()

		if IsCachedResponse(resp) {
			trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("http.response.cached", true))
			log.Debug().Str("op", op).Str("url", endpoint).Msg("served from cache")
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, &FetchError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			ferr := &FetchError{Op: op, StatusCode: resp.StatusCode, Err: statusError(resp, data)}
			if retryableStatus(resp.StatusCode) {
				return nil, ferr
			}
			return nil, backoff.Permanent(ferr)
		}

		return data, nil
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
	)
	if err != nil {
		if ferr, ok := AsFetchError(err); ok {
			return ferr
		}
		// context cancellation surfaces from the retry loop itself
		return &FetchError{Op: op, Err: err}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &FetchError{Op: op, StatusCode: http.StatusOK, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}

	return nil
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxInterval = 10 * c.retryInterval
	return b
}

// statusError summarises an error response, preferring a JSON {"error": "..."} message.
func statusError(resp *http.Response, data []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		switch {
		case payload.Error != "":
			return errors.New(payload.Error)
		case payload.Message != "":
			return errors.New(payload.Message)
		}
	}

	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg == "" {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return fmt.Errorf("unexpected status %s: %s", resp.Status, msg)
}
