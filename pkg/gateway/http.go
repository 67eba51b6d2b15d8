package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"dira/pkg/client"
	apperrors "dira/pkg/errors"
	"dira/pkg/logger"
)

// HTTPGateway talks to the payment provider over its REST API. Calls run
// through a circuit breaker so a degraded provider fails fast instead of
// holding request goroutines on timeouts.
type HTTPGateway struct {
	client *client.HttpClient
	cb     *gobreaker.CircuitBreaker
	log    *logger.Logger
}

func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration, log *logger.Logger) *HTTPGateway {
	httpClient := client.NewHttpClient(baseURL, timeout)
	httpClient.Headers = map[string]string{
		"Authorization": "Bearer " + apiKey,
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &HTTPGateway{
		client: httpClient,
		cb:     cb,
		log:    log,
	}
}

func (g *HTTPGateway) Authorize(ctx context.Context, req AuthorizationRequest) (*Authorization, error) {
	result, err := g.cb.Execute(func() (interface{}, error) {
		resp, err := g.client.POSTWithHeaders(ctx, "/v1/authorizations", req, idempotencyHeader())
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("authorize returned %d: %s", resp.StatusCode, client.GetErrorMessage(resp))
		}

		var auth Authorization
		if err := resp.DecodeJSON(&auth); err != nil {
			return nil, fmt.Errorf("failed to decode authorization: %w", err)
		}
		return &auth, nil
	})
	if err != nil {
		return nil, apperrors.Gateway("payment provider authorization failed", err)
	}

	return result.(*Authorization), nil
}

func (g *HTTPGateway) Capture(ctx context.Context, authorizationID string, req CaptureRequest) (*Authorization, error) {
	result, err := g.cb.Execute(func() (interface{}, error) {
		path := fmt.Sprintf("/v1/authorizations/%s/capture", authorizationID)
		resp, err := g.client.POSTWithHeaders(ctx, path, req, idempotencyHeader())
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("capture returned %d: %s", resp.StatusCode, client.GetErrorMessage(resp))
		}

		var auth Authorization
		if err := resp.DecodeJSON(&auth); err != nil {
			return nil, fmt.Errorf("failed to decode capture result: %w", err)
		}
		return &auth, nil
	})
	if err != nil {
		return nil, apperrors.Gateway("payment provider capture failed", err)
	}

	return result.(*Authorization), nil
}

func (g *HTTPGateway) Cancel(ctx context.Context, authorizationID string) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		path := fmt.Sprintf("/v1/authorizations/%s/void", authorizationID)
		resp, err := g.client.POSTWithHeaders(ctx, path, nil, idempotencyHeader())
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return nil, fmt.Errorf("void returned %d: %s", resp.StatusCode, client.GetErrorMessage(resp))
		}
		return nil, nil
	})
	if err != nil {
		return apperrors.Gateway("payment provider void failed", err)
	}

	return nil
}

func idempotencyHeader() map[string]string {
	return map[string]string{
		"Idempotency-Key": uuid.New().String(),
	}
}
