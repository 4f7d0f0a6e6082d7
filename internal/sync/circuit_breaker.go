// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/solarguardian/internal/logging"
	"github.com/tomtom215/solarguardian/internal/metrics"
	"github.com/tomtom215/solarguardian/internal/models/epcloud"
)

const breakerName = "epcloud-api"

// CircuitBreakerClient wraps an EPCloudAPI with a circuit breaker so a dead
// or overloaded cloud is not hammered every cycle.
//
// A *StatusError is an answer from a healthy server and counts as success;
// only transport, HTTP and decoding failures move the breaker.
type CircuitBreakerClient struct {
	client EPCloudAPI
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

var _ EPCloudAPI = (*CircuitBreakerClient)(nil)

// NewCircuitBreakerClient wraps client. The breaker opens at a 60% failure
// rate over at least 10 requests and probes again after 2 minutes.
func NewCircuitBreakerClient(client EPCloudAPI) *CircuitBreakerClient {
	return newCircuitBreakerClient(client, 2*time.Minute)
}

func newCircuitBreakerClient(client EPCloudAPI, openTimeout time.Duration) *CircuitBreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening EPEver cloud circuit breaker")
				return true
			}
			return false
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isStatusError(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("Circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: breakerName}
}

// State returns the current breaker state.
func (cbc *CircuitBreakerClient) State() gobreaker.State {
	return cbc.cb.State()
}

func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("Circuit breaker rejected request")
		case isStatusError(err):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(cbc.cb.Counts().ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)
	return result, nil
}

// castResult type-asserts a breaker result.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// GetAuthToken is not guarded: a startup authentication failure must surface
// as is, and it is never retried automatically.
func (cbc *CircuitBreakerClient) GetAuthToken(ctx context.Context, appKey, appSecret string) (string, error) {
	return cbc.client.GetAuthToken(ctx, appKey, appSecret)
}

func (cbc *CircuitBreakerClient) GetPowerStations(ctx context.Context, token string) (*epcloud.ListPage, error) {
	return castResult[epcloud.ListPage](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetPowerStations(ctx, token)
	}))
}

func (cbc *CircuitBreakerClient) GetGateways(ctx context.Context, token string) (*epcloud.GatewayPage, error) {
	return castResult[epcloud.GatewayPage](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetGateways(ctx, token)
	}))
}

func (cbc *CircuitBreakerClient) GetDevices(ctx context.Context, token string) (*epcloud.ListPage, error) {
	return castResult[epcloud.ListPage](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetDevices(ctx, token)
	}))
}

func (cbc *CircuitBreakerClient) GetOrganizations(ctx context.Context, token string) ([]json.RawMessage, error) {
	list, err := castResult[[]json.RawMessage](cbc.execute(func() (interface{}, error) {
		items, err := cbc.client.GetOrganizations(ctx, token)
		if err != nil {
			return nil, err
		}
		return &items, nil
	}))
	if err != nil {
		return nil, err
	}
	return *list, nil
}

func (cbc *CircuitBreakerClient) GetEquipment(ctx context.Context, token string, id epcloud.FlexID) (*epcloud.EquipmentDetail, error) {
	return castResult[epcloud.EquipmentDetail](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetEquipment(ctx, token, id)
	}))
}

func (cbc *CircuitBreakerClient) GetDataPointHistory(ctx context.Context, token string, query epcloud.DataPointHistoryRequest) ([]epcloud.Sample, error) {
	samples, err := castResult[[]epcloud.Sample](cbc.execute(func() (interface{}, error) {
		items, err := cbc.client.GetDataPointHistory(ctx, token, query)
		if err != nil {
			return nil, err
		}
		return &items, nil
	}))
	if err != nil {
		return nil, err
	}
	return *samples, nil
}

func (cbc *CircuitBreakerClient) GetAlarmHistory(ctx context.Context, token string, start, end time.Time) (*epcloud.ListPage, error) {
	return castResult[epcloud.ListPage](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetAlarmHistory(ctx, token, start, end)
	}))
}
