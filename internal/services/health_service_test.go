package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"refracalc/pkg/contracts"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubCounter int

func (c stubCounter) ClientCount() int { return int(c) }

func TestHealthService_Ready(t *testing.T) {
	svc, _ := newTestService(t, nil)
	hs := NewHealthService(stubPinger{}, stubCounter(2), svc, testLogger())
	ctx := context.Background()

	ready := hs.ReadinessCheck(ctx)
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, contracts.Version, ready.Version)
	assert.Equal(t, "ready", ready.Services["store"].Status)
	assert.Contains(t, ready.Services["calibration"].Message, "single-point")

	assert.Equal(t, "ok", hs.HealthCheck(ctx).Status)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Equal(t, 2, live.Runtime["websocket_clients"])
}

func TestHealthService_NotReady(t *testing.T) {
	tests := []struct {
		name  string
		store Pinger
		svc   bool
	}{
		{"store unreachable", stubPinger{err: errors.New("connection refused")}, true},
		{"no store", nil, true},
		{"no engine", stubPinger{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var svc *RefractometerService
			if tt.svc {
				svc, _ = newTestService(t, nil)
			}
			hs := NewHealthService(tt.store, nil, svc, testLogger())
			ctx := context.Background()

			assert.Equal(t, "not_ready", hs.ReadinessCheck(ctx).Status)
			assert.Equal(t, "degraded", hs.HealthCheck(ctx).Status)
		})
	}
}

func TestHealthService_Version(t *testing.T) {
	hs := NewHealthService(nil, nil, nil, testLogger())
	info := hs.Version()
	assert.Equal(t, contracts.Version, info.Version)
	assert.Equal(t, contracts.APIVersion, info.APIVersion)
	assert.NotEmpty(t, info.GoVersion)
}
