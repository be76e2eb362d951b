package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions/drivers/memory"
	"github.com/stretchr/testify/require"
)

func TestHousekeeping_SweepOnce(t *testing.T) {
	clock := memory.NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := memory.New(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.Session{Key: "session:a:1"}, time.Minute))
	require.NoError(t, store.Put(ctx, domain.Session{Key: "session:a:2"}, time.Hour))
	require.NoError(t, store.Blacklist(ctx, "nonce", time.Minute))

	hk := service.NewHousekeepingService(store, slog.Default(), time.Hour)
	require.Zero(t, hk.SweepOnce(ctx))

	clock.Advance(2 * time.Minute)
	require.Equal(t, 2, hk.SweepOnce(ctx))
	require.Equal(t, 1, store.Len())
}

func TestHousekeeping_StartStop(t *testing.T) {
	hk := service.NewHousekeepingService(memory.New(nil), nil, 0)
	require.Equal(t, time.Minute, hk.Interval)

	hk.Start()
	hk.Stop()
}

func TestHousekeeping_StopWithoutStart(t *testing.T) {
	hk := service.NewHousekeepingService(memory.New(nil), nil, time.Second)
	hk.Stop()
}

func TestHousekeeping_Restart(t *testing.T) {
	hk := service.NewHousekeepingService(memory.New(nil), nil, time.Millisecond)

	for range 3 {
		hk.Start()
		hk.Start()
		time.Sleep(5 * time.Millisecond)
		hk.Stop()
		hk.Stop()
	}
}
