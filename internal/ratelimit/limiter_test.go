package ratelimit

import (
	"context"
	"testing"
	"time"
)

// =============================================================================
// Limiter Tests
// =============================================================================

func TestNewLimiter_Unlimited(t *testing.T) {
	l := NewLimiter(0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait() request %d on an unlimited limiter: %v", i, err)
		}
	}
}

func TestLimiter_Wait_Burst(t *testing.T) {
	l := NewLimiter(0.001, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait() burst request %d error = %v", i+1, err)
		}
	}
	if err := l.Wait(ctx); err == nil {
		t.Error("Wait() should fail once the burst is spent and the context expires")
	}
}

func TestLimiter_WaitCommand(t *testing.T) {
	l := NewLimiter(1000, 10)
	l.SetCommandRate("get_player", 0.001, 1)

	ctx := context.Background()
	if err := l.WaitCommand(ctx, "get_player"); err != nil {
		t.Fatalf("first WaitCommand() error = %v", err)
	}
	if err := l.WaitCommand(ctx, "add_match"); err != nil {
		t.Errorf("unthrottled command error = %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := l.WaitCommand(short, "get_player"); err == nil {
		t.Error("second get_player should be throttled")
	}
}

func TestLimiter_SetCommandRate_ZeroRemoves(t *testing.T) {
	l := NewLimiter(0, 0)
	l.SetCommandRate("get_player", 0.001, 1)
	l.SetCommandRate("get_player", 0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	for i := 0; i < 5; i++ {
		if err := l.WaitCommand(ctx, "get_player"); err != nil {
			t.Fatalf("WaitCommand() request %d error = %v", i, err)
		}
	}
}
