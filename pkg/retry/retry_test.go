package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo(t *testing.T) {
	ctx := context.Background()
	plain := errors.New("plain")

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{"success", []error{nil}, 1, nil},
		{"permanent", []error{plain}, 1, plain},
		{"recovers", []error{Transient(plain), nil}, 2, nil},
		{"exhausted", []error{Transient(plain), Transient(plain), Transient(plain)}, 3, plain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(ctx, 3, time.Millisecond, func() error {
				err := tt.errs[calls]
				calls++
				return err
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDoAtLeastOnce(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), 0, time.Millisecond, func() error {
		calls++
		return nil
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, 3, time.Hour, func() error {
		return Transient(errors.New("transient"))
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
	base := errors.New("timeout")
	wrapped := Transient(base)
	if !IsTransient(wrapped) || !errors.Is(wrapped, base) || wrapped.Error() != "timeout" {
		t.Errorf("Transient(%v) = %v", base, wrapped)
	}
	if IsTransient(base) {
		t.Error("plain error reported transient")
	}
}
