package videos

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDurationProberParsesOutput(t *testing.T) {
	var gotBinary string
	var gotArgs []string
	prober := NewDurationProber("/usr/bin/ffprobe", time.Second)
	prober.Run = func(_ context.Context, binary string, args ...string) ([]byte, error) {
		gotBinary = binary
		gotArgs = args
		return []byte(`{"format":{"duration":"12.500000"}}`), nil
	}

	seconds, err := prober.Duration(context.Background(), "/tmp/clip.mp4")
	if err != nil {
		t.Fatalf("duration: %v", err)
	}
	if seconds != 12.5 {
		t.Fatalf("expected 12.5 got %v", seconds)
	}
	if gotBinary != "/usr/bin/ffprobe" {
		t.Fatalf("unexpected binary %q", gotBinary)
	}
	if len(gotArgs) == 0 || gotArgs[len(gotArgs)-1] != "/tmp/clip.mp4" {
		t.Fatalf("expected path as last argument: %v", gotArgs)
	}
	if !strings.Contains(strings.Join(gotArgs, " "), "format=duration") {
		t.Fatalf("expected duration entry in args: %v", gotArgs)
	}
}

func TestDurationProberErrors(t *testing.T) {
	tests := []struct {
		name string
		out  string
		err  error
	}{
		{name: "command failure", err: errors.New("exit status 1")},
		{name: "malformed json", out: "not json"},
		{name: "missing duration", out: `{"format":{}}`},
		{name: "non numeric duration", out: `{"format":{"duration":"N/A"}}`},
		{name: "negative duration", out: `{"format":{"duration":"-3"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := NewDurationProber("", 0)
			prober.Run = func(context.Context, string, ...string) ([]byte, error) {
				return []byte(tt.out), tt.err
			}
			if _, err := prober.Duration(context.Background(), "clip.mp4"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDurationProberDefaults(t *testing.T) {
	prober := NewDurationProber("  ", 0)
	if prober.Binary != "ffprobe" {
		t.Fatalf("expected ffprobe default got %q", prober.Binary)
	}
	if prober.Timeout <= 0 {
		t.Fatalf("expected positive timeout got %v", prober.Timeout)
	}

	var nilProber *DurationProber
	if _, err := nilProber.Duration(context.Background(), "x"); !errors.Is(err, ErrProberUnavailable) {
		t.Fatalf("expected ErrProberUnavailable got %v", err)
	}
}

func TestDurationProberHonoursTimeout(t *testing.T) {
	prober := NewDurationProber("ffprobe", 10*time.Millisecond)
	prober.Run = func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if _, err := prober.Duration(context.Background(), "clip.mp4"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded got %v", err)
	}
}
