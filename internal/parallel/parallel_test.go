package parallel

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchConfigFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 64, ThreadsPerBlock: 256, BlocksPerWorker: 2}

	tests := []struct {
		name  string
		count int
		want  LaunchConfig
	}{
		{"empty", 0, LaunchConfig{}},
		{"below min chunk", 10, LaunchConfig{BlockCount: 1, ThreadsPerBlock: 10}},
		{"one block", 200, LaunchConfig{BlockCount: 1, ThreadsPerBlock: 256}},
		{"few blocks", 1000, LaunchConfig{BlockCount: 4, ThreadsPerBlock: 256}},
		{"capped", 1 << 20, LaunchConfig{BlockCount: 8, ThreadsPerBlock: 256}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LaunchConfigFor(tt.count, cfg))
		})
	}
}

func TestLaunchConfigFor_Sequential(t *testing.T) {
	lc := LaunchConfigFor(5000, Sequential())
	assert.Equal(t, 1, lc.BlockCount)
	assert.Equal(t, DefaultThreadsPerBlock, lc.ThreadsPerBlock)
}

func TestLaunch_VisitsEveryIndexOnce(t *testing.T) {
	for _, cfg := range []Config{
		DefaultConfig(),
		Sequential(),
		{Enabled: true, NumWorkers: 3, MinChunkSize: 1, ThreadsPerBlock: 7, BlocksPerWorker: 1},
	} {
		n := 10007
		counts := make([]int32, n)
		l := NewLauncher(cfg, nil)

		l.Launch("count", n, func(i int) {
			atomic.AddInt32(&counts[i], 1)
		})

		require.True(t, l.OK())
		for i, c := range counts {
			if c != 1 {
				t.Fatalf("index %d visited %d times (cfg %+v)", i, c, cfg)
			}
		}
	}
}

func TestLaunch_EmptyIsNoop(t *testing.T) {
	l := NewLauncher(DefaultConfig(), nil)
	called := false
	l.Launch("empty", 0, func(int) { called = true })

	assert.False(t, called)
	assert.True(t, l.OK())
}

func TestLaunch_PanicMarksFailure(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 2, MinChunkSize: 1, ThreadsPerBlock: 16}
	l := NewLauncher(cfg, nil)

	l.Launch("boom", 1000, func(i int) {
		if i == 500 {
			panic("index out of range")
		}
	})

	assert.False(t, l.OK())
	require.Error(t, l.Err())
	assert.Contains(t, l.Err().Error(), "boom")

	l.Reset()
	assert.True(t, l.OK())
}

func TestLaunch_PanicSequential(t *testing.T) {
	l := NewLauncher(Sequential(), nil)
	l.Launch("boom", 3, func(int) { panic("bad") })
	assert.False(t, l.OK())
}

func TestLaunchContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var visited atomic.Int64
	l := NewLauncher(DefaultConfig(), nil)
	l.LaunchContext(ctx, "cancelled", 4096, func(int) { visited.Add(1) })

	assert.False(t, l.OK())
	assert.ErrorIs(t, l.Err(), context.Canceled)
}

func TestLaunchContext_CancelledAfterLastUnit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const count = 4096
	var visited atomic.Int64
	l := NewLauncher(DefaultConfig(), nil)
	l.LaunchContext(ctx, "late cancel", count, func(int) {
		if visited.Add(1) == count {
			cancel()
		}
	})

	require.Error(t, ctx.Err())
	assert.EqualValues(t, count, visited.Load())
	assert.True(t, l.OK(), "every unit ran, so the launch is complete")
}

func BenchmarkLaunch(b *testing.B) {
	n := 1 << 16
	out := make([]float32, n)

	b.Run("parallel", func(b *testing.B) {
		l := NewLauncher(DefaultConfig(), nil)
		for i := 0; i < b.N; i++ {
			l.Launch("bench", n, func(i int) { out[i] = float32(i) * 0.5 })
		}
	})

	b.Run("sequential", func(b *testing.B) {
		l := NewLauncher(Sequential(), nil)
		for i := 0; i < b.N; i++ {
			l.Launch("bench", n, func(i int) { out[i] = float32(i) * 0.5 })
		}
	})
}
