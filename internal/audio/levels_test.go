package audio_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alkime/intake/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelWindow_Recent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		size   int
		writes [][]int16
		n      int
		want   []int16
	}{
		{"partial", 10, [][]int16{{1, 2, 3}}, 5, []int16{1, 2, 3}},
		{"tail", 10, [][]int16{{1, 2, 3, 4, 5}}, 2, []int16{4, 5}},
		{"wraps", 5, [][]int16{{1, 2, 3, 4, 5, 6, 7}}, 5, []int16{3, 4, 5, 6, 7}},
		{"batches wrap", 5, [][]int16{{1, 2}, {3, 4}, {5, 6}}, 5, []int16{2, 3, 4, 5, 6}},
		{"zero", 5, [][]int16{{1}}, 0, nil},
		{"negative", 5, [][]int16{{1}}, -3, nil},
		{"empty", 5, nil, 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := audio.NewLevelWindow(tt.size)
			for _, batch := range tt.writes {
				w.Write(batch)
			}

			assert.Equal(t, tt.want, w.Recent(tt.n))
		})
	}
}

func TestLevelWindow_Reset(t *testing.T) {
	t.Parallel()

	w := audio.NewLevelWindow(8)
	w.Write([]int16{100, math.MinInt16, 200})
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []int16{math.MinInt16, 200}, w.Recent(2))

	w.Reset()
	assert.Zero(t, w.Len())
	assert.Nil(t, w.Recent(8))

	w.Write([]int16{7})
	assert.Equal(t, []int16{7}, w.Recent(8))
}

func TestLevelWindow_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	w := audio.NewLevelWindow(1000)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	go func() {
		var v int16
		for ctx.Err() == nil {
			w.Write([]int16{v, v + 1, v + 2})
			v += 3
		}
	}()

	for ctx.Err() == nil {
		require.LessOrEqual(t, len(w.Recent(10)), 10)
		_ = w.Len()
	}
}
