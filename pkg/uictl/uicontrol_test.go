package uictl_test

import (
	"testing"

	"github.com/alkime/intake/pkg/uictl"
	"github.com/stretchr/testify/assert"
)

func TestDialFunc(t *testing.T) {
	t.Parallel()

	var n int64 = 7
	var d uictl.Dial[int64] = uictl.DialFunc[int64](func() int64 { return n })

	assert.Equal(t, int64(7), d.Read())
	n = 9
	assert.Equal(t, int64(9), d.Read())
}

func TestWindow(t *testing.T) {
	t.Parallel()

	samples := []int16{1, 2, 3, 4, 5}
	var asked int

	var l uictl.Levels[int16] = uictl.Window(func(n int) []int16 {
		asked = n
		return samples[len(samples)-n:]
	}, 3)

	assert.Equal(t, []int16{3, 4, 5}, l.Read())
	assert.Equal(t, 3, asked)
}
