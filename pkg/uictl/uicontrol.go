// Package uictl decouples UI widgets from the hardware they display.
package uictl

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Integer | constraints.Float
}

// Dial is a control that can read some value.
type Dial[N Number] interface {
	Read() N
}

// Levels is a control that can read a window of recent levels.
type Levels[N Number] interface {
	Read() []N
}

// DialFunc adapts a getter to a Dial.
type DialFunc[N Number] func() N

func (f DialFunc[N]) Read() N { return f() }

// LevelsFunc adapts a getter to Levels.
type LevelsFunc[N Number] func() []N

func (f LevelsFunc[N]) Read() []N { return f() }

// Window reads the newest n values from read.
func Window[N Number](read func(n int) []N, n int) LevelsFunc[N] {
	return func() []N { return read(n) }
}
