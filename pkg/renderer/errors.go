package renderer

import "errors"

var (
	ErrInvalidChannelSize = errors.New("renderer: task channel requires 0 < window < buffer")
	ErrChannelClosed      = errors.New("renderer: task channel is shutting down")
	ErrNilTask            = errors.New("renderer: nil task")
	ErrInvalidConfig      = errors.New("renderer: invalid configuration")
	ErrInterrupted        = errors.New("renderer: render interrupted")
)
