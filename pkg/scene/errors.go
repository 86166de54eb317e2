package scene

import "errors"

var (
	ErrSceneFrozen  = errors.New("scene: cannot add surfaces after the acceleration structure was built")
	ErrAlreadyBuilt = errors.New("scene: acceleration structure already built")
	ErrNilShape     = errors.New("scene: shape is nil")
	ErrUnknownScene = errors.New("scene: unknown scene")
)
