package core

import (
	"errors"
)

// Resource exhaustion.
var (
	ErrBufferAllocation = errors.New("gpu buffer allocation failed")
)

// Lifecycle misuse.
var (
	ErrPoolDisposed     = errors.New("buffer pool is disposed")
	ErrRendererDisposed = errors.New("batch renderer is disposed")
)

// Configuration errors.
var (
	ErrInvalidBatchSize   = errors.New("batch size must be greater than zero")
	ErrInvalidBufferShape = errors.New("buffer count and stride must be greater than zero")
	ErrStrideMismatch     = errors.New("element size does not match buffer stride")
	ErrBufferOverflow     = errors.New("write exceeds buffer capacity")
	ErrInstancingDisabled = errors.New("material does not support instancing")
	ErrUnknownLayer       = errors.New("unknown render layer")
	ErrInvalidConfig      = errors.New("invalid configuration")
)
