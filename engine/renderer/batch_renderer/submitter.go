package batch_renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
)

// submitContext is everything a submitter may touch while submitting one batch.
type submitContext struct {
	info    RenderInfo
	surface Surface
	scratch *scratch
	props   *PropertyBlock
	params  DrawParams

	positionPool  buffer_pool.BufferPool
	directionPool buffer_pool.BufferPool
	timePool      buffer_pool.BufferPool
	argsPool      buffer_pool.BufferPool
}

// submitter turns one staged batch into exactly one draw on the Surface.
type submitter interface {
	// Mode returns the submission mode implemented.
	//
	// Returns:
	//   - Mode: the mode
	Mode() Mode

	// Submit issues the draw for the first run staged instances.
	//
	// Parameters:
	//   - ctx: the staged batch and its resources
	//   - run: the number of instances in the batch
	//
	// Returns:
	//   - error: rent, write or submission failure
	Submit(ctx *submitContext, run int) error

	// Demand returns the number of buffers the submitter rents from each pool per batch.
	//
	// Returns:
	//   - int: buffers rented per pool per batch
	Demand() int
}

type directSubmitter struct{}

var _ submitter = directSubmitter{}

func (directSubmitter) Mode() Mode  { return ModeDirect }
func (directSubmitter) Demand() int { return 0 }

func (directSubmitter) Submit(ctx *submitContext, run int) error {
	s := ctx.scratch
	ctx.props.SetVectorArray(PropertyPosDir, s.posDir[:run])
	ctx.props.SetFloatArray(PropertyTime, s.times[:run])
	return ctx.surface.DrawInstanced(ctx.info, s.transforms[:run], run, ctx.props, ctx.params)
}

type indirectSubmitter struct{}

var _ submitter = indirectSubmitter{}

func (indirectSubmitter) Mode() Mode  { return ModeIndirect }
func (indirectSubmitter) Demand() int { return 1 }

func (indirectSubmitter) Submit(ctx *submitContext, run int) error {
	s := ctx.scratch

	posBuf, err := ctx.positionPool.Rent()
	if err != nil {
		return err
	}
	if err := buffer_pool.WriteElements(posBuf, s.positions[:run]); err != nil {
		return err
	}

	dirBuf, err := ctx.directionPool.Rent()
	if err != nil {
		return err
	}
	if err := buffer_pool.WriteElements(dirBuf, s.directions[:run]); err != nil {
		return err
	}

	timeBuf, err := ctx.timePool.Rent()
	if err != nil {
		return err
	}
	if err := buffer_pool.WriteElements(timeBuf, s.times[:run]); err != nil {
		return err
	}

	argsBuf, err := ctx.argsPool.Rent()
	if err != nil {
		return err
	}
	args := IndirectArgs{
		IndexCount:    uint32(ctx.info.Geometry.IndexCount()),
		InstanceCount: uint32(run),
	}
	if err := argsBuf.Write(0, args.Marshal()); err != nil {
		return fmt.Errorf("failed to write indirect args: %w", err)
	}

	ctx.props.SetBuffer(PropertyPosition, posBuf)
	ctx.props.SetBuffer(PropertyDirection, dirBuf)
	ctx.props.SetBuffer(PropertyTime, timeBuf)
	return ctx.surface.DrawInstancedIndirect(ctx.info, argsBuf, 0, ctx.props, ctx.params)
}

func newSubmitter(m Mode) submitter {
	if m == ModeIndirect {
		return indirectSubmitter{}
	}
	return directSubmitter{}
}
