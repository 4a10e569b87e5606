// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package software

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gal/command"
	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/hal"
	"github.com/gogpu/gal/types"
)

// compileContext walks a recorded command list and emits native commands
// into the target list, tracking resource states and flushing coalesced
// barrier batches before each GPU command. At end of stream every touched
// resource is restored to its default state.
type compileContext struct {
	backend *Backend
	device  *Device
	out     *commandList

	tracker    map[*resource]types.ResourceState
	trackOrder []*resource

	pending      map[*resource]*barrierRecord
	pendingOrder []*resource
	uavPending   []barrierRecord
}

// compile runs the full compile: open, walk, restore, close.
func (c *compileContext) compile(cmds *command.List) error {
	if c.out.state == listOpen {
		return fmt.Errorf("%w: command list is already being compiled", types.ErrInvalidState)
	}
	c.out.reset()
	c.out.queueType = cmds.QueueType()

	c.tracker = make(map[*resource]types.ResourceState)
	c.pending = make(map[*resource]*barrierRecord)

	for _, cmd := range cmds.Commands() {
		if err := c.compileCommand(cmd); err != nil {
			// Leave the native list closable and empty.
			c.out.reset()
			c.out.state = listClosed
			hal.Logger().Error("software: command list compile failed", "err", err)
			return err
		}
	}
	c.out.state = listRecorded

	c.restoreDefault()
	c.out.state = listClosed
	return nil
}

func (c *compileContext) compileCommand(cmd command.Command) error {
	switch cmd := cmd.(type) {
	case *command.Draw:
		return c.compileDraw(cmd)
	case *command.DrawIndirect:
		return c.compileDrawIndirect(cmd)
	case *command.Dispatch:
		return c.compileDispatch(cmd)
	case *command.DispatchIndirect:
		return c.compileDispatchIndirect(cmd)
	case *command.ClearRTV:
		return c.compileClearRTV(cmd)
	case *command.ClearDSV:
		return c.compileClearDSV(cmd)
	case *command.ClearUAV:
		return c.compileClearUAV(cmd)
	case *command.UpdateBuffer:
		return c.compileUpdateBuffer(cmd)
	case *command.UpdateTextureSubResource:
		return c.compileUpdateTexture(cmd)
	case *command.CopyBuffer:
		return c.compileCopyBuffer(cmd)
	case *command.CopyTextureSubResource:
		return c.compileCopyTexture(cmd)
	case *command.BeginEvent:
		c.out.eventDepth++
		return nil
	case *command.EndEvent:
		c.out.eventDepth--
		return nil
	default:
		return fmt.Errorf("%w: unknown command %T", types.ErrInvalidArgument, cmd)
	}
}

// addTransition records a pending transition for a resource if its tracked
// state differs from the required one. Unknown resources enter the tracker
// at their default state. Fails when the required state is outside the
// resource's supported set.
func (c *compileContext) addTransition(res *resource, subRsc int32, state types.ResourceState) error {
	if !res.supportedStates.Contains(state) {
		return fmt.Errorf("%w: %s does not support state %#x", types.ErrInvalidState, res.handle, state)
	}

	current, tracked := c.tracker[res]
	if !tracked {
		current = res.defaultState
		c.tracker[res] = current
		c.trackOrder = append(c.trackOrder, res)
	}

	if state == current {
		// Adjacent unordered-access uses of the same resource within the
		// list still need a UAV ordering barrier.
		if state == types.StateUnorderedAccess && tracked {
			c.uavPending = append(c.uavPending, barrierRecord{
				Resource:    res.handle,
				SubResource: allSubResources,
				Before:      state,
				After:       state,
				UAV:         true,
			})
		}
		return nil
	}

	c.pendTransition(res, subRsc, current, state)
	return nil
}

// pendTransition records a coalesced pending barrier: one entry per
// resource and flush, folding transition chains into before → latest-after.
func (c *compileContext) pendTransition(res *resource, subRsc int32, before, after types.ResourceState) {
	if p, ok := c.pending[res]; ok {
		p.After = after
		if p.SubResource != subRsc {
			p.SubResource = allSubResources
		}
	} else {
		rec := &barrierRecord{
			Resource:    res.handle,
			SubResource: subRsc,
			Before:      before,
			After:       after,
		}
		if res.numSubResources <= 1 {
			rec.SubResource = allSubResources
		}
		c.pending[res] = rec
		c.pendingOrder = append(c.pendingOrder, res)
	}
	c.tracker[res] = after
}

// flushTransitions emits the coalesced pending barriers as one batch.
func (c *compileContext) flushTransitions() {
	if len(c.pendingOrder) == 0 && len(c.uavPending) == 0 {
		return
	}

	batch := barrierBatch{}
	for _, res := range c.pendingOrder {
		rec := c.pending[res]
		if rec.Before != rec.After {
			batch.Records = append(batch.Records, *rec)
		}
		delete(c.pending, res)
	}
	c.pendingOrder = c.pendingOrder[:0]

	batch.Records = append(batch.Records, c.uavPending...)
	c.uavPending = c.uavPending[:0]

	if len(batch.Records) > 0 {
		c.out.barriers = append(c.out.barriers, batch)
	}
}

// restoreDefault transitions every touched resource back to its default
// state and emits the final batch.
func (c *compileContext) restoreDefault() {
	for _, res := range c.trackOrder {
		current := c.tracker[res]
		if current == res.defaultState {
			continue
		}
		c.pendTransition(res, allSubResources, current, res.defaultState)
	}
	c.flushTransitions()
	c.tracker = nil
	c.trackOrder = nil
}

// lookup helpers

func (c *compileContext) pipelineBinding(h core.Handle) (*pipelineBindingSet, error) {
	guard := c.backend.pipelineBindingSets.Read(h)
	defer guard.Release()
	pbs := guard.Get()
	if pbs.cbvTransitions == nil && pbs.srvTransitions == nil && pbs.uavTransitions == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidArgument, h)
	}
	return pbs, nil
}

func (c *compileContext) frameBinding(h core.Handle) (*frameBindingSet, error) {
	guard := c.backend.frameBindingSets.Read(h)
	defer guard.Release()
	fbs := guard.Get()
	if fbs.numBuffers == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidArgument, h)
	}
	return fbs, nil
}

func (c *compileContext) drawBinding(h core.Handle) (*drawBindingSet, error) {
	guard := c.backend.drawBindingSets.Read(h)
	defer guard.Release()
	return guard.Get(), nil
}

// binding-set transition passes

// setPipelineBinding adds the transitions every descriptor of the binding
// set demands. compute selects the non-pixel SRV state.
func (c *compileContext) setPipelineBinding(pbs *pipelineBindingSet, compute bool) error {
	for i := range pbs.cbvTransitions {
		t := &pbs.cbvTransitions[i]
		if !t.valid() {
			continue
		}
		if err := c.addRangeTransition(t, types.StateVertexAndConstantBuffer); err != nil {
			return err
		}
	}
	for i := range pbs.srvTransitions {
		t := &pbs.srvTransitions[i]
		if !t.valid() {
			continue
		}
		state := types.StateNonPixelShaderResource
		if !compute && t.pixelVisible {
			state = types.StatePixelShaderResource
		}
		if err := c.addRangeTransition(t, state); err != nil {
			return err
		}
	}
	for i := range pbs.uavTransitions {
		t := &pbs.uavTransitions[i]
		if !t.valid() {
			continue
		}
		if err := c.addRangeTransition(t, types.StateUnorderedAccess); err != nil {
			return err
		}
	}
	return nil
}

// addRangeTransition narrows a cached subresource range to a concrete
// barrier.
func (c *compileContext) addRangeTransition(t *subresourceRange, state types.ResourceState) error {
	subRsc := allSubResources
	if t.numSubRsc == 1 && t.res.numSubResources > 1 {
		subRsc = t.firstSubRsc
	}
	return c.addTransition(t.res, subRsc, state)
}

// setFrameBinding transitions the RTVs of the current back-buffer group
// and the DSV.
func (c *compileContext) setFrameBinding(fbs *frameBindingSet) error {
	bb := int32(0)
	if fbs.swapChain != nil {
		bb = fbs.swapChain.bbIdx
	}
	for i := int32(0); i < fbs.numRTs; i++ {
		t := &fbs.rtvRanges[bb][i]
		if err := c.addRangeTransition(t, types.StateRenderTarget); err != nil {
			return err
		}
	}
	if fbs.dsvRange.valid() {
		if err := c.addRangeTransition(&fbs.dsvRange, fbs.dsvRange.state); err != nil {
			return err
		}
	}
	return nil
}

// setDrawBinding transitions the vertex and index buffers.
func (c *compileContext) setDrawBinding(dbs *drawBindingSet) error {
	if dbs.ibResource != nil {
		if err := c.addTransition(dbs.ibResource, allSubResources, types.StateIndexBuffer); err != nil {
			return err
		}
	}
	for i := range dbs.vbResources {
		if dbs.vbResources[i] == nil {
			continue
		}
		if err := c.addTransition(dbs.vbResources[i], allSubResources, types.StateVertexAndConstantBuffer); err != nil {
			return err
		}
	}
	return nil
}

// indirectArgs transitions indirect and count buffers.
func (c *compileContext) indirectArgs(indirect, count core.Handle) error {
	ref, err := c.backend.resolveStorage(indirect)
	if err != nil {
		return err
	}
	if err := c.addTransition(ref.res, allSubResources, types.StateIndirectArgument); err != nil {
		return err
	}
	if !count.IsZero() {
		cref, err := c.backend.resolveStorage(count)
		if err != nil {
			return err
		}
		if err := c.addTransition(cref.res, allSubResources, types.StateIndirectArgument); err != nil {
			return err
		}
	}
	return nil
}

// command compilation

func (c *compileContext) compileDraw(cmd *command.Draw) error {
	pbs, err := c.pipelineBinding(cmd.PipelineBinding)
	if err != nil {
		return err
	}
	if c.device.debug.Contains(types.DebugRuntime) && pbs.rootSignature != rootSignatureGraphics {
		return fmt.Errorf("%w: draw with a compute binding set", types.ErrInvalidState)
	}
	fbs, err := c.frameBinding(cmd.FrameBinding)
	if err != nil {
		return err
	}

	if err := c.setPipelineBinding(pbs, false); err != nil {
		return err
	}
	if err := c.setFrameBinding(fbs); err != nil {
		return err
	}

	if !cmd.DrawBinding.IsZero() {
		dbs, err := c.drawBinding(cmd.DrawBinding)
		if err != nil {
			return err
		}
		if err := c.setDrawBinding(dbs); err != nil {
			return err
		}
	}

	c.flushTransitions()
	c.out.numDraws++
	return nil
}

func (c *compileContext) compileDrawIndirect(cmd *command.DrawIndirect) error {
	pbs, err := c.pipelineBinding(cmd.PipelineBinding)
	if err != nil {
		return err
	}
	fbs, err := c.frameBinding(cmd.FrameBinding)
	if err != nil {
		return err
	}

	if err := c.setPipelineBinding(pbs, false); err != nil {
		return err
	}
	if err := c.setFrameBinding(fbs); err != nil {
		return err
	}
	if !cmd.DrawBinding.IsZero() {
		dbs, err := c.drawBinding(cmd.DrawBinding)
		if err != nil {
			return err
		}
		if err := c.setDrawBinding(dbs); err != nil {
			return err
		}
	}
	if err := c.indirectArgs(cmd.IndirectBuffer, cmd.CountBuffer); err != nil {
		return err
	}

	c.flushTransitions()
	c.out.numDraws++
	return nil
}

func (c *compileContext) compileDispatch(cmd *command.Dispatch) error {
	pbs, err := c.pipelineBinding(cmd.PipelineBinding)
	if err != nil {
		return err
	}
	if c.device.debug.Contains(types.DebugRuntime) && pbs.rootSignature != rootSignatureCompute {
		return fmt.Errorf("%w: dispatch with a graphics binding set", types.ErrInvalidState)
	}
	if err := c.setPipelineBinding(pbs, true); err != nil {
		return err
	}

	c.flushTransitions()
	c.out.numDispatches++
	return nil
}

func (c *compileContext) compileDispatchIndirect(cmd *command.DispatchIndirect) error {
	pbs, err := c.pipelineBinding(cmd.PipelineBinding)
	if err != nil {
		return err
	}
	if err := c.setPipelineBinding(pbs, true); err != nil {
		return err
	}
	if err := c.indirectArgs(cmd.IndirectBuffer, cmd.CountBuffer); err != nil {
		return err
	}

	c.flushTransitions()
	c.out.numDispatches++
	return nil
}

func (c *compileContext) compileClearRTV(cmd *command.ClearRTV) error {
	fbs, err := c.frameBinding(cmd.FrameBinding)
	if err != nil {
		return err
	}
	if cmd.RTVIdx >= fbs.numRTs {
		return fmt.Errorf("%w: rtvIdx %d out of range", types.ErrInvalidArgument, cmd.RTVIdx)
	}

	bb := int32(0)
	if fbs.swapChain != nil {
		bb = fbs.swapChain.bbIdx
	}
	t := &fbs.rtvRanges[bb][cmd.RTVIdx]
	if err := c.addRangeTransition(t, types.StateRenderTarget); err != nil {
		return err
	}
	c.flushTransitions()

	tex := t.tex
	subRsc := t.firstSubRsc
	color := cmd.Color
	c.out.ops = append(c.out.ops, func(*Device) {
		clearTextureSubRsc(tex, subRsc, color)
	})
	return nil
}

func (c *compileContext) compileClearDSV(cmd *command.ClearDSV) error {
	fbs, err := c.frameBinding(cmd.FrameBinding)
	if err != nil {
		return err
	}
	if !fbs.dsvRange.valid() {
		return fmt.Errorf("%w: frame binding has no DSV", types.ErrInvalidArgument)
	}

	if err := c.addRangeTransition(&fbs.dsvRange, types.StateDepthWrite); err != nil {
		return err
	}
	c.flushTransitions()

	tex := fbs.dsvRange.tex
	subRsc := fbs.dsvRange.firstSubRsc
	depth := cmd.Depth
	c.out.ops = append(c.out.ops, func(*Device) {
		clearTextureSubRsc(tex, subRsc, [4]float32{depth, depth, depth, depth})
	})
	return nil
}

func (c *compileContext) compileClearUAV(cmd *command.ClearUAV) error {
	pbs, err := c.pipelineBinding(cmd.PipelineBinding)
	if err != nil {
		return err
	}
	if int(cmd.UAVIdx) >= len(pbs.uavTransitions) || !pbs.uavTransitions[cmd.UAVIdx].valid() {
		return fmt.Errorf("%w: uavIdx %d is not bound", types.ErrInvalidArgument, cmd.UAVIdx)
	}

	t := &pbs.uavTransitions[cmd.UAVIdx]
	if err := c.addRangeTransition(t, types.StateUnorderedAccess); err != nil {
		return err
	}
	c.flushTransitions()

	buf, tex, subRsc := t.buf, t.tex, t.firstSubRsc
	var pattern [16]byte
	if cmd.IsFloat {
		for i, f := range cmd.F {
			binary.LittleEndian.PutUint32(pattern[i*4:], math.Float32bits(f))
		}
	} else {
		for i, u := range cmd.U {
			binary.LittleEndian.PutUint32(pattern[i*4:], u)
		}
	}
	c.out.ops = append(c.out.ops, func(*Device) {
		switch {
		case buf != nil:
			fillPattern(buf.data, pattern[:4])
		case tex != nil:
			clearRawSubRsc(tex, subRsc, pattern[:])
		}
	})
	return nil
}

func (c *compileContext) compileUpdateBuffer(cmd *command.UpdateBuffer) error {
	ref, err := c.backend.resolveStorage(cmd.Buffer)
	if err != nil {
		return err
	}
	if int64(cmd.Offset)+int64(cmd.Size) > int64(len(ref.buf.data)) {
		return fmt.Errorf("%w: update range out of bounds", types.ErrInvalidArgument)
	}

	// Stage through the per-frame upload allocator; the arena payload dies
	// with the recorder, the upload range survives the frame.
	alloc, err := c.device.currentFrame().upload.Alloc(int64(cmd.Size), types.UploadAlignment)
	if err != nil {
		return err
	}
	copy(alloc.data, cmd.Data)

	if err := c.addTransition(ref.res, allSubResources, types.StateCopyDest); err != nil {
		return err
	}
	c.flushTransitions()

	buf, offset := ref.buf, cmd.Offset
	c.out.ops = append(c.out.ops, func(*Device) {
		copy(buf.data[offset:], alloc.data)
	})
	return nil
}

func (c *compileContext) compileUpdateTexture(cmd *command.UpdateTextureSubResource) error {
	ref, err := c.backend.resolveStorage(cmd.Texture)
	if err != nil {
		return err
	}
	tex := ref.tex
	if int32(cmd.SubResourceIdx) >= tex.numSubResources {
		return fmt.Errorf("%w: subresource index out of range", types.ErrInvalidArgument)
	}

	info := types.FormatInfo(tex.desc.Format)
	w, h, dep := tex.subResourceDims(int32(cmd.SubResourceIdx))
	if info.Compressed && (w%info.BlockW != 0 || h%info.BlockH != 0) {
		return fmt.Errorf("%w: block-unaligned update region", types.ErrUnsupported)
	}
	rows := (h + info.BlockH - 1) / info.BlockH

	fp := tex.footprints[cmd.SubResourceIdx]
	alloc, err := c.device.currentFrame().upload.Alloc(fp.TotalBytes, types.MaxUploadAlignment)
	if err != nil {
		return err
	}
	srcFp := types.Footprint{RowPitch: cmd.Data.RowPitch, SlicePitch: cmd.Data.SlicePitch}
	if err := types.CopyTextureData(alloc.data, fp, cmd.Data.Data, srcFp, rows, dep); err != nil {
		return err
	}

	if err := c.addTransition(ref.res, subRscOrAll(tex, int32(cmd.SubResourceIdx)), types.StateCopyDest); err != nil {
		return err
	}
	c.flushTransitions()

	subRsc := int32(cmd.SubResourceIdx)
	c.out.ops = append(c.out.ops, func(*Device) {
		copy(tex.subData[subRsc], alloc.data)
	})
	return nil
}

func (c *compileContext) compileCopyBuffer(cmd *command.CopyBuffer) error {
	dst, err := c.backend.resolveStorage(cmd.DstBuffer)
	if err != nil {
		return err
	}
	src, err := c.backend.resolveStorage(cmd.SrcBuffer)
	if err != nil {
		return err
	}
	if int64(cmd.SrcOffset)+int64(cmd.SrcSize) > int64(len(src.buf.data)) ||
		int64(cmd.DstOffset)+int64(cmd.SrcSize) > int64(len(dst.buf.data)) {
		return fmt.Errorf("%w: copy range out of bounds", types.ErrInvalidArgument)
	}

	if err := c.addTransition(src.res, allSubResources, types.StateCopySource); err != nil {
		return err
	}
	if err := c.addTransition(dst.res, allSubResources, types.StateCopyDest); err != nil {
		return err
	}
	c.flushTransitions()

	srcBuf, dstBuf := src.buf, dst.buf
	srcOff, dstOff, size := cmd.SrcOffset, cmd.DstOffset, cmd.SrcSize
	c.out.ops = append(c.out.ops, func(*Device) {
		copy(dstBuf.data[dstOff:dstOff+size], srcBuf.data[srcOff:srcOff+size])
	})
	return nil
}

func (c *compileContext) compileCopyTexture(cmd *command.CopyTextureSubResource) error {
	dst, err := c.backend.resolveStorage(cmd.DstTexture)
	if err != nil {
		return err
	}
	src, err := c.backend.resolveStorage(cmd.SrcTexture)
	if err != nil {
		return err
	}
	dstTex, srcTex := dst.tex, src.tex
	if int32(cmd.DstSubResourceIdx) >= dstTex.numSubResources ||
		int32(cmd.SrcSubResourceIdx) >= srcTex.numSubResources {
		return fmt.Errorf("%w: subresource index out of range", types.ErrInvalidArgument)
	}

	info := types.FormatInfo(srcTex.desc.Format)
	if info.Compressed &&
		(cmd.SrcBox.X%info.BlockW != 0 || cmd.SrcBox.Y%info.BlockH != 0 ||
			cmd.SrcBox.W%info.BlockW != 0 || cmd.SrcBox.H%info.BlockH != 0 ||
			cmd.DstPoint.X%info.BlockW != 0 || cmd.DstPoint.Y%info.BlockH != 0) {
		return fmt.Errorf("%w: block-unaligned copy region", types.ErrUnsupported)
	}

	if err := c.addTransition(src.res, subRscOrAll(srcTex, int32(cmd.SrcSubResourceIdx)), types.StateCopySource); err != nil {
		return err
	}
	if err := c.addTransition(dst.res, subRscOrAll(dstTex, int32(cmd.DstSubResourceIdx)), types.StateCopyDest); err != nil {
		return err
	}
	c.flushTransitions()

	op := textureCopyOp{
		dst:    dstTex,
		dstSub: int32(cmd.DstSubResourceIdx),
		dstPt:  cmd.DstPoint,
		src:    srcTex,
		srcSub: int32(cmd.SrcSubResourceIdx),
		srcBox: cmd.SrcBox,
	}
	c.out.ops = append(c.out.ops, func(*Device) {
		op.execute()
	})
	return nil
}

// subRscOrAll narrows a barrier to one subresource when the texture has
// more than one.
func subRscOrAll(tex *texture, subRsc int32) int32 {
	if tex.numSubResources > 1 {
		return subRsc
	}
	return allSubResources
}

// execution helpers

// textureCopyOp copies a box between two subresources block-row by
// block-row.
type textureCopyOp struct {
	dst    *texture
	dstSub int32
	dstPt  types.Point
	src    *texture
	srcSub int32
	srcBox types.Box
}

func (o *textureCopyOp) execute() {
	info := types.FormatInfo(o.src.desc.Format)
	blockBytes := int64(info.BlockBits) / 8

	srcFp := o.src.footprints[o.srcSub]
	dstFp := o.dst.footprints[o.dstSub]
	srcData := o.src.subData[o.srcSub]
	dstData := o.dst.subData[o.dstSub]

	blockRows := int64((o.srcBox.H + info.BlockH - 1) / info.BlockH)
	rowBytes := int64((o.srcBox.W+info.BlockW-1)/info.BlockW) * blockBytes

	for z := int64(0); z < int64(o.srcBox.D); z++ {
		srcSlice := (int64(o.srcBox.Z) + z) * srcFp.SlicePitch
		dstSlice := (int64(o.dstPt.Z) + z) * dstFp.SlicePitch
		for row := int64(0); row < blockRows; row++ {
			srcOff := srcSlice + (int64(o.srcBox.Y)/int64(info.BlockH)+row)*srcFp.RowPitch +
				int64(o.srcBox.X)/int64(info.BlockW)*blockBytes
			dstOff := dstSlice + (int64(o.dstPt.Y)/int64(info.BlockH)+row)*dstFp.RowPitch +
				int64(o.dstPt.X)/int64(info.BlockW)*blockBytes
			if srcOff+rowBytes > int64(len(srcData)) || dstOff+rowBytes > int64(len(dstData)) {
				return
			}
			copy(dstData[dstOff:dstOff+rowBytes], srcData[srcOff:srcOff+rowBytes])
		}
	}
}

// clearTextureSubRsc fills a subresource with a color converted to the
// texture's format. Formats without a conversion are zero-filled.
func clearTextureSubRsc(tex *texture, subRsc int32, color [4]float32) {
	if tex == nil || subRsc < 0 || subRsc >= tex.numSubResources {
		return
	}

	var texel []byte
	switch tex.desc.Format {
	case types.FormatR32Float, types.FormatD32Float:
		texel = make([]byte, 4)
		binary.LittleEndian.PutUint32(texel, math.Float32bits(color[0]))
	case types.FormatRG32Float:
		texel = make([]byte, 8)
		binary.LittleEndian.PutUint32(texel[0:], math.Float32bits(color[0]))
		binary.LittleEndian.PutUint32(texel[4:], math.Float32bits(color[1]))
	case types.FormatRGBA32Float:
		texel = make([]byte, 16)
		for i, f := range color {
			binary.LittleEndian.PutUint32(texel[i*4:], math.Float32bits(f))
		}
	case types.FormatRGBA8Unorm, types.FormatRGBA8UnormSrgb:
		texel = []byte{unormByte(color[0]), unormByte(color[1]), unormByte(color[2]), unormByte(color[3])}
	case types.FormatBGRA8Unorm, types.FormatBGRA8UnormSrgb:
		texel = []byte{unormByte(color[2]), unormByte(color[1]), unormByte(color[0]), unormByte(color[3])}
	default:
		data := tex.subData[subRsc]
		for i := range data {
			data[i] = 0
		}
		return
	}
	clearRawSubRsc(tex, subRsc, texel)
}

// clearRawSubRsc tiles a raw texel pattern across a subresource.
func clearRawSubRsc(tex *texture, subRsc int32, texel []byte) {
	if tex == nil || subRsc < 0 || subRsc >= tex.numSubResources {
		return
	}
	info := types.FormatInfo(tex.desc.Format)
	texelBytes := int(info.BlockBits) / 8
	if texelBytes <= 0 {
		return
	}
	if len(texel) > texelBytes {
		texel = texel[:texelBytes]
	}
	fillPattern(tex.subData[subRsc], texel)
}

// fillPattern tiles pattern across data.
func fillPattern(data, pattern []byte) {
	if len(pattern) == 0 {
		return
	}
	for i := 0; i < len(data); i += len(pattern) {
		n := copy(data[i:], pattern)
		if n < len(pattern) {
			break
		}
	}
}

func unormByte(f float32) byte {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return byte(f*255 + 0.5)
}
