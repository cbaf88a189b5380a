package vulkan

import (
	"time"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/core"
)

/**
 * @brief A query pool holding one start/end timestamp pair per slot. With a
 * zero timestamp period the device cannot time work and every method is a
 * no-op reporting zero durations.
 */
type TimestampQueries struct {
	Pool    vk.QueryPool
	period  float32
	written []bool
}

func NewTimestampQueries(context *VulkanContext, pairs int) (*TimestampQueries, error) {
	tq := &TimestampQueries{
		period:  context.Device.TimestampPeriod,
		written: make([]bool, pairs),
	}
	if tq.period == 0 {
		return tq, nil
	}
	createInfo := vk.QueryPoolCreateInfo{
		SType:      vk.StructureTypeQueryPoolCreateInfo,
		QueryType:  vk.QueryTypeTimestamp,
		QueryCount: uint32(2 * pairs),
	}
	if err := checkResult(vk.CreateQueryPool(context.Device.LogicalDevice, &createInfo, context.Allocator, &tq.Pool), core.ErrSyncCreate, "vkCreateQueryPool"); err != nil {
		return nil, err
	}
	return tq, nil
}

func (tq *TimestampQueries) Enabled() bool {
	return tq.Pool != nil
}

// CmdBegin resets the pair and writes the start stamp at the top of the pipe.
func (tq *TimestampQueries) CmdBegin(cb vk.CommandBuffer, pair int) {
	if !tq.Enabled() {
		return
	}
	vk.CmdResetQueryPool(cb, tq.Pool, uint32(2*pair), 2)
	vk.CmdWriteTimestamp(cb, vk.PipelineStageTopOfPipeBit, tq.Pool, uint32(2*pair))
}

// CmdEnd writes the end stamp once all prior work has left the pipe.
func (tq *TimestampQueries) CmdEnd(cb vk.CommandBuffer, pair int) {
	if !tq.Enabled() {
		return
	}
	vk.CmdWriteTimestamp(cb, vk.PipelineStageBottomOfPipeBit, tq.Pool, uint32(2*pair+1))
	tq.written[pair] = true
}

/**
 * @brief Reads the duration of a pair. Callers wait on the fence of the
 * submission first, so the read does not block. A pair that was never written
 * reports zero.
 */
func (tq *TimestampQueries) Duration(context *VulkanContext, pair int) (time.Duration, error) {
	if !tq.Enabled() || !tq.written[pair] {
		return 0, nil
	}
	var stamps [2]uint64
	result := vk.GetQueryPoolResults(
		context.Device.LogicalDevice,
		tq.Pool,
		uint32(2*pair),
		2,
		uint(unsafe.Sizeof(stamps)),
		unsafe.Pointer(&stamps[0]),
		vk.DeviceSize(unsafe.Sizeof(stamps[0])),
		vk.QueryResultFlags(vk.QueryResult64Bit),
	)
	if result == vk.NotReady {
		return 0, nil
	}
	if err := checkResult(result, core.ErrDeviceLost, "vkGetQueryPoolResults"); err != nil {
		return 0, err
	}
	return timestampDuration(stamps[0], stamps[1], tq.period), nil
}

func (tq *TimestampQueries) Destroy(context *VulkanContext) {
	if tq.Pool != nil {
		vk.DestroyQueryPool(context.Device.LogicalDevice, tq.Pool, context.Allocator)
		tq.Pool = nil
	}
}

// timestampDuration converts a tick pair into wall time. A pair that wrapped or
// was read out of order reports zero.
func timestampDuration(start, end uint64, period float32) time.Duration {
	if end <= start {
		return 0
	}
	return time.Duration(float64(end-start) * float64(period))
}
