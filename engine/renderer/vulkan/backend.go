package vulkan

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"time"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/core"
	"github.com/spaghettifunk/mandelbrot/engine/math"
	"github.com/spaghettifunk/mandelbrot/engine/platform"
	"github.com/spaghettifunk/mandelbrot/engine/renderer/fractal"
	xdraw "golang.org/x/image/draw"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// Shader names as they appear in the shader directory, minus ".spv".
const (
	ComputeShaderName  = "fractal.comp"
	VertexShaderName   = "fractal.vert"
	FragmentShaderName = "fractal.frag"
)

type RendererConfig struct {
	ApplicationName string
	// Enables the Khronos validation layer and routes its reports to the log.
	Validation bool
	// Forces FIFO presentation.
	VSync bool
	// Upper bound on the color attachment sample count.
	MSAASamples int
	// Bound on every fence wait. Zero waits forever.
	FenceTimeout time.Duration
	// Escape-time iteration limit of the kernel.
	MaxIterations uint32

	ComputeKernel  []uint32
	VertexShader   []uint32
	FragmentShader []uint32
}

type VulkanRenderer struct {
	platform    *platform.Platform
	FrameNumber uint64
	context     *VulkanContext
	config      RendererConfig

	compute *FractalComputeStage
	display *FractalDisplayStage
	targets *FractalTargets
	buffers *fractal.Manager

	// One timestamp pair per frame in flight.
	timestamps *TimestampQueries
	renderTime time.Duration
}

func New(p *platform.Platform) *VulkanRenderer {
	return &VulkanRenderer{
		platform:    p,
		FrameNumber: 0,
		context: &VulkanContext{
			FramebufferWidth:  0,
			FramebufferHeight: 0,
			Allocator:         nil,
			FenceTimeout:      WaitForever,
			Queues:            NewQueueLocks(),
		},
	}
}

/**
 * @brief Brings up the instance, device, swapchain and both fractal stages,
 * then computes the first image with initialView.
 */
func (vr *VulkanRenderer) Initialize(config RendererConfig, initialView math.Mat3) error {
	vr.config = config
	if config.FenceTimeout > 0 {
		vr.context.FenceTimeout = uint64(config.FenceTimeout.Nanoseconds())
	}

	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("GetInstanceProcAddress is nil: %w", core.ErrDeviceSelect)
		core.LogError(err.Error())
		return core.InStage("bootstrap", err)
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return core.InStage("bootstrap", err)
	}

	if err := vr.createInstance(); err != nil {
		return core.InStage("bootstrap", err)
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.CreateWindowSurface(vr.context.Instance)
	if err != nil || surface == 0 {
		err = fmt.Errorf("failed to create platform surface: %v: %w", err, core.ErrSwapchainCreate)
		core.LogError(err.Error())
		return core.InStage("bootstrap", err)
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	// Device creation
	limit := config.MSAASamples
	if limit <= 0 || limit > MaxSampleCount {
		limit = MaxSampleCount
	}
	if err := DeviceCreate(vr.context, limit); err != nil {
		return core.InStage("bootstrap", err)
	}

	if err := vr.createSwapchain(); err != nil {
		return core.InStage("swapchain", err)
	}

	for i := range vr.context.Frames {
		frame, err := NewFrameSlot(vr.context, i)
		if err != nil {
			return core.InStage("frame", err)
		}
		vr.context.Frames[i] = frame
	}
	if vr.timestamps, err = NewTimestampQueries(vr.context, MaxFramesInFlight); err != nil {
		return core.InStage("frame", err)
	}

	if vr.compute, err = NewFractalComputeStage(vr.context, config.ComputeKernel, config.MaxIterations); err != nil {
		return core.InStage("compute", err)
	}
	if vr.display, err = NewFractalDisplayStage(vr.context, vr.context.MainRenderpass, config.VertexShader, config.FragmentShader); err != nil {
		return core.InStage("display", err)
	}
	if vr.targets, err = NewFractalTargets(vr.context, vr.compute, vr.display); err != nil {
		return core.InStage("buffers", err)
	}
	vr.buffers = fractal.NewManager(vr.targets)
	if err := vr.buffers.Initialize(int(vr.context.FramebufferWidth), int(vr.context.FramebufferHeight), initialView); err != nil {
		return core.InStage("buffers", err)
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance() error {
	// Setup Vulkan instance.
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(vr.config.ApplicationName),
		PEngineName:        VulkanSafeString("Mandelbrot"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := instanceExtensions(vr.platform.GetRequiredExtensionNames(), runtime.GOOS, vr.config.Validation)
	if runtime.GOOS == "darwin" {
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}
	core.LogDebug("Required extensions: %v", requiredExtensions)
	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	// Validation layers.
	var layers []string
	if vr.config.Validation {
		core.LogInfo("Validation layers enabled. Enumerating...")
		available, err := instanceLayers()
		if err != nil {
			return err
		}
		if available[validationLayerName] {
			core.LogInfo("Found %s.", validationLayerName)
			layers = append(layers, validationLayerName)
		} else {
			core.LogWarn("Validation layer %s is missing, continuing without it.", validationLayerName)
		}
	}
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	if err := checkResult(vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance), core.ErrDeviceSelect, "vkCreateInstance"); err != nil {
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Vulkan Instance created.")

	// Debugger
	if vr.config.Validation {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			// Validation still runs; reports just go to stdout.
			core.LogWarn("vk.CreateDebugReportCallback failed with %s", err)
		} else {
			vr.context.debugMessenger = dbg
			core.LogDebug("Vulkan debugger created.")
		}
	}
	return nil
}

// instanceExtensions merges the window system extensions with the ones the
// renderer needs, without duplicates.
func instanceExtensions(windowExtensions []string, goos string, validation bool) []string {
	extensions := []string{vk.KhrSurfaceExtensionName} // Generic surface extension
	extensions = append(extensions, windowExtensions...)
	if goos == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
	}
	if validation {
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
	}

	seen := make(map[string]bool, len(extensions))
	out := extensions[:0]
	for _, name := range extensions {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func instanceLayers() (map[string]bool, error) {
	var count uint32
	if err := checkResult(vk.EnumerateInstanceLayerProperties(&count, nil), core.ErrDeviceSelect, "vkEnumerateInstanceLayerProperties"); err != nil {
		return nil, err
	}
	layers := make([]vk.LayerProperties, count)
	if count > 0 {
		if err := checkResult(vk.EnumerateInstanceLayerProperties(&count, layers), core.ErrDeviceSelect, "vkEnumerateInstanceLayerProperties"); err != nil {
			return nil, err
		}
	}
	out := make(map[string]bool, count)
	for i := range layers {
		layers[i].Deref()
		out[vk.ToString(layers[i].LayerName[:])] = true
	}
	return out, nil
}

// createSwapchain builds swapchain, render pass and framebuffers at the
// current framebuffer size.
func (vr *VulkanRenderer) createSwapchain() error {
	w, h := vr.platform.FramebufferSize()
	sc, err := SwapchainCreate(vr.context, uint32(w), uint32(h), vr.config.VSync)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc
	vr.context.FramebufferWidth = sc.Extent.Width
	vr.context.FramebufferHeight = sc.Extent.Height

	rp, err := RenderpassCreate(
		vr.context,
		sc.ImageFormat.Format,
		vr.context.Device.SampleCount,
		0, 0, float32(sc.Extent.Width), float32(sc.Extent.Height),
		ClearColor,
	)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp
	return sc.CreateFramebuffers(vr.context, rp)
}

func (vr *VulkanRenderer) Shutdown() error {
	if vr.context.Device == nil || vr.context.Device.LogicalDevice == nil {
		vr.destroyInstance()
		return nil
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Destroy in the opposite order of creation.
	var err error
	if vr.buffers != nil && vr.buffers.Initialized() {
		err = vr.buffers.Destroy()
	}
	vr.buffers = nil
	if vr.targets != nil {
		vr.targets.Destroy()
		vr.targets = nil
	}
	if vr.display != nil {
		vr.display.Destroy()
		vr.display = nil
	}
	if vr.compute != nil {
		vr.compute.Destroy()
		vr.compute = nil
	}
	if vr.timestamps != nil {
		vr.timestamps.Destroy(vr.context)
		vr.timestamps = nil
	}

	// Sync objects
	for i, frame := range vr.context.Frames {
		if frame != nil {
			frame.Destroy(vr.context)
			vr.context.Frames[i] = nil
		}
	}

	// Swapchain, framebuffers included
	if vr.context.Swapchain != nil {
		vr.context.Swapchain.SwapchainDestroy(vr.context)
		vr.context.Swapchain = nil
	}

	// Renderpass
	if vr.context.MainRenderpass != nil {
		vr.context.MainRenderpass.RenderpassDestroy(vr.context)
		vr.context.MainRenderpass = nil
	}

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vr.context)

	vr.destroyInstance()
	return err
}

func (vr *VulkanRenderer) destroyInstance() {
	if vr.context.Instance == nil {
		return
	}
	core.LogDebug("Destroying Vulkan surface...")
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.context.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
		vr.context.debugMessenger = vk.NullDebugReportCallback
	}

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
	vr.context.Instance = nil
}

// Resized flags the swapchain for recreation at the start of the next frame.
func (vr *VulkanRenderer) Resized(width, height uint32) {
	// Update the "framebuffer size generation", a counter which indicates when the
	// framebuffer size has been updated.
	vr.context.FramebufferSizeGeneration++
	core.LogDebug("Vulkan renderer backend->resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
}

/**
 * @brief Runs one tick: advances the fractal buffers with view, then renders
 * and presents the front image through the tween map. A stale swapchain is
 * rebuilt and the tick is skipped.
 */
func (vr *VulkanRenderer) DrawFrame(view math.Mat3) error {
	ctx := vr.context
	if vr.buffers == nil || !vr.buffers.Initialized() {
		// nothing to show before Initialize or after Shutdown
		return nil
	}

	// Check if the framebuffer has been resized. If so, a new swapchain must be created.
	if ctx.FramebufferSizeGeneration != ctx.FramebufferSizeLastGeneration {
		return vr.recreateSwapchain()
	}

	if _, err := vr.buffers.Advance(int(ctx.FramebufferWidth), int(ctx.FramebufferHeight), view); err != nil {
		return core.InStage("buffers", err)
	}

	frame := ctx.Frames[ctx.CurrentFrame]

	// Wait for the execution of the current frame to complete. The fence being free will allow this one to move on.
	if err := frame.InFlight.Wait(); err != nil {
		return core.InStage("frame", err)
	}
	if d, err := vr.timestamps.Duration(ctx, frame.Index); err == nil && d > 0 {
		vr.renderTime = d
	}

	// Acquire the next image from the swap chain. Pass along the semaphore that should signaled when this completes.
	// This same semaphore will later be waited on by the queue submission to ensure this image is available.
	imageIndex, err := ctx.Swapchain.SwapchainAcquireNextImageIndex(ctx, ctx.FenceTimeout, frame.ImageAvailable)
	if errors.Is(err, core.ErrSwapchainOutOfDate) {
		return vr.recreateSwapchain()
	}
	if err != nil {
		return core.InStage("swapchain", err)
	}
	ctx.ImageIndex = imageIndex
	vr.trackFrame(frame, FRAME_STATE_ACQUIRED)

	front := vr.buffers.Front()
	if err := vr.recordFrame(frame, front, vr.buffers.TweenMap(view)); err != nil {
		return core.InStage("frame", err)
	}

	// Reset the fence for use on this frame
	if err := frame.InFlight.Reset(); err != nil {
		return core.InStage("frame", err)
	}
	if err := vr.submitFrame(frame); err != nil {
		return core.InStage("frame", err)
	}
	vr.trackFrame(frame, FRAME_STATE_SUBMITTED)
	vr.buffers.MarkSampled(front, frame.Index)

	// Give the image back to the swapchain.
	err = ctx.Swapchain.SwapchainPresent(ctx, ctx.Device.PresentQueue, frame.RenderFinished, ctx.ImageIndex)
	vr.trackFrame(frame, FRAME_STATE_PRESENTED)
	vr.trackFrame(frame, FRAME_STATE_IDLE)

	// Increment (and loop) the index.
	ctx.CurrentFrame = (ctx.CurrentFrame + 1) % MaxFramesInFlight
	vr.FrameNumber++

	if errors.Is(err, core.ErrSwapchainOutOfDate) || ctx.FramebufferSizeGeneration != ctx.FramebufferSizeLastGeneration {
		return vr.recreateSwapchain()
	}
	if err != nil {
		return core.InStage("swapchain", err)
	}
	return nil
}

func (vr *VulkanRenderer) trackFrame(frame *FrameSlot, next FrameState) {
	from := frame.State
	if !frame.advance(next) {
		core.LogWarn("frame slot %d moved %s -> %s", frame.Index, from, next)
	}
}

func (vr *VulkanRenderer) recordFrame(frame *FrameSlot, front int, tween math.Mat3) error {
	ctx := vr.context
	cb := frame.CommandBuffer
	if err := cb.ResetBuffer(); err != nil {
		return err
	}
	if err := cb.Begin(true, false, false); err != nil {
		return err
	}
	vr.timestamps.CmdBegin(cb.Handle, frame.Index)

	// Dynamic state
	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(ctx.FramebufferWidth),
		Height:   float32(ctx.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}

	// Scissor
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{
			Width:  ctx.FramebufferWidth,
			Height: ctx.FramebufferHeight,
		},
	}

	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{scissor})

	// Begin the render pass.
	ctx.MainRenderpass.RenderpassBegin(cb, ctx.Swapchain.Framebuffers[ctx.ImageIndex].Handle)
	vr.display.Draw(cb, front, tween)
	ctx.MainRenderpass.RenderpassEnd(cb)

	vr.timestamps.CmdEnd(cb.Handle, frame.Index)
	return cb.End()
}

func (vr *VulkanRenderer) submitFrame(frame *FrameSlot) error {
	queue := vr.context.Device.GraphicsQueue
	submitInfo := vk.SubmitInfo{
		SType: vk.StructureTypeSubmitInfo,
		// Command buffer(s) to be executed.
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{frame.CommandBuffer.Handle},
		// The semaphore(s) to be signaled when the queue is complete.
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{frame.RenderFinished},
		// Wait semaphore ensures that the operation cannot begin until the image is available.
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{frame.ImageAvailable},
		// VK_PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT_BIT prevents subsequent colour attachment
		// writes from executing until the semaphore signals (i.e. one frame is presented at a time)
		PWaitDstStageMask: []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}
	err := vr.context.Queues.SafeQueueCall(queue, func() error {
		return checkResult(vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, frame.InFlight.Handle), core.ErrQueueSubmit, "vkQueueSubmit(graphics)")
	})
	if err != nil {
		return err
	}
	frame.CommandBuffer.UpdateSubmitted()
	return nil
}

/**
 * @brief Rebuilds the swapchain and everything sized by it. Blocks on window
 * events while the framebuffer has a zero dimension.
 */
func (vr *VulkanRenderer) recreateSwapchain() error {
	ctx := vr.context
	// If already being recreated, do not try again.
	if ctx.RecreatingSwapchain {
		core.LogDebug("recreate_swapchain called when already recreating. Booting.")
		return nil
	}

	w, h := vr.platform.FramebufferSize()
	for (w == 0 || h == 0) && !vr.platform.ShouldClose() {
		vr.platform.WaitMessages()
		w, h = vr.platform.FramebufferSize()
	}
	if w == 0 || h == 0 {
		// closing while minimized
		return nil
	}

	// Mark as recreating if the dimensions are valid.
	ctx.RecreatingSwapchain = true
	defer func() { ctx.RecreatingSwapchain = false }()

	// Wait for any operations to complete.
	if err := checkResult(vk.DeviceWaitIdle(ctx.Device.LogicalDevice), core.ErrDeviceLost, "vkDeviceWaitIdle"); err != nil {
		return core.InStage("swapchain", err)
	}

	oldFormat := ctx.Swapchain.ImageFormat.Format
	sc, err := ctx.Swapchain.SwapchainRecreate(ctx, uint32(w), uint32(h), vr.config.VSync)
	if err != nil {
		return core.InStage("swapchain", err)
	}
	ctx.Swapchain = sc

	// Sync the framebuffer size with the swapchain.
	ctx.FramebufferWidth = sc.Extent.Width
	ctx.FramebufferHeight = sc.Extent.Height

	if sc.ImageFormat.Format != oldFormat {
		ctx.MainRenderpass.RenderpassDestroy(ctx)
		rp, err := RenderpassCreate(ctx, sc.ImageFormat.Format, ctx.Device.SampleCount, 0, 0, 0, 0, ClearColor)
		if err != nil {
			return core.InStage("swapchain", err)
		}
		ctx.MainRenderpass = rp
		if err := vr.display.Rebuild(rp, nil, nil); err != nil {
			return core.InStage("display", err)
		}
	}
	ctx.MainRenderpass.X = 0
	ctx.MainRenderpass.Y = 0
	ctx.MainRenderpass.W = float32(ctx.FramebufferWidth)
	ctx.MainRenderpass.H = float32(ctx.FramebufferHeight)

	if err := sc.CreateFramebuffers(ctx, ctx.MainRenderpass); err != nil {
		return core.InStage("swapchain", err)
	}

	for _, frame := range ctx.Frames {
		frame.State = FRAME_STATE_IDLE
	}

	// Update framebuffer size generation.
	ctx.FramebufferSizeLastGeneration = ctx.FramebufferSizeGeneration
	core.LogInfo("Swapchain recreated at %dx%d.", ctx.FramebufferWidth, ctx.FramebufferHeight)
	return nil
}

// Screenshot returns the front fractal image at framebuffer size, as displayed.
func (vr *VulkanRenderer) Screenshot() (*image.RGBA, error) {
	if vr.buffers == nil || !vr.buffers.Initialized() {
		return nil, core.InStage("buffers", fmt.Errorf("no fractal image to capture: %w", core.ErrImageCreate))
	}
	img, err := vr.targets.Readback(vr.buffers.Front())
	if err != nil {
		return nil, core.InStage("buffers", err)
	}
	return fitFramebuffer(img, int(vr.context.FramebufferWidth), int(vr.context.FramebufferHeight)), nil
}

/**
 * @brief Resamples a tile-padded fractal image to the framebuffer size. The
 * display stretches the whole padded image over the framebuffer with a nearest
 * sampler, and so does this.
 */
func fitFramebuffer(img *image.RGBA, width, height int) *image.RGBA {
	b := img.Bounds()
	if width <= 0 || height <= 0 || (b.Dx() == width && b.Dy() == height) {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

/**
 * @brief Swaps a shader for a freshly compiled one. The compute kernel goes
 * through the buffer manager so in-flight dispatches retire first.
 */
func (vr *VulkanRenderer) ReloadShader(name string, code []uint32) error {
	switch name {
	case ComputeShaderName:
		return core.InStage("compute", vr.buffers.Rebuild(code))
	case VertexShaderName, FragmentShaderName:
		if err := checkResult(vk.DeviceWaitIdle(vr.context.Device.LogicalDevice), core.ErrDeviceLost, "vkDeviceWaitIdle"); err != nil {
			return core.InStage("display", err)
		}
		var vertex, fragment []uint32
		if name == VertexShaderName {
			vertex = code
		} else {
			fragment = code
		}
		return core.InStage("display", vr.display.Rebuild(vr.context.MainRenderpass, vertex, fragment))
	}
	core.LogDebug("No pipeline uses shader '%s'.", name)
	return nil
}

// GPUTimes returns the last measured render pass and compute durations.
func (vr *VulkanRenderer) GPUTimes() (time.Duration, time.Duration) {
	return vr.renderTime, vr.buffers.ComputeTime()
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		core.LogDebug("DEBUG: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
