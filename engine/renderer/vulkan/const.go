package vulkan

import vk "github.com/goki/vulkan"

/**
 * @brief Number of frames recorded ahead of the GPU.
 */
const MaxFramesInFlight = 2

/**
 * @brief Format of the fractal storage images. Written by compute, sampled by
 * the fragment stage.
 */
const FractalImageFormat = vk.FormatR8g8b8a8Unorm

/**
 * @brief Upper bound for MSAA regardless of what the device offers.
 */
const MaxSampleCount = 8

// Clear color of the swapchain render pass, visible where the fractal does not
// cover the screen.
var ClearColor = [4]float32{0.62, 0.78, 1.0, 1.0}

// WaitForever is the timeout used when no fence timeout is configured.
const WaitForever uint64 = ^uint64(0)
