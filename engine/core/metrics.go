package core

import "time"

const AVG_COUNT uint8 = 30

// Metrics keeps a rolling frame time average, frames per second and the last
// GPU timings reported by the renderer.
type Metrics struct {
	FrameAVGCounter    uint8
	MStimes            [AVG_COUNT]float64
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64

	RenderTime  time.Duration
	ComputeTime time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Update records one frame that took frameElapsedTime seconds. It returns true
// each time a full second of frames has been accumulated.
func (m *Metrics) Update(frameElapsedTime float64) bool {
	// Calculate frame ms average
	frameMS := frameElapsedTime * 1000.0
	m.MStimes[m.FrameAVGCounter] = frameMS
	if m.FrameAVGCounter == AVG_COUNT-1 {
		var sum float64
		for i := uint8(0); i < AVG_COUNT; i++ {
			sum += m.MStimes[i]
		}
		m.MSavg = sum / float64(AVG_COUNT)
	}
	m.FrameAVGCounter++
	m.FrameAVGCounter %= AVG_COUNT

	// Count all frames.
	m.Frames++

	// Calculate frames per second.
	m.AccumulatedFrameMS += frameMS
	if m.AccumulatedFrameMS >= 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
		return true
	}
	return false
}

// SetGPUTimes stores the latest render pass and compute pass durations.
// A zero duration leaves the previous value in place.
func (m *Metrics) SetGPUTimes(render, compute time.Duration) {
	if render > 0 {
		m.RenderTime = render
	}
	if compute > 0 {
		m.ComputeTime = compute
	}
}

func (m *Metrics) FrameTime() float64 {
	return m.MSavg
}

func (m *Metrics) Frame() (float64, float64) {
	return m.FPS, m.MSavg
}
