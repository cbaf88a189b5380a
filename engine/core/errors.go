package core

import (
	"errors"
	"fmt"
)

var (
	// ErrSwapchainOutOfDate signals that the surface changed and the swapchain must
	// be rebuilt. It is recoverable and handled by recreation.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")

	ErrShaderLoad       = errors.New("shader load failed")
	ErrPipelineCreate   = errors.New("pipeline create failed")
	ErrDescriptorCreate = errors.New("descriptor create failed")
	ErrImageCreate      = errors.New("image create failed")
	ErrImageViewCreate  = errors.New("image view create failed")
	ErrBufferCreate     = errors.New("buffer create failed")
	ErrMemoryAllocate   = errors.New("memory allocation failed")
	ErrSyncCreate       = errors.New("synchronization primitive create failed")
	ErrCommandBuffer    = errors.New("command buffer operation failed")
	ErrQueueSubmit      = errors.New("queue submit failed")
	ErrAcquire          = errors.New("swapchain image acquire failed")
	ErrPresent          = errors.New("swapchain present failed")
	ErrFenceTimeout     = errors.New("fence wait timed out")
	ErrDeviceSelect     = errors.New("no suitable physical device")
	ErrSwapchainCreate  = errors.New("swapchain create failed")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrDeviceLost       = errors.New("device lost")
)

// StageError tags an error with the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// InStage wraps err with the stage name. A nil err stays nil and an error that
// already carries a stage keeps the innermost one.
func InStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// Stage returns the stage recorded on err, or "" when there is none.
func Stage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
