package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/mandelbrot/engine/assets/loaders"
	"github.com/spaghettifunk/mandelbrot/engine/core"
)

const kernelExtension = ".spv"

// Pending notifications beyond this are dropped; the index still has the file.
const changeQueueSize = 16

type AssetInfo struct {
	Name       string
	Path       string
	LastLoaded time.Time
}

// KernelChanged reports that a compiled shader was written on disk.
type KernelChanged struct {
	Name string
	Path string
}

/**
 * @brief Indexes compiled shaders under a directory and, when watching,
 * publishes a KernelChanged for every write. The watcher goroutine only
 * touches the index and the channel.
 */
type AssetManager struct {
	shaderDir string
	assets    map[string]AssetInfo
	loader    Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	watching bool
	isClosed bool
	changes  chan KernelChanged
}

func NewAssetManager(shaderDir string) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		shaderDir: shaderDir,
		assets:    make(map[string]AssetInfo),
		loader:    &loaders.BinaryLoader{},
		fsnotify:  fsWatch,
		changes:   make(chan KernelChanged, changeQueueSize),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}, nil
}

// Initialize indexes the shader directory and optionally starts watching it.
func (am *AssetManager) Initialize(watch bool) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	if err := am.watchRecursive(am.shaderDir, watch); err != nil {
		err = fmt.Errorf("failed to index shader directory '%s': %v: %w", am.shaderDir, err, core.ErrShaderLoad)
		core.LogError(err.Error())
		return err
	}
	if watch {
		am.watching = true
		go am.start()
		core.LogInfo("Watching '%s' for kernel changes.", am.shaderDir)
	}
	return nil
}

// LoadKernel returns the SPIR-V words of the named shader, e.g. "fractal.comp".
func (am *AssetManager) LoadKernel(name string) ([]uint32, error) {
	am.mutex.RLock()
	asset, exists := am.assets[name]
	am.mutex.RUnlock()
	if !exists {
		err := fmt.Errorf("shader '%s' not found in '%s': %w", name, am.shaderDir, core.ErrShaderLoad)
		core.LogError(err.Error())
		return nil, err
	}

	res, err := am.loader.Load(asset.Path, asset.Name)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	asset.LastLoaded = time.Now()
	am.assets[name] = asset // Update the loaded time
	am.mutex.Unlock()

	return res.Data.([]uint32), nil
}

// Asset returns the index entry of the named shader.
func (am *AssetManager) Asset(name string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	asset, ok := am.assets[name]
	return asset, ok
}

// Changes delivers kernel writes. It is closed by Shutdown.
func (am *AssetManager) Changes() <-chan KernelChanged {
	return am.changes
}

// Drain returns the distinct shader names changed since the last call,
// without blocking.
func (am *AssetManager) Drain() []string {
	var names []string
	seen := map[string]bool{}
	for {
		select {
		case change, ok := <-am.changes:
			if !ok {
				return names
			}
			if !seen[change.Name] {
				seen[change.Name] = true
				names = append(names, change.Name)
			}
		default:
			return names
		}
	}
}

func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	if am.watching {
		close(am.done)
		<-am.stopped
	}
	close(am.changes)
	return am.fsnotify.Close()
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, true); err != nil {
						core.LogWarn("failed to watch '%s': %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if name, ok := am.handleFileEvent(e.Name); ok {
					am.notify(KernelChanged{Name: name, Path: e.Name})
				}
			}
			// Can't stat a deleted path, so drop it from the index and the watch list
			// without knowing whether it was a directory.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
				_ = am.fsnotify.Remove(e.Name)
			}

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) notify(change KernelChanged) {
	select {
	case am.changes <- change:
	default:
		core.LogDebug("kernel change queue full, dropping '%s'", change.Name)
	}
}

// watchRecursive indexes every kernel below path and, when watch is set, adds
// each directory to the watch list.
func (am *AssetManager) watchRecursive(path string, watch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if watch {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// handleFileEvent indexes path when it is a kernel and returns its name.
func (am *AssetManager) handleFileEvent(path string) (string, bool) {
	name, ok := kernelName(path)
	if !ok {
		return "", false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[name] = AssetInfo{
		Name: name,
		Path: path,
	}
	return name, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	name, ok := kernelName(path)
	if !ok {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if asset, exists := am.assets[name]; exists && asset.Path == path {
		delete(am.assets, name)
	}
}

// kernelName maps ".../fractal.comp.spv" to "fractal.comp".
func kernelName(path string) (string, bool) {
	base := filepath.Base(path)
	if filepath.Ext(base) != kernelExtension {
		return "", false
	}
	name := strings.TrimSuffix(base, kernelExtension)
	if name == "" {
		return "", false
	}
	return name, true
}
