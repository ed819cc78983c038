// Package engine drives frames: it drains geometry uploads, runs the compiled
// render passes in order over their shader groups and presents the window.
package engine

import (
	"log/slog"
	"sync"

	"nova/internal/geometry"
	"nova/internal/meshing"
	"nova/internal/meshstore"
	"nova/internal/profiling"
	"nova/internal/rendergraph"

	"github.com/pkg/errors"
)

// Window is the surface frames are presented to
type Window interface {
	ShouldClose() bool
	EndFrame()
}

// PassExecutor draws one pass over the objects of its shader group
type PassExecutor interface {
	ExecutePass(pass *rendergraph.RenderPass, objects []geometry.RenderObject)
}

// PassSource loads the pass declarations of a named shaderpack
type PassSource interface {
	LoadPasses(name string) (*rendergraph.Passes, error)
}

// Options configures a new Engine
type Options struct {
	Device   geometry.Device
	Executor PassExecutor
	Source   PassSource // optional, needed for RequestShaderpack

	Workers   int
	QueueSize int
	MaxFPS    int // 0 is uncapped

	Logger *slog.Logger
}

// Engine owns all render state. Apart from the methods documented as
// goroutine-safe, it must only be used from the render thread.
type Engine struct {
	store    *meshstore.Store
	queue    *meshstore.UploadQueue
	pool     *meshing.WorkerPool
	executor PassExecutor
	source   PassSource
	profiler *profiling.Profiler
	limiter  *FrameLimiter
	logger   *slog.Logger

	passes     []rendergraph.RenderPass
	shaderpack string

	reqMu     sync.Mutex
	requested string

	closeOnce sync.Once
}

// New creates an engine with an empty pass list
func New(opts Options) (*Engine, error) {
	if opts.Device == nil {
		return nil, errors.New("engine: no device")
	}
	if opts.Executor == nil {
		return nil, errors.New("engine: no pass executor")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = 200
	}
	return &Engine{
		store:    meshstore.NewStore(opts.Device, logger),
		queue:    meshstore.NewUploadQueue(),
		pool:     meshing.NewWorkerPool(workers, queueSize, logger),
		executor: opts.Executor,
		source:   opts.Source,
		profiler: profiling.New(),
		limiter:  NewFrameLimiter(opts.MaxFPS),
		logger:   logger,
	}, nil
}

// SubmitGeometry queues rec for the shader group. Goroutine-safe.
func (e *Engine) SubmitGeometry(shader string, rec geometry.Record) {
	e.queue.Push(shader, rec)
}

// SubmitGUIBuffers converts a GUI buffer command and queues it for the gui
// group. Goroutine-safe.
func (e *Engine) SubmitGUIBuffers(cmd meshstore.GUIBufferCommand, textures meshstore.TextureLocator) {
	e.queue.AddGUIBuffers(cmd, textures)
}

// SubmitSection meshes a copy of s on the worker pool and queues the result
// for shader. Goroutine-safe.
func (e *Engine) SubmitSection(shader string, s *meshing.Section) *meshing.Job {
	return meshing.SubmitSection(e.pool, e.queue, shader, s)
}

// Pool exposes the worker pool for other background work
func (e *Engine) Pool() *meshing.WorkerPool {
	return e.pool
}

// PendingUploads returns how many records wait for the next frame. Goroutine-safe.
func (e *Engine) PendingUploads() int {
	return e.queue.Len()
}

// UploadPendingGeometry materialises every queued record and returns how many
func (e *Engine) UploadPendingGeometry() int {
	defer e.profiler.Track("engine.UploadPendingGeometry")()
	n := e.queue.DrainInto(e.store)
	if n > 0 {
		e.logger.Debug("uploaded geometry", "count", n)
	}
	return n
}

// RemoveGUIObjects releases every GUI object
func (e *Engine) RemoveGUIObjects() int {
	return e.store.RemoveGUIObjects()
}

// RemoveObjectsOwnedBy releases every object owned by id
func (e *Engine) RemoveObjectsOwnedBy(id int64) int {
	return e.store.RemoveObjectsOwnedBy(id)
}

// GeometryForShader returns the objects drawn by shader, in insertion order
func (e *Engine) GeometryForShader(name string) []geometry.RenderObject {
	return e.store.GroupFor(name)
}

// CompilePassOrder returns the pass names in execution order
func (e *Engine) CompilePassOrder(passes *rendergraph.Passes) ([]string, error) {
	return rendergraph.Compile(passes)
}

// LoadPasses compiles passes and makes them current. When compilation fails
// the error is logged and returned, and the previous passes stay in effect.
func (e *Engine) LoadPasses(name string, passes *rendergraph.Passes) error {
	list, err := rendergraph.CompileList(passes)
	if err != nil {
		e.logger.Error("could not load shaderpack", "shaderpack", name, "err", err)
		return err
	}
	e.passes = list
	e.shaderpack = name
	e.logger.Info("shaderpack loaded", "shaderpack", name, "passes", len(list))
	return nil
}

// PassOrder returns the names of the current passes in execution order
func (e *Engine) PassOrder() []string {
	names := make([]string, len(e.passes))
	for i := range e.passes {
		names[i] = e.passes[i].Name
	}
	return names
}

// Shaderpack returns the name of the loaded shaderpack, empty before the first load
func (e *Engine) Shaderpack() string {
	return e.shaderpack
}

// RequestShaderpack asks the render thread to load the named shaderpack at
// the next frame boundary. Later requests replace earlier pending ones.
// Goroutine-safe.
func (e *Engine) RequestShaderpack(name string) {
	e.reqMu.Lock()
	e.requested = name
	e.reqMu.Unlock()
}

func (e *Engine) applyShaderpackRequest() {
	e.reqMu.Lock()
	name := e.requested
	e.requested = ""
	e.reqMu.Unlock()

	if name == "" || name == e.shaderpack {
		return
	}
	if e.source == nil {
		e.logger.Warn("shaderpack requested but no pass source configured", "shaderpack", name)
		return
	}
	passes, err := e.source.LoadPasses(name)
	if err != nil {
		e.logger.Error("could not read shaderpack", "shaderpack", name, "err", err)
		return
	}
	_ = e.LoadPasses(name, passes)
}

// RenderFrame uploads pending geometry, executes every pass over its shader
// group and ends the frame on win
func (e *Engine) RenderFrame(win Window) {
	e.applyShaderpackRequest()
	e.profiler.ResetFrame()

	func() {
		defer e.profiler.Track("engine.RenderFrame")()
		e.UploadPendingGeometry()
		for i := range e.passes {
			pass := &e.passes[i]
			stop := e.profiler.Track("pass." + pass.Name)
			e.executor.ExecutePass(pass, e.store.GroupFor(pass.ShaderName()))
			stop()
		}
	}()

	win.EndFrame()
}

// Run renders frames until the window asks to close, paced by the frame limiter
func (e *Engine) Run(win Window) {
	for !win.ShouldClose() {
		e.RenderFrame(win)
		e.limiter.Wait()
	}
}

// Limiter returns the frame limiter used by Run
func (e *Engine) Limiter() *FrameLimiter {
	return e.limiter
}

// Profiler returns the per-frame timings of the last frame
func (e *Engine) Profiler() *profiling.Profiler {
	return e.profiler
}

// Close stops the worker pool, waiting for queued work, then releases every
// mesh. Geometry still queued for upload is dropped.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.pool.Shutdown()
		if n := e.queue.Len(); n > 0 {
			e.logger.Debug("dropping queued geometry on close", "count", n)
		}
		e.store.Close()
	})
}
