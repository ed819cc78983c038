package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"nova/internal/config"
	"nova/internal/engine"
	"nova/internal/gpu"
	"nova/internal/shaderpack"
	"nova/internal/window"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GL calls must stay on the main thread
	runtime.LockOSThread()
}

// programs adapts gpu.Programs to the engine's ProgramSource, resolving
// shaders inside the currently loaded shaderpack
type programs struct {
	*gpu.Programs
	eng *engine.Engine
}

func (p *programs) Program(shader string) (engine.UniformUploader, error) {
	return p.Programs.Program(filepath.Join(p.eng.Shaderpack(), shader))
}

func main() {
	settingsPath := flag.String("config", "settings.yaml", "path to the render settings file")
	textureDir := flag.String("textures", "textures", "directory textures are loaded from")
	flag.Parse()

	if err := run(*settingsPath, *textureDir); err != nil {
		slog.Error("nova exited with error", "err", err)
		os.Exit(1)
	}
}

func run(settingsPath, textureDir string) error {
	settings, err := config.Load(settingsPath)
	if err != nil {
		return err
	}
	values := settings.Get()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.LevelFromString(values.LogLevel)}))
	slog.SetDefault(logger)

	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	win, err := window.New("nova", values.ViewWidth, values.ViewHeight, false)
	if err != nil {
		return err
	}
	defer win.Destroy()

	textures := gpu.NewTextures(textureDir)
	defer textures.Close()
	progs := &programs{Programs: gpu.NewPrograms(values.ShaderpackDir)}
	defer progs.Close()

	executor := engine.NewDrawExecutor(textures, progs, logger)
	executor.SetGUIView(float32(values.ViewWidth), float32(values.ViewHeight), values.ScaleFactor)

	eng, err := engine.New(engine.Options{
		Device:    gpu.NewGLDevice(),
		Executor:  executor,
		Source:    shaderpack.Dir(values.ShaderpackDir),
		Workers:   values.Workers,
		QueueSize: values.QueueSize,
		MaxFPS:    values.MaxFPS,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer eng.Close()
	progs.eng = eng

	passes, err := shaderpack.Load(values.ShaderpackDir, values.Shaderpack)
	if err != nil {
		return err
	}
	if err := eng.LoadPasses(values.Shaderpack, passes); err != nil {
		return err
	}

	settings.OnChange(func(v config.Values) {
		executor.SetGUIView(float32(v.ViewWidth), float32(v.ViewHeight), v.ScaleFactor)
		eng.Limiter().SetMaxFPS(v.MaxFPS)
		eng.RequestShaderpack(v.Shaderpack)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := settings.Watch(ctx, settingsPath, logger); err != nil {
		logger.Warn("settings will not be reloaded", "err", err)
	}

	stopStats := logFrameStats(ctx, eng, logger)
	defer stopStats()

	eng.Run(win)
	return nil
}

// logFrameStats logs the slowest frame sections once per second at debug level
func logFrameStats(ctx context.Context, eng *engine.Engine, logger *slog.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		last := eng.Profiler().Frames()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				frames := eng.Profiler().Frames()
				logger.Debug("frame stats", "fps", frames-last, "top", eng.Profiler().TopN(3), "pendingUploads", eng.PendingUploads())
				last = frames
			}
		}
	}()
	return cancel
}
