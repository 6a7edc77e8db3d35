// internal/renderer/shader.go
//
// Shader compilation, management, and hot-reload support
package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/normanking/neonlight/internal/bus"
)

// Shader is a compiled program made of the builtin fullscreen vertex
// stage and a fragment stage loaded from source or from a file.
type Shader struct {
	ID   uint32
	Name string

	// Fragment source path for hot-reload
	fragPath string
	stale    atomic.Bool

	// Uniform location cache
	uniformCache map[string]int32
	mu           sync.RWMutex
}

// LoadShader compiles name from dir/name.frag when that file exists and
// from fallback otherwise
func LoadShader(dir, name, fallback string) (*Shader, error) {
	if dir != "" {
		path := filepath.Join(dir, name+".frag")
		if _, err := os.Stat(path); err == nil {
			return NewShaderFromFile(name, path)
		}
	}
	return NewShaderFromSource(name, fallback)
}

// NewShaderFromFile loads and compiles a fragment shader file
func NewShaderFromFile(name, fragPath string) (*Shader, error) {
	fragSrc, err := os.ReadFile(fragPath)
	if err != nil {
		return nil, fmt.Errorf("read fragment shader %s: %w", fragPath, err)
	}

	shader, err := NewShaderFromSource(name, string(fragSrc))
	if err != nil {
		return nil, err
	}
	shader.fragPath = fragPath
	return shader, nil
}

// NewShaderFromSource compiles a fragment stage against the fullscreen
// vertex stage
func NewShaderFromSource(name, fragSrc string) (*Shader, error) {
	id, err := linkProgram(fullscreenVertSrc, nullTerminated(fragSrc))
	if err != nil {
		return nil, fmt.Errorf("%s shader: %w", name, err)
	}
	return &Shader{
		ID:           id,
		Name:         name,
		uniformCache: make(map[string]int32),
	}, nil
}

func nullTerminated(src string) string {
	if !strings.HasSuffix(src, "\x00") {
		src += "\x00"
	}
	return src
}

func linkProgram(vertSrc, fragSrc string) (uint32, error) {
	vertShader, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("link failed: %s", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		typeName := "vertex"
		if shaderType == gl.FRAGMENT_SHADER {
			typeName = "fragment"
		}
		return 0, fmt.Errorf("%s compile error: %s", typeName, log)
	}

	return shader, nil
}

// Use activates this shader program
func (s *Shader) Use() {
	gl.UseProgram(s.ID)
}

// Delete releases shader resources
func (s *Shader) Delete() {
	gl.DeleteProgram(s.ID)
}

// Reload recompiles the shader from its source file. On failure the
// current program stays in use. Must run on the GL thread.
func (s *Shader) Reload() error {
	if s.fragPath == "" {
		return fmt.Errorf("shader %s was not loaded from a file", s.Name)
	}

	fragSrc, err := os.ReadFile(s.fragPath)
	if err != nil {
		return fmt.Errorf("read fragment shader %s: %w", s.fragPath, err)
	}
	id, err := linkProgram(fullscreenVertSrc, nullTerminated(string(fragSrc)))
	if err != nil {
		return fmt.Errorf("%s shader: %w", s.Name, err)
	}

	oldID := s.ID
	s.ID = id

	s.mu.Lock()
	s.uniformCache = make(map[string]int32)
	s.mu.Unlock()

	gl.DeleteProgram(oldID)
	return nil
}

// markStale flags the shader for reload on the next frame
func (s *Shader) markStale() {
	s.stale.Store(true)
}

// takeStale reports and clears the reload flag
func (s *Shader) takeStale() bool {
	return s.stale.Swap(false)
}

// getUniformLocation returns cached uniform location
func (s *Shader) getUniformLocation(name string) int32 {
	s.mu.RLock()
	if loc, ok := s.uniformCache[name]; ok {
		s.mu.RUnlock()
		return loc
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	loc := gl.GetUniformLocation(s.ID, gl.Str(name+"\x00"))
	s.uniformCache[name] = loc
	return loc
}

// SetFloat sets a float uniform
func (s *Shader) SetFloat(name string, value float32) {
	gl.Uniform1f(s.getUniformLocation(name), value)
}

// SetVec2 sets a vec2 uniform
func (s *Shader) SetVec2(name string, v mgl32.Vec2) {
	gl.Uniform2fv(s.getUniformLocation(name), 1, &v[0])
}

// SetVec4 sets a vec4 uniform
func (s *Shader) SetVec4(name string, v mgl32.Vec4) {
	gl.Uniform4fv(s.getUniformLocation(name), 1, &v[0])
}

// =============================================================================
// SHADER HOT-RELOAD WATCHER
// =============================================================================

// ShaderWatcher watches shader files and flags changed shaders. The
// renderer recompiles flagged shaders on its own thread.
type ShaderWatcher struct {
	watcher *fsnotify.Watcher
	shaders map[string]*Shader // path -> shader
	mu      sync.RWMutex
	done    chan struct{}
	logger  zerolog.Logger
	events  bus.Publisher
}

// NewShaderWatcher creates a new shader watcher
func NewShaderWatcher(logger zerolog.Logger, events bus.Publisher) (*ShaderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	sw := &ShaderWatcher{
		watcher: watcher,
		shaders: make(map[string]*Shader),
		done:    make(chan struct{}),
		logger:  logger,
		events:  events,
	}

	go sw.watchLoop()

	return sw, nil
}

// Watch adds a shader to be watched for changes. Shaders built from
// source are ignored.
func (sw *ShaderWatcher) Watch(shader *Shader) error {
	if shader.fragPath == "" {
		return nil
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	// Editors often replace files, so watch the directory
	if err := sw.watcher.Add(filepath.Dir(shader.fragPath)); err != nil {
		return err
	}
	sw.shaders[filepath.Clean(shader.fragPath)] = shader
	return nil
}

func (sw *ShaderWatcher) watchLoop() {
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			sw.mu.RLock()
			shader, ok := sw.shaders[filepath.Clean(event.Name)]
			sw.mu.RUnlock()
			if ok {
				sw.logger.Debug().Str("path", event.Name).Msg("Shader changed")
				shader.markStale()
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warn().Err(err).Msg("Shader watcher error")
		}
	}
}

// reloadStale recompiles flagged shaders. Must run on the GL thread.
func (sw *ShaderWatcher) reloadStale() {
	sw.mu.RLock()
	defer sw.mu.RUnlock()

	for path, s := range sw.shaders {
		if !s.takeStale() {
			continue
		}
		if err := s.Reload(); err != nil {
			sw.logger.Warn().Err(err).Str("path", path).Msg("Shader reload failed")
			continue
		}
		sw.logger.Info().Str("path", path).Msg("Shader reloaded")
		if sw.events != nil {
			sw.events.Publish(bus.Event{
				Type: bus.EventTypeShaderReloaded,
				Data: map[string]any{"shader": s.Name, "path": path},
			})
		}
	}
}

// Close stops the shader watcher
func (sw *ShaderWatcher) Close() error {
	close(sw.done)
	return sw.watcher.Close()
}
