package systems

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spaghettifunk/dream/engine/containers"
	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/instances"
	"github.com/spaghettifunk/dream/engine/scene"
)

type ScriptSystemConfig struct {
	// ConsoleSize is how many printed lines the console keeps.
	ConsoleSize int
}

/**
 * @brief Drives script instances. Scripts are initialised the first frame
 * they are seen loaded, then receive queued events and one update per frame.
 * Everything scripts print goes through Output() into the console ring and
 * out to print listeners.
 */
type ScriptSystem struct {
	config ScriptSystemConfig
	bus    *core.EventBus

	mu        sync.Mutex
	console   *containers.RingQueue[string]
	listeners []ScriptPrintListener
	partial   bytes.Buffer
}

func NewScriptSystem(config ScriptSystemConfig, bus *core.EventBus) (*ScriptSystem, error) {
	if config.ConsoleSize <= 0 {
		err := fmt.Errorf("func NewScriptSystem - config.ConsoleSize must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &ScriptSystem{
		config:  config,
		bus:     bus,
		console: containers.NewRingQueue[string](config.ConsoleSize),
	}, nil
}

func (ss *ScriptSystem) Name() string { return "script" }

// Output is the writer handed to script instances.
func (ss *ScriptSystem) Output() io.Writer { return scriptOutput{ss} }

type scriptOutput struct{ ss *ScriptSystem }

func (o scriptOutput) Write(p []byte) (int, error) {
	o.ss.write(p)
	return len(p), nil
}

func (ss *ScriptSystem) write(p []byte) {
	ss.mu.Lock()
	ss.partial.Write(p)
	var lines []string
	for {
		data := ss.partial.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(data[:i]))
		ss.partial.Next(i + 1)
	}
	for _, line := range lines {
		ss.console.Push(line)
	}
	listeners := append([]ScriptPrintListener(nil), ss.listeners...)
	ss.mu.Unlock()

	for _, line := range lines {
		for _, l := range listeners {
			l.OnPrint(line)
		}
		if ss.bus != nil {
			ss.bus.Fire(ss, core.EventContext{Type: core.EVENT_CODE_SCRIPT_PRINT, Data: line})
		}
	}
}

func (ss *ScriptSystem) AddPrintListener(l ScriptPrintListener) {
	ss.mu.Lock()
	ss.listeners = append(ss.listeners, l)
	ss.mu.Unlock()
}

// Console returns the most recent printed lines, oldest first.
func (ss *ScriptSystem) Console() []string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.console.Items()
}

func (ss *ScriptSystem) ClearConsole() {
	ss.mu.Lock()
	ss.console.Clear()
	ss.mu.Unlock()
}

func (ss *ScriptSystem) UpdateComponent(rt *scene.SceneRuntime, delta float32) {
	if rt == nil {
		return
	}
	rt.Walk(func(obj *scene.SceneObjectRuntime) bool {
		var scripts []*instances.ScriptInstance
		for _, inst := range obj.Instances() {
			if s, ok := inst.(*instances.ScriptInstance); ok && s.Loaded() {
				scripts = append(scripts, s)
			}
		}
		events := obj.DrainEvents()
		id := obj.UUID()
		for _, s := range scripts {
			if !s.Initialised() {
				s.Init(id)
			}
			for _, e := range events {
				s.Event(id, e.Name)
			}
			s.Update(id, float64(delta))
		}
		return true
	})
}

func (ss *ScriptSystem) Shutdown() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if rest := strings.TrimSpace(ss.partial.String()); rest != "" {
		ss.console.Push(rest)
	}
	ss.partial.Reset()
	ss.listeners = nil
	return nil
}
