package systems

import (
	"sync"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/math"
	"github.com/spaghettifunk/dream/engine/scene"
)

// HeadlessWindow is a WindowComponent without a display. It is used for
// headless runs and in tests; keys are pressed through SetKeyPressed.
type HeadlessWindow struct {
	mu          sync.Mutex
	width       int
	height      int
	keyboard    core.KeyboardState
	clearColour math.Colour
	frames      int
	shouldClose bool
	maxFrames   int
}

// NewHeadlessWindow returns a window that asks to close after maxFrames
// swaps. Zero means never.
func NewHeadlessWindow(width, height, maxFrames int) *HeadlessWindow {
	return &HeadlessWindow{width: width, height: height, maxFrames: maxFrames}
}

func (w *HeadlessWindow) Init() error         { return nil }
func (w *HeadlessWindow) BindFrameBuffer()    {}
func (w *HeadlessWindow) FrameBuffer() uint32 { return 0 }
func (w *HeadlessWindow) DepthBuffer() uint32 { return 0 }
func (w *HeadlessWindow) Width() int          { return w.width }
func (w *HeadlessWindow) Height() int         { return w.height }

func (w *HeadlessWindow) SwapBuffers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frames++
	if w.maxFrames > 0 && w.frames >= w.maxFrames {
		w.shouldClose = true
	}
}

func (w *HeadlessWindow) UpdateWindow(rt *scene.SceneRuntime) {
	if rt == nil {
		return
	}
	w.mu.Lock()
	w.clearColour = rt.ClearColour()
	w.mu.Unlock()
}

func (w *HeadlessWindow) ShouldClose() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shouldClose
}

func (w *HeadlessWindow) Close() {
	w.mu.Lock()
	w.shouldClose = true
	w.mu.Unlock()
}

func (w *HeadlessWindow) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

func (w *HeadlessWindow) ClearColour() math.Colour {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clearColour
}

func (w *HeadlessWindow) SetKeyPressed(key core.KeyCode, pressed bool) {
	w.mu.Lock()
	w.keyboard.SetKeyPressed(int(key), pressed)
	w.mu.Unlock()
}

func (w *HeadlessWindow) KeyboardState() core.KeyboardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.keyboard
}
