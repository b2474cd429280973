package instances

import (
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"io"
	"os"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

/**
 * @brief A behaviour script written in Go and interpreted at runtime. A script
 * may declare any of:
 *
 *	func OnInit(id string)
 *	func OnUpdate(id string, delta float64)
 *	func OnEvent(id string, event string)
 *
 * where id is the uuid of the scene object the script is attached to.
 */
type ScriptInstance struct {
	instanceBase
	output io.Writer
	source string

	onInit   func(string)
	onUpdate func(string, float64)
	onEvent  func(string, string)

	initialised bool
}

func NewScriptInstance(def *definition.AssetDefinition, transform *math.Transform, output io.Writer) *ScriptInstance {
	if output == nil {
		output = io.Discard
	}
	return &ScriptInstance{
		instanceBase: newInstanceBase(def, transform),
		output:       output,
	}
}

func (s *ScriptInstance) Load(projectDir string) bool {
	if s.Destroyed() {
		return false
	}
	path := s.def.DataPath(projectDir)
	src, err := os.ReadFile(path)
	if err != nil {
		core.LogError("could not read script %s: %s", s.name, err)
		return false
	}
	if err := s.compile(string(src)); err != nil {
		if errors.Is(err, core.ErrInstanceDestroyed) {
			return false
		}
		core.LogError("could not load script %s: %s", s.name, err)
		return false
	}
	return true
}

// compile evaluates src and publishes the hooks it declares.
func (s *ScriptInstance) compile(src string) error {
	file, err := parser.ParseFile(token.NewFileSet(), s.name, src, parser.PackageClauseOnly)
	if err != nil {
		return err
	}
	// symbols of package main are evaluated unqualified
	prefix := file.Name.Name + "."
	if file.Name.Name == "main" {
		prefix = ""
	}

	in := interp.New(interp.Options{Stdout: s.output, Stderr: s.output})
	if err := in.Use(stdlib.Symbols); err != nil {
		return err
	}
	if _, err := in.Eval(src); err != nil {
		return err
	}

	var (
		onInit   func(string)
		onUpdate func(string, float64)
		onEvent  func(string, string)
	)
	if err := lookup(in, prefix+"OnInit", &onInit); err != nil {
		return err
	}
	if err := lookup(in, prefix+"OnUpdate", &onUpdate); err != nil {
		return err
	}
	if err := lookup(in, prefix+"OnEvent", &onEvent); err != nil {
		return err
	}

	ok := s.publish(func() {
		s.source = src
		s.onInit = onInit
		s.onUpdate = onUpdate
		s.onEvent = onEvent
	})
	if !ok {
		return core.ErrInstanceDestroyed
	}
	return nil
}

// lookup resolves an optional script function into fn. A symbol that exists
// with the wrong signature is an error.
func lookup[F any](in *interp.Interpreter, symbol string, fn *F) error {
	v, err := in.Eval(symbol)
	if err != nil || !v.IsValid() {
		return nil
	}
	f, ok := v.Interface().(F)
	if !ok {
		return fmt.Errorf("%s has signature %s", symbol, v.Type())
	}
	*fn = f
	return nil
}

func (s *ScriptInstance) HasInit() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onInit != nil
}

func (s *ScriptInstance) HasUpdate() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onUpdate != nil
}

func (s *ScriptInstance) HasEvent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onEvent != nil
}

func (s *ScriptInstance) Initialised() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialised
}

// Init runs OnInit once. Later calls do nothing.
func (s *ScriptInstance) Init(id string) bool {
	s.mu.Lock()
	if s.initialised || !s.Loaded() {
		s.mu.Unlock()
		return false
	}
	s.initialised = true
	fn := s.onInit
	s.mu.Unlock()

	if fn == nil {
		return true
	}
	return s.call("OnInit", func() { fn(id) })
}

func (s *ScriptInstance) Update(id string, delta float64) bool {
	s.mu.RLock()
	fn := s.onUpdate
	ready := s.initialised
	s.mu.RUnlock()
	if fn == nil || !ready {
		return false
	}
	return s.call("OnUpdate", func() { fn(id, delta) })
}

func (s *ScriptInstance) Event(id, event string) bool {
	s.mu.RLock()
	fn := s.onEvent
	s.mu.RUnlock()
	if fn == nil {
		return false
	}
	return s.call("OnEvent", func() { fn(id, event) })
}

// call runs a script function, turning a panic inside the script into false.
func (s *ScriptInstance) call(name string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			core.LogError("script %s panicked in %s: %v", s.name, name, r)
			ok = false
		}
	}()
	fn()
	return true
}

func (s *ScriptInstance) Destroy() {
	s.mu.Lock()
	s.onInit = nil
	s.onUpdate = nil
	s.onEvent = nil
	s.markDestroyed()
	s.mu.Unlock()
}
