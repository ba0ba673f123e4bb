// Package registry provides module registries for input, filter, post-pass
// filter and output modules.
//
// # Overview
//
// Modules register their constructors by type string, the same string used
// as "type" in pipeline files. The factory looks constructors up by that
// string, so adding a module type does not touch the factory.
//
// # Adding a New Module
//
// To add a new row filter (e.g., "yAbs"):
//
//  1. Implement filter.Module, usually with filter.New and a closure
//  2. Write a FilterConstructor that decodes its parameters with Decode
//  3. Register it in an init() function
//
// Example:
//
//	func init() {
//	    registry.RegisterFilter("yAbs", func(cfg connector.ModuleConfig, index int) (filter.Module, error) {
//	        return filter.New("yAbs", filter.KindTransform, absY), nil
//	    })
//	}
//
// # Built-in Modules
//
// The file input, every row and post-pass filter of package filter, and the
// text and jsonl outputs are registered at startup (see builtins.go).
package registry

import (
	"io"
	"slices"
	"sync"

	"github.com/spf13/afero"

	"github.com/patrickschulz/filter-data/internal/modules/filter"
	"github.com/patrickschulz/filter-data/internal/modules/input"
	"github.com/patrickschulz/filter-data/internal/modules/output"
	"github.com/patrickschulz/filter-data/pkg/connector"
)

// Deps carries the process resources that input and output modules use.
// Zero fields fall back to the operating system (see Deps.WithDefaults).
type Deps struct {
	Fs     afero.Fs
	Stdin  io.Reader
	Stdout io.Writer
}

// InputConstructor creates an input module from configuration.
type InputConstructor func(cfg *connector.ModuleConfig, deps Deps) (input.Module, error)

// FilterConstructor creates a row filter from configuration. index is the
// filter's position in the chain, used in error messages.
type FilterConstructor func(cfg connector.ModuleConfig, index int) (filter.Module, error)

// PostFilterConstructor creates a post-pass filter from configuration.
type PostFilterConstructor func(cfg connector.ModuleConfig, index int) (filter.PostModule, error)

// OutputConstructor creates an output module from configuration.
type OutputConstructor func(cfg *connector.ModuleConfig, deps Deps) (output.Module, error)

// table is a constructor map safe for concurrent use.
type table[C any] struct {
	mu sync.RWMutex
	m  map[string]C
}

func newTable[C any]() *table[C] {
	return &table[C]{m: make(map[string]C)}
}

func (t *table[C]) register(moduleType string, c C) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[moduleType] = c
}

func (t *table[C]) get(moduleType string) (C, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.m[moduleType]
	return c, ok
}

func (t *table[C]) list() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	types := make([]string, 0, len(t.m))
	for name := range t.m {
		types = append(types, name)
	}
	slices.Sort(types)
	return types
}

func (t *table[C]) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m = make(map[string]C)
}

var (
	inputRegistry      = newTable[InputConstructor]()
	filterRegistry     = newTable[FilterConstructor]()
	postFilterRegistry = newTable[PostFilterConstructor]()
	outputRegistry     = newTable[OutputConstructor]()
)

// RegisterInput registers an input module constructor by type string.
// Registering an existing type overwrites the previous constructor.
func RegisterInput(moduleType string, constructor InputConstructor) {
	inputRegistry.register(moduleType, constructor)
}

// RegisterFilter registers a row filter constructor by type string.
// Registering an existing type overwrites the previous constructor.
func RegisterFilter(moduleType string, constructor FilterConstructor) {
	filterRegistry.register(moduleType, constructor)
}

// RegisterPostFilter registers a post-pass filter constructor by type string.
// Registering an existing type overwrites the previous constructor.
func RegisterPostFilter(moduleType string, constructor PostFilterConstructor) {
	postFilterRegistry.register(moduleType, constructor)
}

// RegisterOutput registers an output module constructor by type string.
// Registering an existing type overwrites the previous constructor.
func RegisterOutput(moduleType string, constructor OutputConstructor) {
	outputRegistry.register(moduleType, constructor)
}

// GetInputConstructor returns the registered constructor for an input module type.
// Returns nil if no constructor is registered for the given type.
func GetInputConstructor(moduleType string) InputConstructor {
	c, _ := inputRegistry.get(moduleType)
	return c
}

// GetFilterConstructor returns the registered constructor for a row filter type.
// Returns nil if no constructor is registered for the given type.
func GetFilterConstructor(moduleType string) FilterConstructor {
	c, _ := filterRegistry.get(moduleType)
	return c
}

// GetPostFilterConstructor returns the registered constructor for a post-pass filter type.
// Returns nil if no constructor is registered for the given type.
func GetPostFilterConstructor(moduleType string) PostFilterConstructor {
	c, _ := postFilterRegistry.get(moduleType)
	return c
}

// GetOutputConstructor returns the registered constructor for an output module type.
// Returns nil if no constructor is registered for the given type.
func GetOutputConstructor(moduleType string) OutputConstructor {
	c, _ := outputRegistry.get(moduleType)
	return c
}

// ListInputTypes returns all registered input module type names, sorted.
func ListInputTypes() []string { return inputRegistry.list() }

// ListFilterTypes returns all registered row filter type names, sorted.
func ListFilterTypes() []string { return filterRegistry.list() }

// ListPostFilterTypes returns all registered post-pass filter type names, sorted.
func ListPostFilterTypes() []string { return postFilterRegistry.list() }

// ListOutputTypes returns all registered output module type names, sorted.
func ListOutputTypes() []string { return outputRegistry.list() }

// ClearRegistries removes all registered constructors.
// This is intended for testing purposes only.
func ClearRegistries() {
	inputRegistry.clear()
	filterRegistry.clear()
	postFilterRegistry.clear()
	outputRegistry.clear()
}

// RegisterBuiltins (re)registers the built-in modules. It runs at init and
// lets tests restore the registries after ClearRegistries.
func RegisterBuiltins() {
	registerBuiltinInputModules()
	registerBuiltinFilterModules()
	registerBuiltinPostFilterModules()
	registerBuiltinOutputModules()
}
