// Package golang emits Go bindings for a finalized registry. The output
// follows serde-generate's Go layout: one type per container, a sealed
// interface per enum with one type per variant, Serialize methods,
// Deserialize functions and per-encoding byte-slice wrappers.
package golang

import (
	"go/format"
	"io"
	"sort"

	"github.com/vulcanize/go-codec-txmeta/codec"
	"github.com/vulcanize/go-codec-txmeta/failure"
	fmts "github.com/vulcanize/go-codec-txmeta/format"
	"github.com/vulcanize/go-codec-txmeta/registry"
)

// DefaultRuntimePath is the import path of the serde runtime the bindings use
const DefaultRuntimePath = "github.com/vulcanize/go-codec-txmeta/serde"

// Config selects what the generator emits
type Config struct {
	// ModuleName is the package name of the generated file
	ModuleName string
	Encodings  []codec.Encoding
	// RuntimePath defaults to DefaultRuntimePath
	RuntimePath string
	// Comments are written as line comments above the package clause
	Comments []string
}

// CodeGenerator writes Go source for registries
type CodeGenerator struct {
	cfg Config
}

// NewCodeGenerator returns a generator for cfg
func NewCodeGenerator(cfg Config) *CodeGenerator {
	if cfg.RuntimePath == "" {
		cfg.RuntimePath = DefaultRuntimePath
	}
	return &CodeGenerator{cfg: cfg}
}

// Output writes the formatted bindings for reg to w. Nothing is written
// unless generation and formatting both succeed.
func (g *CodeGenerator) Output(w io.Writer, reg *registry.Registry) error {
	src, err := g.Source(reg)
	if err != nil {
		return err
	}
	if _, err := w.Write(src); err != nil {
		return failure.New(failure.StageGenerate, failure.KindIO).Cause(err).Build()
	}
	return nil
}

// Source returns the formatted bindings for reg
func (g *CodeGenerator) Source(reg *registry.Registry) ([]byte, error) {
	if err := g.check(reg); err != nil {
		return nil, err
	}
	e := &emitter{cfg: g.cfg, reg: reg, helpers: make(map[string]fmts.Format)}
	if err := e.file(); err != nil {
		return nil, err
	}
	src, err := format.Source(e.buf.Bytes())
	if err != nil {
		return nil, failure.New(failure.StageGenerate, failure.KindInvalidData).
			Cause(err).
			Detail("generated source for %s does not format", g.cfg.ModuleName).
			Build()
	}
	return src, nil
}

// check rejects configurations and registries the generator cannot express
func (g *CodeGenerator) check(reg *registry.Registry) error {
	invalid := func(kind failure.Kind, name, msg string, args ...any) error {
		return failure.New(failure.StageGenerate, kind).Type(name).Detail(msg, args...).Build()
	}
	if !validIdentifier(g.cfg.ModuleName) {
		return invalid(failure.KindInvalidInput, "", "module name %q is not a Go identifier", g.cfg.ModuleName)
	}
	if len(g.cfg.Encodings) == 0 {
		return invalid(failure.KindInvalidInput, "", "no encodings selected")
	}
	seen := make(map[codec.Encoding]bool)
	for _, enc := range g.cfg.Encodings {
		if _, err := enc.NewSerializer(); err != nil {
			return invalid(failure.KindUnsupported, "", "encoding %q", string(enc))
		}
		if seen[enc] {
			return invalid(failure.KindInvalidInput, "", "encoding %q selected twice", string(enc))
		}
		seen[enc] = true
	}
	if reg.Len() == 0 {
		return invalid(failure.KindInvalidInput, "", "registry is empty")
	}

	for _, name := range reg.Names() {
		if !validIdentifier(name) {
			return invalid(failure.KindUnsupported, name, "container name is not a Go identifier")
		}
		c, _ := reg.Lookup(name)
		var bad error
		for _, f := range c.Formats() {
			f.Walk(func(inner fmts.Format) {
				if _, ok := primitiveTypes[inner.Kind]; ok || inner.Kind == fmts.KindTypeName || needsHelper(inner) {
					return
				}
				if bad == nil {
					bad = invalid(failure.KindUnsupported, name, "format %s has no Go binding", inner)
				}
			})
		}
		if bad != nil {
			return bad
		}
		if err := checkFields(name, c.Fields); err != nil {
			return err
		}
		for _, v := range c.Variants {
			if !validIdentifier(v.Name) {
				return invalid(failure.KindUnsupported, name, "variant %q is not a Go identifier", v.Name)
			}
			if err := checkFields(name+"__"+v.Name, v.Fields); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkFields(name string, fields []fmts.Named) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		id := exported(f.Name)
		if !validIdentifier(id) {
			return failure.New(failure.StageGenerate, failure.KindUnsupported).
				Type(name).Path(f.Name).Detail("field is not a Go identifier").Build()
		}
		if seen[id] {
			return failure.New(failure.StageGenerate, failure.KindUnsupported).
				Type(name).Path(f.Name).Detail("field collides with another as %s", id).Build()
		}
		seen[id] = true
	}
	return nil
}

// sortedHelpers returns the collected helper formats ordered by mangled name
func sortedHelpers(helpers map[string]fmts.Format) []fmts.Format {
	names := make([]string, 0, len(helpers))
	for name := range helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]fmts.Format, len(names))
	for i, name := range names {
		out[i] = helpers[name]
	}
	return out
}
