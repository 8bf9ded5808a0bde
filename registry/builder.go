// Package registry accumulates container declarations into a finalized,
// immutable type catalog.
//
// A Builder collects declarations in any order. Finalize is the only place
// consistency is checked; every problem found is reported together.
package registry

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/format"
)

// Builder accumulates container declarations
type Builder struct {
	order     []string
	decls     map[string]format.ContainerFormat
	conflicts []error
}

// NewBuilder returns an empty Builder
func NewBuilder() *Builder {
	return &Builder{decls: make(map[string]format.ContainerFormat)}
}

// Accumulate records a declaration. Declaring the same name twice with the
// same shape is a no-op; a different shape is reported by Finalize.
func (b *Builder) Accumulate(name string, c format.ContainerFormat) {
	prev, ok := b.decls[name]
	if !ok {
		b.decls[name] = c
		b.order = append(b.order, name)
		return
	}
	if !prev.Equal(c) {
		b.conflicts = append(b.conflicts, failure.New(failure.StageFinalize, failure.KindContradiction).
			Type(name).
			Detail("declared as %s and again with a different shape as %s", prev.Kind, c.Kind).
			Build())
	}
}

// Lookup returns the first declaration recorded for name
func (b *Builder) Lookup(name string) (format.ContainerFormat, bool) {
	c, ok := b.decls[name]
	return c, ok
}

// Names returns the declared names in declaration order
func (b *Builder) Names() []string {
	return append([]string(nil), b.order...)
}

// Finalize validates the declarations and returns the immutable Registry
func (b *Builder) Finalize() (*Registry, error) {
	var result *multierror.Error
	for _, err := range b.conflicts {
		result = multierror.Append(result, err)
	}
	for _, name := range b.order {
		for _, err := range b.validate(name, b.decls[name]) {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	names := b.Names()
	sort.Strings(names)
	containers := make(map[string]format.ContainerFormat, len(names))
	for _, name := range names {
		containers[name] = b.decls[name]
	}
	return &Registry{names: names, containers: containers}, nil
}

func (b *Builder) validate(name string, c format.ContainerFormat) []error {
	var errs []error
	invalid := func(kind failure.Kind, msg string, args ...any) {
		errs = append(errs, failure.New(failure.StageFinalize, kind).Type(name).Detail(msg, args...).Build())
	}

	for _, ref := range c.References() {
		if _, ok := b.decls[ref]; !ok {
			invalid(failure.KindUnknownType, "references undeclared type %s", ref)
		}
	}
	for _, f := range c.Formats() {
		f.Walk(func(inner format.Format) {
			if inner.Kind == format.KindTuple && len(inner.Elems) == 0 {
				invalid(failure.KindUnsupported, "empty tuple")
			}
		})
	}

	switch c.Kind {
	case format.ContainerStruct:
		errs = append(errs, validateFields(name, c.Fields, true)...)
	case format.ContainerTupleStruct:
		if len(c.Elems) == 0 {
			invalid(failure.KindUnsupported, "tuple struct without fields")
		}
	case format.ContainerEnum:
		if len(c.Variants) == 0 {
			invalid(failure.KindIncomplete, "enum without variants")
		}
		seen := make(map[string]bool, len(c.Variants))
		for _, v := range c.Variants {
			if seen[v.Name] {
				invalid(failure.KindDuplicateDeclare, "duplicate variant %s", v.Name)
			}
			seen[v.Name] = true
			switch v.Kind {
			case format.VariantStruct:
				errs = append(errs, validateFields(name+"::"+v.Name, v.Fields, false)...)
			case format.VariantTuple:
				if len(v.Elems) == 0 {
					invalid(failure.KindUnsupported, "tuple variant %s without fields", v.Name)
				}
			}
		}
	}
	return errs
}

// validateFields checks field names are unique and that default-on-EOF
// fields are trailing options
func validateFields(name string, fields []format.Named, allowDefaultOnEOF bool) []error {
	var errs []error
	seen := make(map[string]bool, len(fields))
	trailing := false
	for _, f := range fields {
		if seen[f.Name] {
			errs = append(errs, failure.New(failure.StageFinalize, failure.KindDuplicateDeclare).
				Type(name).Path(f.Name).Detail("duplicate field").Build())
		}
		seen[f.Name] = true
		switch {
		case f.DefaultOnEOF && !allowDefaultOnEOF:
			errs = append(errs, failure.New(failure.StageFinalize, failure.KindUnsupported).
				Type(name).Path(f.Name).Detail("default-on-EOF is only allowed on struct fields").Build())
		case f.DefaultOnEOF && f.Value.Kind != format.KindOption:
			errs = append(errs, failure.New(failure.StageFinalize, failure.KindUnsupported).
				Type(name).Path(f.Name).Detail("default-on-EOF field must be an OPTION, found %s", f.Value).Build())
		case f.DefaultOnEOF:
			trailing = true
		case trailing:
			errs = append(errs, failure.New(failure.StageFinalize, failure.KindUnsupported).
				Type(name).Path(f.Name).Detail("field follows a default-on-EOF field").Build())
		}
	}
	return errs
}

func (b *Builder) String() string {
	return fmt.Sprintf("registry.Builder(%d declarations)", len(b.order))
}
