// Package tracer walks sample values against the shapes declared in a
// registry.Builder, records which enum variants were observed and, on
// Registry, refuses to finalize while any reachable variant is unobserved.
package tracer

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	ipld "github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/datamodel"
	"go.uber.org/zap"

	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/format"
	"github.com/vulcanize/go-codec-txmeta/registry"
	"github.com/vulcanize/go-codec-txmeta/serde"
)

// Config controls what the tracer keeps besides variant observations
type Config struct {
	// RecordSamples keeps the first value traced for each struct container
	RecordSamples bool
}

// Tracer accumulates observations over any number of TraceValue calls
type Tracer struct {
	builder  *registry.Builder
	cfg      Config
	roots    []string
	observed map[string]map[string]bool
	samples  map[string]ipld.Node
}

// New returns a tracer over the declarations held by b
func New(b *registry.Builder, cfg Config) *Tracer {
	return &Tracer{
		builder:  b,
		cfg:      cfg,
		observed: make(map[string]map[string]bool),
		samples:  make(map[string]ipld.Node),
	}
}

// TraceValue classifies node as a value of the container root. On failure
// nothing from this call is recorded.
func (t *Tracer) TraceValue(root string, node ipld.Node) error {
	w := &walk{tracer: t, observed: make(map[string]map[string]bool), samples: make(map[string]ipld.Node)}
	if err := w.container(root, node, nil); err != nil {
		return err
	}
	for enum, variants := range w.observed {
		if t.observed[enum] == nil {
			t.observed[enum] = make(map[string]bool)
		}
		for v := range variants {
			t.observed[enum][v] = true
		}
	}
	for name, sample := range w.samples {
		if _, ok := t.samples[name]; !ok {
			t.samples[name] = sample
		}
	}
	if !t.hasRoot(root) {
		t.roots = append(t.roots, root)
	}
	Logger().Debug("traced value", zap.String("root", root), zap.Int("enums", len(w.observed)))
	return nil
}

func (t *Tracer) hasRoot(root string) bool {
	for _, r := range t.roots {
		if r == root {
			return true
		}
	}
	return false
}

// Observed returns the observed variant names of enum, sorted
func (t *Tracer) Observed(enum string) []string {
	out := make([]string, 0, len(t.observed[enum]))
	for v := range t.observed[enum] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Samples returns the first traced value of each struct container. It is
// empty unless Config.RecordSamples is set.
func (t *Tracer) Samples() map[string]ipld.Node {
	out := make(map[string]ipld.Node, len(t.samples))
	for k, v := range t.samples {
		out[k] = v
	}
	return out
}

// Registry finalizes the builder and checks that every variant of every
// enum reachable from the traced roots was observed
func (t *Tracer) Registry() (*registry.Registry, error) {
	reg, err := t.builder.Finalize()
	if err != nil {
		return nil, err
	}
	var result *multierror.Error
	for _, name := range reg.Reachable(t.roots...) {
		c, _ := reg.Lookup(name)
		if c.Kind != format.ContainerEnum {
			continue
		}
		var missing []string
		for _, v := range c.Variants {
			if !t.observed[name][v.Name] {
				missing = append(missing, v.Name)
			}
		}
		if len(missing) > 0 {
			result = multierror.Append(result, failure.New(failure.StageFinalize, failure.KindIncomplete).
				Type(name).
				Detail("unobserved variants: %s", strings.Join(missing, ", ")).
				Build())
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return reg, nil
}

// walk holds the observations of a single TraceValue call
type walk struct {
	tracer   *Tracer
	observed map[string]map[string]bool
	samples  map[string]ipld.Node
}

func mismatch(kind failure.Kind, path []string, msg string, args ...any) error {
	return failure.New(failure.StageTrace, kind).Path(path...).Detail(msg, args...).Build()
}

func child(path []string, elem string) []string {
	return append(append([]string(nil), path...), elem)
}

func (w *walk) container(name string, node ipld.Node, path []string) error {
	c, ok := w.tracer.builder.Lookup(name)
	if !ok {
		return failure.New(failure.StageTrace, failure.KindUnknownType).Type(name).Path(path...).Detail("not declared").Build()
	}
	switch c.Kind {
	case format.ContainerUnitStruct:
		return w.value(format.Unit, node, path)
	case format.ContainerNewTypeStruct:
		return w.value(c.Value, node, path)
	case format.ContainerTupleStruct:
		return w.value(format.Tuple(c.Elems...), node, path)
	case format.ContainerStruct:
		if err := w.fields(c.Fields, node, path); err != nil {
			return err
		}
		if w.tracer.cfg.RecordSamples {
			if _, ok := w.samples[name]; !ok {
				w.samples[name] = node
			}
		}
		return nil
	}
	return w.enum(name, c, node, path)
}

func (w *walk) enum(name string, c format.ContainerFormat, node ipld.Node, path []string) error {
	var (
		variantName string
		payload     ipld.Node
	)
	switch node.Kind() {
	case datamodel.Kind_String:
		variantName, _ = node.AsString()
	case datamodel.Kind_Map:
		if node.Length() != 1 {
			return mismatch(failure.KindTypeMismatch, path, "%s: variant map must have exactly one entry, found %d", name, node.Length())
		}
		k, v, err := node.MapIterator().Next()
		if err != nil {
			return err
		}
		variantName, _ = k.AsString()
		payload = v
	default:
		return mismatch(failure.KindTypeMismatch, path, "%s: expected a variant, found %s", name, node.Kind())
	}

	v, _, ok := c.VariantByName(variantName)
	if !ok {
		return mismatch(failure.KindInvalidVariant, path, "%s has no variant %q", name, variantName)
	}
	vpath := child(path, variantName)
	switch {
	case v.Kind == format.VariantUnit && payload != nil:
		return mismatch(failure.KindTypeMismatch, vpath, "unit variant must be a bare string")
	case v.Kind != format.VariantUnit && payload == nil:
		return mismatch(failure.KindTypeMismatch, vpath, "%s variant needs a payload", v.Kind)
	}
	var err error
	switch v.Kind {
	case format.VariantNewType:
		err = w.value(v.Value, payload, vpath)
	case format.VariantTuple:
		err = w.value(format.Tuple(v.Elems...), payload, vpath)
	case format.VariantStruct:
		err = w.fields(v.Fields, payload, vpath)
	}
	if err != nil {
		return err
	}
	if w.observed[name] == nil {
		w.observed[name] = make(map[string]bool)
	}
	w.observed[name][variantName] = true
	return nil
}

func (w *walk) fields(fields []format.Named, node ipld.Node, path []string) error {
	if node.Kind() != datamodel.Kind_Map {
		return mismatch(failure.KindTypeMismatch, path, "expected a struct map, found %s", node.Kind())
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
		value, err := node.LookupByString(f.Name)
		if err != nil {
			if f.DefaultOnEOF {
				continue
			}
			return mismatch(failure.KindFieldMissing, child(path, f.Name), "field missing")
		}
		if err := w.value(f.Value, value, child(path, f.Name)); err != nil {
			return err
		}
	}
	it := node.MapIterator()
	for !it.Done() {
		k, _, err := it.Next()
		if err != nil {
			return err
		}
		key, _ := k.AsString()
		if !known[key] {
			return mismatch(failure.KindFieldUnknown, child(path, key), "field not declared")
		}
	}
	return nil
}

func (w *walk) value(f format.Format, node ipld.Node, path []string) error {
	switch f.Kind {
	case format.KindUnit:
		if !node.IsNull() {
			return mismatch(failure.KindTypeMismatch, path, "expected null for UNIT, found %s", node.Kind())
		}
	case format.KindBool:
		if node.Kind() != datamodel.Kind_Bool {
			return mismatch(failure.KindTypeMismatch, path, "expected bool, found %s", node.Kind())
		}
	case format.KindU8, format.KindU16, format.KindU32, format.KindU64, format.KindI32, format.KindI64:
		if node.Kind() != datamodel.Kind_Int {
			return mismatch(failure.KindTypeMismatch, path, "expected %s, found %s", f.Kind, node.Kind())
		}
		v, err := node.AsInt()
		if err != nil {
			return err
		}
		if !f.Kind.InRange(v) {
			return mismatch(failure.KindOverflow, path, "%d out of range for %s", v, f.Kind)
		}
	case format.KindStr:
		if node.Kind() != datamodel.Kind_String {
			return mismatch(failure.KindTypeMismatch, path, "expected string, found %s", node.Kind())
		}
	case format.KindBytes:
		if node.Kind() != datamodel.Kind_Bytes {
			return mismatch(failure.KindTypeMismatch, path, "expected bytes, found %s", node.Kind())
		}
	case format.KindTypeName:
		return w.container(f.Name, node, path)
	case format.KindOption:
		if node.IsNull() {
			return nil
		}
		return w.value(*f.Elem, node, path)
	case format.KindSeq, format.KindShortSeq:
		if node.Kind() != datamodel.Kind_List {
			return mismatch(failure.KindTypeMismatch, path, "expected %s list, found %s", f.Kind, node.Kind())
		}
		if f.Kind == format.KindShortSeq && node.Length() > serde.MaxShortLen {
			return mismatch(failure.KindOverflow, path, "%d elements do not fit a compact-u16 length", node.Length())
		}
		return w.list(func(int) format.Format { return *f.Elem }, node, path)
	case format.KindTuple:
		if node.Kind() != datamodel.Kind_List || node.Length() != int64(len(f.Elems)) {
			return mismatch(failure.KindTypeMismatch, path, "expected a %d-element tuple", len(f.Elems))
		}
		return w.list(func(i int) format.Format { return f.Elems[i] }, node, path)
	default:
		return mismatch(failure.KindUnsupported, path, "format %s", f)
	}
	return nil
}

func (w *walk) list(elem func(int) format.Format, node ipld.Node, path []string) error {
	it := node.ListIterator()
	for !it.Done() {
		i, v, err := it.Next()
		if err != nil {
			return err
		}
		if err := w.value(elem(int(i)), v, child(path, strconv.FormatInt(i, 10))); err != nil {
			return err
		}
	}
	return nil
}
