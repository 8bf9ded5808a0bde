// Package samples constructs sample TransactionStatusMeta values as IPLD
// data-model nodes, one or more per declared enum variant, so that tracing
// them observes every variant of every reachable enum.
//
// Values follow serde's external tagging: a unit variant is a string, any
// other variant is a single-entry map from the variant name to its payload,
// a struct is a map in field order, a tuple is a list, unit is null and an
// option is null or its value.
package samples

import (
	ipld "github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"

	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/format"
	"github.com/vulcanize/go-codec-txmeta/registry"
	"github.com/vulcanize/go-codec-txmeta/schema"
)

// Placeholder values used for every sample
const (
	Fee              = 500
	InstructionIndex = 123
	Custom           = 42
)

// Balances is the placeholder for both preBalances and postBalances
var Balances = []int64{1, 2, 3}

// Build returns the samples for snap. The builder must already hold the
// snapshot's declarations; payload placeholders are derived from them.
func Build(snap schema.Snapshot, b *registry.Builder) ([]ipld.Node, error) {
	g := &generator{builder: b, active: make(map[string]bool)}
	statuses, err := g.container(schema.Result)
	if err != nil {
		return nil, err
	}

	var inner []qp.Assemble
	if snap.HasInnerInstructions() {
		inner = []qp.Assemble{innerInstructions(), qp.Null()}
	}

	out := make([]ipld.Node, 0, len(statuses)+len(inner))
	for i, status := range statuses {
		node, err := meta(status, inner, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
		// the remaining inner instruction choices only need to appear once
		if i == 0 {
			for j := 1; j < len(inner); j++ {
				node, err := meta(status, inner, j)
				if err != nil {
					return nil, err
				}
				out = append(out, node)
			}
		}
	}
	return out, nil
}

func meta(status qp.Assemble, inner []qp.Assemble, innerIdx int) (ipld.Node, error) {
	size := int64(4)
	if len(inner) > 0 {
		size++
	}
	return qp.BuildMap(basicnode.Prototype.Any, size, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "status", status)
		qp.MapEntry(ma, "fee", qp.Int(Fee))
		qp.MapEntry(ma, "preBalances", intList(Balances))
		qp.MapEntry(ma, "postBalances", intList(Balances))
		if len(inner) > 0 {
			qp.MapEntry(ma, "innerInstructions", inner[innerIdx])
		}
	})
}

// innerInstructions is the present innerInstructions placeholder:
// [{index:0, instructions:[{programIdIndex:1, accounts:[1,2,3], data:[1,2,3]}]}]
func innerInstructions() qp.Assemble {
	return qp.List(1, func(la datamodel.ListAssembler) {
		qp.ListEntry(la, qp.Map(2, func(ma datamodel.MapAssembler) {
			qp.MapEntry(ma, "index", qp.Int(0))
			qp.MapEntry(ma, "instructions", qp.List(1, func(la datamodel.ListAssembler) {
				qp.ListEntry(la, qp.Map(3, func(ma datamodel.MapAssembler) {
					qp.MapEntry(ma, "programIdIndex", qp.Int(1))
					qp.MapEntry(ma, "accounts", intList([]int64{1, 2, 3}))
					qp.MapEntry(ma, "data", intList([]int64{1, 2, 3}))
				}))
			}))
		}))
	})
}

func intList(values []int64) qp.Assemble {
	return qp.List(int64(len(values)), func(la datamodel.ListAssembler) {
		for _, v := range values {
			qp.ListEntry(la, qp.Int(v))
		}
	})
}

// generator derives sample values from declared formats
type generator struct {
	builder *registry.Builder
	active  map[string]bool
}

// values returns the sample values for f. Enums expand into at least one
// value per variant; everything else varies one position at a time.
func (g *generator) values(f format.Format) ([]qp.Assemble, error) {
	switch f.Kind {
	case format.KindUnit:
		return []qp.Assemble{qp.Null()}, nil
	case format.KindBool:
		return []qp.Assemble{qp.Bool(true)}, nil
	case format.KindU8:
		return []qp.Assemble{qp.Int(InstructionIndex)}, nil
	case format.KindU16, format.KindU32, format.KindU64, format.KindI32, format.KindI64:
		return []qp.Assemble{qp.Int(Custom)}, nil
	case format.KindStr:
		return []qp.Assemble{qp.String("sample")}, nil
	case format.KindBytes:
		return []qp.Assemble{qp.Bytes([]byte{1, 2, 3})}, nil
	case format.KindTypeName:
		return g.container(f.Name)
	case format.KindOption:
		present, err := g.values(*f.Elem)
		if err != nil {
			return nil, err
		}
		return append(present, qp.Null()), nil
	case format.KindSeq, format.KindShortSeq:
		elems, err := g.values(*f.Elem)
		if err != nil {
			return nil, err
		}
		return []qp.Assemble{list(elems)}, nil
	case format.KindTuple:
		rows, err := g.vary(f.Elems)
		if err != nil {
			return nil, err
		}
		out := make([]qp.Assemble, len(rows))
		for i, row := range rows {
			out[i] = list(row)
		}
		return out, nil
	}
	return nil, failure.New(failure.StageTrace, failure.KindUnsupported).Detail("no samples for format %s", f).Build()
}

func (g *generator) container(name string) ([]qp.Assemble, error) {
	c, ok := g.builder.Lookup(name)
	if !ok {
		return nil, failure.New(failure.StageTrace, failure.KindUnknownType).Type(name).Detail("no declaration to sample").Build()
	}
	if g.active[name] {
		return nil, failure.New(failure.StageTrace, failure.KindUnsupported).Type(name).Detail("recursive containers cannot be sampled").Build()
	}
	g.active[name] = true
	defer delete(g.active, name)

	switch c.Kind {
	case format.ContainerUnitStruct:
		return []qp.Assemble{qp.Null()}, nil
	case format.ContainerNewTypeStruct:
		return g.values(c.Value)
	case format.ContainerTupleStruct:
		return g.values(format.Tuple(c.Elems...))
	case format.ContainerStruct:
		return g.fields(c.Fields)
	}

	var out []qp.Assemble
	for _, v := range c.Variants {
		payloads, err := g.variant(v)
		if err != nil {
			return nil, err
		}
		if payloads == nil {
			out = append(out, qp.String(v.Name))
			continue
		}
		for _, p := range payloads {
			out = append(out, single(v.Name, p))
		}
	}
	return out, nil
}

// variant returns the payload samples of v, or nil for a unit variant
func (g *generator) variant(v format.Variant) ([]qp.Assemble, error) {
	switch v.Kind {
	case format.VariantNewType:
		return g.values(v.Value)
	case format.VariantTuple:
		return g.values(format.Tuple(v.Elems...))
	case format.VariantStruct:
		return g.fields(v.Fields)
	}
	return nil, nil
}

func (g *generator) fields(fields []format.Named) ([]qp.Assemble, error) {
	fs := make([]format.Format, len(fields))
	for i, f := range fields {
		fs[i] = f.Value
	}
	rows, err := g.vary(fs)
	if err != nil {
		return nil, err
	}
	out := make([]qp.Assemble, len(rows))
	for i, row := range rows {
		row := row
		out[i] = qp.Map(int64(len(fields)), func(ma datamodel.MapAssembler) {
			for j, f := range fields {
				qp.MapEntry(ma, f.Name, row[j])
			}
		})
	}
	return out, nil
}

// vary returns a baseline row using the first sample of every position,
// followed by one row per additional sample of each position
func (g *generator) vary(fs []format.Format) ([][]qp.Assemble, error) {
	choices := make([][]qp.Assemble, len(fs))
	for i, f := range fs {
		vs, err := g.values(f)
		if err != nil {
			return nil, err
		}
		if len(vs) == 0 {
			return nil, failure.New(failure.StageTrace, failure.KindIncomplete).Detail("format %s has no samples", f).Build()
		}
		choices[i] = vs
	}
	baseline := make([]qp.Assemble, len(fs))
	for i := range choices {
		baseline[i] = choices[i][0]
	}
	rows := [][]qp.Assemble{baseline}
	for i := range choices {
		for _, alt := range choices[i][1:] {
			row := append([]qp.Assemble(nil), baseline...)
			row[i] = alt
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func list(elems []qp.Assemble) qp.Assemble {
	return qp.List(int64(len(elems)), func(la datamodel.ListAssembler) {
		for _, e := range elems {
			qp.ListEntry(la, e)
		}
	})
}

func single(key string, value qp.Assemble) qp.Assemble {
	return qp.Map(1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, key, value)
	})
}
