package registry

import (
	"io"
	"strconv"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/multiformats/go-multihash"
	"gopkg.in/yaml.v3"

	"github.com/vulcanize/go-codec-txmeta/format"
	"github.com/vulcanize/go-codec-txmeta/shared"
)

/* IPLD data model layout, following serde-reflection's registry dump

TransactionStatusMeta:
  STRUCT:
    - status:
        TYPENAME: Result
    - fee: U64
    - innerInstructions:
        DEFAULT_ON_EOF:
          OPTION:
            SEQ:
              TYPENAME: InnerInstructions
TransactionError:
  ENUM:
    0:
      AccountInUse: UNIT
    8:
      InstructionError:
        TUPLE:
          - U8
          - TYPENAME: InstructionError
*/

// Node exports the registry into the IPLD data model
func (r *Registry) Node() (datamodel.Node, error) {
	return qp.BuildMap(basicnode.Prototype.Any, int64(len(r.names)), func(ma datamodel.MapAssembler) {
		for _, name := range r.names {
			qp.MapEntry(ma, name, assembleContainer(r.containers[name]))
		}
	})
}

// EncodeDAGJSON writes the registry export as DAG-JSON
func (r *Registry) EncodeDAGJSON(w io.Writer) error {
	node, err := r.Node()
	if err != nil {
		return err
	}
	return dagjson.Encode(node, w)
}

// EncodeYAML writes the registry export in serde-reflection's YAML layout
func (r *Registry) EncodeYAML(w io.Writer) error {
	node, err := r.Node()
	if err != nil {
		return err
	}
	doc, err := yamlNode(node)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// Fingerprint returns the CIDv1 (dag-cbor, sha2-256) of the registry export
func (r *Registry) Fingerprint() (cid.Cid, error) {
	node, err := r.Node()
	if err != nil {
		return cid.Cid{}, err
	}
	enc := make([]byte, 0, 4096)
	if err := dagcbor.Encode(node, shared.NewWriteableByteSlice(&enc)); err != nil {
		return cid.Cid{}, err
	}
	return shared.RawToCid(cid.DagCBOR, multihash.SHA2_256, enc)
}

func assembleContainer(c format.ContainerFormat) qp.Assemble {
	switch c.Kind {
	case format.ContainerUnitStruct:
		return qp.String(c.Kind.String())
	case format.ContainerNewTypeStruct:
		return single(c.Kind.String(), assembleFormat(c.Value))
	case format.ContainerTupleStruct:
		return single(c.Kind.String(), assembleFormats(c.Elems))
	case format.ContainerStruct:
		return single(c.Kind.String(), assembleFields(c.Fields))
	default:
		return single(c.Kind.String(), qp.Map(int64(len(c.Variants)), func(ma datamodel.MapAssembler) {
			for i, v := range c.Variants {
				qp.MapEntry(ma, strconv.Itoa(i), single(v.Name, assembleVariant(v)))
			}
		}))
	}
}

func assembleVariant(v format.Variant) qp.Assemble {
	switch v.Kind {
	case format.VariantNewType:
		return single(v.Kind.String(), assembleFormat(v.Value))
	case format.VariantTuple:
		return single(v.Kind.String(), assembleFormats(v.Elems))
	case format.VariantStruct:
		return single(v.Kind.String(), assembleFields(v.Fields))
	default:
		return qp.String(v.Kind.String())
	}
}

func assembleFields(fields []format.Named) qp.Assemble {
	return qp.List(int64(len(fields)), func(la datamodel.ListAssembler) {
		for _, f := range fields {
			value := assembleFormat(f.Value)
			if f.DefaultOnEOF {
				value = single("DEFAULT_ON_EOF", value)
			}
			qp.ListEntry(la, single(f.Name, value))
		}
	})
}

func assembleFormats(fs []format.Format) qp.Assemble {
	return qp.List(int64(len(fs)), func(la datamodel.ListAssembler) {
		for _, f := range fs {
			qp.ListEntry(la, assembleFormat(f))
		}
	})
}

func assembleFormat(f format.Format) qp.Assemble {
	switch f.Kind {
	case format.KindTypeName:
		return single(f.Kind.String(), qp.String(f.Name))
	case format.KindOption, format.KindSeq, format.KindShortSeq:
		return single(f.Kind.String(), assembleFormat(*f.Elem))
	case format.KindTuple:
		return single(f.Kind.String(), assembleFormats(f.Elems))
	default:
		return qp.String(f.Kind.String())
	}
}

func single(key string, value qp.Assemble) qp.Assemble {
	return qp.Map(1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, key, value)
	})
}

// yamlNode converts an exported registry node; only maps, lists and strings occur
func yamlNode(n datamodel.Node) (*yaml.Node, error) {
	switch n.Kind() {
	case datamodel.Kind_Map:
		out := &yaml.Node{Kind: yaml.MappingNode}
		it := n.MapIterator()
		for !it.Done() {
			k, v, err := it.Next()
			if err != nil {
				return nil, err
			}
			key, err := yamlNode(k)
			if err != nil {
				return nil, err
			}
			value, err := yamlNode(v)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, key, value)
		}
		return out, nil
	case datamodel.Kind_List:
		out := &yaml.Node{Kind: yaml.SequenceNode}
		it := n.ListIterator()
		for !it.Done() {
			_, v, err := it.Next()
			if err != nil {
				return nil, err
			}
			value, err := yamlNode(v)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, value)
		}
		return out, nil
	default:
		s, err := n.AsString()
		if err != nil {
			return nil, err
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Value: s}, nil
	}
}
