// Package pipeline runs the generator over the configured snapshots: it
// declares each layout, traces the canonical samples into a registry and
// writes the Go bindings.
package pipeline

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/facebookgo/atomicfile"
	"github.com/ipld/go-ipld-prime"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vulcanize/go-codec-txmeta/codec"
	"github.com/vulcanize/go-codec-txmeta/config"
	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/golang"
	"github.com/vulcanize/go-codec-txmeta/registry"
	"github.com/vulcanize/go-codec-txmeta/samples"
	"github.com/vulcanize/go-codec-txmeta/schema"
	"github.com/vulcanize/go-codec-txmeta/status_meta"
	"github.com/vulcanize/go-codec-txmeta/tracer"
)

// Options control where output lands
type Options struct {
	// OutDir defaults to the working directory
	OutDir string
	// PackageDirs writes each snapshot into its own <OutDir>/<SchemaName> directory
	PackageDirs bool
}

// Output describes the files written for one snapshot
type Output struct {
	SchemaName  string
	Path        string
	Registry    string
	Fingerprint string
}

// Run processes every configured snapshot in order and stops at the first failure
func Run(cfg *config.GeneratorConfig, opts Options) ([]Output, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	outputs := make([]Output, 0, len(cfg.Snapshots))
	for _, sc := range cfg.Snapshots {
		out, err := runSnapshot(sc, opts)
		if err != nil {
			return outputs, errors.Wrapf(err, "snapshot %s", sc.ID)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func runSnapshot(sc config.SnapshotConfig, opts Options) (Output, error) {
	log := Logger().With(zap.String("snapshot", sc.ID), zap.String("schema", sc.SchemaName))
	snap, _ := sc.Snapshot()
	encs, err := sc.ParsedEncodings()
	if err != nil {
		return Output{}, err
	}

	b := registry.NewBuilder()
	snap.Declare(b)
	nodes, err := samples.Build(snap, b)
	if err != nil {
		return Output{}, err
	}
	log.Info("samples built", zap.Int("samples", len(nodes)))

	tr := tracer.New(b, tracer.Config{RecordSamples: true})
	for _, n := range nodes {
		if err := tr.TraceValue(snap.Root, n); err != nil {
			return Output{}, err
		}
	}
	log.Info("trace complete", zap.Int("containers", len(b.Names())), zap.Int("recorded", len(tr.Samples())))

	reg, err := tr.Registry()
	if err != nil {
		return Output{}, err
	}
	fp, err := reg.Fingerprint()
	if err != nil {
		return Output{}, failure.Wrap(failure.StageFinalize, failure.KindInvalidData, err)
	}
	log.Info("registry finalized", zap.Int("containers", reg.Len()), zap.Stringer("fingerprint", fp))

	if log.Core().Enabled(zap.DebugLevel) {
		if err := logSamples(log, snap, encs, nodes); err != nil {
			return Output{}, err
		}
	}

	comments := []string{
		"Snapshot: " + snap.ID,
		"Registry fingerprint: " + fp.String(),
	}
	if sc.Commit != "" {
		comments = append(comments, "Upstream commit: "+sc.Commit)
	}
	src, err := golang.NewCodeGenerator(golang.Config{
		ModuleName: sc.SchemaName,
		Encodings:  encs,
		Comments:   comments,
	}).Source(reg)
	if err != nil {
		return Output{}, err
	}

	dir := opts.OutDir
	if dir == "" {
		dir = "."
	}
	if opts.PackageDirs {
		dir = filepath.Join(dir, sc.SchemaName)
	}
	out := Output{SchemaName: sc.SchemaName, Path: filepath.Join(dir, sc.FileName()), Fingerprint: fp.String()}

	var dump []byte
	if sc.EmitRegistry {
		buf := new(bytes.Buffer)
		if err := reg.EncodeYAML(buf); err != nil {
			return Output{}, failure.Wrap(failure.StageGenerate, failure.KindInvalidData, err)
		}
		dump = buf.Bytes()
		out.Registry = filepath.Join(dir, sc.RegistryFileName())
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Output{}, failure.New(failure.StageWrite, failure.KindIO).Cause(err).Path(dir).Build()
	}
	if err := writeFile(out.Path, src); err != nil {
		return Output{}, err
	}
	if dump != nil {
		if err := writeFile(out.Registry, dump); err != nil {
			return Output{}, err
		}
	}
	log.Info("output written", zap.String("path", out.Path), zap.Int("bytes", len(src)))
	return out, nil
}

// logSamples writes every sample's encoding as hex together with its CID
func logSamples(log *zap.Logger, snap schema.Snapshot, encs []codec.Encoding, nodes []ipld.Node) error {
	for _, enc := range encs {
		c, err := status_meta.NewCodec(snap.ID, enc)
		if err != nil {
			return err
		}
		for i, n := range nodes {
			data, err := c.AppendEncode(nil, n)
			if err != nil {
				return failure.Wrap(failure.StageEncode, failure.KindInvalidData, err)
			}
			id, err := c.Cid(data)
			if err != nil {
				return failure.Wrap(failure.StageEncode, failure.KindInvalidData, err)
			}
			log.Debug("sample encoded",
				zap.Int("sample", i),
				zap.String("encoding", string(enc)),
				zap.String("bytes", hexutil.Encode(data)),
				zap.Stringer("cid", id),
			)
		}
	}
	return nil
}

// writeFile replaces path atomically; an interrupted write leaves no file behind
func writeFile(path string, data []byte) error {
	f, err := atomicfile.New(path, 0o644)
	if err != nil {
		return failure.New(failure.StageWrite, failure.KindIO).Cause(err).Path(path).Build()
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Abort()
		return failure.New(failure.StageWrite, failure.KindIO).Cause(err).Path(path).Build()
	}
	if err := f.Close(); err != nil {
		return failure.New(failure.StageWrite, failure.KindIO).Cause(err).Path(path).Build()
	}
	return nil
}
