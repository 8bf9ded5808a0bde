package plugin_test

import (
	"bytes"
	"testing"

	"github.com/ipfs/kubo/plugin"
	_ "github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/multicodec"
	"github.com/ipld/go-ipld-prime/node/basicnode"

	txplugin "github.com/vulcanize/go-codec-txmeta/plugin"
	"github.com/vulcanize/go-codec-txmeta/status_meta"
)

func TestRegister(t *testing.T) {
	if len(txplugin.Plugins) != 1 {
		t.Fatalf("expected a single plugin, got %d", len(txplugin.Plugins))
	}
	p, ok := txplugin.Plugins[0].(plugin.PluginIPLD)
	if !ok {
		t.Fatal("plugin does not implement PluginIPLD")
	}
	if err := p.Init(nil); err != nil {
		t.Fatalf("unable to init plugin: %v", err)
	}

	// the default registry is initialized by the dagjson import, so the copy
	// handed to Register shares its tables
	reg := multicodec.DefaultRegistry
	if err := p.Register(reg); err != nil {
		t.Fatalf("unable to register codecs: %v", err)
	}
	codecs, err := status_meta.Codecs()
	if err != nil {
		t.Fatalf("unable to build codecs: %v", err)
	}
	for _, c := range codecs {
		if _, err := reg.LookupEncoder(c.Code); err != nil {
			t.Errorf("no encoder registered for %s/%s: %v", c.Snapshot.ID, c.Encoding, err)
		}
		if _, err := reg.LookupDecoder(c.Code); err != nil {
			t.Errorf("no decoder registered for %s/%s: %v", c.Snapshot.ID, c.Encoding, err)
		}
	}

	// an Ok status meta with no inner instructions in the latest bincode layout
	src := append([]byte{0, 0, 0, 0}, make([]byte, 8+8+8)...)
	src = append(src, 0)
	decoder, err := reg.LookupDecoder(status_meta.MultiCodecType)
	if err != nil {
		t.Fatalf("no decoder for the default code: %v", err)
	}
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := decoder(nb, bytes.NewReader(src)); err != nil {
		t.Fatalf("unable to decode through the registry: %v", err)
	}
	encoder, _ := reg.LookupEncoder(status_meta.MultiCodecType)
	out := new(bytes.Buffer)
	if err := encoder(nb.Build(), out); err != nil {
		t.Fatalf("unable to encode through the registry: %v", err)
	}
	if !bytes.Equal(out.Bytes(), src) {
		t.Errorf("registry round trip changed the bytes: %x", out.Bytes())
	}
}
