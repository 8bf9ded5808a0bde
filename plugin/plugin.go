package plugin

import (
	"github.com/ipfs/kubo/plugin"
	"github.com/ipld/go-ipld-prime/multicodec"

	"github.com/vulcanize/go-codec-txmeta/status_meta"
)

// Plugins is exported list of plugins that will be loaded
var Plugins = []plugin.Plugin{
	&txMetaIPLDPlugin{},
}

type txMetaIPLDPlugin struct{}

var _ plugin.PluginIPLD = (*txMetaIPLDPlugin)(nil)

// Name satisfies the Plugin interface
func (*txMetaIPLDPlugin) Name() string {
	return "ipld-solana-tx-status-meta"
}

// Version satisfies the Plugin interface
func (*txMetaIPLDPlugin) Version() string {
	return "0.0.1"
}

// Init satisfies the Plugin interface
func (*txMetaIPLDPlugin) Init(_ *plugin.Environment) error {
	return nil
}

// Register satisfies the PluginIPLD interface. Every snapshot layout is
// registered in both encodings under its own private-use code.
func (*txMetaIPLDPlugin) Register(reg multicodec.Registry) error {
	codecs, err := status_meta.Codecs()
	if err != nil {
		return err
	}
	for _, c := range codecs {
		reg.RegisterDecoder(c.Code, c.Decode)
		reg.RegisterEncoder(c.Code, c.Encode)
	}
	return nil
}
