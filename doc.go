/*
Package txmeta generates Go bindings for the binary layouts of Solana's
TransactionStatusMeta.

Three frozen layouts are covered: legacy, sanitized and inner_instructions.
Each one is declared in the schema package, traced against a set of
canonical sample values so that every enum variant is observed, and
rendered into a Go package that reads and writes the layout in bincode
and BCS.

The status_meta package encodes and decodes ipld.Nodes in those layouts
directly, and the plugin package registers them as private-use codecs in
the go-ipld-prime multicodec registry.

Running txmeta-gen with no flags writes one <schema>.go per snapshot into
the working directory. The --out-dir and --package-dirs flags exist only for
the go:generate directive below, which places every snapshot in its own
package under bindings/ so each one compiles on its own.
*/
package txmeta

//go:generate go run ./cmd/txmeta-gen --out-dir bindings --package-dirs
