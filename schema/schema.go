// Package schema holds the frozen TransactionStatusMeta snapshots.
//
// Every snapshot declares its own containers from scratch. Nothing is shared
// between snapshots, so editing one can never change the wire layout of
// another.
package schema

import (
	"github.com/vulcanize/go-codec-txmeta/registry"
)

// Snapshot ids
const (
	Legacy            = "legacy"
	Sanitized         = "sanitized"
	InnerInstructions = "inner_instructions"
)

// Container names shared by every snapshot's declarations
const (
	TransactionStatusMeta = "TransactionStatusMeta"
	Result                = "Result"
	TransactionError      = "TransactionError"
	InstructionError      = "InstructionError"
	InnerInstructionsType = "InnerInstructions"
	CompiledInstruction   = "CompiledInstruction"
)

// Snapshot is one frozen historical layout of TransactionStatusMeta
type Snapshot struct {
	ID         string
	SchemaName string
	// Commit is the upstream solana commit the layout was taken from; empty for intermediate layouts
	Commit string
	// Root is the top-level container samples are traced against
	Root    string
	declare func(b *registry.Builder)
}

// Declare accumulates every container of the snapshot into b
func (s Snapshot) Declare(b *registry.Builder) {
	s.declare(b)
}

// HasInnerInstructions reports whether the snapshot carries the optional innerInstructions field
func (s Snapshot) HasInnerInstructions() bool {
	return s.ID == InnerInstructions
}

var snapshots = []Snapshot{
	{
		ID:         Legacy,
		SchemaName: "parse_legacy_transaction_status_meta",
		Commit:     "b7b4aa5d4d34ebf3fd338a64f4f2a5257b047bb4",
		Root:       TransactionStatusMeta,
		declare:    declareLegacy,
	},
	{
		ID:         Sanitized,
		SchemaName: "parse_sanitized_transaction_status_meta",
		Root:       TransactionStatusMeta,
		declare:    declareSanitized,
	},
	{
		ID:         InnerInstructions,
		SchemaName: "parse_inner_instructions_transaction_status_meta",
		Commit:     "ce598c5c98e7384c104fe7f5121e32c2c5a2d2eb",
		Root:       TransactionStatusMeta,
		declare:    declareInnerInstructions,
	},
}

// All returns every snapshot, oldest first
func All() []Snapshot {
	return append([]Snapshot(nil), snapshots...)
}

// ByID returns the snapshot with the given id
func ByID(id string) (Snapshot, bool) {
	for _, s := range snapshots {
		if s.ID == id {
			return s, true
		}
	}
	return Snapshot{}, false
}

// IDs returns the ids of every snapshot, oldest first
func IDs() []string {
	ids := make([]string, len(snapshots))
	for i, s := range snapshots {
		ids[i] = s.ID
	}
	return ids
}

// Registry declares the snapshot into a fresh builder and finalizes it
func (s Snapshot) Registry() (*registry.Registry, error) {
	b := registry.NewBuilder()
	s.Declare(b)
	return b.Finalize()
}
