package schema

import (
	"github.com/vulcanize/go-codec-txmeta/format"
	"github.com/vulcanize/go-codec-txmeta/registry"
)

// https://github.com/solana-labs/solana/blob/ce598c5c98e7384c104fe7f5121e32c2c5a2d2eb/transaction-status/src/lib.rs
func declareInnerInstructions(b *registry.Builder) {
	/*
		type TransactionStatusMeta struct {
			status            Result
			fee               U64
			preBalances       [U64]
			postBalances      [U64]
			innerInstructions nullable [InnerInstructions] (default on EOF)
		}
	*/
	b.Accumulate(TransactionStatusMeta, format.Struct(
		format.Field("status", format.TypeName(Result)),
		format.Field("fee", format.U64),
		format.Field("preBalances", format.Seq(format.U64)),
		format.Field("postBalances", format.Seq(format.U64)),
		format.Named{
			Name:         "innerInstructions",
			Value:        format.Option(format.Seq(format.TypeName(InnerInstructionsType))),
			DefaultOnEOF: true,
		},
	))
	b.Accumulate(InnerInstructionsType, format.Struct(
		format.Field("index", format.U8),
		format.Field("instructions", format.Seq(format.TypeName(CompiledInstruction))),
	))
	// accounts and data are solana short_vecs
	b.Accumulate(CompiledInstruction, format.Struct(
		format.Field("programIdIndex", format.U8),
		format.Field("accounts", format.ShortSeq(format.U8)),
		format.Field("data", format.ShortSeq(format.U8)),
	))
	b.Accumulate(Result, format.Enum(
		format.NewTypeVariant("Ok", format.Unit),
		format.NewTypeVariant("Err", format.TypeName(TransactionError)),
	))
	b.Accumulate(TransactionError, innerInstructionsTransactionErrors())
	b.Accumulate(InstructionError, innerInstructionsInstructionErrors())
}

func innerInstructionsTransactionErrors() format.ContainerFormat {
	return format.Enum(
		format.UnitVariant("AccountInUse"),
		format.UnitVariant("AccountLoadedTwice"),
		format.UnitVariant("AccountNotFound"),
		format.UnitVariant("ProgramAccountNotFound"),
		format.UnitVariant("InsufficientFundsForFee"),
		format.UnitVariant("InvalidAccountForFee"),
		format.UnitVariant("DuplicateSignature"),
		format.UnitVariant("BlockhashNotFound"),
		format.TupleVariant("InstructionError", format.U8, format.TypeName(InstructionError)),
		format.UnitVariant("CallChainTooDeep"),
		format.UnitVariant("MissingSignatureForFee"),
		format.UnitVariant("InvalidAccountIndex"),
		format.UnitVariant("SignatureFailure"),
		format.UnitVariant("InvalidProgramForExecution"),
		format.UnitVariant("SanitizeFailure"),
		format.UnitVariant("ClusterMaintenance"),
	)
}

func innerInstructionsInstructionErrors() format.ContainerFormat {
	return format.Enum(
		format.UnitVariant("GenericError"),
		format.UnitVariant("InvalidArgument"),
		format.UnitVariant("InvalidInstructionData"),
		format.UnitVariant("InvalidAccountData"),
		format.UnitVariant("AccountDataTooSmall"),
		format.UnitVariant("InsufficientFunds"),
		format.UnitVariant("IncorrectProgramId"),
		format.UnitVariant("MissingRequiredSignature"),
		format.UnitVariant("AccountAlreadyInitialized"),
		format.UnitVariant("UninitializedAccount"),
		format.UnitVariant("UnbalancedInstruction"),
		format.UnitVariant("ModifiedProgramId"),
		format.UnitVariant("ExternalAccountLamportSpend"),
		format.UnitVariant("ExternalAccountDataModified"),
		format.UnitVariant("ReadonlyLamportChange"),
		format.UnitVariant("ReadonlyDataModified"),
		format.UnitVariant("DuplicateAccountIndex"),
		format.UnitVariant("ExecutableModified"),
		format.UnitVariant("RentEpochModified"),
		format.UnitVariant("NotEnoughAccountKeys"),
		format.UnitVariant("AccountDataSizeChanged"),
		format.UnitVariant("AccountNotExecutable"),
		format.UnitVariant("AccountBorrowFailed"),
		format.UnitVariant("AccountBorrowOutstanding"),
		format.UnitVariant("DuplicateAccountOutOfSync"),
		format.NewTypeVariant("Custom", format.U32),
		format.UnitVariant("InvalidError"),
		format.UnitVariant("ExecutableDataModified"),
		format.UnitVariant("ExecutableLamportChange"),
		format.UnitVariant("ExecutableAccountNotRentExempt"),
		format.UnitVariant("UnsupportedProgramId"),
		format.UnitVariant("CallDepth"),
		format.UnitVariant("MissingAccount"),
		format.UnitVariant("ReentrancyNotAllowed"),
		format.UnitVariant("MaxSeedLengthExceeded"),
		format.UnitVariant("InvalidSeeds"),
		format.UnitVariant("InvalidRealloc"),
		format.UnitVariant("ComputationalBudgetExceeded"),
		format.UnitVariant("PrivilegeEscalation"),
		format.UnitVariant("ProgramEnvironmentSetupFailure"),
		format.UnitVariant("ProgramFailedToComplete"),
		format.UnitVariant("ProgramFailedToCompile"),
		format.UnitVariant("Immutable"),
		format.UnitVariant("IncorrectAuthority"),
	)
}
