package schema

import (
	"github.com/vulcanize/go-codec-txmeta/format"
	"github.com/vulcanize/go-codec-txmeta/registry"
)

// sanitizedTransactionErrors lists the transaction errors once sanitization
// and cluster maintenance failures were added
func sanitizedTransactionErrors() format.ContainerFormat {
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

// sanitizedInstructionErrors lists the instruction errors after CustomError
// was renamed to Custom and the executable/realloc/budget failures appeared
func sanitizedInstructionErrors() format.ContainerFormat {
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

func declareSanitized(b *registry.Builder) {
	b.Accumulate(TransactionStatusMeta, format.Struct(
		format.Field("status", format.TypeName(Result)),
		format.Field("fee", format.U64),
		format.Field("preBalances", format.Seq(format.U64)),
		format.Field("postBalances", format.Seq(format.U64)),
	))
	b.Accumulate(Result, format.Enum(
		format.NewTypeVariant("Ok", format.Unit),
		format.NewTypeVariant("Err", format.TypeName(TransactionError)),
	))
	b.Accumulate(TransactionError, sanitizedTransactionErrors())
	b.Accumulate(InstructionError, sanitizedInstructionErrors())
}
