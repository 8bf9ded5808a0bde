package schema

import (
	"github.com/vulcanize/go-codec-txmeta/format"
	"github.com/vulcanize/go-codec-txmeta/registry"
)

// https://github.com/solana-labs/solana/blob/b7b4aa5d4d34ebf3fd338a64f4f2a5257b047bb4/transaction-status/src/lib.rs
func declareLegacy(b *registry.Builder) {
	/*
		type TransactionStatusMeta struct {
			status       Result
			fee          U64
			preBalances  [U64]
			postBalances [U64]
		}
	*/
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
	b.Accumulate(TransactionError, format.Enum(
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
	))
	b.Accumulate(InstructionError, format.Enum(
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
		format.NewTypeVariant("CustomError", format.U32),
		format.UnitVariant("InvalidError"),
	))
}
