package shared

import (
	"math/rand"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime"
	"github.com/multiformats/go-multihash"
)

// RandomBytes returns a random byte slice of the provided length
func RandomBytes(len int) []byte {
	rand.Seed(time.Now().UnixNano())
	by := make([]byte, len)
	rand.Read(by)
	return by
}

// Sha256ToCid takes a sha2-256 digest and returns its cid based on the codec given.
func Sha256ToCid(codec uint64, h []byte) cid.Cid {
	buf, err := multihash.Encode(h, multihash.SHA2_256)
	if err != nil {
		panic(err)
	}

	return cid.NewCidV1(codec, multihash.Multihash(buf))
}

// TestStatusMetaNodeContent checks the fee and balances of a TransactionStatusMeta IPLD node
func TestStatusMetaNodeContent(t *testing.T, metaNode ipld.Node, fee int64, preBalances, postBalances []int64) {
	feeNode, err := metaNode.LookupByString("fee")
	if err != nil {
		t.Fatalf("status meta missing fee: %v", err)
	}
	feeInt, err := feeNode.AsInt()
	if err != nil {
		t.Fatalf("status meta fee should be of type Int: %v", err)
	}
	if feeInt != fee {
		t.Errorf("status meta fee (%d) does not match expected fee (%d)", feeInt, fee)
	}
	verifyBalances(t, metaNode, "preBalances", preBalances)
	verifyBalances(t, metaNode, "postBalances", postBalances)
}

// TestStatusMetaStatus checks the status of a TransactionStatusMeta IPLD node is
// the Ok variant, or the Err variant wrapping the named unit transaction error
func TestStatusMetaStatus(t *testing.T, metaNode ipld.Node, txErr string) {
	statusNode, err := metaNode.LookupByString("status")
	if err != nil {
		t.Fatalf("status meta missing status: %v", err)
	}
	if txErr == "" {
		okNode, err := statusNode.LookupByString("Ok")
		if err != nil {
			t.Fatalf("status meta status should be Ok: %v", err)
		}
		if !okNode.IsNull() {
			t.Errorf("status meta Ok should carry null")
		}
		return
	}
	errNode, err := statusNode.LookupByString("Err")
	if err != nil {
		t.Fatalf("status meta status should be Err: %v", err)
	}
	errName, err := errNode.AsString()
	if err != nil {
		t.Fatalf("status meta Err should be a unit variant: %v", err)
	}
	if errName != txErr {
		t.Errorf("status meta error (%s) does not match expected error (%s)", errName, txErr)
	}
}

func verifyBalances(t *testing.T, metaNode ipld.Node, key string, expected []int64) {
	balancesNode, err := metaNode.LookupByString(key)
	if err != nil {
		t.Fatalf("status meta missing %s: %v", key, err)
	}
	if balancesNode.Length() != int64(len(expected)) {
		t.Fatalf("status meta %s length (%d) does not match expected length (%d)", key, balancesNode.Length(), len(expected))
	}
	balancesIt := balancesNode.ListIterator()
	for !balancesIt.Done() {
		i, balanceNode, err := balancesIt.Next()
		if err != nil {
			t.Fatalf("status meta %s iterator error: %v", key, err)
		}
		balance, err := balanceNode.AsInt()
		if err != nil {
			t.Fatalf("status meta %s entries should be of type Int: %v", key, err)
		}
		if balance != expected[i] {
			t.Errorf("status meta %s[%d] (%d) does not match expected balance (%d)", key, i, balance, expected[i])
		}
	}
}
