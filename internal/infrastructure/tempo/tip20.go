package tempo

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// TokenDecimals is the fixed decimal precision for the TIP-20 stablecoin
// family.
const TokenDecimals = 6

// ZeroAddress is the mint source / burn destination sentinel.
var ZeroAddress = common.Address{}

// ZeroAddressHex is the lowercase form stored in the database.
const ZeroAddressHex = "0x0000000000000000000000000000000000000000"

// FactoryAddress is the TIP20Factory predeploy. All declared token creations
// are emitted from this one contract.
var FactoryAddress = common.HexToAddress("0x20FC000000000000000000000000000000000000")

// Token contracts in this family share a fixed structural address prefix.
// The predicate below is the only address validity check the indexer needs,
// which is what lets the transfer log filter stay signature-only instead of
// carrying an unbounded address list.
const (
	tokenPrefixByte0 = 0x20
	tokenPrefixByte1 = 0xC0
)

// IsTokenAddress reports whether addr carries the TIP-20 structural prefix.
// O(1), no registry lookup.
func IsTokenAddress(addr common.Address) bool {
	return addr[0] == tokenPrefixByte0 && addr[1] == tokenPrefixByte1
}

// Event signatures for the watched TIP-20 topic family.
var (
	// TransferEventSig is keccak256("Transfer(address,address,uint256)").
	TransferEventSig = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

	// TransferWithMemoEventSig covers the memo-carrying transfer variant.
	TransferWithMemoEventSig = crypto.Keccak256Hash([]byte("TransferWithMemo(address,address,uint256,bytes32)"))

	// TokenCreatedEventSig is the TIP20Factory creation event.
	TokenCreatedEventSig = crypto.Keccak256Hash([]byte("TokenCreated(address,string,string,string,address,address,bytes32)"))
)
