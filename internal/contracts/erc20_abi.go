package contracts

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

const tokenABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "asset", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "underlying", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"}
]`

// Older tokens (MKR, SAI) return bytes32 from name/symbol.
const tokenABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	tokenABIString  = &parsedABI{source: tokenABIStringJSON}
	tokenABIBytes32 = &parsedABI{source: tokenABIBytes32JSON}
)

// TokenABI returns the ERC20 metadata + ERC4626 asset ABI.
func TokenABI() (abi.ABI, error) {
	return tokenABIString.get()
}

// TokenBytes32ABI returns the legacy bytes32 name/symbol ABI.
func TokenBytes32ABI() (abi.ABI, error) {
	return tokenABIBytes32.get()
}
