// Package wallet provides app.WalletProvider implementations.
package wallet

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"verbiverse-quiz/internal/domain"
)

// DemoAddress is used by the static wallet when no address is configured.
const DemoAddress = "0x1234567890123456789012345678901234567890"

// RPCWallet asks an EIP-1193 style JSON-RPC endpoint for the account and network.
type RPCWallet struct {
	client  *rpc.Client
	chainID uint64

	mu        sync.RWMutex
	address   string
	connected bool
	current   uint64
}

// NewRPCWallet expects the wallet to be on chainID; 0 accepts any network.
func NewRPCWallet(client *rpc.Client, chainID uint64) *RPCWallet {
	return &RPCWallet{client: client, chainID: chainID}
}

// Connect requests accounts and reads the current chain.
func (w *RPCWallet) Connect(ctx context.Context) error {
	var accounts []common.Address
	if err := w.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return fmt.Errorf("request accounts: %w", err)
	}
	if len(accounts) == 0 {
		return domain.ErrWalletNotConnected
	}
	var chain hexutil.Uint64
	if err := w.client.CallContext(ctx, &chain, "eth_chainId"); err != nil {
		return fmt.Errorf("chain id: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.address = accounts[0].Hex()
	w.current = uint64(chain)
	w.connected = true
	return nil
}

func (w *RPCWallet) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.address = ""
	w.connected = false
	w.current = 0
}

func (w *RPCWallet) Address() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.address
}

func (w *RPCWallet) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

func (w *RPCWallet) IsWrongNetwork() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected && w.chainID != 0 && w.current != w.chainID
}

// ChainID is the network reported at connect time.
func (w *RPCWallet) ChainID() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Static is a wallet with a fixed address, used by the websocket transport where the
// client reports its own account and chain.
type Static struct {
	address  string
	chainID  uint64
	expected uint64

	mu        sync.RWMutex
	connected bool
}

// NewStatic returns a disconnected wallet for address (DemoAddress when empty).
// chainID is the network the client is on and expected the one the service requires;
// an expected of 0 accepts any network.
func NewStatic(address string, chainID, expected uint64) *Static {
	if strings.TrimSpace(address) == "" {
		address = DemoAddress
	}
	return &Static{address: address, chainID: chainID, expected: expected}
}

// Connect validates the address.
func (w *Static) Connect(context.Context) error {
	if !common.IsHexAddress(w.address) {
		return fmt.Errorf("%w: invalid address %q", domain.ErrWalletNotConnected, w.address)
	}
	w.mu.Lock()
	w.connected = true
	w.mu.Unlock()
	return nil
}

func (w *Static) Disconnect() {
	w.mu.Lock()
	w.connected = false
	w.mu.Unlock()
}

func (w *Static) Address() string {
	if !common.IsHexAddress(w.address) {
		return w.address
	}
	return common.HexToAddress(w.address).Hex()
}

func (w *Static) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

func (w *Static) IsWrongNetwork() bool {
	return w.expected != 0 && w.chainID != w.expected
}
