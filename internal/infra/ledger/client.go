// Package ledger talks to the quiz contract over Ethereum JSON-RPC.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"verbiverse-quiz/internal/domain"
)

// ErrInvalidAddress is returned for strings that are not 20-byte hex addresses.
var ErrInvalidAddress = errors.New("invalid address")

// Caller executes read-only contract calls. *ethclient.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Sender asks the node (or wallet) to sign and send a transaction from an unlocked account.
type Sender interface {
	SendTransaction(ctx context.Context, from, to common.Address, data []byte) (string, error)
}

// RPCSender sends transactions with eth_sendTransaction.
type RPCSender struct {
	client *rpc.Client
}

func NewRPCSender(client *rpc.Client) *RPCSender {
	return &RPCSender{client: client}
}

type txArgs struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

func (s *RPCSender) SendTransaction(ctx context.Context, from, to common.Address, data []byte) (string, error) {
	var hash common.Hash
	if err := s.client.CallContext(ctx, &hash, "eth_sendTransaction", txArgs{From: from, To: to, Data: data}); err != nil {
		return "", err
	}
	return hash.Hex(), nil
}

// Client implements app.Ledger against a deployed contract.
type Client struct {
	abi      abi.ABI
	contract common.Address
	caller   Caller
	sender   Sender
}

// New builds a client for the contract at address. sender may be nil for read-only use.
func New(address string, caller Caller, sender Sender) (*Client, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: contract %q", ErrInvalidAddress, address)
	}
	parsed, err := abi.JSON(strings.NewReader(ContractABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	return &Client{
		abi:      parsed,
		contract: common.HexToAddress(address),
		caller:   caller,
		sender:   sender,
	}, nil
}

// Dial connects to rpcURL and returns a client plus a close function.
func Dial(ctx context.Context, rpcURL, address string) (*Client, func(), error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rpc: %w", err)
	}
	client, err := New(address, ethclient.NewClient(rpcClient), NewRPCSender(rpcClient))
	if err != nil {
		rpcClient.Close()
		return nil, nil, err
	}
	return client, rpcClient.Close, nil
}

func (c *Client) RandomBatchID(ctx context.Context) (int, error) {
	out, err := c.call(ctx, "getRandomBatch")
	if err != nil {
		return 0, err
	}
	id, ok := out[0].(uint8)
	if !ok {
		return 0, unexpected("getRandomBatch", out[0])
	}
	return int(id), nil
}

// TotalBatches reads the number of published batches.
func (c *Client) TotalBatches(ctx context.Context) (int, error) {
	out, err := c.call(ctx, "TOTAL_BATCHES")
	if err != nil {
		return 0, err
	}
	n, ok := out[0].(uint8)
	if !ok {
		return 0, unexpected("TOTAL_BATCHES", out[0])
	}
	return int(n), nil
}

func (c *Client) SubmitAnswers(ctx context.Context, from string, batchID int, answers, correct [domain.QuestionsPerBatch]string, score int) (string, error) {
	if batchID < 1 || batchID > 255 {
		return "", fmt.Errorf("%w: %d", domain.ErrBatchOutOfRange, batchID)
	}
	if score < 0 || score > domain.MaxScore {
		return "", domain.ErrInvalidScore
	}
	return c.transact(ctx, from, "submitAnswers", uint8(batchID), answers, correct, uint8(score))
}

func (c *Client) UserSubmissions(ctx context.Context, address string) ([]uint64, error) {
	user, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	out, err := c.call(ctx, "getUserSubmissions", user)
	if err != nil {
		return nil, err
	}
	raw, ok := out[0].([]*big.Int)
	if !ok {
		return nil, unexpected("getUserSubmissions", out[0])
	}
	ids := make([]uint64, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, id.Uint64())
	}
	return ids, nil
}

// Submission returns nil when the contract has no submission under id.
func (c *Client) Submission(ctx context.Context, id uint64) (*domain.Submission, error) {
	out, err := c.call(ctx, "getSubmission", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	user, ok1 := out[0].(common.Address)
	batchID, ok2 := out[1].(uint8)
	score, ok3 := out[2].(uint8)
	timestamp, ok4 := out[3].(uint32)
	answers, ok5 := out[4].([5]string)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return nil, fmt.Errorf("getSubmission: unexpected output types %T %T %T %T %T", out[0], out[1], out[2], out[3], out[4])
	}
	if user == (common.Address{}) {
		return nil, nil
	}
	return &domain.Submission{
		ID:        id,
		User:      user.Hex(),
		BatchID:   int(batchID),
		Score:     int(score),
		Timestamp: time.Unix(int64(timestamp), 0).UTC(),
		Answers:   answers,
	}, nil
}

func (c *Client) QuestionsRootHash(ctx context.Context) (string, error) {
	out, err := c.call(ctx, "QUESTIONS_HASH")
	if err != nil {
		return "", err
	}
	hash, ok := out[0].(string)
	if !ok {
		return "", unexpected("QUESTIONS_HASH", out[0])
	}
	return hash, nil
}

// Owner reads the contract owner address.
func (c *Client) Owner(ctx context.Context) (string, error) {
	out, err := c.call(ctx, "owner")
	if err != nil {
		return "", err
	}
	owner, ok := out[0].(common.Address)
	if !ok {
		return "", unexpected("owner", out[0])
	}
	return owner.Hex(), nil
}

// SetQuestionsRootHash publishes hash. from must be the contract owner.
func (c *Client) SetQuestionsRootHash(ctx context.Context, from, hash string) (string, error) {
	sender, err := parseAddress(from)
	if err != nil {
		return "", err
	}
	owner, err := c.Owner(ctx)
	if err != nil {
		return "", fmt.Errorf("read owner: %w", err)
	}
	if common.HexToAddress(owner) != sender {
		return "", fmt.Errorf("%w: %s", domain.ErrNotContractOwner, sender.Hex())
	}
	return c.transact(ctx, from, "setQuestionsIpfsHash", hash)
}

func (c *Client) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	if c.caller == nil {
		return nil, domain.ErrLedgerUnavailable
	}
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	raw, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	out, err := c.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}

func (c *Client) transact(ctx context.Context, from, method string, args ...interface{}) (string, error) {
	if c.sender == nil {
		return "", domain.ErrLedgerUnavailable
	}
	sender, err := parseAddress(from)
	if err != nil {
		return "", err
	}
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return "", fmt.Errorf("pack %s: %w", method, err)
	}
	tx, err := c.sender.SendTransaction(ctx, sender, c.contract, data)
	if err != nil {
		return "", fmt.Errorf("send %s: %w", method, err)
	}
	return tx, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

func unexpected(method string, v interface{}) error {
	return fmt.Errorf("%s: unexpected output type %T", method, v)
}
