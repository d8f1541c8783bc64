package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/MarwanIssa100/SparkUp/internal/config"
	"github.com/MarwanIssa100/SparkUp/internal/model"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client talks to the SparkUp contract: direct calls for reads, signed
// transactions for writes, receipt polling for confirmation.
type Client struct {
	client        *ethclient.Client
	privateKey    *ecdsa.PrivateKey // nil means read-only session
	ContractAddr  common.Address
	chainId       *big.Int
	confirmations int
	pollInterval  time.Duration
	contractABI   abi.ABI
}

func Init(cfg config.ChainConfig) (*Client, error) {
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	// Session key is optional; without it the gateway can still read.
	var privateKey *ecdsa.PrivateKey
	if cfg.PrivateKey != "" {
		privateKey, err = crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
	}

	parsedABI, err := abi.JSON(strings.NewReader(sparkUpABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	return &Client{
		client:        client,
		privateKey:    privateKey,
		ContractAddr:  common.HexToAddress(cfg.ContractAddr),
		chainId:       big.NewInt(cfg.ChainId),
		confirmations: cfg.Confirmations,
		pollInterval:  pollInterval,
		contractABI:   parsedABI,
	}, nil
}

// Account returns the session address and whether a signing key is present.
func (c *Client) Account() (common.Address, bool) {
	if c.privateKey == nil {
		return common.Address{}, false
	}
	return crypto.PubkeyToAddress(c.privateKey.PublicKey), true
}

// TotalIdeas reads the authoritative campaign count.
func (c *Client) TotalIdeas(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, "totalIdeas")
	if err != nil {
		return 0, err
	}
	total, ok := out[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected totalIdeas output type %T", out[0])
	}
	return total.Uint64(), nil
}

// GetIdea reads one campaign record by its 1-based id. The second return
// is false when the contract holds no record at that index.
func (c *Client) GetIdea(ctx context.Context, id uint64) (model.Idea, bool, error) {
	out, err := c.call(ctx, "getIdea", new(big.Int).SetUint64(id))
	if err != nil {
		return model.Idea{}, false, err
	}
	if len(out) != 7 {
		return model.Idea{}, false, fmt.Errorf("unexpected getIdea output arity %d", len(out))
	}

	idea := model.Idea{
		Id:              id,
		Title:           out[0].(string),
		Description:     out[1].(string),
		Owner:           out[2].(common.Address),
		FundGoal:        out[3].(*big.Int),
		Deadline:        out[4].(*big.Int).Uint64(),
		AmountCollected: out[5].(*big.Int),
		Completed:       out[6].(bool),
	}
	if idea.Absent() {
		return model.Idea{}, false, nil
	}
	return idea, true, nil
}

// CreateIdea submits a createIdea transaction.
func (c *Client) CreateIdea(ctx context.Context, title, description string, fundGoal *big.Int, deadline uint64) (common.Hash, error) {
	return c.submit(ctx, "createIdea", nil, title, description, fundGoal, new(big.Int).SetUint64(deadline))
}

// FundIdea submits a fundIdea transaction carrying amount as value.
func (c *Client) FundIdea(ctx context.Context, id uint64, amount *big.Int) (common.Hash, error) {
	return c.submit(ctx, "fundIdea", amount, new(big.Int).SetUint64(id))
}

// Withdraw submits a withdraw transaction.
func (c *Client) Withdraw(ctx context.Context, id uint64) (common.Hash, error) {
	return c.submit(ctx, "withdraw", nil, new(big.Int).SetUint64(id))
}

// CompleteIdea submits a completeIdea transaction.
func (c *Client) CompleteIdea(ctx context.Context, id uint64) (common.Hash, error) {
	return c.submit(ctx, "completeIdea", nil, new(big.Int).SetUint64(id))
}

// Refund submits a refund transaction for the session account.
func (c *Client) Refund(ctx context.Context, id uint64) (common.Hash, error) {
	account, ok := c.Account()
	if !ok {
		return common.Hash{}, model.ErrNoAccount
	}
	return c.submit(ctx, "refund", nil, new(big.Int).SetUint64(id), account)
}

// WaitMined polls for the transaction receipt until the transaction is
// mined with enough confirmations or ctx is done. Returns true when the
// transaction succeeded, false when it reverted.
func (c *Client) WaitMined(ctx context.Context, txHash common.Hash) (bool, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.client.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			confirmed, err := c.isConfirmed(ctx, receipt)
			if err != nil {
				return false, err
			}
			if confirmed {
				return receipt.Status == types.ReceiptStatusSuccessful, nil
			}
		} else if err != nil && !errors.Is(err, ethereum.NotFound) {
			return false, fmt.Errorf("failed to fetch receipt for %s: %w", txHash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) isConfirmed(ctx context.Context, receipt *types.Receipt) (bool, error) {
	if c.confirmations <= 0 {
		return true, nil
	}
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return false, err
	}
	return header.Number.Uint64() >= receipt.BlockNumber.Uint64()+uint64(c.confirmations)-1, nil
}

func (c *Client) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	input, err := c.contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	output, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.ContractAddr,
		Data: input,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}

	out, err := c.contractABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s output: %w", method, err)
	}
	return out, nil
}

func (c *Client) submit(ctx context.Context, method string, value *big.Int, args ...interface{}) (common.Hash, error) {
	account, ok := c.Account()
	if !ok {
		return common.Hash{}, model.ErrNoAccount
	}

	input, err := c.contractABI.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	nonce, err := c.client.PendingNonceAt(ctx, account)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch nonce: %w", err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch gas price: %w", err)
	}

	if value == nil {
		value = new(big.Int)
	}

	gasLimit, err := c.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  account,
		To:    &c.ContractAddr,
		Value: value,
		Data:  input,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate gas for %s: %w", method, err)
	}

	tx := types.NewTransaction(nonce, c.ContractAddr, value, gasLimit, gasPrice, input)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainId), c.privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign %s transaction: %w", method, err)
	}

	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send %s transaction: %w", method, err)
	}

	return signed.Hash(), nil
}
