// Package eth implements the domain/chain interfaces on top of
// go-ethereum: an RPC client, a bound contract instance and an
// optional signing identity.
package eth

import (
	"context"
	"errors"
	"log"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"microloan-client/internal/domain/chain"
)

// Explicit gas limits, generous enough that wallet estimation quirks
// never block a submission.
const (
	createGasLimit = 500000
	writeGasLimit  = 300000
)

var errNoSigner = errors.New("eth: no signing key configured")

type Client struct {
	rpc      *ethclient.Client
	contract *bind.BoundContract
	abi      abi.ABI
	address  common.Address
	chainID  *big.Int
	signer   *bind.TransactOpts // nil means read-only
	account  common.Address
}

// Dial connects to the node, binds the loan contract and, when a key
// is given, prepares a transactor for it.
func Dial(ctx context.Context, rpcURL, contractAddr, signerKeyHex string) (*Client, error) {
	rpc, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	chainID, err := rpc.ChainID(ctx)
	if err != nil {
		rpc.Close()
		return nil, err
	}
	parsed, err := abi.JSON(strings.NewReader(microLoanABI))
	if err != nil {
		rpc.Close()
		return nil, err
	}

	c := &Client{
		rpc:     rpc,
		abi:     parsed,
		address: common.HexToAddress(contractAddr),
		chainID: chainID,
	}
	c.contract = bind.NewBoundContract(c.address, parsed, rpc, rpc, rpc)

	if signerKeyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(signerKeyHex, "0x"))
		if err != nil {
			rpc.Close()
			return nil, err
		}
		auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
		if err != nil {
			rpc.Close()
			return nil, err
		}
		c.signer = auth
		c.account = auth.From
	}
	log.Printf("eth: connected chain=%s contract=%s account=%s", chainID, c.address.Hex(), c.account.Hex())
	return c, nil
}

func (c *Client) Close() { c.rpc.Close() }

// Account is the signing identity, zero when read-only.
func (c *Client) Account() common.Address { return c.account }

// Chain is the chain id observed at dial time.
func (c *Client) Chain() *big.Int { return new(big.Int).Set(c.chainID) }

// ----- chain.Contract: writes -----

func (c *Client) CreateLoan(ctx context.Context, amount, rateBp, durationSec *big.Int, collateralized bool, value *big.Int) (*types.Transaction, error) {
	opts, err := c.txOpts(ctx, value, createGasLimit)
	if err != nil {
		return nil, err
	}
	return c.contract.Transact(opts, "createLoan", amount, rateBp, durationSec, collateralized)
}

func (c *Client) FundLoan(ctx context.Context, id *big.Int, value *big.Int) (*types.Transaction, error) {
	opts, err := c.txOpts(ctx, value, writeGasLimit)
	if err != nil {
		return nil, err
	}
	return c.contract.Transact(opts, "fundLoan", id)
}

func (c *Client) RepayLoan(ctx context.Context, id *big.Int, value *big.Int) (*types.Transaction, error) {
	opts, err := c.txOpts(ctx, value, writeGasLimit)
	if err != nil {
		return nil, err
	}
	return c.contract.Transact(opts, "repayLoan", id)
}

func (c *Client) MarkDefaulted(ctx context.Context, id *big.Int) (*types.Transaction, error) {
	opts, err := c.txOpts(ctx, nil, writeGasLimit)
	if err != nil {
		return nil, err
	}
	return c.contract.Transact(opts, "markAsDefaulted", id)
}

func (c *Client) txOpts(ctx context.Context, value *big.Int, gasLimit uint64) (*bind.TransactOpts, error) {
	if c.signer == nil {
		return nil, errNoSigner
	}
	opts := *c.signer
	opts.Context = ctx
	opts.Value = value
	opts.GasLimit = gasLimit
	return &opts, nil
}

// ----- chain.Contract: views -----

func (c *Client) LoanDetails(ctx context.Context, id *big.Int) (chain.LoanRecord, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getLoanDetails", id); err != nil {
		return chain.LoanRecord{}, err
	}
	return *abi.ConvertType(out[0], new(chain.LoanRecord)).(*chain.LoanRecord), nil
}

func (c *Client) BorrowerLoans(ctx context.Context, borrower common.Address) ([]*big.Int, error) {
	return c.callIDs(ctx, "getBorrowerLoans", borrower)
}

func (c *Client) LenderLoans(ctx context.Context, lender common.Address) ([]*big.Int, error) {
	return c.callIDs(ctx, "getLenderLoans", lender)
}

func (c *Client) AvailableLoans(ctx context.Context) ([]*big.Int, error) {
	return c.callIDs(ctx, "getAvailableLoans")
}

func (c *Client) LoanCount(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "getTotalLoanCount")
}

func (c *Client) TotalVolume(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "totalLoanVolume")
}

func (c *Client) ActiveLoanCount(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "activeLoans")
}

func (c *Client) AverageRate(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "getAverageInterestRate")
}

func (c *Client) callBig(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (c *Client) callIDs(ctx context.Context, method string, args ...interface{}) ([]*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

// CreatedLoanID scans the receipt for the contract's LoanCreated
// event. The id is the first indexed topic.
func (c *Client) CreatedLoanID(receipt *types.Receipt) (uint64, bool) {
	ev := c.abi.Events["LoanCreated"]
	for _, lg := range receipt.Logs {
		if lg.Address != c.address || len(lg.Topics) < 2 || lg.Topics[0] != ev.ID {
			continue
		}
		return new(big.Int).SetBytes(lg.Topics[1].Bytes()).Uint64(), true
	}
	return 0, false
}

// ----- chain.Provider -----

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.rpc.ChainID(ctx)
}

func (c *Client) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	return c.rpc.BalanceAt(ctx, account, nil)
}

func (c *Client) Receipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return c.rpc.TransactionReceipt(ctx, txHash)
}
