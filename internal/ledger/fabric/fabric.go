// Package fabric talks to the land registry chaincode through the Hyperledger
// Fabric gateway.
package fabric

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"

	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

const (
	fnRegisterAsset          = "RegisterAsset"
	fnGrantRole              = "GrantRole"
	fnInitiateTransaction    = "InitiateTransaction"
	fnAuthorizeTransferAgent = "AuthorizeTransferAgent"
	fnFinalizeTransfer       = "FinalizeTransfer"
	fnReceiptByKey           = "ReceiptByKey"
)

// contract is the part of *gateway.Contract the client uses.
type contract interface {
	SubmitTransaction(name string, args ...string) ([]byte, error)
	EvaluateTransaction(name string, args ...string) ([]byte, error)
}

type Config struct {
	ConfigPath   string
	Channel      string
	Contract     string
	MSPID        string
	CertPath     string
	KeyPath      string
	WalletPath   string
	IdentityName string
}

type Client struct {
	gw       *gateway.Gateway
	contract contract
}

func NewClient(cfg Config) (*Client, error) {
	wallet, err := gateway.NewFileSystemWallet(cfg.WalletPath)
	if err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	if !wallet.Exists(cfg.IdentityName) {
		if err := populateWallet(wallet, cfg); err != nil {
			return nil, fmt.Errorf("populate wallet: %w", err)
		}
	}

	gw, err := gateway.Connect(
		gateway.WithConfig(config.FromFile(filepath.Clean(cfg.ConfigPath))),
		gateway.WithIdentity(wallet, cfg.IdentityName),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to gateway: %w", err)
	}

	network, err := gw.GetNetwork(cfg.Channel)
	if err != nil {
		gw.Close()
		return nil, fmt.Errorf("get network %s: %w", cfg.Channel, err)
	}

	return &Client{gw: gw, contract: network.GetContract(cfg.Contract)}, nil
}

func populateWallet(wallet *gateway.Wallet, cfg Config) error {
	cert, err := os.ReadFile(filepath.Clean(cfg.CertPath))
	if err != nil {
		return err
	}

	key, err := os.ReadFile(filepath.Clean(cfg.KeyPath))
	if err != nil {
		return err
	}

	return wallet.Put(cfg.IdentityName, gateway.NewX509Identity(cfg.MSPID, string(cert), string(key)))
}

func (c *Client) Close() {
	if c.gw != nil {
		c.gw.Close()
	}
}

func (c *Client) RegisterAsset(ctx context.Context, key, ownerAddress, parcelIdentifier string) (ledger.Receipt, error) {
	return c.submit(ctx, key, fnRegisterAsset, key, ownerAddress, parcelIdentifier)
}

func (c *Client) GrantRole(ctx context.Context, key, roleKind, address string) (ledger.Receipt, error) {
	return c.submit(ctx, key, fnGrantRole, key, roleKind, address)
}

func (c *Client) InitiateTransaction(ctx context.Context, key, sellerAddress, buyerAddress, tokenIdentifier string) (ledger.Receipt, error) {
	return c.submit(ctx, key, fnInitiateTransaction, key, sellerAddress, buyerAddress, tokenIdentifier)
}

func (c *Client) AuthorizeTransferAgent(ctx context.Context, key, agentAddress, tokenIdentifier string) (ledger.Receipt, error) {
	return c.submit(ctx, key, fnAuthorizeTransferAgent, key, agentAddress, tokenIdentifier)
}

func (c *Client) FinalizeTransfer(ctx context.Context, key, ledgerTransactionID string) (ledger.Receipt, error) {
	return c.submit(ctx, key, fnFinalizeTransfer, key, ledgerTransactionID)
}

func (c *Client) LookupReceipt(ctx context.Context, key string) (*ledger.Receipt, error) {
	payload, err := c.call(ctx, func() ([]byte, error) {
		return c.contract.EvaluateTransaction(fnReceiptByKey, key)
	})
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	r, err := decodeReceipt(key, payload)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func (c *Client) submit(ctx context.Context, key, fn string, args ...string) (ledger.Receipt, error) {
	payload, err := c.call(ctx, func() ([]byte, error) {
		return c.contract.SubmitTransaction(fn, args...)
	})
	if err != nil {
		return ledger.Receipt{}, err
	}

	return decodeReceipt(key, payload)
}

type result struct {
	payload []byte
	err     error
}

// call runs fn and gives up when ctx ends. The gateway has no context
// support, so an abandoned call may still land; callers look the key up
// before resubmitting.
func (c *Client) call(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	done := make(chan result, 1)

	go func() {
		payload, err := fn()
		done <- result{payload: payload, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ledger.ErrTimeout, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, classify(res.err)
		}

		return res.payload, nil
	}
}

func classify(err error) error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return fmt.Errorf("%w: %w", ledger.ErrTimeout, err)
	case strings.Contains(msg, "endorsement"), strings.Contains(msg, "access denied"):
		return fmt.Errorf("%w: %w", ledger.ErrDeclined, err)
	}

	return fmt.Errorf("%w: %w", ledger.ErrReverted, err)
}

type receiptPayload struct {
	Hash          string `json:"txHash"`
	TokenID       string `json:"tokenId"`
	TransactionID string `json:"transactionId"`
	Timestamp     int64  `json:"timestamp"`
}

func decodeReceipt(key string, payload []byte) (ledger.Receipt, error) {
	var p receiptPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ledger.Receipt{}, fmt.Errorf("decode receipt for %s: %w", key, err)
	}

	if p.Hash == "" {
		return ledger.Receipt{}, errors.New("receipt for " + key + " has no transaction hash")
	}

	r := ledger.Receipt{
		Key:                 key,
		Hash:                p.Hash,
		TokenIdentifier:     p.TokenID,
		LedgerTransactionID: p.TransactionID,
		ConfirmedAt:         time.Now().UTC(),
	}
	if p.Timestamp > 0 {
		r.ConfirmedAt = time.Unix(p.Timestamp, 0).UTC()
	}

	return r, nil
}
