// Package memledger is an in-process ledger used for development and tests.
// It enforces the same idempotency-by-key contract as the real network and
// can be told to fail, stall or lose responses.
package memledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

type asset struct {
	owner  string
	parcel string
	agent  string
}

type transfer struct {
	seller string
	buyer  string
	token  string
	done   bool
}

// Fault changes how the next call of a kind behaves.
type Fault int

const (
	// FaultDecline rejects the call without recording anything.
	FaultDecline Fault = iota + 1
	// FaultLoseResponse records the call but reports a timeout to the caller.
	FaultLoseResponse
)

type Ledger struct {
	mu        sync.Mutex
	receipts  map[string]ledger.Receipt
	assets    map[string]*asset
	parcels   map[string]string
	transfers map[string]*transfer
	roles     map[string]map[string]bool
	calls     map[string]int
	faults    map[ledger.Kind][]Fault
	nextToken int
	nextTx    int

	// Delay stalls every submit; the call still honours ctx.
	Delay time.Duration
	now   func() time.Time
}

func New() *Ledger {
	return &Ledger{
		receipts:  make(map[string]ledger.Receipt),
		assets:    make(map[string]*asset),
		parcels:   make(map[string]string),
		transfers: make(map[string]*transfer),
		roles:     make(map[string]map[string]bool),
		calls:     make(map[string]int),
		faults:    make(map[ledger.Kind][]Fault),
		nextToken: 1,
		nextTx:    1,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Inject queues a fault for the next call of kind.
func (l *Ledger) Inject(kind ledger.Kind, f Fault) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.faults[kind] = append(l.faults[kind], f)
}

// Calls reports how many submits reached the ledger for key.
func (l *Ledger) Calls(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.calls[key]
}

// HasRole reports whether address holds role.
func (l *Ledger) HasRole(role, address string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.roles[role][address]
}

// OwnerOf returns the current owner of token.
func (l *Ledger) OwnerOf(token string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if a, ok := l.assets[token]; ok {
		return a.owner
	}

	return ""
}

func (l *Ledger) RegisterAsset(ctx context.Context, key, ownerAddress, parcelIdentifier string) (ledger.Receipt, error) {
	return l.submit(ctx, ledger.KindRegisterAsset, key, func() (ledger.Receipt, error) {
		if ownerAddress == "" || parcelIdentifier == "" {
			return ledger.Receipt{}, fmt.Errorf("%w: owner and parcel are required", ledger.ErrReverted)
		}

		if _, taken := l.parcels[parcelIdentifier]; taken {
			return ledger.Receipt{}, fmt.Errorf("%w: parcel %s already registered", ledger.ErrReverted, parcelIdentifier)
		}

		token := strconv.Itoa(l.nextToken)
		l.nextToken++
		l.assets[token] = &asset{owner: ownerAddress, parcel: parcelIdentifier}
		l.parcels[parcelIdentifier] = token

		return ledger.Receipt{TokenIdentifier: token}, nil
	})
}

func (l *Ledger) GrantRole(ctx context.Context, key, roleKind, address string) (ledger.Receipt, error) {
	return l.submit(ctx, ledger.KindGrantRole, key, func() (ledger.Receipt, error) {
		if address == "" {
			return ledger.Receipt{}, fmt.Errorf("%w: address is required", ledger.ErrReverted)
		}

		if l.roles[roleKind] == nil {
			l.roles[roleKind] = make(map[string]bool)
		}

		l.roles[roleKind][address] = true

		return ledger.Receipt{}, nil
	})
}

func (l *Ledger) InitiateTransaction(ctx context.Context, key, sellerAddress, buyerAddress, tokenIdentifier string) (ledger.Receipt, error) {
	return l.submit(ctx, ledger.KindInitiateTransaction, key, func() (ledger.Receipt, error) {
		a, ok := l.assets[tokenIdentifier]
		if !ok {
			return ledger.Receipt{}, fmt.Errorf("%w: unknown token %s", ledger.ErrReverted, tokenIdentifier)
		}

		if a.owner != sellerAddress {
			return ledger.Receipt{}, fmt.Errorf("%w: seller does not own token %s", ledger.ErrReverted, tokenIdentifier)
		}

		id := strconv.Itoa(l.nextTx)
		l.nextTx++
		l.transfers[id] = &transfer{seller: sellerAddress, buyer: buyerAddress, token: tokenIdentifier}

		return ledger.Receipt{LedgerTransactionID: id}, nil
	})
}

func (l *Ledger) AuthorizeTransferAgent(ctx context.Context, key, agentAddress, tokenIdentifier string) (ledger.Receipt, error) {
	return l.submit(ctx, ledger.KindAuthorizeTransferAgent, key, func() (ledger.Receipt, error) {
		a, ok := l.assets[tokenIdentifier]
		if !ok {
			return ledger.Receipt{}, fmt.Errorf("%w: unknown token %s", ledger.ErrReverted, tokenIdentifier)
		}

		a.agent = agentAddress

		return ledger.Receipt{}, nil
	})
}

func (l *Ledger) FinalizeTransfer(ctx context.Context, key, ledgerTransactionID string) (ledger.Receipt, error) {
	return l.submit(ctx, ledger.KindFinalizeTransfer, key, func() (ledger.Receipt, error) {
		tr, ok := l.transfers[ledgerTransactionID]
		if !ok {
			return ledger.Receipt{}, fmt.Errorf("%w: unknown transaction %s", ledger.ErrReverted, ledgerTransactionID)
		}

		if tr.done {
			return ledger.Receipt{}, fmt.Errorf("%w: transaction %s already finalized", ledger.ErrReverted, ledgerTransactionID)
		}

		a := l.assets[tr.token]
		if a.agent == "" {
			return ledger.Receipt{}, fmt.Errorf("%w: no transfer agent authorized for token %s", ledger.ErrReverted, tr.token)
		}

		a.owner = tr.buyer
		a.agent = ""
		tr.done = true

		return ledger.Receipt{LedgerTransactionID: ledgerTransactionID, TokenIdentifier: tr.token}, nil
	})
}

func (l *Ledger) LookupReceipt(ctx context.Context, key string) (*ledger.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.receipts[key]
	if !ok {
		return nil, nil
	}

	return &r, nil
}

func (l *Ledger) submit(ctx context.Context, kind ledger.Kind, key string, apply func() (ledger.Receipt, error)) (ledger.Receipt, error) {
	if l.Delay > 0 {
		select {
		case <-ctx.Done():
			return ledger.Receipt{}, fmt.Errorf("%w: %w", ledger.ErrTimeout, ctx.Err())
		case <-time.After(l.Delay):
		}
	}

	if err := ctx.Err(); err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: %w", ledger.ErrTimeout, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls[key]++

	fault := l.popFault(kind)
	if fault == FaultDecline {
		return ledger.Receipt{}, fmt.Errorf("%w: %s", ledger.ErrDeclined, kind)
	}

	if r, ok := l.receipts[key]; ok {
		if fault == FaultLoseResponse {
			return ledger.Receipt{}, ledger.ErrTimeout
		}

		return r, nil
	}

	r, err := apply()
	if err != nil {
		return ledger.Receipt{}, err
	}

	r.Key = key
	r.ConfirmedAt = l.now()
	r.Hash = hash(kind, key, r.ConfirmedAt)
	l.receipts[key] = r

	if fault == FaultLoseResponse {
		return ledger.Receipt{}, ledger.ErrTimeout
	}

	return r, nil
}

func (l *Ledger) popFault(kind ledger.Kind) Fault {
	queue := l.faults[kind]
	if len(queue) == 0 {
		return 0
	}

	l.faults[kind] = queue[1:]

	return queue[0]
}

func hash(kind ledger.Kind, key string, at time.Time) string {
	sum := sha256.Sum256([]byte(string(kind) + "|" + key + "|" + at.Format(time.RFC3339Nano)))
	return "0x" + hex.EncodeToString(sum[:])
}
