package fabric

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

type fakeContract struct {
	submitted []string
	payload   string
	err       error
	block     chan struct{}
}

func (f *fakeContract) SubmitTransaction(name string, args ...string) ([]byte, error) {
	if f.block != nil {
		<-f.block
	}

	f.submitted = append(f.submitted, name)

	return []byte(f.payload), f.err
}

func (f *fakeContract) EvaluateTransaction(_ string, _ ...string) ([]byte, error) {
	return []byte(f.payload), f.err
}

func TestClient_RegisterAssetDecodesReceipt(t *testing.T) {
	fc := &fakeContract{payload: `{"txHash":"0xabc","tokenId":"42","timestamp":1700000000}`}
	c := &Client{contract: fc}

	r, err := c.RegisterAsset(context.Background(), "register_asset:1", "0xowner", "LR/1")
	require.NoError(t, err)

	assert.Equal(t, []string{fnRegisterAsset}, fc.submitted)
	assert.Equal(t, "0xabc", r.Hash)
	assert.Equal(t, "42", r.TokenIdentifier)
	assert.Equal(t, "register_asset:1", r.Key)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), r.ConfirmedAt)
}

func TestClient_LookupReceiptMissing(t *testing.T) {
	c := &Client{contract: &fakeContract{payload: "null"}}

	r, err := c.LookupReceipt(context.Background(), "grant_role:1")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestClient_ErrorsAreClassified(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "Endorsement", err: errors.New("endorsement failure during invoke"), want: ledger.ErrDeclined},
		{name: "Timeout", err: errors.New("request timeout"), want: ledger.ErrTimeout},
		{name: "Chaincode", err: errors.New("parcel already registered"), want: ledger.ErrReverted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{contract: &fakeContract{err: tt.err}}

			_, err := c.GrantRole(context.Background(), "k", ledger.RoleIntermediary, "0xadv")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_ContextEndsWait(t *testing.T) {
	fc := &fakeContract{block: make(chan struct{}), payload: `{"txHash":"0x1"}`}
	defer close(fc.block)

	c := &Client{contract: fc}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.FinalizeTransfer(ctx, "finalize_transfer:1", "7")
	require.ErrorIs(t, err, ledger.ErrTimeout)
}
