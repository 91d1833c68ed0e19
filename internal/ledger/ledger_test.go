package ledger_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

func TestSubmit_Dispatch(t *testing.T) {
	recordID := uuid.New()

	tests := []struct {
		name      string
		call      ledger.Call
		setupMock func(m *ledger.MockClient)
	}{
		{
			name: "RegisterAsset",
			call: ledger.Call{Kind: ledger.KindRegisterAsset, Key: "k1", OwnerAddress: "0xowner", ParcelIdentifier: "LR/123"},
			setupMock: func(m *ledger.MockClient) {
				m.EXPECT().RegisterAsset(gomock.Any(), "k1", "0xowner", "LR/123").Return(ledger.Receipt{Hash: "0x1"}, nil)
			},
		},
		{
			name: "GrantRole",
			call: ledger.Call{Kind: ledger.KindGrantRole, Key: "k2", RoleKind: ledger.RoleIntermediary, Address: "0xadv"},
			setupMock: func(m *ledger.MockClient) {
				m.EXPECT().GrantRole(gomock.Any(), "k2", ledger.RoleIntermediary, "0xadv").Return(ledger.Receipt{Hash: "0x1"}, nil)
			},
		},
		{
			name: "InitiateTransaction",
			call: ledger.Call{Kind: ledger.KindInitiateTransaction, Key: "k3", SellerAddress: "0xs", BuyerAddress: "0xb", TokenIdentifier: "7"},
			setupMock: func(m *ledger.MockClient) {
				m.EXPECT().InitiateTransaction(gomock.Any(), "k3", "0xs", "0xb", "7").Return(ledger.Receipt{Hash: "0x1"}, nil)
			},
		},
		{
			name: "AuthorizeTransferAgent",
			call: ledger.Call{Kind: ledger.KindAuthorizeTransferAgent, Key: "k4", AgentAddress: "0xo", TokenIdentifier: "7"},
			setupMock: func(m *ledger.MockClient) {
				m.EXPECT().AuthorizeTransferAgent(gomock.Any(), "k4", "0xo", "7").Return(ledger.Receipt{Hash: "0x1"}, nil)
			},
		},
		{
			name: "FinalizeTransfer",
			call: ledger.Call{Kind: ledger.KindFinalizeTransfer, Key: ledger.OperationKey(ledger.KindFinalizeTransfer, recordID), LedgerTransactionID: "ltx"},
			setupMock: func(m *ledger.MockClient) {
				m.EXPECT().FinalizeTransfer(gomock.Any(), "finalize_transfer:"+recordID.String(), "ltx").Return(ledger.Receipt{Hash: "0x1"}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := ledger.NewMockClient(ctrl)
			tt.setupMock(client)

			got, err := ledger.Submit(context.Background(), client, tt.call)
			require.NoError(t, err)
			assert.Equal(t, "0x1", got.Hash)
		})
	}
}

func TestSubmit_UnknownKind(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, err := ledger.Submit(context.Background(), ledger.NewMockClient(ctrl), ledger.Call{Kind: "burn"})
	require.Error(t, err)
}
