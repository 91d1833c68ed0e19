package cadastre_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/cadastre"
	"github.com/MrJamesThe3rd/titledeed/internal/property"
)

type fakeSubmitter struct {
	owners []actor.Actor
	fail   map[string]error
}

func (f *fakeSubmitter) Submit(_ context.Context, owner actor.Actor, params property.SubmitParams) (*property.Record, error) {
	if err, ok := f.fail[params.ParcelIdentifier]; ok {
		return nil, err
	}

	f.owners = append(f.owners, owner)

	return &property.Record{
		ID:               uuid.New(),
		Status:           property.StatusPending,
		ParcelIdentifier: params.ParcelIdentifier,
		OwnerID:          owner.ID,
	}, nil
}

const extract = `parcel_identifier,location,owner_id,owner_wallet_address,document_urls
P-1,Leeds,owner-1,0x01,https://docs/1.pdf
P-2,York,owner-2,0x02,https://docs/2.pdf
`

func TestService_Import(t *testing.T) {
	sub := &fakeSubmitter{fail: map[string]error{
		"P-2": apperr.Validation("parcel P-2 is already registered or under review"),
	}}
	svc := cadastre.NewService(sub, nil)

	report, err := svc.Import(context.Background(), actor.New("off-1", actor.RoleOfficial), strings.NewReader(extract))
	require.NoError(t, err)

	require.Len(t, report.Submitted, 1)
	assert.Equal(t, "P-1", report.Submitted[0].ParcelIdentifier)
	require.Len(t, sub.owners, 1)
	assert.Equal(t, "owner-1", sub.owners[0].ID)
	assert.Equal(t, "0x01", sub.owners[0].WalletAddress)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, 3, report.Failures[0].Row)
	assert.Equal(t, "P-2", report.Failures[0].Parcel)
}

func TestService_Import_OfficialsOnly(t *testing.T) {
	svc := cadastre.NewService(&fakeSubmitter{}, nil)

	_, err := svc.Import(context.Background(), actor.New("u-1", actor.RoleBuyer), strings.NewReader(extract))
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}
