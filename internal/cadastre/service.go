package cadastre

import (
	"context"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/property"
)

// Submitter files one registration. *property.Service implements it.
type Submitter interface {
	Submit(ctx context.Context, owner actor.Actor, params property.SubmitParams) (*property.Record, error)
}

type Failure struct {
	Row    int    `json:"row"`
	Parcel string `json:"parcel_identifier"`
	Error  string `json:"error"`
}

type Report struct {
	Layout    string             `json:"layout"`
	Charset   string             `json:"charset"`
	Submitted []*property.Record `json:"-"`
	Failures  []Failure          `json:"failures"`
}

type Service struct {
	properties Submitter
	logger     *slog.Logger
}

func NewService(properties Submitter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{properties: properties, logger: logger}
}

// Import files every row of an extract as a pending registration owned by the
// row's owner. A row that fails does not stop the rest; duplicates of a live
// parcel land in Failures.
func (s *Service) Import(ctx context.Context, operator actor.Actor, r io.Reader) (*Report, error) {
	if operator.Role != actor.RoleOfficial {
		return nil, apperr.Forbidden("only officials can import registry extracts")
	}

	extract, err := Parse(r)
	if err != nil {
		return nil, err
	}

	report := &Report{Layout: extract.Layout, Charset: extract.Charset, Failures: []Failure{}}

	for _, e := range extract.Entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		owner := actor.New(e.OwnerID, actor.RoleSeller).WithWallet(e.Params.OwnerWalletAddress)

		rec, err := s.properties.Submit(ctx, owner, e.Params)
		if err != nil {
			report.Failures = append(report.Failures, Failure{Row: e.Row, Parcel: e.Params.ParcelIdentifier, Error: err.Error()})
			continue
		}

		report.Submitted = append(report.Submitted, rec)
	}

	s.logger.Info("registry extract imported",
		"operator", operator.ID,
		"layout", report.Layout,
		"charset", report.Charset,
		"submitted", len(report.Submitted),
		"failed", len(report.Failures))

	return report, nil
}
