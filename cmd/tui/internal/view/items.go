package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/application"
	"github.com/MrJamesThe3rd/titledeed/internal/assignment"
	"github.com/MrJamesThe3rd/titledeed/internal/property"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

var kinds = []assignment.Kind{
	assignment.KindTransaction,
	assignment.KindProperty,
	assignment.KindApplication,
}

// item is one review item projected for the console, whatever its kind.
type item struct {
	Kind      assignment.Kind
	ID        uuid.UUID
	Summary   string
	State     string
	Detail    string
	Submitted time.Time
}

func transactionItem(tx *transaction.Transaction) item {
	var docs strings.Builder
	for _, d := range tx.SharedDocuments {
		fmt.Fprintf(&docs, "  - %s %s\n", d.Name, d.URL)
	}

	return item{
		Kind:    assignment.KindTransaction,
		ID:      tx.ID,
		Summary: fmt.Sprintf("%s (%s)", tx.ParcelIdentifier, tx.Location),
		State:   tx.Stage.Label(),
		Detail: fmt.Sprintf(
			"Parcel: %s\nToken: %s\nSeller: %s\nBuyer: %s\nIntermediary: %s\nLedger tx: %s\nAgent authorized: %t\nDocuments:\n%s",
			tx.ParcelIdentifier, tx.TokenIdentifier,
			tx.Seller.DisplayName, tx.Buyer.DisplayName, tx.Intermediary.DisplayName,
			tx.LedgerTransactionID, tx.AgentAuthorizationReceiptHash != "",
			docs.String(),
		),
		Submitted: tx.CreatedAt,
	}
}

func propertyItem(r *property.Record) item {
	return item{
		Kind:    assignment.KindProperty,
		ID:      r.ID,
		Summary: fmt.Sprintf("%s (%s)", r.ParcelIdentifier, r.Location),
		State:   string(r.Status),
		Detail: fmt.Sprintf("Parcel: %s\nOwner: %s\nWallet: %s\nDocuments:\n  %s",
			r.ParcelIdentifier, r.OwnerID, r.OwnerWalletAddress, strings.Join(r.DocumentURLs, "\n  ")),
		Submitted: r.SubmittedAt,
	}
}

func applicationItem(a *application.Application) item {
	return item{
		Kind:    assignment.KindApplication,
		ID:      a.ID,
		Summary: fmt.Sprintf("%s, %s", a.Profile.FullName, a.Profile.FirmName),
		State:   string(a.Status),
		Detail: fmt.Sprintf("Name: %s\nLicense: %s\nFirm: %s (%s)\nEmail: %s\nWallet: %s\nDocuments:\n  %s",
			a.Profile.FullName, a.Profile.LicenseNumber, a.Profile.FirmName, a.Profile.FirmRegistration,
			a.Profile.Email, a.Profile.WalletAddress, strings.Join(a.DocumentURLs, "\n  ")),
		Submitted: a.SubmittedAt,
	}
}

// loadItems lists the pool of kind, or the official's queue when queue is set.
func (s Services) loadItems(ctx context.Context, kind assignment.Kind, queue bool) ([]item, error) {
	var out []item

	switch kind {
	case assignment.KindTransaction:
		list := s.Transactions.Pool
		if queue {
			list = func(ctx context.Context) ([]*transaction.Transaction, error) {
				return s.Transactions.Queue(ctx, s.Official.ID)
			}
		}

		txs, err := list(ctx)
		for _, tx := range txs {
			out = append(out, transactionItem(tx))
		}

		return out, err
	case assignment.KindProperty:
		list := s.Properties.Pool
		if queue {
			list = func(ctx context.Context) ([]*property.Record, error) {
				return s.Properties.Queue(ctx, s.Official.ID)
			}
		}

		recs, err := list(ctx)
		for _, r := range recs {
			out = append(out, propertyItem(r))
		}

		return out, err
	case assignment.KindApplication:
		list := s.Applications.Pool
		if queue {
			list = func(ctx context.Context) ([]*application.Application, error) {
				return s.Applications.Queue(ctx, s.Official.ID)
			}
		}

		apps, err := list(ctx)
		for _, a := range apps {
			out = append(out, applicationItem(a))
		}

		return out, err
	}

	return nil, fmt.Errorf("unknown item kind %q", kind)
}

// review records the official's decision on it.
func (s Services) review(ctx context.Context, it item, approve bool, comment string) error {
	switch it.Kind {
	case assignment.KindTransaction:
		decision := transaction.DecisionReject
		if approve {
			decision = transaction.DecisionAccept
		}

		_, err := s.Transactions.Review(ctx, it.ID, s.Official, decision, comment)

		return err
	case assignment.KindProperty:
		_, err := s.Properties.Review(ctx, it.ID, s.Official, approve, comment)
		return err
	case assignment.KindApplication:
		_, err := s.Applications.Review(ctx, it.ID, s.Official, approve, comment)
		return err
	}

	return fmt.Errorf("unknown item kind %q", it.Kind)
}
