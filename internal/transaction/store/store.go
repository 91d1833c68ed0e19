package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/stage"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

type partyColumns struct {
	partyID, displayName, contact, wallet sql.NullString
	accepted, verified                    sql.NullBool
	rejectionComment                      sql.NullString
}

func (p *partyColumns) dest(signer bool) []any {
	d := []any{&p.partyID, &p.displayName, &p.contact, &p.wallet}
	if signer {
		d = append(d, &p.accepted, &p.verified, &p.rejectionComment)
	}

	return d
}

func (p *partyColumns) party() transaction.Party {
	out := transaction.Party{
		PartyID:          p.partyID.String,
		DisplayName:      p.displayName.String,
		ContactInfo:      p.contact.String,
		WalletAddress:    p.wallet.String,
		RejectionComment: p.rejectionComment.String,
	}

	if p.accepted.Valid {
		out.Accepted = new(p.accepted.Bool)
	}

	if p.verified.Valid {
		out.DocumentsVerified = new(p.verified.Bool)
	}

	return out
}

// scanTransaction reads a row in selectTransactionColumns order.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx                                   transaction.Transaction
		stageStr                             string
		buyer, seller, intermediary          partyColumns
		official, officialWallet             sql.NullString
		docs                                 []byte
		ledgerTxID, initiation, agent, final sql.NullString
		token, reviewComment, reviewedBy     sql.NullString
	)

	dest := []any{&tx.ID, &stageStr, &tx.ParcelIdentifier, &tx.Location}
	dest = append(dest, buyer.dest(true)...)
	dest = append(dest, seller.dest(true)...)
	dest = append(dest, intermediary.dest(false)...)
	dest = append(dest,
		&official, &officialWallet, &docs,
		&ledgerTxID, &initiation, &agent, &final, &token,
		&reviewComment, &reviewedBy,
		&tx.CreatedAt, &tx.UpdatedAt, &tx.FinalizedAt,
	)

	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	st, err := stage.Parse(stageStr)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}

	if err := json.Unmarshal(docs, &tx.SharedDocuments); err != nil {
		return nil, fmt.Errorf("decoding shared documents of %s: %w", tx.ID, err)
	}

	tx.Stage = st
	tx.Buyer = buyer.party()
	tx.Seller = seller.party()
	tx.Intermediary = intermediary.party()
	tx.AssignedOfficial = official.String
	tx.AssignedOfficialWallet = officialWallet.String
	tx.LedgerTransactionID = ledgerTxID.String
	tx.InitiationReceiptHash = initiation.String
	tx.AgentAuthorizationReceiptHash = agent.String
	tx.LedgerReceiptHash = final.String
	tx.TokenIdentifier = token.String
	tx.ReviewComment = reviewComment.String
	tx.ReviewedBy = reviewedBy.String

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.stage, t.parcel_identifier, t.location,
	t.buyer_party_id, t.buyer_display_name, t.buyer_contact_info, t.buyer_wallet_address,
	t.buyer_accepted, t.buyer_documents_verified, t.buyer_rejection_comment,
	t.seller_party_id, t.seller_display_name, t.seller_contact_info, t.seller_wallet_address,
	t.seller_accepted, t.seller_documents_verified, t.seller_rejection_comment,
	t.intermediary_party_id, t.intermediary_display_name, t.intermediary_contact_info, t.intermediary_wallet_address,
	t.assigned_official, t.assigned_official_wallet, t.shared_documents,
	t.ledger_transaction_id, t.initiation_receipt_hash, t.agent_authorization_receipt_hash,
	t.ledger_receipt_hash, t.token_identifier,
	t.review_comment, t.reviewed_by,
	t.created_at, t.updated_at, t.finalized_at
`

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (
			stage, parcel_identifier, location,
			buyer_party_id, buyer_display_name, buyer_contact_info, buyer_wallet_address,
			seller_party_id, seller_display_name, seller_contact_info, seller_wallet_address,
			intermediary_party_id, intermediary_display_name, intermediary_contact_info, intermediary_wallet_address,
			token_identifier, shared_documents, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NULLIF($16, ''), '[]'::jsonb, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		tx.Stage, tx.ParcelIdentifier, tx.Location,
		tx.Buyer.PartyID, tx.Buyer.DisplayName, tx.Buyer.ContactInfo, tx.Buyer.WalletAddress,
		tx.Seller.PartyID, tx.Seller.DisplayName, tx.Seller.ContactInfo, tx.Seller.WalletAddress,
		tx.Intermediary.PartyID, tx.Intermediary.DisplayName, tx.Intermediary.ContactInfo, tx.Intermediary.WalletAddress,
		tx.TokenIdentifier,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Stage != nil {
		query += fmt.Sprintf(" AND t.stage = $%d", argIdx)

		args = append(args, *filter.Stage)
		argIdx++
	}

	if filter.PartyID != nil {
		query += fmt.Sprintf(` AND $%d IN (t.buyer_party_id, t.seller_party_id, t.intermediary_party_id, t.assigned_official)`, argIdx)

		args = append(args, *filter.PartyID)
		argIdx++
	}

	if filter.AssignedOfficial != nil {
		query += fmt.Sprintf(" AND t.assigned_official = $%d", argIdx)

		args = append(args, *filter.AssignedOfficial)
		argIdx++
	}

	if filter.Unassigned {
		query += " AND t.assigned_official IS NULL"
	}

	query += " ORDER BY t.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

// signer maps a signing role to its column prefix.
func signer(role actor.Role) (string, error) {
	switch role {
	case actor.RoleBuyer:
		return "buyer", nil
	case actor.RoleSeller:
		return "seller", nil
	}

	return "", fmt.Errorf("role %q has no signing columns", role)
}

func counterpartColumn(role actor.Role) string {
	if role == actor.RoleBuyer {
		return "seller"
	}

	return "buyer"
}

// exec runs a conditional write and reports whether a row matched.
func (s *Store) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (s *Store) SetAccepted(ctx context.Context, id uuid.UUID, role actor.Role) (bool, bool, error) {
	col, err := signer(role)
	if err != nil {
		return false, false, err
	}

	query := fmt.Sprintf(`
		UPDATE transactions
		SET %[1]s_accepted = TRUE, updated_at = NOW()
		WHERE id = $1 AND stage = $2 AND %[1]s_accepted IS NOT TRUE
		RETURNING COALESCE(%[2]s_accepted, FALSE)
	`, col, counterpartColumn(role))

	var counterpart bool

	err = s.db.QueryRowContext(ctx, query, id, stage.AwaitingSignatures).Scan(&counterpart)
	if err == sql.ErrNoRows {
		return false, false, nil
	}

	if err != nil {
		return false, false, fmt.Errorf("setting %s accepted: %w", col, err)
	}

	return true, counterpart, nil
}

func (s *Store) SetVerification(ctx context.Context, id uuid.UUID, role actor.Role, accepted bool, comment string) (bool, bool, error) {
	col, err := signer(role)
	if err != nil {
		return false, false, err
	}

	query := fmt.Sprintf(`
		UPDATE transactions
		SET %[1]s_documents_verified = $3, %[1]s_rejection_comment = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1 AND stage = $2 AND %[1]s_documents_verified IS NOT TRUE
		RETURNING COALESCE(%[2]s_documents_verified, FALSE)
	`, col, counterpartColumn(role))

	var counterpart bool

	err = s.db.QueryRowContext(ctx, query, id, stage.AwaitingVerification, accepted, comment).Scan(&counterpart)
	if err == sql.ErrNoRows {
		return false, false, nil
	}

	if err != nil {
		return false, false, fmt.Errorf("setting %s verification: %w", col, err)
	}

	return true, counterpart, nil
}

func (s *Store) AppendDocuments(ctx context.Context, id uuid.UUID, intermediaryID string, docs []transaction.Document) (bool, error) {
	payload, err := json.Marshal(docs)
	if err != nil {
		return false, fmt.Errorf("encoding documents: %w", err)
	}

	// a revision share resets only the verdict of the party that rejected
	query := `
		UPDATE transactions
		SET shared_documents = shared_documents || $3::jsonb,
			buyer_documents_verified = CASE WHEN stage = $5 AND buyer_documents_verified IS FALSE THEN NULL ELSE buyer_documents_verified END,
			seller_documents_verified = CASE WHEN stage = $5 AND seller_documents_verified IS FALSE THEN NULL ELSE seller_documents_verified END,
			updated_at = NOW()
		WHERE id = $1 AND intermediary_party_id = $2
			AND (stage = $4 OR (stage = $5 AND (buyer_documents_verified IS FALSE OR seller_documents_verified IS FALSE)))
	`

	ok, err := s.exec(ctx, query, id, intermediaryID, payload, stage.DocsShared, stage.AwaitingVerification)
	if err != nil {
		return false, fmt.Errorf("appending documents: %w", err)
	}

	return ok, nil
}

// guardPredicate renders the record-state part of a guard. Parts that depend
// only on request input are checked before the query is built.
func guardPredicate(guard stage.Guard, change transaction.StageChange) (string, bool) {
	ev := stage.Evidence{Comment: change.Comment}

	switch guard {
	case stage.GuardNone:
		return "TRUE", true
	case stage.GuardLedgerTransaction:
		return "ledger_transaction_id IS NOT NULL", true
	case stage.GuardBothAccepted:
		return "buyer_accepted IS TRUE AND seller_accepted IS TRUE", true
	case stage.GuardDocumentsShared:
		return "jsonb_array_length(shared_documents) > 0", true
	case stage.GuardBothVerified:
		return "buyer_documents_verified IS TRUE AND seller_documents_verified IS TRUE", true
	case stage.GuardAssigned:
		return "assigned_official IS NOT NULL", true
	case stage.GuardReceipt:
		return "ledger_receipt_hash IS NOT NULL", true
	case stage.GuardComment:
		return "TRUE", stage.GuardComment.Satisfied(ev)
	case stage.GuardNotAccepted:
		col, err := signer(change.Role)
		if err != nil || !stage.GuardComment.Satisfied(ev) {
			return "", false
		}

		return col + "_accepted IS NOT TRUE", true
	}

	return "", false
}

func (s *Store) AdvanceStage(ctx context.Context, id uuid.UUID, from, to stage.Stage, guard stage.Guard, change transaction.StageChange) (bool, error) {
	predicate, ok := guardPredicate(guard, change)
	if !ok {
		return false, nil
	}

	set := []string{"stage = $3", "updated_at = NOW()"}
	args := []any{id, from, to}

	if to == stage.Rejected {
		args = append(args, change.Comment, change.ActorID)
		set = append(set, "review_comment = NULLIF($4, '')", "reviewed_by = NULLIF($5, '')")

		if col, err := signer(change.Role); err == nil {
			set = append(set, col+"_accepted = FALSE", col+"_rejection_comment = NULLIF($4, '')")
		}
	}

	query := fmt.Sprintf(`UPDATE transactions SET %s WHERE id = $1 AND stage = $2 AND %s`,
		strings.Join(set, ", "), predicate)

	moved, err := s.exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("advancing stage %s -> %s: %w", from, to, err)
	}

	return moved, nil
}

func (s *Store) ClaimTransaction(ctx context.Context, id uuid.UUID, officialID, walletAddress string) (bool, error) {
	query := `
		UPDATE transactions
		SET assigned_official = $2, assigned_official_wallet = NULLIF($3, ''), stage = $5, updated_at = NOW()
		WHERE id = $1 AND assigned_official IS NULL AND stage = $4
	`

	ok, err := s.exec(ctx, query, id, officialID, walletAddress, stage.Verified, stage.UnderReview)
	if err != nil {
		return false, fmt.Errorf("claiming transaction: %w", err)
	}

	return ok, nil
}

func (s *Store) CommitInitiation(ctx context.Context, id uuid.UUID, r ledger.Receipt) (bool, error) {
	query := `
		UPDATE transactions
		SET initiation_receipt_hash = $2, ledger_transaction_id = $3, stage = $5, updated_at = NOW()
		WHERE id = $1 AND initiation_receipt_hash IS NULL AND stage = $4
	`

	ok, err := s.exec(ctx, query, id, r.Hash, r.LedgerTransactionID, stage.Initiated, stage.AwaitingSignatures)
	if err != nil {
		return false, fmt.Errorf("committing initiation receipt: %w", err)
	}

	return ok, nil
}

func (s *Store) CommitAgentAuthorization(ctx context.Context, id uuid.UUID, r ledger.Receipt) (bool, error) {
	query := `
		UPDATE transactions
		SET agent_authorization_receipt_hash = $2, updated_at = NOW()
		WHERE id = $1 AND agent_authorization_receipt_hash IS NULL AND stage = $3
	`

	ok, err := s.exec(ctx, query, id, r.Hash, stage.UnderReview)
	if err != nil {
		return false, fmt.Errorf("committing agent authorization receipt: %w", err)
	}

	return ok, nil
}

func (s *Store) CommitFinalization(ctx context.Context, id uuid.UUID, r ledger.Receipt) (bool, error) {
	query := `
		UPDATE transactions
		SET ledger_receipt_hash = $2, stage = $4, finalized_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND ledger_receipt_hash IS NULL
		  AND (stage = $3 OR (stage = $5 AND agent_authorization_receipt_hash IS NOT NULL))
	`

	ok, err := s.exec(ctx, query, id, r.Hash, stage.UnderReview, stage.Finalized, stage.Rejected)
	if err != nil {
		return false, fmt.Errorf("committing final receipt: %w", err)
	}

	return ok, nil
}
