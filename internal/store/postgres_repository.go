/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains the SQL for gift creation, the reconciliation state
 * machine's locked transaction, and the read paths.
 *
 * The reconciliation transaction is the correctness core of the service: the
 * payment row is locked with FOR UPDATE, the terminal-status guard is checked
 * under that lock, and the payment/transaction/event writes commit together.
 * Webhook deliveries and client verify calls for the same payment serialize on
 * the row lock, so whichever caller wins performs the transition and every
 * later caller observes the terminal state and becomes a no-op.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shagunpe/payment-service/internal/domain"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrDuplicateGatewayRef = errors.New("gateway payment id already recorded")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateCashTransaction inserts a completed cash gift and applies the event
// aggregate increments in the same database transaction. The event row is
// locked first so concurrent gifts serialize their additive updates.
func (r *PostgresRepository) CreateCashTransaction(ctx context.Context, params CreateTransactionParams) (*domain.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var creatorID uuid.UUID
	err = tx.QueryRow(ctx,
		"SELECT creator_id FROM events WHERE id = $1 FOR UPDATE",
		params.EventID,
	).Scan(&creatorID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	var gift domain.Transaction
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (event_id, sender_id, receiver_id, amount, type, status, sender_name, address, message)
		VALUES ($1, $2, $3, $4, 'cash', 'completed', $5, $6, $7)
		RETURNING id, event_id, sender_id, receiver_id, amount, type, status, sender_name, address, message, gateway_ref, created_at, updated_at
	`, params.EventID, params.SenderID, creatorID, params.Amount, params.SenderName, params.Address, params.Message).Scan(
		&gift.ID, &gift.EventID, &gift.SenderID, &gift.ReceiverID, &gift.Amount,
		&gift.Type, &gift.Status, &gift.SenderName, &gift.Address, &gift.Message,
		&gift.GatewayRef, &gift.CreatedAt, &gift.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE events
		SET total_amount = total_amount + $1,
		    cash_amount = cash_amount + $1,
		    updated_at = NOW()
		WHERE id = $2
	`, params.Amount, params.EventID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &gift, nil
}

// CreateOnlineTransaction inserts a pending online gift. No event aggregate is
// touched; the credit happens when the payment reconciles to completed.
func (r *PostgresRepository) CreateOnlineTransaction(ctx context.Context, params CreateTransactionParams) (*domain.Transaction, error) {
	var gift domain.Transaction
	err := r.db.QueryRow(ctx, `
		INSERT INTO transactions (event_id, sender_id, receiver_id, amount, type, status, sender_name, address, message)
		SELECT e.id, $2, e.creator_id, $3, 'online', 'pending', $4, $5, $6
		FROM events e
		WHERE e.id = $1
		RETURNING id, event_id, sender_id, receiver_id, amount, type, status, sender_name, address, message, gateway_ref, created_at, updated_at
	`, params.EventID, params.SenderID, params.Amount, params.SenderName, params.Address, params.Message).Scan(
		&gift.ID, &gift.EventID, &gift.SenderID, &gift.ReceiverID, &gift.Amount,
		&gift.Type, &gift.Status, &gift.SenderName, &gift.Address, &gift.Message,
		&gift.GatewayRef, &gift.CreatedAt, &gift.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &gift, nil
}

// CreatePaymentIntent persists the gateway order opened for a pending
// transaction and stamps the gateway reference onto the transaction. The
// unique index on gateway_payment_id guards against a reference ever being
// recorded twice.
func (r *PostgresRepository) CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var payment domain.Payment
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (transaction_id, amount, gateway_payment_id, status, gateway_response)
		VALUES ($1, $2, $3, 'initiated', $4)
		ON CONFLICT (gateway_payment_id) DO NOTHING
		RETURNING id, transaction_id, amount, gateway_payment_id, status, created_at, updated_at
	`, params.TransactionID, params.Amount, params.GatewayPaymentID, params.GatewayResponse).Scan(
		&payment.ID, &payment.TransactionID, &payment.Amount,
		&payment.GatewayPaymentID, &payment.Status, &payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrDuplicateGatewayRef
		}
		return nil, err
	}

	_, err = tx.Exec(ctx,
		"UPDATE transactions SET gateway_ref = $1, updated_at = NOW() WHERE id = $2",
		params.GatewayPaymentID, params.TransactionID,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ReconcilePayment applies one status target to the payment identified by the
// gateway order reference, at most once.
//
// Sequence, all inside a single transaction:
//  1. lock the payment row (FOR UPDATE) joined with its transaction;
//  2. if the payment is already terminal, commit nothing and report
//     AlreadyApplied;
//  3. otherwise write the payment and transaction statuses, and for a
//     completed target also the additive event increments.
//
// The returned error is non-nil only for infrastructure failures; NotFound and
// AlreadyApplied are outcomes, not errors, so callers can acknowledge them.
func (r *PostgresRepository) ReconcilePayment(ctx context.Context, gatewayPaymentID string, target StatusTarget, rawEvidence []byte) (*domain.ReconcileResult, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin reconcile tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		paymentID     uuid.UUID
		paymentStatus string
		transactionID uuid.UUID
		eventID       uuid.UUID
		amount        int64
		senderName    string
	)
	err = tx.QueryRow(ctx, `
		SELECT p.id, p.status, t.id, t.event_id, t.amount, t.sender_name
		FROM payments p
		INNER JOIN transactions t ON p.transaction_id = t.id
		WHERE p.gateway_payment_id = $1
		FOR UPDATE OF p
	`, gatewayPaymentID).Scan(&paymentID, &paymentStatus, &transactionID, &eventID, &amount, &senderName)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &domain.ReconcileResult{Outcome: domain.OutcomeNotFound}, nil
		}
		return nil, fmt.Errorf("lock payment %s: %w", gatewayPaymentID, err)
	}

	result := &domain.ReconcileResult{
		PaymentID:         paymentID,
		TransactionID:     transactionID,
		EventID:           eventID,
		Amount:            amount,
		SenderName:        senderName,
		PaymentStatus:     target.Payment,
		TransactionStatus: target.Transaction,
	}

	// Terminal-status guard: the primary defense against double-crediting.
	if paymentStatus == domain.PaymentStatusCompleted || paymentStatus == domain.PaymentStatusFailed {
		result.Outcome = domain.OutcomeAlreadyApplied
		result.PaymentStatus = paymentStatus
		result.TransactionStatus = ""
		return result, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE payments
		SET status = $1, gateway_response = $2, updated_at = NOW()
		WHERE id = $3
	`, target.Payment, rawEvidence, paymentID)
	if err != nil {
		return nil, fmt.Errorf("update payment %s: %w", paymentID, err)
	}

	_, err = tx.Exec(ctx,
		"UPDATE transactions SET status = $1, updated_at = NOW() WHERE id = $2",
		target.Transaction, transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("update transaction %s: %w", transactionID, err)
	}

	if target.Completed() {
		_, err = tx.Exec(ctx, `
			UPDATE events
			SET total_amount = total_amount + $1,
			    online_amount = online_amount + $1,
			    updated_at = NOW()
			WHERE id = $2
		`, amount, eventID)
		if err != nil {
			return nil, fmt.Errorf("credit event %s: %w", eventID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reconcile: %w", err)
	}

	result.Outcome = domain.OutcomeApplied
	return result, nil
}

// FindPaymentByGatewayID returns the payment recorded for a gateway order reference.
func (r *PostgresRepository) FindPaymentByGatewayID(ctx context.Context, gatewayPaymentID string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.QueryRow(ctx, `
		SELECT id, transaction_id, amount, gateway_payment_id, status, created_at, updated_at
		FROM payments
		WHERE gateway_payment_id = $1
	`, gatewayPaymentID).Scan(
		&payment.ID, &payment.TransactionID, &payment.Amount,
		&payment.GatewayPaymentID, &payment.Status, &payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindTransactionByID returns a gift visible to the given user (as sender or receiver).
func (r *PostgresRepository) FindTransactionByID(ctx context.Context, transactionID uuid.UUID, userID uuid.UUID) (*domain.Transaction, error) {
	var gift domain.Transaction
	err := r.db.QueryRow(ctx, `
		SELECT id, event_id, sender_id, receiver_id, amount, type, status, sender_name, address, message, gateway_ref, created_at, updated_at
		FROM transactions
		WHERE id = $1 AND (sender_id = $2 OR receiver_id = $2)
	`, transactionID, userID).Scan(
		&gift.ID, &gift.EventID, &gift.SenderID, &gift.ReceiverID, &gift.Amount,
		&gift.Type, &gift.Status, &gift.SenderName, &gift.Address, &gift.Message,
		&gift.GatewayRef, &gift.CreatedAt, &gift.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &gift, nil
}

// GetEventSummary reads the event's running totals. The counters are
// maintained additively on the write paths, never recomputed here.
func (r *PostgresRepository) GetEventSummary(ctx context.Context, eventID uuid.UUID) (*domain.EventSummary, error) {
	var summary domain.EventSummary
	err := r.db.QueryRow(ctx, `
		SELECT id, event_name, total_amount, online_amount, cash_amount, updated_at
		FROM events
		WHERE id = $1
	`, eventID).Scan(
		&summary.EventID, &summary.EventName, &summary.TotalAmount,
		&summary.OnlineAmount, &summary.CashAmount, &summary.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &summary, nil
}
