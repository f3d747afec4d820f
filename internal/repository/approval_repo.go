package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/klm-wiki-api/internal/database"
	"github.com/klm-wiki-api/internal/models"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const approvalColumns = "id, campaign_name, adset_name, ad_name, offer_id, country, revenue, sub_id, created_at"

// approvalRepo is the concrete implementation of ApprovalRepository
type approvalRepo struct {
	db *database.DB
}

// NewApprovalRepo creates a new approval repository
func NewApprovalRepo(db *database.DB) ApprovalRepository {
	return &approvalRepo{db: db}
}

// approvalWhere turns a filter into a WHERE clause; each bound applies on its own
func approvalWhere(filter models.ApprovalFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if filter.From != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, filter.To.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of approvals, newest first, and the filtered total
func (r *approvalRepo) List(ctx context.Context, q models.ApprovalQuery) ([]models.Approval, int, error) {
	where, args := approvalWhere(q.ApprovalFilter)

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) FROM approvals"+where), args...); err != nil {
		return nil, 0, errors.Wrap(err, "count approvals")
	}

	approvals := []models.Approval{}
	query := r.db.Rebind("SELECT " + approvalColumns + " FROM approvals" + where + " ORDER BY created_at DESC, id LIMIT ? OFFSET ?")
	if err := r.db.SelectContext(ctx, &approvals, query, append(args, q.Limit, q.Offset())...); err != nil {
		return nil, 0, errors.Wrap(err, "list approvals")
	}

	return approvals, total, nil
}

// BatchInsert inserts approvals in one transaction. lib/pq connections use
// COPY; other drivers reuse a prepared INSERT.
func (r *approvalRepo) BatchInsert(ctx context.Context, approvals []*models.Approval) (int, error) {
	if len(approvals) == 0 {
		return 0, nil
	}

	inserted := 0
	err := r.db.InTx(ctx, func(tx *sqlx.Tx) error {
		var (
			stmt *sqlx.Stmt
			err  error
		)
		useCopy := r.db.DriverName() == "postgres"
		if useCopy {
			stmt, err = tx.PreparexContext(ctx, pq.CopyIn("approvals",
				"id", "campaign_name", "adset_name", "ad_name", "offer_id", "country", "revenue", "sub_id", "created_at",
			))
		} else {
			stmt, err = tx.PreparexContext(ctx, tx.Rebind(
				"INSERT INTO approvals ("+approvalColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			))
		}
		if err != nil {
			return errors.Wrap(err, "prepare approvals insert")
		}
		defer stmt.Close()

		for _, a := range approvals {
			_, err := stmt.ExecContext(ctx,
				a.ID, a.CampaignName, a.AdsetName, a.AdName, a.OfferID,
				a.Country, a.Revenue, a.SubID, a.CreatedAt.UTC(),
			)
			if err != nil {
				return errors.Wrap(err, "insert approval")
			}
			inserted++
		}

		if useCopy {
			// an empty Exec flushes the COPY buffer
			if _, err := stmt.ExecContext(ctx); err != nil {
				return errors.Wrap(err, "flush approvals copy")
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// DeleteBetween removes approvals with created_at in [from, to]
func (r *approvalRepo) DeleteBetween(ctx context.Context, from, to time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind("DELETE FROM approvals WHERE created_at >= ? AND created_at <= ?"),
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return 0, errors.Wrap(err, "delete approvals")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "rows affected")
}

// StreamAll streams approvals oldest first for export
func (r *approvalRepo) StreamAll(ctx context.Context, filter models.ApprovalFilter, callback func(*models.Approval) error) error {
	where, args := approvalWhere(filter)
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind("SELECT "+approvalColumns+" FROM approvals"+where+" ORDER BY created_at, id"), args...)
	if err != nil {
		return errors.Wrap(err, "stream approvals")
	}
	defer rows.Close()

	for rows.Next() {
		var approval models.Approval
		if err := rows.StructScan(&approval); err != nil {
			return errors.Wrap(err, "scan approval")
		}
		if err := callback(&approval); err != nil {
			return err
		}
	}

	return rows.Err()
}

// Count returns the total number of approvals
func (r *approvalRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "approvals")
}
