package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/domain/registers/finance"
	"landedcost/internal/infrastructure/storage/postgres"
)

const glPostingsTable = "reg_gl_postings"

var glPostingColumns = []string{
	"line_id", "voucher_id", "account",
	"debit", "credit",
	"posting_date", "is_reversal", "created_at",
}

// PostingRepo implements finance.Repository.
type PostingRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPostingRepo creates a new financial posting repository.
func NewPostingRepo(txManager *postgres.TxManager) *PostingRepo {
	return &PostingRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// AppendPostings batch inserts posting rows. Inside a transaction the COPY
// protocol is used; posting sets are append-only so there is no upsert path.
func (r *PostingRepo) AppendPostings(ctx context.Context, postings []entity.GLPosting) error {
	if len(postings) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(postings))
		for _, p := range postings {
			rows = append(rows, []any{
				p.LineID, p.VoucherID, p.Account,
				p.Debit, p.Credit,
				p.PostingDate, p.IsReversal, p.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, glPostingsTable, glPostingColumns, rows); err != nil {
			return fmt.Errorf("copy postings: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(glPostingsTable).Columns(glPostingColumns...)
	for _, p := range postings {
		q = q.Values(
			p.LineID, p.VoucherID, p.Account,
			p.Debit, p.Credit,
			p.PostingDate, p.IsReversal, p.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert postings: %w", err)
	}

	return nil
}

// ListByVoucher retrieves all posting rows for a voucher, reversals included.
func (r *PostingRepo) ListByVoucher(ctx context.Context, voucherID id.ID) ([]entity.GLPosting, error) {
	q := r.builder.Select(glPostingColumns...).
		From(glPostingsTable).
		Where(squirrel.Eq{"voucher_id": voucherID}).
		OrderBy("created_at", "line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var postings []entity.GLPosting
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &postings, sql, args...); err != nil {
		return nil, fmt.Errorf("select postings: %w", err)
	}

	return postings, nil
}

// Ensure interface compliance.
var _ finance.Repository = (*PostingRepo)(nil)
