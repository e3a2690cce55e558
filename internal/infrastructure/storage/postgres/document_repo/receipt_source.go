package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/domain/receipts"
	"landedcost/internal/infrastructure/storage/postgres"
)

const (
	receiptSourcesTable     = "doc_receipt_sources"
	receiptSourceLinesTable = "doc_receipt_source_lines"
)

// ReceiptSourceRepo implements receipts.SourceStore against the receipt
// document tables maintained by the purchasing flow. This engine only reads
// them.
type ReceiptSourceRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReceiptSourceRepo creates a new receipt source repository.
func NewReceiptSourceRepo(txManager *postgres.TxManager) *ReceiptSourceRepo {
	return &ReceiptSourceRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type receiptSourceHeader struct {
	Kind                    entity.SourceKind `db:"kind"`
	SourceID                id.ID             `db:"source_id"`
	LiabilityAccount        string            `db:"liability_account"`
	ValuationExpenseAccount string            `db:"valuation_expense_account"`
}

type receiptSourceLine struct {
	receipts.SourceLine
	SerialList []string `db:"serial_list"`
}

// Load retrieves one source document with its item lines.
func (r *ReceiptSourceRepo) Load(ctx context.Context, kind entity.SourceKind, sourceID id.ID) (*receipts.SourceDoc, error) {
	querier := r.txManager.GetQuerier(ctx)

	headQ := r.builder.Select(
		"kind", "source_id", "liability_account", "valuation_expense_account",
	).From(receiptSourcesTable).
		Where(squirrel.Eq{"kind": kind, "source_id": sourceID}).
		Limit(1)

	sql, args, err := headQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build header query: %w", err)
	}

	var head receiptSourceHeader
	if err := pgxscan.Get(ctx, querier, &head, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(string(kind), sourceID.String())
		}
		return nil, fmt.Errorf("get source header: %w", err)
	}

	lineQ := r.builder.Select(
		"item_code", "warehouse", "quantity", "amount", "weight",
		"prior_valuation_charges", "serial_list",
	).From(receiptSourceLinesTable).
		Where(squirrel.Eq{"source_id": sourceID}).
		OrderBy("line_no")

	sql, args, err = lineQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}

	var rows []receiptSourceLine
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get source lines: %w", err)
	}

	lines := make([]receipts.SourceLine, 0, len(rows))
	for _, row := range rows {
		line := row.SourceLine
		line.SerialNos = row.SerialList
		lines = append(lines, line)
	}

	return &receipts.SourceDoc{
		Kind:                    head.Kind,
		SourceID:                head.SourceID,
		LiabilityAccount:        head.LiabilityAccount,
		ValuationExpenseAccount: head.ValuationExpenseAccount,
		Lines:                   lines,
	}, nil
}

// Ensure interface compliance.
var _ receipts.SourceStore = (*ReceiptSourceRepo)(nil)
