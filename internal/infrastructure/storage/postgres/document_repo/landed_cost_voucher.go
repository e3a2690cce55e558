// Package document_repo provides PostgreSQL implementations for document
// repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/id"
	"landedcost/internal/domain"
	"landedcost/internal/domain/allocation"
	lcv "landedcost/internal/domain/documents/landed_cost_voucher"
	"landedcost/internal/domain/receipts"
	"landedcost/internal/infrastructure/storage/postgres"
)

const (
	vouchersTable        = "doc_landed_cost_vouchers"
	voucherReceiptsTable = "doc_landed_cost_voucher_receipts"
	voucherChargesTable  = "doc_landed_cost_voucher_charges"
	allocatedItemsTable  = "doc_landed_cost_allocated_items"
)

var voucherColumns = []string{
	"id", "version",
	"created_at", "updated_at", "created_by", "updated_by",
	"number", "date", "status", "company", "comment",
	"basis", "total_charges",
}

// VoucherRepo implements landed_cost_voucher.Repository.
type VoucherRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewVoucherRepo creates a new voucher repository.
func NewVoucherRepo(txManager *postgres.TxManager) *VoucherRepo {
	return &VoucherRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the voucher header.
func (r *VoucherRepo) Create(ctx context.Context, doc *lcv.LandedCostVoucher) error {
	q := r.builder.Insert(vouchersTable).
		Columns(voucherColumns...).
		Values(
			doc.ID, doc.Version,
			doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
			doc.Number, doc.Date, doc.Status, doc.Company, doc.Comment,
			doc.Basis, doc.TotalCharges,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert voucher: %w", err)
	}

	return nil
}

// GetByID retrieves the voucher header.
func (r *VoucherRepo) GetByID(ctx context.Context, docID id.ID) (*lcv.LandedCostVoucher, error) {
	return r.getOne(ctx, squirrel.Eq{"id": docID}, docID.String())
}

// GetByNumber retrieves the voucher header by document number.
func (r *VoucherRepo) GetByNumber(ctx context.Context, number string) (*lcv.LandedCostVoucher, error) {
	return r.getOne(ctx, squirrel.Eq{"number": number}, number)
}

func (r *VoucherRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*lcv.LandedCostVoucher, error) {
	q := r.builder.Select(voucherColumns...).
		From(vouchersTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc lcv.LandedCostVoucher
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("landed cost voucher", key)
		}
		return nil, fmt.Errorf("get voucher: %w", err)
	}

	return &doc, nil
}

// Update writes the voucher header with optimistic locking on version.
func (r *VoucherRepo) Update(ctx context.Context, doc *lcv.LandedCostVoucher) error {
	q := r.builder.Update(vouchersTable).
		Set("version", doc.Version).
		Set("updated_at", doc.UpdatedAt).
		Set("updated_by", doc.UpdatedBy).
		Set("number", doc.Number).
		Set("date", doc.Date).
		Set("status", doc.Status).
		Set("comment", doc.Comment).
		Set("basis", doc.Basis).
		Set("total_charges", doc.TotalCharges).
		Where(squirrel.Eq{"id": doc.ID}).
		Where(squirrel.Lt{"version": doc.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update voucher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("landed cost voucher", doc.ID.String()).
			WithDetail("reason", "missing or stale version")
	}

	return nil
}

// Delete removes a voucher with its lines. Only drafts reach this point; the
// service refuses deletes past submission.
func (r *VoucherRepo) Delete(ctx context.Context, docID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	for _, table := range []string{allocatedItemsTable, voucherChargesTable, voucherReceiptsTable} {
		if _, err := querier.Exec(ctx, "DELETE FROM "+table+" WHERE document_id = $1", docID); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}

	tag, err := querier.Exec(ctx, "DELETE FROM "+vouchersTable+" WHERE id = $1", docID)
	if err != nil {
		return fmt.Errorf("delete voucher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("landed cost voucher", docID.String())
	}

	return nil
}

// GetLines retrieves receipt references and charge lines.
func (r *VoucherRepo) GetLines(ctx context.Context, docID id.ID) ([]receipts.Reference, []lcv.ChargeLine, error) {
	querier := r.txManager.GetQuerier(ctx)

	refQ := r.builder.Select(
		"line_id", "kind", "source_id", "supplier", "posting_date", "grand_total",
	).From(voucherReceiptsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := refQ.ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build receipts query: %w", err)
	}

	var refs []receipts.Reference
	if err := pgxscan.Select(ctx, querier, &refs, sql, args...); err != nil {
		return nil, nil, fmt.Errorf("get receipt references: %w", err)
	}

	chargeQ := r.builder.Select(
		"line_id", "line_no", "description", "account", "amount",
	).From(voucherChargesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err = chargeQ.ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build charges query: %w", err)
	}

	var charges []lcv.ChargeLine
	if err := pgxscan.Select(ctx, querier, &charges, sql, args...); err != nil {
		return nil, nil, fmt.Errorf("get charge lines: %w", err)
	}

	return refs, charges, nil
}

// SaveLines replaces both table parts (delete existing + insert new).
func (r *VoucherRepo) SaveLines(ctx context.Context, docID id.ID, refs []receipts.Reference, charges []lcv.ChargeLine) error {
	querier := r.txManager.GetQuerier(ctx)

	for _, table := range []string{voucherReceiptsTable, voucherChargesTable} {
		if _, err := querier.Exec(ctx, "DELETE FROM "+table+" WHERE document_id = $1", docID); err != nil {
			return fmt.Errorf("delete existing lines: %w", err)
		}
	}

	if len(refs) > 0 {
		q := r.builder.Insert(voucherReceiptsTable).Columns(
			"line_id", "document_id", "line_no",
			"kind", "source_id", "supplier", "posting_date", "grand_total",
		)
		for i, ref := range refs {
			q = q.Values(
				ref.LineID, docID, i+1,
				ref.Kind, ref.SourceID, ref.Supplier, ref.PostingDate, ref.GrandTotal,
			)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert receipts: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert receipt references: %w", err)
		}
	}

	if len(charges) > 0 {
		q := r.builder.Insert(voucherChargesTable).Columns(
			"line_id", "document_id", "line_no", "description", "account", "amount",
		)
		for _, c := range charges {
			q = q.Values(c.LineID, docID, c.LineNo, c.Description, c.Account, c.Amount)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert charges: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert charge lines: %w", err)
		}
	}

	return nil
}

// GetAllocatedItems retrieves the stored allocation rows.
func (r *VoucherRepo) GetAllocatedItems(ctx context.Context, docID id.ID) ([]allocation.AllocatedItem, error) {
	q := r.builder.Select(
		"line_id", "line_no", "source_kind", "source_id",
		"item_code", "warehouse",
		"quantity", "basis_value", "allocated_charge", "per_unit_delta",
	).From(allocatedItemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []allocation.AllocatedItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get allocated items: %w", err)
	}

	return items, nil
}

// SaveAllocatedItems writes the allocation rows produced by submission.
// Uses COPY when inside a transaction, which submission always is.
func (r *VoucherRepo) SaveAllocatedItems(ctx context.Context, docID id.ID, items []allocation.AllocatedItem) error {
	querier := r.txManager.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, "DELETE FROM "+allocatedItemsTable+" WHERE document_id = $1", docID); err != nil {
		return fmt.Errorf("delete existing allocations: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	columns := []string{
		"line_id", "document_id", "line_no", "source_kind", "source_id",
		"item_code", "warehouse",
		"quantity", "basis_value", "allocated_charge", "per_unit_delta",
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(items))
		for _, item := range items {
			rows = append(rows, []any{
				item.LineID, docID, item.LineNo, item.SourceKind, item.SourceID,
				item.ItemCode, item.Warehouse,
				item.Quantity, item.BasisValue, item.AllocatedCharge, item.PerUnitDelta,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, allocatedItemsTable, columns, rows); err != nil {
			return fmt.Errorf("copy allocated items: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(allocatedItemsTable).Columns(columns...)
	for _, item := range items {
		q = q.Values(
			item.LineID, docID, item.LineNo, item.SourceKind, item.SourceID,
			item.ItemCode, item.Warehouse,
			item.Quantity, item.BasisValue, item.AllocatedCharge, item.PerUnitDelta,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert allocated items: %w", err)
	}

	return nil
}

// List retrieves vouchers with filtering.
func (r *VoucherRepo) List(ctx context.Context, filter lcv.ListFilter) (domain.ListResult[*lcv.LandedCostVoucher], error) {
	result := domain.ListResult[*lcv.LandedCostVoucher]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder.Select(voucherColumns...).From(vouchersTable)

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.Supplier != nil {
		q = q.Where(squirrel.Expr(
			"id IN (SELECT document_id FROM "+voucherReceiptsTable+" WHERE supplier = ?)",
			*filter.Supplier,
		))
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := "date DESC"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}

// Ensure interface compliance.
var _ lcv.Repository = (*VoucherRepo)(nil)
