package entity

import (
	"context"
	"time"

	"landedcost/internal/core/apperror"
)

// DocStatus is the lifecycle state of a posting document.
// The only legal transitions are Draft -> Submitted -> Cancelled.
type DocStatus string

const (
	StatusDraft     DocStatus = "draft"
	StatusSubmitted DocStatus = "submitted"
	StatusCancelled DocStatus = "cancelled"
)

// Document is the base type for business documents that post to ledgers.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the posting date of the document
	Date time.Time `db:"date" json:"date"`

	// Status tracks the document lifecycle. Ledgers mutate only on the
	// Draft -> Submitted transition and its reversal.
	Status DocStatus `db:"status" json:"status"`

	// Company is the owning company
	Company string `db:"company" json:"company"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Draft document with generated ID.
func NewDocument(company string) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		Status:       StatusDraft,
		Company:      company,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Company == "" {
		return apperror.NewValidation("company is required").
			WithDetail("field", "company")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// CanModify checks if the document can be modified.
// Only Draft documents are mutable; Submitted ones are immutable except for
// the Cancelled transition.
func (d *Document) CanModify() error {
	if d.Status != StatusDraft {
		return apperror.NewInvalidStateTransition(string(d.Status), string(StatusDraft)).
			WithDetail("document_id", d.ID.String())
	}
	return nil
}

// MarkSubmitted transitions Draft -> Submitted.
func (d *Document) MarkSubmitted() error {
	if d.Status != StatusDraft {
		return apperror.NewInvalidStateTransition(string(d.Status), string(StatusSubmitted)).
			WithDetail("document_id", d.ID.String())
	}
	d.Status = StatusSubmitted
	d.Touch()
	return nil
}

// MarkCancelled transitions Submitted -> Cancelled.
// There is no transition out of Cancelled.
func (d *Document) MarkCancelled() error {
	if d.Status != StatusSubmitted {
		return apperror.NewInvalidStateTransition(string(d.Status), string(StatusCancelled)).
			WithDetail("document_id", d.ID.String())
	}
	d.Status = StatusCancelled
	d.Touch()
	return nil
}

// IsSubmitted reports whether the document has posted to ledgers.
func (d *Document) IsSubmitted() bool {
	return d.Status == StatusSubmitted
}
