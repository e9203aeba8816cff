package ledger

import (
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
)

// WriteStage names a step of the atomic record workflow
type WriteStage string

const (
	StageHeader     WriteStage = "header"
	StageStock      WriteStage = "stock"
	StageObligation WriteStage = "obligation"
)

// Stage errors. Each is matched with errors.Is against a *WriteFailedError.
var (
	ErrHeaderWriteFailed     = shared.NewDomainError("HEADER_WRITE_FAILED", "Failed to write transaction header")
	ErrStockAdjustFailed     = shared.NewDomainError("STOCK_ADJUST_FAILED", "Failed to adjust product stock")
	ErrObligationWriteFailed = shared.NewDomainError("OBLIGATION_WRITE_FAILED", "Failed to write obligation")
)

func (s WriteStage) sentinel() *shared.DomainError {
	switch s {
	case StageStock:
		return ErrStockAdjustFailed
	case StageObligation:
		return ErrObligationWriteFailed
	default:
		return ErrHeaderWriteFailed
	}
}

// WriteFailedError reports a storage failure during one stage of recording a
// transaction. Nothing from the failed attempt is persisted, so the whole
// operation may be retried from scratch.
type WriteFailedError struct {
	Stage WriteStage
	Err   error
}

// NewWriteFailedError wraps err as a failure of the given stage
func NewWriteFailedError(stage WriteStage, err error) *WriteFailedError {
	return &WriteFailedError{Stage: stage, Err: err}
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("ledger write failed at %s stage: %v", e.Stage, e.Err)
}

// Unwrap exposes both the stage sentinel and the storage cause
func (e *WriteFailedError) Unwrap() []error {
	return []error{e.Stage.sentinel(), e.Err}
}
