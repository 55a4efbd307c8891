package approvalrequest

import (
	approvalrequeststore "grc-backend/lib/approval-request/store"
	workflowstepstore "grc-backend/lib/approval-request/workflow-step-store"

	"gorm.io/gorm"
)

// TxRunner runs fn with stores bound to a single database transaction.
// An error returned from fn rolls the transaction back.
type TxRunner interface {
	InTx(fn func(requests approvalrequeststore.Provider, steps workflowstepstore.Provider) error) error
}

func NewTxRunner(DB *gorm.DB) TxRunner {
	return txRunner{db: DB}
}

type txRunner struct {
	db *gorm.DB
}

func (r txRunner) InTx(fn func(requests approvalrequeststore.Provider, steps workflowstepstore.Provider) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(approvalrequeststore.NewInstance(tx), workflowstepstore.NewInstance(tx))
	})
}
