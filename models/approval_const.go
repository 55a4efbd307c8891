package models

import "slices"

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

var approvalStatusList = []ApprovalStatus{ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected}

func (s ApprovalStatus) IsValid() bool {
	return slices.Contains(approvalStatusList, s)
}

// IsTerminal approved and rejected have no outgoing transitions
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

type ControlStatus string

const (
	ControlStatusImplemented    ControlStatus = "implemented"
	ControlStatusPartial        ControlStatus = "partial"
	ControlStatusNotImplemented ControlStatus = "not-implemented"
)

var controlStatusList = []ControlStatus{ControlStatusImplemented, ControlStatusPartial, ControlStatusNotImplemented}

func (s ControlStatus) IsValid() bool {
	return slices.Contains(controlStatusList, s)
}

type EvidenceSource string

const (
	EvidenceSourceAutomated EvidenceSource = "automated"
	EvidenceSourceManual    EvidenceSource = "manual"
)

func (s EvidenceSource) IsValid() bool {
	return s == EvidenceSourceAutomated || s == EvidenceSourceManual
}
