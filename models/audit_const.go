package models

type AuditEventType string

const (
	AuditApprovalRequested AuditEventType = "approval_requested"
	AuditApprovalDecision  AuditEventType = "approval_decision"
	AuditControlUpdate     AuditEventType = "control_update"
	AuditEvidenceUpload    AuditEventType = "evidence_upload"
	AuditFrameworkUpdate   AuditEventType = "framework_update"
	AuditPolicyUpdate      AuditEventType = "policy_update"
)

const (
	AuditResourceApproval  = "approval"
	AuditResourceControl   = "control"
	AuditResourceEvidence  = "evidence"
	AuditResourceFramework = "framework"
	AuditResourcePolicy    = "policy"
)
