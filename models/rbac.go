package models

type RbacFunc func(orgID, userID string, role UserRole, path string) bool

type Module string

const (
	ApprovalModule     Module = "APPROVAL"
	ControlModule      Module = "CONTROL"
	EvidenceModule     Module = "EVIDENCE"
	NotificationModule Module = "NOTIFICATION"
	FrameworkModule    Module = "FRAMEWORK"
	PolicyModule       Module = "POLICY"
)

type Permission string

const (
	CreatePermission Permission = "CREATE"
	EditPermission   Permission = "EDIT"
	ViewPermission   Permission = "VIEW"
	FlowPermission   Permission = "FLOW"
	ExportPermission Permission = "EXPORT"
	FilesPermission  Permission = "FILES"
)
