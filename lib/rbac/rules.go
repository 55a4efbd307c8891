package rbac

import (
	"grc-backend/models"
)

var (
	AllRoles             = []models.UserRole{models.AdminRole, models.CisoRole, models.ComplianceManagerRole, models.AuditorRole, models.ViewerRole}
	ApproverRoleSet      = []models.UserRole{models.AdminRole, models.CisoRole, models.ComplianceManagerRole}
	RequesterRoleSet     = []models.UserRole{models.AdminRole, models.ComplianceManagerRole}
	ReportRoleSet        = []models.UserRole{models.AdminRole, models.CisoRole, models.ComplianceManagerRole, models.AuditorRole}
	ControlEditorRoleSet = []models.UserRole{models.AdminRole, models.ComplianceManagerRole}
)

func (i *impl) initRules() {
	i.approvalRbac()
	i.controlRbac()
	i.frameworkRbac()
	i.policyRbac()
	i.evidenceRbac()
	i.notificationRbac()
}

func (i *impl) approvalRbac() {
	// VIEW
	i.RegisterRule(models.ApprovalModule, models.ViewPermission, AllRoles, "/api/v1/approvals [get]", nil)
	i.RegisterRule(models.ApprovalModule, models.ViewPermission, AllRoles, "/api/v1/approvals/{id} [get]", nil)
	i.RegisterRule(models.ApprovalModule, models.ViewPermission, AllRoles, "/api/v1/approvals/{id}/history [get]", nil)
	// CREATE
	i.RegisterRule(models.ApprovalModule, models.CreatePermission, RequesterRoleSet, "/api/v1/approvals [post]", nil)
	// FLOW
	i.RegisterRule(models.ApprovalModule, models.FlowPermission, ApproverRoleSet, "/api/v1/approvals/{id}/approve [post]", nil)
	i.RegisterRule(models.ApprovalModule, models.FlowPermission, ApproverRoleSet, "/api/v1/approvals/{id}/reject [post]", nil)
	// EXPORT
	i.RegisterRule(models.ApprovalModule, models.ExportPermission, ReportRoleSet, "/api/v1/approvals/export [get]", nil)
	i.RegisterRule(models.ApprovalModule, models.ExportPermission, ReportRoleSet, "/api/v1/approvals/{id}/history/pdf [get]", nil)
}

func (i *impl) controlRbac() {
	// VIEW
	i.RegisterRule(models.ControlModule, models.ViewPermission, AllRoles, "/api/v1/controls [get]", nil)
	i.RegisterRule(models.ControlModule, models.ViewPermission, AllRoles, "/api/v1/controls/{id} [get]", nil)
	i.RegisterRule(models.ControlModule, models.ViewPermission, AllRoles, "/api/v1/controls/{id}/mappings [get]", nil)
	// CREATE/EDIT
	i.RegisterRule(models.ControlModule, models.CreatePermission, ControlEditorRoleSet, "/api/v1/controls [post]", nil)
	i.RegisterRule(models.ControlModule, models.EditPermission, ControlEditorRoleSet, "/api/v1/controls/{id} [delete]", nil)
	i.RegisterRule(models.ControlModule, models.EditPermission, ControlEditorRoleSet, "/api/v1/controls/{id}/mappings [post]", nil)
	i.RegisterRule(models.ControlModule, models.EditPermission, ControlEditorRoleSet, "/api/v1/controls/{id}/mappings/{mappingId} [delete]", nil)
}

func (i *impl) frameworkRbac() {
	// VIEW
	i.RegisterRule(models.FrameworkModule, models.ViewPermission, AllRoles, "/api/v1/frameworks [get]", nil)
	i.RegisterRule(models.FrameworkModule, models.ViewPermission, AllRoles, "/api/v1/frameworks/{code} [get]", nil)
	// CREATE/EDIT
	i.RegisterRule(models.FrameworkModule, models.CreatePermission, ControlEditorRoleSet, "/api/v1/frameworks [post]", nil)
	i.RegisterRule(models.FrameworkModule, models.EditPermission, ControlEditorRoleSet, "/api/v1/frameworks/{code} [put]", nil)
	i.RegisterRule(models.FrameworkModule, models.EditPermission, ControlEditorRoleSet, "/api/v1/frameworks/{code} [delete]", nil)
}

func (i *impl) policyRbac() {
	// VIEW
	i.RegisterRule(models.PolicyModule, models.ViewPermission, AllRoles, "/api/v1/policies [get]", nil)
	i.RegisterRule(models.PolicyModule, models.ViewPermission, AllRoles, "/api/v1/policies/{id} [get]", nil)
	i.RegisterRule(models.PolicyModule, models.ViewPermission, AllRoles, "/api/v1/policies/{id}/controls [get]", nil)
	// CREATE/EDIT
	i.RegisterRule(models.PolicyModule, models.CreatePermission, ControlEditorRoleSet, "/api/v1/policies [post]", nil)
	i.RegisterRule(models.PolicyModule, models.EditPermission, ControlEditorRoleSet, "/api/v1/policies/{id} [put]", nil)
	i.RegisterRule(models.PolicyModule, models.EditPermission, ControlEditorRoleSet, "/api/v1/policies/{id} [delete]", nil)
	i.RegisterRule(models.PolicyModule, models.EditPermission, ControlEditorRoleSet, "/api/v1/policies/link [post]", nil)
	i.RegisterRule(models.PolicyModule, models.EditPermission, ControlEditorRoleSet, "/api/v1/policies/link/{policyId}/{controlId} [delete]", nil)
}

func (i *impl) evidenceRbac() {
	// VIEW
	i.RegisterRule(models.EvidenceModule, models.ViewPermission, AllRoles, "/api/v1/evidence [get]", nil)
	i.RegisterRule(models.EvidenceModule, models.ViewPermission, ReportRoleSet, "/api/v1/evidence/{id}/download [get]", nil)
	i.RegisterRule(models.EvidenceModule, models.ViewPermission, ReportRoleSet, "/api/v1/evidence/{id}/verify [get]", nil)
	// FILES
	i.RegisterRule(models.EvidenceModule, models.FilesPermission, ControlEditorRoleSet, "/api/v1/evidence/upload [post]", nil)
}

func (i *impl) notificationRbac() {
	i.RegisterRule(models.NotificationModule, models.ViewPermission, AllRoles, "/api/v1/notifications [get]", nil)
	i.RegisterRule(models.NotificationModule, models.ViewPermission, AllRoles, "/api/v1/profile [get]", nil)
}
