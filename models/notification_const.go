package models

type NotificationCode string

const (
	NotifyApprovalPending  NotificationCode = "APPROVAL_PENDING"
	NotifyApprovalRejected NotificationCode = "APPROVAL_REJECTED"
	NotifyApprovalOverdue  NotificationCode = "APPROVAL_OVERDUE"
)
