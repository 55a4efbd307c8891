package models

type UserRole string

const (
	AdminRole             UserRole = "admin"
	CisoRole              UserRole = "ciso"
	ComplianceManagerRole UserRole = "compliance-manager"
	AuditorRole           UserRole = "auditor"
	ViewerRole            UserRole = "viewer"
)

var roleHumanName = map[UserRole]string{
	AdminRole:             "Administrator",
	CisoRole:              "CISO",
	ComplianceManagerRole: "Compliance manager",
	AuditorRole:           "Auditor",
	ViewerRole:            "Viewer",
}

func (r UserRole) ToHuman() string {
	if human, exist := roleHumanName[r]; exist {
		return human
	}
	return string(r)
}

func (r UserRole) IsAdmin() bool {
	return r == AdminRole
}

const SystemUser = "system"
