package evidenceapimodels

import (
	"grc-backend/models"
	dbmodels "grc-backend/models/db"
	"time"
)

type UploadData struct {
	ControlID        string `form:"control_id"`
	CompliancePeriod string `form:"compliance_period"` // e.g. 2024-Q1
	Notes            string `form:"notes"`
}

type EvidenceFilter struct {
	ControlID string `query:"control_id"`
	Source    string `query:"source"` // automated/manual, anything else is ignored
}

func (f EvidenceFilter) GetSource() models.EvidenceSource {
	source := models.EvidenceSource(f.Source)
	if source.IsValid() {
		return source
	}
	return ""
}

type EvidenceView struct {
	ID               string                `json:"id"`
	ControlID        string                `json:"control_id"`
	FileName         string                `json:"file_name"`
	FileHash         string                `json:"file_hash"`
	FileType         string                `json:"file_type"`
	FileSize         int64                 `json:"file_size"`
	Source           models.EvidenceSource `json:"source"`
	UploadedBy       *string               `json:"uploaded_by"`
	UploadedDate     time.Time             `json:"uploaded_date"`
	CompliancePeriod string                `json:"compliance_period"`
	Notes            string                `json:"notes"`
}

func EvidenceConvert(rec dbmodels.EvidenceFile) EvidenceView {
	return EvidenceView{
		ID:               rec.ID,
		ControlID:        rec.ControlID,
		FileName:         rec.FileName,
		FileHash:         rec.FileHash,
		FileType:         rec.FileType,
		FileSize:         rec.FileSize,
		Source:           rec.Source,
		UploadedBy:       rec.UploadedBy,
		UploadedDate:     rec.UploadedDate,
		CompliancePeriod: rec.CompliancePeriod,
		Notes:            rec.Notes,
	}
}

type DownloadView struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

type VerifyView struct {
	ID           string `json:"id"`
	Valid        bool   `json:"valid"`
	ExpectedHash string `json:"expected_hash"`
	ActualHash   string `json:"actual_hash"`
}
