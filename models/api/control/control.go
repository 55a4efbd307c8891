package controlapimodels

import (
	"fmt"
	"grc-backend/models"
	dbmodels "grc-backend/models/db"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var severityList = []string{"critical", "high", "medium", "low"}

type ControlData struct {
	OriginalCode           string `json:"original_code"`  // code in the source framework, e.g. CIS 1.1
	FrameworkCode          string `json:"framework_code"` // ISO27001, NIST_CSF, CIS
	Title                  string `json:"title"`
	Description            string `json:"description"`
	Severity               string `json:"severity"` // critical/high/medium/low
	Category               string `json:"category"`
	ImplementationGuidance string `json:"implementation_guidance"`
}

func (c ControlData) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("title is required")
	}
	if c.Severity != "" {
		for _, severity := range severityList {
			if strings.ToLower(c.Severity) == severity {
				return nil
			}
		}
		return errors.Errorf("invalid severity: %v", c.Severity)
	}
	return nil
}

type ControlFilter struct {
	FrameworkCode string `query:"framework"`
	Severity      string `query:"severity"`
}

type ControlView struct {
	ControlData
	ID                   string               `json:"id"`
	InternalCode         string               `json:"internal_code"`
	ImplementationStatus models.ControlStatus `json:"implementation_status"`
	StatusUpdatedAt      *time.Time           `json:"status_updated_at"`
	IsActive             bool                 `json:"is_active"`
}

func ControlConvert(rec dbmodels.Control) ControlView {
	return ControlView{
		ControlData: ControlData{
			OriginalCode:           rec.OriginalCode,
			FrameworkCode:          rec.FrameworkCode,
			Title:                  rec.Title,
			Description:            rec.Description,
			Severity:               rec.Severity,
			Category:               rec.Category,
			ImplementationGuidance: rec.ImplementationGuidance,
		},
		ID:                   rec.ID,
		InternalCode:         rec.InternalCode,
		ImplementationStatus: rec.ImplementationStatus,
		StatusUpdatedAt:      rec.StatusUpdatedAt,
		IsActive:             rec.IsActive,
	}
}

// InternalCode BR-001, BR-002, ...
func InternalCode(sequence int64) string {
	return fmt.Sprintf("BR-%03d", sequence)
}

var mappingTypeList = []string{"equivalent", "related", "parent", "child"}

type MappingData struct {
	TargetControlID string   `json:"target_control_id"`
	MappingType     string   `json:"mapping_type"`     // equivalent/related/parent/child
	ConfidenceScore *float64 `json:"confidence_score"` // 0-1
}

func (v MappingData) Validate() error {
	if v.TargetControlID == "" {
		return errors.New("target_control_id is required")
	}
	if v.ConfidenceScore != nil && (*v.ConfidenceScore < 0 || *v.ConfidenceScore > 1) {
		return errors.New("confidence_score must be between 0 and 1")
	}
	for _, mappingType := range mappingTypeList {
		if strings.ToLower(v.MappingType) == mappingType {
			return nil
		}
	}
	return errors.Errorf("invalid mapping_type: %v", v.MappingType)
}

type MappedControl struct {
	ID            string `json:"id"`
	InternalCode  string `json:"internal_code"`
	FrameworkCode string `json:"framework_code"`
	Title         string `json:"title"`
}

type MappingView struct {
	ID              string        `json:"id"`
	Source          MappedControl `json:"source"`
	Target          MappedControl `json:"target"`
	MappingType     string        `json:"mapping_type"`
	ConfidenceScore *float64      `json:"confidence_score"`
	CreatedAt       time.Time     `json:"created_at"`
}

func MappingConvert(rec dbmodels.ControlMapping) MappingView {
	return MappingView{
		ID:              rec.ID,
		Source:          mappedControl(rec.SourceControlID, rec.SourceControl),
		Target:          mappedControl(rec.TargetControlID, rec.TargetControl),
		MappingType:     rec.MappingType,
		ConfidenceScore: rec.ConfidenceScore,
		CreatedAt:       rec.CreatedAt,
	}
}

func mappedControl(id string, rec *dbmodels.Control) MappedControl {
	if rec == nil {
		return MappedControl{ID: id}
	}
	return MappedControl{
		ID:            rec.ID,
		InternalCode:  rec.InternalCode,
		FrameworkCode: rec.FrameworkCode,
		Title:         rec.Title,
	}
}
