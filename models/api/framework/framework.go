package frameworkapimodels

import (
	dbmodels "grc-backend/models/db"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

type FrameworkData struct {
	Code          string     `json:"code"` // ISO27001, NIST_CSF, CIS
	Name          string     `json:"name"`
	Version       string     `json:"version"`
	Region        string     `json:"region"`
	Description   string     `json:"description"`
	EffectiveDate *time.Time `json:"effective_date"`
	IsCustom      bool       `json:"is_custom"`
}

func (v FrameworkData) Validate() error {
	if !codePattern.MatchString(v.Code) {
		return errors.New("code must be 1-50 letters, digits, '-' or '_'")
	}
	if strings.TrimSpace(v.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// FrameworkUpdate only the fields that are set are changed
type FrameworkUpdate struct {
	Name          *string    `json:"name"`
	Version       *string    `json:"version"`
	Region        *string    `json:"region"`
	Description   *string    `json:"description"`
	EffectiveDate *time.Time `json:"effective_date"`
	IsActive      *bool      `json:"is_active"`
}

func (v FrameworkUpdate) Validate() error {
	if v.Name != nil && strings.TrimSpace(*v.Name) == "" {
		return errors.New("name can't be empty")
	}
	return nil
}

func (v FrameworkUpdate) UpdMap() map[string]interface{} {
	updMap := map[string]interface{}{}
	if v.Name != nil {
		updMap["name"] = *v.Name
	}
	if v.Version != nil {
		updMap["version"] = *v.Version
	}
	if v.Region != nil {
		updMap["region"] = *v.Region
	}
	if v.Description != nil {
		updMap["description"] = *v.Description
	}
	if v.EffectiveDate != nil {
		updMap["effective_date"] = *v.EffectiveDate
	}
	if v.IsActive != nil {
		updMap["is_active"] = *v.IsActive
	}
	return updMap
}

type FrameworkFilter struct {
	Region   string `query:"region"`
	IsCustom *bool  `query:"custom"`
}

type FrameworkView struct {
	FrameworkData
	ID        string    `json:"id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FrameworkConvert(rec dbmodels.Framework) FrameworkView {
	return FrameworkView{
		FrameworkData: FrameworkData{
			Code:          rec.Code,
			Name:          rec.Name,
			Version:       rec.Version,
			Region:        rec.Region,
			Description:   rec.Description,
			EffectiveDate: rec.EffectiveDate,
			IsCustom:      rec.IsCustom,
		},
		ID:        rec.ID,
		IsActive:  rec.IsActive,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
