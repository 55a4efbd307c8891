package policyapimodels

import (
	dbmodels "grc-backend/models/db"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultReviewCycleMonths = 12
	MaxReviewCycleMonths     = 120
)

type PolicyData struct {
	Name              string     `json:"name"`
	Version           string     `json:"version"`
	PolicyType        string     `json:"policy_type"` // security, privacy, operational
	Document          string     `json:"document"`
	Owner             string     `json:"owner"`
	ReviewCycleMonths int        `json:"review_cycle_months"` // 0 - 12 months
	NextReviewDate    *time.Time `json:"next_review_date"`    // empty - now + review cycle
}

func (v PolicyData) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return errors.New("name is required")
	}
	return validateCycle(v.ReviewCycleMonths)
}

func validateCycle(months int) error {
	if months < 0 || months > MaxReviewCycleMonths {
		return errors.Errorf("review_cycle_months must be 0 (default) or 1-%v", MaxReviewCycleMonths)
	}
	return nil
}

// PolicyUpdate only the fields that are set are changed
type PolicyUpdate struct {
	Name              *string    `json:"name"`
	Version           *string    `json:"version"`
	PolicyType        *string    `json:"policy_type"`
	Document          *string    `json:"document"`
	Owner             *string    `json:"owner"`
	ReviewCycleMonths *int       `json:"review_cycle_months"`
	NextReviewDate    *time.Time `json:"next_review_date"`
	IsActive          *bool      `json:"is_active"`
}

func (v PolicyUpdate) Validate() error {
	if v.Name != nil && strings.TrimSpace(*v.Name) == "" {
		return errors.New("name can't be empty")
	}
	if v.ReviewCycleMonths != nil {
		if *v.ReviewCycleMonths == 0 {
			return errors.Errorf("review_cycle_months must be 1-%v", MaxReviewCycleMonths)
		}
		return validateCycle(*v.ReviewCycleMonths)
	}
	return nil
}

func (v PolicyUpdate) UpdMap() map[string]interface{} {
	updMap := map[string]interface{}{}
	if v.Name != nil {
		updMap["name"] = *v.Name
	}
	if v.Version != nil {
		updMap["version"] = *v.Version
	}
	if v.PolicyType != nil {
		updMap["policy_type"] = strings.ToLower(*v.PolicyType)
	}
	if v.Document != nil {
		updMap["document"] = *v.Document
	}
	if v.Owner != nil {
		updMap["owner"] = *v.Owner
	}
	if v.ReviewCycleMonths != nil {
		updMap["review_cycle_months"] = *v.ReviewCycleMonths
	}
	if v.NextReviewDate != nil {
		updMap["next_review_date"] = *v.NextReviewDate
	}
	if v.IsActive != nil {
		updMap["is_active"] = *v.IsActive
	}
	return updMap
}

type PolicyFilter struct {
	PolicyType string `query:"type"`
}

type LinkData struct {
	PolicyID  string `json:"policy_id"`
	ControlID string `json:"control_id"`
}

func (v LinkData) Validate() error {
	if v.PolicyID == "" {
		return errors.New("policy_id is required")
	}
	if v.ControlID == "" {
		return errors.New("control_id is required")
	}
	return nil
}

// LinkSummary controls linked to one policy
type LinkSummary struct {
	Count      int
	Frameworks []string
}

type PolicyView struct {
	PolicyData
	ID             string    `json:"id"`
	IsActive       bool      `json:"is_active"`
	LinkedControls int       `json:"linked_controls"`
	Frameworks     []string  `json:"frameworks"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type LinkView struct {
	ID        string    `json:"id"`
	PolicyID  string    `json:"policy_id"`
	ControlID string    `json:"control_id"`
	CreatedAt time.Time `json:"created_at"`
}

func PolicyConvert(rec dbmodels.Policy, summary LinkSummary) PolicyView {
	frameworks := summary.Frameworks
	if frameworks == nil {
		frameworks = []string{}
	}
	return PolicyView{
		PolicyData: PolicyData{
			Name:              rec.Name,
			Version:           rec.Version,
			PolicyType:        rec.PolicyType,
			Document:          rec.Document,
			Owner:             rec.Owner,
			ReviewCycleMonths: rec.ReviewCycleMonths,
			NextReviewDate:    rec.NextReviewDate,
		},
		ID:             rec.ID,
		IsActive:       rec.IsActive,
		LinkedControls: summary.Count,
		Frameworks:     frameworks,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

func LinkConvert(rec dbmodels.PolicyControlLink) LinkView {
	return LinkView{
		ID:        rec.ID,
		PolicyID:  rec.PolicyID,
		ControlID: rec.ControlID,
		CreatedAt: rec.CreatedAt,
	}
}
