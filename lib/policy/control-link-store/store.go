package controllinkstore

import (
	policyapimodels "grc-backend/models/api/policy"
	dbmodels "grc-backend/models/db"
	"sort"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.PolicyControlLink) (id string, err error)
	Get(orgID, policyID, controlID string) (rec *dbmodels.PolicyControlLink, err error)
	Delete(orgID, policyID, controlID string) (deleted bool, err error)
	// ListControls active controls linked to the policy
	ListControls(orgID, policyID string) (list []dbmodels.Control, err error)
	// Summaries linked active controls per policy, policies without links are absent
	Summaries(orgID string, policyIDs []string) (map[string]policyapimodels.LinkSummary, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.PolicyControlLink) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) Get(orgID, policyID, controlID string) (*dbmodels.PolicyControlLink, error) {
	rec := dbmodels.PolicyControlLink{}
	err := i.db.
		Where("org_id = ?", orgID).
		Where("policy_id = ?", policyID).
		Where("control_id = ?", controlID).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) Delete(orgID, policyID, controlID string) (bool, error) {
	tx := i.db.
		Where("org_id = ?", orgID).
		Where("policy_id = ?", policyID).
		Where("control_id = ?", controlID).
		Delete(&dbmodels.PolicyControlLink{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (i impl) ListControls(orgID, policyID string) (list []dbmodels.Control, err error) {
	list = []dbmodels.Control{}
	err = i.db.
		Joins("JOIN policy_control_links ON policy_control_links.control_id = controls.id").
		Where("policy_control_links.org_id = ?", orgID).
		Where("policy_control_links.policy_id = ?", policyID).
		Where("controls.is_active = ?", true).
		Order("controls.internal_code").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

type linkRow struct {
	PolicyID      string
	FrameworkCode string
}

func (i impl) Summaries(orgID string, policyIDs []string) (map[string]policyapimodels.LinkSummary, error) {
	result := map[string]policyapimodels.LinkSummary{}
	if len(policyIDs) == 0 {
		return result, nil
	}
	rows := []linkRow{}
	err := i.db.
		Model(&dbmodels.PolicyControlLink{}).
		Select("policy_control_links.policy_id, controls.framework_code").
		Joins("JOIN controls ON controls.id = policy_control_links.control_id").
		Where("policy_control_links.org_id = ?", orgID).
		Where("policy_control_links.policy_id IN ?", policyIDs).
		Where("controls.is_active = ?", true).
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	frameworks := map[string]map[string]bool{}
	for _, row := range rows {
		summary := result[row.PolicyID]
		summary.Count++
		result[row.PolicyID] = summary
		if row.FrameworkCode == "" {
			continue
		}
		if frameworks[row.PolicyID] == nil {
			frameworks[row.PolicyID] = map[string]bool{}
		}
		frameworks[row.PolicyID][row.FrameworkCode] = true
	}
	for policyID, codes := range frameworks {
		summary := result[policyID]
		for code := range codes {
			summary.Frameworks = append(summary.Frameworks, code)
		}
		sort.Strings(summary.Frameworks)
		result[policyID] = summary
	}
	return result, nil
}
