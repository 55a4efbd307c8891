package evidencehandler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"grc-backend/config"
	"grc-backend/db"
	audithandler "grc-backend/lib/audit"
	controlhandler "grc-backend/lib/control"
	evidencestorage "grc-backend/lib/evidence/storage"
	evidencestore "grc-backend/lib/evidence/store"
	"grc-backend/models"
	evidenceapimodels "grc-backend/models/api/evidence"
	dbmodels "grc-backend/models/db"
	s3client "grc-backend/s3"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Upload(ctx context.Context, orgID, userID string, data evidenceapimodels.UploadData, file FileData) (evidenceapimodels.EvidenceView, error)
	List(orgID string, filter evidenceapimodels.EvidenceFilter) ([]evidenceapimodels.EvidenceView, error)
	PresignedURL(ctx context.Context, orgID, id string) (evidenceapimodels.DownloadView, error)
	Verify(ctx context.Context, orgID, id string) (evidenceapimodels.VerifyView, error)
}

type FileData struct {
	Name        string
	ContentType string
	Content     []byte
}

type ControlGetter interface {
	GetRec(orgID, id string) (*dbmodels.Control, error)
}

type AuditRecorder interface {
	Record(event dbmodels.AuditEvent) error
}

type Limits struct {
	MaxUploadSize      int64
	AllowedExtensions  []string
	PresignExpireInSec int
}

var Instance Provider

func NewHandler() {
	Instance = NewInstance(
		evidencestore.NewInstance(db.DB),
		evidencestorage.NewInstance(s3client.Client, config.Conf.S3.BucketName),
		controlhandler.Instance,
		audithandler.Instance,
		Limits{
			MaxUploadSize:      config.Conf.Evidence.MaxUploadSize,
			AllowedExtensions:  config.Conf.Evidence.AllowedExtensions,
			PresignExpireInSec: config.Conf.Evidence.PresignExpireInSec,
		},
	)
}

func NewInstance(store evidencestore.Provider, storage evidencestorage.Provider, controls ControlGetter, auditor AuditRecorder, limits Limits) Provider {
	return impl{
		store:    store,
		storage:  storage,
		controls: controls,
		auditor:  auditor,
		limits:   limits,
		now:      time.Now,
	}
}

type impl struct {
	store    evidencestore.Provider
	storage  evidencestorage.Provider
	controls ControlGetter
	auditor  AuditRecorder
	limits   Limits
	now      func() time.Time
}

func (i impl) Upload(ctx context.Context, orgID, userID string, data evidenceapimodels.UploadData, file FileData) (evidenceapimodels.EvidenceView, error) {
	logger := log.
		WithField("org_id", orgID).
		WithField("control_id", data.ControlID).
		WithField("file_name", file.Name)
	if err := i.checkFile(file); err != nil {
		return evidenceapimodels.EvidenceView{}, err
	}
	control, err := i.controls.GetRec(orgID, data.ControlID)
	if err != nil {
		return evidenceapimodels.EvidenceView{}, err
	}
	if control == nil || !control.IsActive {
		return evidenceapimodels.EvidenceView{}, models.NewNotFound("Control not found")
	}

	hash := FileHash(file.Content)
	now := i.now().UTC()
	key := ObjectKey(orgID, data.ControlID, file.Name, now)
	meta := map[string]string{
		"sha256":      hash,
		"control_id":  data.ControlID,
		"org_id":      orgID,
		"uploaded_at": now.Format(time.RFC3339),
	}
	if err = i.storage.Put(ctx, key, file.Content, file.ContentType, meta); err != nil {
		logger.WithError(err).Error("error uploading evidence file")
		return evidenceapimodels.EvidenceView{}, err
	}

	rec := dbmodels.EvidenceFile{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: orgID,
		},
		ControlID:        data.ControlID,
		FileName:         file.Name,
		FilePath:         key,
		FileHash:         hash,
		FileType:         file.ContentType,
		FileSize:         int64(len(file.Content)),
		Source:           models.EvidenceSourceManual,
		UploadedBy:       &userID,
		UploadedDate:     now,
		CompliancePeriod: data.CompliancePeriod,
		Notes:            data.Notes,
	}
	id, err := i.store.Create(rec)
	if err != nil {
		logger.WithError(err).Error("error saving evidence record")
		return evidenceapimodels.EvidenceView{}, errors.Wrap(err, "error saving evidence record")
	}
	rec.ID = id
	logger.
		WithField("evidence_id", id).
		WithField("file_hash", hash).
		Info("evidence uploaded")

	if i.auditor != nil {
		err = i.auditor.Record(dbmodels.AuditEvent{
			BaseOrgModel: dbmodels.BaseOrgModel{
				OrgID: orgID,
			},
			EventType:    models.AuditEvidenceUpload,
			ResourceType: models.AuditResourceEvidence,
			ResourceID:   id,
			Action:       "upload",
			UserID:       userID,
			Timestamp:    now,
			Metadata: map[string]any{
				"control_id": data.ControlID,
				"file_name":  file.Name,
				"file_hash":  hash,
			},
		})
		if err != nil {
			logger.WithError(err).Error("error recording audit event")
		}
	}
	return evidenceapimodels.EvidenceConvert(rec), nil
}

func (i impl) List(orgID string, filter evidenceapimodels.EvidenceFilter) ([]evidenceapimodels.EvidenceView, error) {
	list, err := i.store.List(orgID, filter.ControlID, filter.GetSource())
	if err != nil {
		return nil, err
	}
	result := make([]evidenceapimodels.EvidenceView, 0, len(list))
	for _, rec := range list {
		result = append(result, evidenceapimodels.EvidenceConvert(rec))
	}
	return result, nil
}

func (i impl) PresignedURL(ctx context.Context, orgID, id string) (evidenceapimodels.DownloadView, error) {
	rec, err := i.getRec(orgID, id)
	if err != nil {
		return evidenceapimodels.DownloadView{}, err
	}
	expires := i.limits.PresignExpireInSec
	if expires <= 0 {
		expires = 3600
	}
	url, err := i.storage.PresignedURL(ctx, rec.FilePath, time.Duration(expires)*time.Second)
	if err != nil {
		return evidenceapimodels.DownloadView{}, err
	}
	return evidenceapimodels.DownloadView{
		ID:        rec.ID,
		URL:       url,
		ExpiresIn: expires,
	}, nil
}

// Verify re-reads the object and compares its sha256 with the stored one
func (i impl) Verify(ctx context.Context, orgID, id string) (evidenceapimodels.VerifyView, error) {
	rec, err := i.getRec(orgID, id)
	if err != nil {
		return evidenceapimodels.VerifyView{}, err
	}
	logger := log.
		WithField("org_id", orgID).
		WithField("evidence_id", id)
	obj, err := i.storage.Get(ctx, rec.FilePath)
	if err != nil {
		return evidenceapimodels.VerifyView{}, err
	}
	defer obj.Close()
	hasher := sha256.New()
	if _, err = io.Copy(hasher, obj); err != nil {
		return evidenceapimodels.VerifyView{}, errors.Wrap(err, "error reading evidence file")
	}
	actual := hex.EncodeToString(hasher.Sum(nil))
	result := evidenceapimodels.VerifyView{
		ID:           rec.ID,
		Valid:        actual == rec.FileHash,
		ExpectedHash: rec.FileHash,
		ActualHash:   actual,
	}
	if result.Valid {
		logger.Info("evidence integrity verified")
	} else {
		logger.Warn("evidence integrity mismatch")
	}
	return result, nil
}

func (i impl) getRec(orgID, id string) (*dbmodels.EvidenceFile, error) {
	rec, err := i.store.GetByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, models.NewNotFound("Evidence file not found")
	}
	return rec, nil
}

func (i impl) checkFile(file FileData) error {
	if file.Name == "" || len(file.Content) == 0 {
		return models.NewInvalidArgument("file is empty")
	}
	if i.limits.MaxUploadSize > 0 && int64(len(file.Content)) > i.limits.MaxUploadSize {
		return models.NewInvalidArgument(fmt.Sprintf("file is too large, max size is %d bytes", i.limits.MaxUploadSize))
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Name)), ".")
	if len(i.limits.AllowedExtensions) > 0 && !slices.Contains(i.limits.AllowedExtensions, ext) {
		return models.NewInvalidArgument(fmt.Sprintf("file type .%s is not allowed", ext))
	}
	return nil
}

func FileHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ObjectKey evidence/{org}/{control}/{yyyymmdd_hhmmss}_{name}
func ObjectKey(orgID, controlID, fileName string, now time.Time) string {
	name := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	return fmt.Sprintf("evidence/%s/%s/%s_%s", orgID, controlID, now.UTC().Format("20060102_150405"), name)
}
