package xlsexport

import (
	"bytes"
	"fmt"
	"grc-backend/models"
	approvalapimodels "grc-backend/models/api/approval"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	dateFormat    = "2006-01-02 15:04"
	approvalSheet = "Approvals"
)

type Provider interface {
	ExportApprovalList(list []approvalapimodels.ApprovalRequestView) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var approvalColumns = []column{
	{"Request", 38},
	{"Control", 14},
	{"Control title", 40},
	{"Proposed status", 18},
	{"Level", 8},
	{"Status", 12},
	{"Requested by", 24},
	{"Requested", 18},
	{"Due", 18},
	{"Resolved by", 24},
	{"Resolved", 18},
	{"Comments", 50},
}

// statusColumn 1-based position of the Status column
const statusColumn = 6

var statusColors = map[models.ApprovalStatus]string{
	models.ApprovalStatusPending:  "#FFF2CC",
	models.ApprovalStatusApproved: "#E2EFDA",
	models.ApprovalStatusRejected: "#FCE4D6",
}

func (i impl) ExportApprovalList(list []approvalapimodels.ApprovalRequestView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("error closing xlsx file")
		}
	}()
	if err := f.SetSheetName("Sheet1", approvalSheet); err != nil {
		return nil, errors.Wrap(err, "error renaming xlsx sheet")
	}
	if err := writeHeader(f, approvalSheet, approvalColumns); err != nil {
		return nil, errors.Wrap(err, "error writing xlsx header")
	}
	if err := writeApprovalRows(f, list); err != nil {
		return nil, errors.Wrap(err, "error writing xlsx data")
	}
	return f.WriteToBuffer()
}

func writeApprovalRows(f *excelize.File, list []approvalapimodels.ApprovalRequestView) error {
	colors := make([]string, 0, len(statusColors))
	for _, color := range statusColors {
		colors = append(colors, color)
	}
	styles, err := newFillStyles(f, colors...)
	if err != nil {
		return err
	}
	for idx, item := range list {
		row := idx + 2
		values := approvalRow(item)
		if err = f.SetSheetRow(approvalSheet, cellName(1, row), &values); err != nil {
			return err
		}
		if err = f.SetCellStyle(approvalSheet, cellName(1, row), cellName(len(values), row), styles[""]); err != nil {
			return err
		}
		if color, ok := statusColors[item.Status]; ok {
			cell := cellName(statusColumn, row)
			if err = f.SetCellStyle(approvalSheet, cell, cell, styles[color]); err != nil {
				return err
			}
		}
	}
	return nil
}

func approvalRow(item approvalapimodels.ApprovalRequestView) []interface{} {
	controlCode := item.ControlCode
	if controlCode == "" {
		controlCode = item.ControlID
	}
	resolvedBy := ""
	if item.ResolvedBy != nil {
		resolvedBy = *item.ResolvedBy
	}
	return []interface{}{
		item.ID,
		controlCode,
		item.ControlTitle,
		string(item.ProposedStatus),
		formatLevel(item.CurrentLevel, item.MaxLevels),
		string(item.Status),
		item.RequestedBy,
		formatDate(&item.RequestedDate),
		formatDate(item.DueDate),
		resolvedBy,
		formatDate(item.ResolvedAt),
		item.Comments,
	}
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateFormat)
}

func formatLevel(level, maxLevels int) string {
	return fmt.Sprintf("%d/%d", level, maxLevels)
}
