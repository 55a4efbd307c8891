package pdfexport

import (
	"bytes"
	"fmt"
	dbmodels "grc-backend/models/db"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const dateFormat = "2006-01-02 15:04 MST"

var stepHeaders = []string{"Level", "Decision", "Role", "User", "Date", "Comments"}
var stepWidths = []float64{14, 22, 32, 34, 34, 54}

// ApprovalHistoryReport renders a request and its decision ledger
func ApprovalHistoryReport(rec dbmodels.ApprovalRequest, steps []dbmodels.WorkflowStep) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("ApprovalHistoryReport panic recover: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Approval request "+rec.ID, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Approval request history", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	_, lineHt := pdf.GetFontSize()
	lineHt += 2
	control := rec.ControlID
	if rec.Control != nil {
		control = fmt.Sprintf("%s %s", rec.Control.InternalCode, rec.Control.Title)
	}
	summary := [][2]string{
		{"Request", rec.ID},
		{"Control", control},
		{"Proposed status", string(rec.ProposedStatus)},
		{"Status", string(rec.Status)},
		{"Level", fmt.Sprintf("%d of %d", rec.CurrentLevel, rec.MaxLevels)},
		{"Requested by", rec.RequestedBy},
		{"Requested", formatDate(&rec.RequestedDate)},
		{"Due", formatDate(rec.DueDate)},
		{"Resolved", formatDate(rec.ResolvedAt)},
	}
	if rec.ResolvedBy != nil {
		summary = append(summary, [2]string{"Resolved by", *rec.ResolvedBy})
	}
	for _, line := range summary {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, lineHt, line[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, lineHt, tr(line[1]), "", 1, "L", false, 0, "")
	}
	if rec.Comments != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, lineHt, "Comments", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, lineHt, tr(rec.Comments), "", "L", false)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for idx, header := range stepHeaders {
		pdf.CellFormat(stepWidths[idx], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	if len(steps) == 0 {
		pdf.CellFormat(sum(stepWidths), 8, "No decisions yet", "1", 1, "C", false, 0, "")
	}
	for _, step := range steps {
		cells := []string{
			fmt.Sprintf("%d", step.Level),
			string(step.Decision),
			string(step.ApproverRole),
			step.ApproverUserID,
			formatDate(&step.DecisionDate),
			step.Comments,
		}
		for idx, value := range cells {
			pdf.CellFormat(stepWidths[idx], 7, tr(fit(pdf, value, stepWidths[idx])), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 6, "Generated "+time.Now().UTC().Format(dateFormat), "", 1, "R", false, 0, "")

	if pdf.Error() != nil {
		return nil, pdf.Error()
	}
	buf := new(bytes.Buffer)
	if err = pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit truncates value to the cell width
func fit(pdf *fpdf.Fpdf, value string, width float64) string {
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes))+2 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format(dateFormat)
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
