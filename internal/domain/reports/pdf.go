package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"perfeval/internal/domain/evaluation"
)

// WriteEvaluationPDF renders one evaluation as a printable report and
// streams it to w. Derived numbers come from the evaluation as decorated
// by the read path; nothing is recomputed here.
func (s *Service) WriteEvaluationPDF(ctx context.Context, w io.Writer, tenantID string, ev evaluation.Evaluation) error {
	employeeName, err := s.store.EmployeeName(ctx, tenantID, ev.EmployeeID)
	if err != nil {
		employeeName = ev.EmployeeID
	}
	evaluatorName, err := s.store.EmployeeName(ctx, tenantID, ev.EvaluatorID)
	if err != nil {
		evaluatorName = ev.EvaluatorID
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Evaluation Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Evaluator: %s", evaluatorName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", ev.Date.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", ev.Status))
	pdf.Ln(10)

	if ev.Scores != nil {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Scores")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Self average: %s", formatScore(ev.Scores.SelfAverage)))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Manager average: %s", formatScore(ev.Scores.ManagerAverage)))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Final score: %s (%s)", formatScore(ev.Scores.FinalScore), ev.Scores.Band))
		pdf.Ln(10)

		if len(ev.Scores.Categories) > 0 {
			pdf.SetFont("Helvetica", "B", 13)
			pdf.Cell(0, 8, "By category")
			pdf.Ln(9)
			pdf.SetFont("Helvetica", "", 11)
			for _, category := range ev.Scores.Categories {
				pdf.Cell(0, 7, fmt.Sprintf("%s - self %s / manager %s / expected %s",
					category.CategoryName,
					formatScore(category.SelfAverage),
					formatScore(category.ManagerAvg),
					formatScore(category.ExpectedAvg)))
				pdf.Ln(6)
			}
			pdf.Ln(4)
		}
	}

	writeTextSection(pdf, "Self assessment", []textEntry{
		{"Strengths", ev.SelfStrengths},
		{"Improvements", ev.SelfImprovements},
		{"Goals", ev.SelfGoals},
	})
	writeTextSection(pdf, "Manager assessment", []textEntry{
		{"Strengths", ev.ManagerStrengths},
		{"Improvements", ev.ManagerImprovements},
		{"Goals", ev.ManagerGoals},
	})

	return pdf.Output(w)
}

type textEntry struct {
	label string
	value string
}

func writeTextSection(pdf *gofpdf.Fpdf, title string, entries []textEntry) {
	present := false
	for _, entry := range entries {
		if entry.value != "" {
			present = true
		}
	}
	if !present {
		return
	}
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	for _, entry := range entries {
		if entry.value == "" {
			continue
		}
		pdf.MultiCell(0, 6, fmt.Sprintf("%s: %s", entry.label, entry.value), "", "L", false)
		pdf.Ln(2)
	}
	pdf.Ln(4)
}

func formatScore(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *value)
}
