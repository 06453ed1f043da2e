package reports

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"pms/internal/domain/appraisal"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type Summary struct {
	AppraisalsTotal    int            `json:"appraisalsTotal"`
	AppraisalsByStatus map[string]int `json:"appraisalsByStatus"`
	CompletionRate     float64        `json:"completionRate"`
	GoalsTotal         int            `json:"goalsTotal"`
	RatingDistribution map[string]int `json:"ratingDistribution"`
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	counts, err := s.store.StatusCounts(ctx)
	if err != nil {
		return Summary{}, err
	}
	ratings, err := s.store.ReviewerRatings(ctx)
	if err != nil {
		return Summary{}, err
	}
	goals, err := s.store.GoalCount(ctx)
	if err != nil {
		return Summary{}, err
	}
	return buildSummary(counts, ratings, goals), nil
}

func buildSummary(counts map[string]int, ratings []int, goals int) Summary {
	summary := Summary{
		AppraisalsByStatus: counts,
		GoalsTotal:         goals,
		RatingDistribution: map[string]int{},
	}
	for _, count := range counts {
		summary.AppraisalsTotal += count
	}
	for _, rating := range ratings {
		summary.RatingDistribution[strconv.Itoa(rating)]++
	}
	if summary.AppraisalsTotal > 0 {
		completed := counts[appraisal.StatusComplete.String()]
		summary.CompletionRate = float64(completed) / float64(summary.AppraisalsTotal)
	}
	return summary
}

// AppraisalPDF renders a one-page summary of a single appraisal.
func (s *Service) AppraisalPDF(ctx context.Context, appraisalID string) ([]byte, error) {
	detail, err := s.store.GetAppraisalDetail(ctx, appraisalID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Appraisal Summary")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Appraisee: %s", detail.Row.AppraiseeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Appraiser: %s", detail.Row.AppraiserName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Reviewer: %s", detail.Row.ReviewerName))
	pdf.Ln(7)
	cycle := detail.Row.TypeName
	if detail.Row.RangeName != "" {
		cycle += " (" + detail.Row.RangeName + ")"
	}
	pdf.Cell(0, 8, fmt.Sprintf("Cycle: %s, %s to %s", cycle, detail.Row.StartDate, detail.Row.EndDate))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", detail.Row.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Goals")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	for _, goal := range detail.Goals {
		line := fmt.Sprintf("%s (%d%%)", goal.Title, goal.Weightage)
		if goal.Category != "" {
			line += " [" + goal.Category + "]"
		}
		pdf.Cell(0, 7, line)
		pdf.Ln(6)
		pdf.Cell(0, 7, fmt.Sprintf("  self: %s / appraiser: %s", ratingText(goal.SelfRating), ratingText(goal.AppraiserRating)))
		pdf.Ln(7)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Overall")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Appraiser rating: %s  %s", ratingText(detail.AppraiserRating), detail.AppraiserComment))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Reviewer rating: %s  %s", ratingText(detail.ReviewerRating), detail.ReviewerComment))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ratingText(rating *int) string {
	if rating == nil {
		return "-"
	}
	return strconv.Itoa(*rating)
}

var exportHeader = []string{"ID", "Appraisee", "Appraiser", "Reviewer", "Type", "Range", "Start", "End", "Status", "Final Rating"}

// AppraisalsXLSX produces a spreadsheet listing every appraisal.
func (s *Service) AppraisalsXLSX(ctx context.Context) ([]byte, error) {
	rows, err := s.store.ListAppraisalRows(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []any{row.ID, row.AppraiseeName, row.AppraiserName, row.ReviewerName,
			row.TypeName, row.RangeName, row.StartDate, row.EndDate, row.Status, ""}
		if row.FinalRating != nil {
			values[len(values)-1] = *row.FinalRating
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
