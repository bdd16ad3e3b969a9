package classroom

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// grade sheet columns; GradeToAssign is left blank on export and filled
// in by the teacher before import
var gradeSheetHeader = []string{
	"Student Name", "Email", "User ID", "Submission ID",
	"State", "Assigned Grade", "Draft Grade",
	"Has Attachments", "Submission Time", "Grade to Assign",
}

// ExportGradeSheet writes a CSV of all submissions of an assignment for
// offline grading and returns the number of rows written.
func (svc *Service) ExportGradeSheet(ctx context.Context, courseID, workID, outPath string) (int, error) {
	entries, err := svc.GradeReport(ctx, courseID, workID)
	if err != nil {
		return 0, err
	}

	title := "Unknown Assignment"
	if work, err := svc.work.ListCourseWork(ctx, courseID); err == nil {
		for _, w := range work {
			if w.ID == workID {
				title = w.Title
				break
			}
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, errors.Wrap(err, "creating grade sheet")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	meta := [][]string{
		{fmt.Sprintf("Assignment: %s", title)},
		{fmt.Sprintf("Course ID: %s", courseID)},
		{fmt.Sprintf("Assignment ID: %s", workID)},
		{},
		gradeSheetHeader,
	}
	for _, row := range meta {
		if err := w.Write(row); err != nil {
			return 0, errors.Wrap(err, "writing grade sheet")
		}
	}

	for _, e := range entries {
		hasAttachments := "No"
		if len(e.Submission.AssignmentSubmission.Attachments) > 0 {
			hasAttachments = "Yes"
		}
		row := []string{
			e.Profile.Name.FullName,
			e.Profile.EmailAddress,
			e.Submission.UserID,
			e.Submission.ID,
			e.Submission.State,
			formatGrade(e.Submission.AssignedGrade),
			formatGrade(e.Submission.DraftGrade),
			hasAttachments,
			e.Submission.CreationTime.Format("2006-01-02 15:04:05"),
			"",
		}
		if err := w.Write(row); err != nil {
			return 0, errors.Wrap(err, "writing grade sheet")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, errors.Wrap(err, "writing grade sheet")
	}
	return len(entries), nil
}

type (
	// PlannedGrade is one grade parsed from an imported sheet. Err is set
	// when applying it failed.
	PlannedGrade struct {
		StudentName  string
		SubmissionID string
		Points       float64
		Err          error
	}

	ImportReport struct {
		Planned []PlannedGrade
		Applied int
		Failed  int
		DryRun  bool
	}
)

// ImportGradeSheet reads grades back from an exported sheet and writes
// them (draft and assigned) to the matching submissions. With dryRun the
// parsed grades are reported without any write.
func (svc *Service) ImportGradeSheet(ctx context.Context, courseID, workID, path string, dryRun bool) (ImportReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportReport{}, errors.Wrap(err, "opening grade sheet")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return ImportReport{}, errors.Wrap(err, "reading grade sheet")
	}
	// metadata rows precede the header; locate it by its first column
	headerIdx := -1
	for i, row := range rows {
		if len(row) > 0 && row[0] == gradeSheetHeader[0] {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 || headerIdx == len(rows)-1 {
		return ImportReport{}, errors.New("grade sheet has no data rows")
	}

	col := make(map[string]int, len(rows[headerIdx]))
	for i, name := range rows[headerIdx] {
		col[name] = i
	}
	nameCol, subCol, gradeCol := col["Student Name"], col["Submission ID"], col["Grade to Assign"]

	report := ImportReport{DryRun: dryRun}
	for _, row := range rows[headerIdx+1:] {
		if gradeCol >= len(row) || subCol >= len(row) || row[gradeCol] == "" {
			continue
		}
		planned := PlannedGrade{SubmissionID: row[subCol]}
		if nameCol < len(row) {
			planned.StudentName = row[nameCol]
		}
		points, err := strconv.ParseFloat(row[gradeCol], 64)
		if err != nil {
			planned.Err = errors.Errorf("invalid grade %q", row[gradeCol])
			report.Planned = append(report.Planned, planned)
			report.Failed++
			continue
		}
		planned.Points = points

		if !dryRun {
			if err := svc.SetGrade(ctx, courseID, workID, planned.SubmissionID, points); err != nil {
				planned.Err = err
				report.Failed++
			} else {
				report.Applied++
			}
		}
		report.Planned = append(report.Planned, planned)
	}
	return report, nil
}

func formatGrade(g *float64) string {
	if g == nil {
		return ""
	}
	return strconv.FormatFloat(*g, 'f', -1, 64)
}
