package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/drive"
)

func (cli *commandLine) courseAndWork(ctx context.Context, courseFlag, workArg string) (string, string, error) {
	courseID, err := cli.courseID(ctx, courseFlag)
	if err != nil {
		return "", "", err
	}
	workID, err := cli.workID(ctx, courseID, workArg)
	if err != nil {
		return "", "", err
	}
	return courseID, workID, nil
}

func (cli *commandLine) submissionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submission",
		Short: "Inspect, download and grade student submissions",
	}

	var courseFlag string
	cmd.PersistentFlags().StringVarP(&courseFlag, "course", "c", "", "course id or name fragment")

	list := &cobra.Command{
		Use:   "list ASSIGNMENT",
		Short: "List submissions with student names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID, workID, err := cli.courseAndWork(ctx, courseFlag, args[0])
			if err != nil {
				return err
			}
			entries, err := cli.svc.GradeReport(ctx, courseID, workID)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cli.out, "No submissions found for this assignment.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(cli.out, "%s (%s)\n", e.Profile.Name.FullName, e.Profile.EmailAddress)
				fmt.Fprintf(cli.out, "  ID:          %s\n", e.Submission.ID)
				fmt.Fprintf(cli.out, "  State:       %s\n", e.Submission.State)
				fmt.Fprintf(cli.out, "  Attachments: %d\n\n", len(e.Submission.AssignmentSubmission.Attachments))
			}
			return nil
		},
	}

	info := &cobra.Command{
		Use:   "info ASSIGNMENT SUBMISSION_ID",
		Short: "Show one submission with student details",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID, workID, err := cli.courseAndWork(ctx, courseFlag, args[0])
			if err != nil {
				return err
			}
			detail, err := cli.svc.SubmissionDetail(ctx, courseID, workID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "ID:      %s\n", detail.ID)
			fmt.Fprintf(cli.out, "State:   %s\n", detail.State)
			fmt.Fprintf(cli.out, "Created: %s\n", detail.CreationTime.Format(time.RFC3339))
			fmt.Fprintf(cli.out, "Updated: %s\n", detail.UpdateTime.Format(time.RFC3339))
			fmt.Fprintf(cli.out, "Student: %s <%s> (%s)\n", detail.Profile.Name.FullName, detail.Profile.EmailAddress, detail.UserID)
			cli.printAttachments(detail.AssignmentSubmission.Attachments)
			return nil
		},
	}

	attachments := &cobra.Command{
		Use:   "attachments ASSIGNMENT SUBMISSION_ID",
		Short: "List the attachments of a submission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID, workID, err := cli.courseAndWork(ctx, courseFlag, args[0])
			if err != nil {
				return err
			}
			detail, err := cli.svc.SubmissionDetail(ctx, courseID, workID, args[1])
			if err != nil {
				return err
			}
			if len(detail.AssignmentSubmission.Attachments) == 0 {
				fmt.Fprintln(cli.out, "No attachments found for this submission.")
				return nil
			}
			cli.printAttachments(detail.AssignmentSubmission.Attachments)
			return nil
		},
	}

	var downloadDir string
	download := &cobra.Command{
		Use:   "download ASSIGNMENT SUBMISSION_ID",
		Short: "Download all files of one submission into a student folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID, workID, err := cli.courseAndWork(ctx, courseFlag, args[0])
			if err != nil {
				return err
			}
			res, err := cli.svc.DownloadSubmission(ctx, courseID, workID, args[1], cli.downloadRoot(downloadDir))
			if err != nil {
				return err
			}
			cli.printDownloadResult(res)
			return nil
		},
	}
	download.Flags().StringVarP(&downloadDir, "dir", "d", "", "download folder (defaults to the configured one)")

	var downloadAllDir string
	downloadAll := &cobra.Command{
		Use:   "download-all ASSIGNMENT",
		Short: "Download every submission of an assignment, one folder per student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID, workID, err := cli.courseAndWork(ctx, courseFlag, args[0])
			if err != nil {
				return err
			}
			results, err := cli.svc.DownloadAll(ctx, courseID, workID, cli.downloadRoot(downloadAllDir))
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cli.out, "No submissions found for this assignment.")
				return nil
			}

			var files, failures int
			for i, r := range results {
				fmt.Fprintf(cli.out, "[%d/%d] submission %s\n", i+1, len(results), r.SubmissionID)
				if r.Err != nil {
					failures++
					warning.Fprintf(cli.out, "  failed: %v\n", r.Err)
					continue
				}
				cli.printDownloadResult(r.Result)
				files += len(r.Result.Outcomes)
			}
			fmt.Fprintln(cli.out)
			success.Fprintf(cli.out, "Done: %d submissions processed, %d items saved", len(results), files)
			if failures > 0 {
				warning.Fprintf(cli.out, ", %d failed", failures)
			}
			fmt.Fprintln(cli.out)
			return nil
		},
	}
	downloadAll.Flags().StringVarP(&downloadAllDir, "dir", "d", "", "download folder (defaults to the configured one)")

	comment := &cobra.Command{
		Use:   "comment ASSIGNMENT SUBMISSION_ID TEXT",
		Short: "Add a private comment to a submission",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID, workID, err := cli.courseAndWork(ctx, courseFlag, args[0])
			if err != nil {
				return err
			}
			if err := cli.svc.Comment(ctx, courseID, workID, args[1], args[2]); err != nil {
				return err
			}
			success.Fprintln(cli.out, "Comment added successfully.")
			return nil
		},
	}

	grade := cli.gradeCommand(&courseFlag, "grade", "Assign a grade (draft and assigned) to a submission", cli.svc.SetGrade)
	draftGrade := cli.gradeCommand(&courseFlag, "draft-grade", "Assign a draft grade (not visible to the student)", cli.svc.SetDraftGrade)
	assignedGrade := cli.gradeCommand(&courseFlag, "assigned-grade", "Assign a final grade (visible to the student)", cli.svc.SetAssignedGrade)

	draftGradeAll := &cobra.Command{
		Use:   "draft-grade-all ASSIGNMENT POINTS",
		Short: "Assign the same draft grade to every submission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID, workID, err := cli.courseAndWork(ctx, courseFlag, args[0])
			if err != nil {
				return err
			}
			points, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid grade %q", args[1])
			}
			subs, err := cli.svc.Submissions(ctx, courseID, workID)
			if err != nil {
				return err
			}
			var failed int
			for i, sub := range subs {
				fmt.Fprintf(cli.out, "[%d/%d] %s... ", i+1, len(subs), sub.ID)
				if err := cli.svc.SetDraftGrade(ctx, courseID, workID, sub.ID, points); err != nil {
					failed++
					warning.Fprintf(cli.out, "failed: %v\n", err)
					continue
				}
				success.Fprintln(cli.out, "ok")
			}
			fmt.Fprintf(cli.out, "Draft graded %d/%d submissions.\n", len(subs)-failed, len(subs))
			return nil
		},
	}

	ret := &cobra.Command{
		Use:   "return ASSIGNMENT SUBMISSION_ID",
		Short: "Return a submission to the student (makes grades visible)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID, workID, err := cli.courseAndWork(ctx, courseFlag, args[0])
			if err != nil {
				return err
			}
			if err := cli.svc.Return(ctx, courseID, workID, args[1]); err != nil {
				return err
			}
			success.Fprintln(cli.out, "Submission returned; grades are now visible to the student.")
			return nil
		},
	}

	showGrades := &cobra.Command{
		Use:   "show-grades ASSIGNMENT",
		Short: "Show current grades for all submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID, workID, err := cli.courseAndWork(ctx, courseFlag, args[0])
			if err != nil {
				return err
			}
			entries, err := cli.svc.GradeReport(ctx, courseID, workID)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cli.out, "No submissions found for this assignment.")
				return nil
			}

			var graded, draftOnly int
			for _, e := range entries {
				fmt.Fprintf(cli.out, "%s (%s)\n", e.Profile.Name.FullName, e.Submission.State)
				fmt.Fprintf(cli.out, "  Assigned: %s\n", gradeOrDash(e.Submission.AssignedGrade))
				fmt.Fprintf(cli.out, "  Draft:    %s\n", gradeOrDash(e.Submission.DraftGrade))
				switch {
				case e.Submission.AssignedGrade != nil:
					graded++
				case e.Submission.DraftGrade != nil:
					draftOnly++
				}
			}
			fmt.Fprintf(cli.out, "\nTotal: %d, graded: %d, draft only: %d, ungraded: %d\n",
				len(entries), graded, draftOnly, len(entries)-graded-draftOnly)
			return nil
		},
	}

	var exportOut string
	exportGrades := &cobra.Command{
		Use:   "export-grades ASSIGNMENT",
		Short: "Export submissions to a CSV grade sheet for offline grading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID, workID, err := cli.courseAndWork(ctx, courseFlag, args[0])
			if err != nil {
				return err
			}
			n, err := cli.svc.ExportGradeSheet(ctx, courseID, workID, exportOut)
			if err != nil {
				return err
			}
			success.Fprintf(cli.out, "Exported %d submissions to %s\n", n, exportOut)
			fmt.Fprintln(cli.out, "Fill in the \"Grade to Assign\" column, then run import-grades.")
			return nil
		},
	}
	exportGrades.Flags().StringVarP(&exportOut, "out", "o", "grades.csv", "output CSV file")

	var apply bool
	importGrades := &cobra.Command{
		Use:   "import-grades ASSIGNMENT FILE",
		Short: "Import grades from a CSV grade sheet (dry run unless --apply)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID, workID, err := cli.courseAndWork(ctx, courseFlag, args[0])
			if err != nil {
				return err
			}
			report, err := cli.svc.ImportGradeSheet(ctx, courseID, workID, args[1], !apply)
			if err != nil {
				return err
			}
			if report.DryRun {
				warning.Fprintln(cli.out, "Dry run: no grades will be written (use --apply to write).")
			}
			for _, p := range report.Planned {
				switch {
				case p.Err != nil:
					warning.Fprintf(cli.out, "%s (%s): %v\n", p.StudentName, p.SubmissionID, p.Err)
				case report.DryRun:
					fmt.Fprintf(cli.out, "%s (%s): would assign %v\n", p.StudentName, p.SubmissionID, p.Points)
				default:
					fmt.Fprintf(cli.out, "%s (%s): assigned %v\n", p.StudentName, p.SubmissionID, p.Points)
				}
			}
			if !report.DryRun {
				success.Fprintf(cli.out, "Applied %d grades", report.Applied)
				if report.Failed > 0 {
					warning.Fprintf(cli.out, ", %d failed", report.Failed)
				}
				fmt.Fprintln(cli.out)
			}
			return nil
		},
	}
	importGrades.Flags().BoolVar(&apply, "apply", false, "actually write the grades")

	cmd.AddCommand(
		list, info, attachments, download, downloadAll, comment,
		grade, draftGrade, assignedGrade, draftGradeAll, ret,
		showGrades, exportGrades, importGrades,
	)
	return cmd
}

// gradeCommand builds one of the grade/draft-grade/assigned-grade
// commands; they differ only in which grade fields they write.
func (cli *commandLine) gradeCommand(
	courseFlag *string,
	name, short string,
	set func(ctx context.Context, courseID, workID, id string, points float64) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   name + " ASSIGNMENT SUBMISSION_ID POINTS",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID, workID, err := cli.courseAndWork(ctx, *courseFlag, args[0])
			if err != nil {
				return err
			}
			points, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid grade %q", args[2])
			}
			detail, err := cli.svc.SubmissionDetail(ctx, courseID, workID, args[1])
			if err != nil {
				return err
			}
			if err := set(ctx, courseID, workID, args[1], points); err != nil {
				return err
			}
			success.Fprintf(cli.out, "Grade %v assigned to %s\n", points, detail.Profile.Name.FullName)
			return nil
		},
	}
}

func (cli *commandLine) printAttachments(attachments []classroom.Attachment) {
	if len(attachments) == 0 {
		fmt.Fprintln(cli.out, "Attachments: none")
		return
	}
	fmt.Fprintf(cli.out, "Attachments (%d):\n", len(attachments))
	for i, att := range attachments {
		switch {
		case att.DriveFile != nil:
			fmt.Fprintf(cli.out, "  %d. %s %s\n", i+1, att.DriveFile.Title, faint.Sprintf("(drive %s)", att.DriveFile.ID))
		case att.YouTubeVideo != nil:
			fmt.Fprintf(cli.out, "  %d. %s %s\n", i+1, att.YouTubeVideo.Title, faint.Sprintf("(video %s)", att.YouTubeVideo.ID))
		case att.Link != nil:
			fmt.Fprintf(cli.out, "  %d. %s %s\n", i+1, att.Link.Title, faint.Sprintf("(%s)", att.Link.URL))
		default:
			fmt.Fprintf(cli.out, "  %d. (unrecognized attachment)\n", i+1)
		}
	}
}

func (cli *commandLine) printDownloadResult(res classroom.DownloadResult) {
	fmt.Fprintf(cli.out, "  Student: %s <%s>\n", res.Student.Name.FullName, res.Student.EmailAddress)
	if len(res.Outcomes) == 0 {
		fmt.Fprintln(cli.out, "  No files to download (folder and marker created).")
		return
	}
	for _, o := range res.Outcomes {
		if o.Method == drive.MethodErrorStub {
			warning.Fprintf(cli.out, "  failed: %s (%v)\n", o.LocalPath, o.Err)
			continue
		}
		fmt.Fprintf(cli.out, "  saved: %s %s\n", o.LocalPath, faint.Sprintf("(%s)", o.Method))
	}
}

func (cli *commandLine) downloadRoot(flag string) string {
	if flag != "" {
		return flag
	}
	return cli.conf.DownloadDir
}

func gradeOrDash(g *float64) string {
	if g == nil {
		return "-"
	}
	return strconv.FormatFloat(*g, 'f', -1, 64)
}
