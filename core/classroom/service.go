package classroom

import (
	"context"
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/drive"
)

type (
	CourseRepository interface {
		ListCourses(ctx context.Context) ([]Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
	}

	CourseWorkRepository interface {
		ListCourseWork(ctx context.Context, courseID string) ([]CourseWork, error)
	}

	SubmissionRepository interface {
		ListSubmissions(ctx context.Context, courseID, workID string) ([]StudentSubmission, error)
		GetSubmission(ctx context.Context, courseID, workID, id string) (StudentSubmission, error)
		AddComment(ctx context.Context, courseID, workID, id string, comment NewComment) error
		// PatchGrades updates the non-nil grades; the update mask sent to
		// the API covers exactly the provided fields.
		PatchGrades(ctx context.Context, courseID, workID, id string, draft, assigned *float64) error
		ReturnSubmission(ctx context.Context, courseID, workID, id string) error
	}

	StudentRepository interface {
		GetProfile(ctx context.Context, userID string) (StudentProfile, error)
	}

	Service struct {
		courses      CourseRepository
		work         CourseWorkRepository
		submissions  SubmissionRepository
		students     StudentRepository
		materializer *Materializer
		validate     *validator.Validate
		translator   ut.Translator
		log          core.Logger
	}
)

func NewService(
	courses CourseRepository,
	work CourseWorkRepository,
	submissions SubmissionRepository,
	students StudentRepository,
	materializer *Materializer,
	validate *validator.Validate,
	translator ut.Translator,
	log core.Logger,
) *Service {
	return &Service{
		courses:      courses,
		work:         work,
		submissions:  submissions,
		students:     students,
		materializer: materializer,
		validate:     validate,
		translator:   translator,
		log:          log,
	}
}

func (svc *Service) Courses(ctx context.Context) ([]Course, error) {
	return svc.courses.ListCourses(ctx)
}

func (svc *Service) Course(ctx context.Context, id string) (Course, error) {
	return svc.courses.GetCourse(ctx, id)
}

func (svc *Service) CourseWork(ctx context.Context, courseID string) ([]CourseWork, error) {
	return svc.work.ListCourseWork(ctx, courseID)
}

func (svc *Service) Submissions(ctx context.Context, courseID, workID string) ([]StudentSubmission, error) {
	return svc.submissions.ListSubmissions(ctx, courseID, workID)
}

// ResolveCourse maps a course id or name fragment to a course id. The
// candidate list is fully fetched before resolution.
func (svc *Service) ResolveCourse(ctx context.Context, identifier string) (string, error) {
	courses, err := svc.courses.ListCourses(ctx)
	if err != nil {
		return "", err
	}
	refs := make([]Ref, 0, len(courses))
	for _, c := range courses {
		refs = append(refs, Ref{ID: c.ID, Name: c.Name})
	}
	return Resolve(identifier, refs)
}

// ResolveCourseWork maps an assignment id or title fragment to an
// assignment id within the given course.
func (svc *Service) ResolveCourseWork(ctx context.Context, courseID, identifier string) (string, error) {
	work, err := svc.work.ListCourseWork(ctx, courseID)
	if err != nil {
		return "", err
	}
	refs := make([]Ref, 0, len(work))
	for _, w := range work {
		refs = append(refs, Ref{ID: w.ID, Name: w.Title})
	}
	return Resolve(identifier, refs)
}

// SubmissionDetail is a submission joined with its student's profile.
type SubmissionDetail struct {
	StudentSubmission
	Profile StudentProfile
}

func (svc *Service) SubmissionDetail(ctx context.Context, courseID, workID, id string) (SubmissionDetail, error) {
	sub, err := svc.submissions.GetSubmission(ctx, courseID, workID, id)
	if err != nil {
		return SubmissionDetail{}, err
	}
	return SubmissionDetail{StudentSubmission: sub, Profile: svc.profile(ctx, sub.UserID)}, nil
}

// profile fetches a student profile, degrading to a placeholder when the
// roster lookup fails (restricted scopes commonly forbid it).
func (svc *Service) profile(ctx context.Context, userID string) StudentProfile {
	profile, err := svc.students.GetProfile(ctx, userID)
	if err != nil {
		svc.log.Debug(fmt.Sprintf("profile lookup failed for %s: %v", userID, err))
		return StudentProfile{
			ID:           userID,
			Name:         Name{FullName: "User " + userID},
			EmailAddress: "unknown@example.com",
		}
	}
	return profile
}

func (svc *Service) Comment(ctx context.Context, courseID, workID, id, text string) error {
	comment := NewComment{Text: text}
	if err := comment.Validate(svc.validate, svc.translator); err != nil {
		return err
	}
	return svc.submissions.AddComment(ctx, courseID, workID, id, comment)
}

// SetGrade writes both the draft and the assigned grade.
func (svc *Service) SetGrade(ctx context.Context, courseID, workID, id string, points float64) error {
	if err := (NewGrade{Points: points}).Validate(svc.validate, svc.translator); err != nil {
		return err
	}
	return svc.submissions.PatchGrades(ctx, courseID, workID, id, &points, &points)
}

// SetDraftGrade writes a grade not yet visible to the student.
func (svc *Service) SetDraftGrade(ctx context.Context, courseID, workID, id string, points float64) error {
	if err := (NewGrade{Points: points}).Validate(svc.validate, svc.translator); err != nil {
		return err
	}
	return svc.submissions.PatchGrades(ctx, courseID, workID, id, &points, nil)
}

// SetAssignedGrade writes the grade visible to the student.
func (svc *Service) SetAssignedGrade(ctx context.Context, courseID, workID, id string, points float64) error {
	if err := (NewGrade{Points: points}).Validate(svc.validate, svc.translator); err != nil {
		return err
	}
	return svc.submissions.PatchGrades(ctx, courseID, workID, id, nil, &points)
}

func (svc *Service) Return(ctx context.Context, courseID, workID, id string) error {
	return svc.submissions.ReturnSubmission(ctx, courseID, workID, id)
}

// DownloadResult is one submission's materialized attachments.
type DownloadResult struct {
	SubmissionID string
	Student      StudentProfile
	Outcomes     []drive.Outcome
}

// DownloadSubmission materializes every attachment of one submission
// under root, in a folder named after the student.
func (svc *Service) DownloadSubmission(ctx context.Context, courseID, workID, id, root string) (DownloadResult, error) {
	detail, err := svc.SubmissionDetail(ctx, courseID, workID, id)
	if err != nil {
		return DownloadResult{}, err
	}
	outcomes, err := svc.materializer.MaterializeAll(
		ctx,
		detail.AssignmentSubmission.Attachments,
		root,
		detail.Profile.Name.FullName,
		detail.UserID,
	)
	if err != nil {
		return DownloadResult{}, err
	}
	return DownloadResult{SubmissionID: detail.ID, Student: detail.Profile, Outcomes: outcomes}, nil
}

// SubmissionDownload pairs a submission with its download result; Err is
// set when that submission's sweep step failed as a whole.
type SubmissionDownload struct {
	SubmissionID string
	Result       DownloadResult
	Err          error
}

// DownloadAll materializes all submissions of an assignment, one student
// folder each. A failed submission is recorded and does not abort the
// sweep.
func (svc *Service) DownloadAll(ctx context.Context, courseID, workID, root string) ([]SubmissionDownload, error) {
	subs, err := svc.submissions.ListSubmissions(ctx, courseID, workID)
	if err != nil {
		return nil, errors.Wrap(err, "listing submissions")
	}
	results := make([]SubmissionDownload, 0, len(subs))
	for _, sub := range subs {
		res, err := svc.DownloadSubmission(ctx, courseID, workID, sub.ID, root)
		results = append(results, SubmissionDownload{SubmissionID: sub.ID, Result: res, Err: err})
	}
	return results, nil
}

// GradeEntry is one submission's grading state joined with the student.
type GradeEntry struct {
	Submission StudentSubmission
	Profile    StudentProfile
}

func (svc *Service) GradeReport(ctx context.Context, courseID, workID string) ([]GradeEntry, error) {
	subs, err := svc.submissions.ListSubmissions(ctx, courseID, workID)
	if err != nil {
		return nil, err
	}
	entries := make([]GradeEntry, 0, len(subs))
	for _, sub := range subs {
		entries = append(entries, GradeEntry{Submission: sub, Profile: svc.profile(ctx, sub.UserID)})
	}
	return entries, nil
}
