package googleapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/trezcool/darasa/core/classroom"
)

type SubmissionRepository struct {
	client *Client
}

var _ classroom.SubmissionRepository = (*SubmissionRepository)(nil)

func NewSubmissionRepository(client *Client) *SubmissionRepository {
	return &SubmissionRepository{client: client}
}

func (repo *SubmissionRepository) submissionsURL(courseID, workID string) string {
	return fmt.Sprintf("%s/courses/%s/courseWork/%s/studentSubmissions", repo.client.ClassroomURL, courseID, workID)
}

func (repo *SubmissionRepository) ListSubmissions(ctx context.Context, courseID, workID string) ([]classroom.StudentSubmission, error) {
	var out struct {
		StudentSubmissions []classroom.StudentSubmission `json:"studentSubmissions"`
	}
	if err := repo.client.doJSON(ctx, http.MethodGet, repo.submissionsURL(courseID, workID), nil, &out); err != nil {
		return nil, err
	}
	return out.StudentSubmissions, nil
}

func (repo *SubmissionRepository) GetSubmission(ctx context.Context, courseID, workID, id string) (classroom.StudentSubmission, error) {
	var sub classroom.StudentSubmission
	url := repo.submissionsURL(courseID, workID) + "/" + id
	err := repo.client.doJSON(ctx, http.MethodGet, url, nil, &sub)
	return sub, err
}

func (repo *SubmissionRepository) AddComment(ctx context.Context, courseID, workID, id string, comment classroom.NewComment) error {
	url := repo.submissionsURL(courseID, workID) + "/" + id + ":modifyAttachments"
	payload := map[string]interface{}{
		"privateComment": map[string]string{"text": comment.Text},
	}
	return repo.client.doJSON(ctx, http.MethodPost, url, payload, nil)
}

func (repo *SubmissionRepository) PatchGrades(ctx context.Context, courseID, workID, id string, draft, assigned *float64) error {
	payload := make(map[string]interface{}, 2)
	var mask []string
	if draft != nil {
		payload["draftGrade"] = *draft
		mask = append(mask, "draftGrade")
	}
	if assigned != nil {
		payload["assignedGrade"] = *assigned
		mask = append(mask, "assignedGrade")
	}
	if len(mask) == 0 {
		return nil
	}
	url := fmt.Sprintf("%s/%s?updateMask=%s", repo.submissionsURL(courseID, workID), id, strings.Join(mask, ","))
	return repo.client.doJSON(ctx, http.MethodPatch, url, payload, nil)
}

func (repo *SubmissionRepository) ReturnSubmission(ctx context.Context, courseID, workID, id string) error {
	url := repo.submissionsURL(courseID, workID) + "/" + id + ":return"
	return repo.client.doJSON(ctx, http.MethodPost, url, struct{}{}, nil)
}
