package googleapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/trezcool/darasa/core/classroom"
)

type CourseWorkRepository struct {
	client *Client
}

var _ classroom.CourseWorkRepository = (*CourseWorkRepository)(nil)

func NewCourseWorkRepository(client *Client) *CourseWorkRepository {
	return &CourseWorkRepository{client: client}
}

func (repo *CourseWorkRepository) ListCourseWork(ctx context.Context, courseID string) ([]classroom.CourseWork, error) {
	var out struct {
		CourseWork []classroom.CourseWork `json:"courseWork"`
	}
	url := fmt.Sprintf("%s/courses/%s/courseWork", repo.client.ClassroomURL, courseID)
	if err := repo.client.doJSON(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}
	return out.CourseWork, nil
}
