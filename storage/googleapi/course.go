package googleapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/trezcool/darasa/core/classroom"
)

type CourseRepository struct {
	client *Client
}

var _ classroom.CourseRepository = (*CourseRepository)(nil)

func NewCourseRepository(client *Client) *CourseRepository {
	return &CourseRepository{client: client}
}

func (repo *CourseRepository) ListCourses(ctx context.Context) ([]classroom.Course, error) {
	var out struct {
		Courses []classroom.Course `json:"courses"`
	}
	url := repo.client.ClassroomURL + "/courses"
	if err := repo.client.doJSON(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}
	return out.Courses, nil
}

func (repo *CourseRepository) GetCourse(ctx context.Context, id string) (classroom.Course, error) {
	var course classroom.Course
	url := fmt.Sprintf("%s/courses/%s", repo.client.ClassroomURL, id)
	err := repo.client.doJSON(ctx, http.MethodGet, url, nil, &course)
	return course, err
}
