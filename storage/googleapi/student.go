package googleapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/trezcool/darasa/core/classroom"
)

type StudentRepository struct {
	client *Client
}

var _ classroom.StudentRepository = (*StudentRepository)(nil)

func NewStudentRepository(client *Client) *StudentRepository {
	return &StudentRepository{client: client}
}

func (repo *StudentRepository) GetProfile(ctx context.Context, userID string) (classroom.StudentProfile, error) {
	var profile classroom.StudentProfile
	url := fmt.Sprintf("%s/userProfiles/%s", repo.client.ClassroomURL, userID)
	err := repo.client.doJSON(ctx, http.MethodGet, url, nil, &profile)
	return profile, err
}
