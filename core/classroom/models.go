package classroom

import (
	"encoding/json"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type (
	// Course is a Google Classroom course.
	Course struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Section       string `json:"section,omitempty"`
		Room          string `json:"room,omitempty"`
		CourseState   string `json:"courseState,omitempty"`
		AlternateLink string `json:"alternateLink,omitempty"`
	}

	// CourseWork is an assignment posted to a course.
	CourseWork struct {
		ID           string    `json:"id"`
		Title        string    `json:"title"`
		Description  string    `json:"description,omitempty"`
		State        string    `json:"state,omitempty"`
		MaxPoints    float64   `json:"maxPoints,omitempty"`
		CreationTime time.Time `json:"creationTime,omitempty"`
		UpdateTime   time.Time `json:"updateTime,omitempty"`
	}

	// StudentSubmission is one student's submission for an assignment.
	StudentSubmission struct {
		ID                   string               `json:"id"`
		UserID               string               `json:"userId"`
		State                string               `json:"state,omitempty"`
		Late                 bool                 `json:"late,omitempty"`
		DraftGrade           *float64             `json:"draftGrade,omitempty"`
		AssignedGrade        *float64             `json:"assignedGrade,omitempty"`
		CreationTime         time.Time            `json:"creationTime,omitempty"`
		UpdateTime           time.Time            `json:"updateTime,omitempty"`
		AlternateLink        string               `json:"alternateLink,omitempty"`
		AssignmentSubmission AssignmentSubmission `json:"assignmentSubmission,omitempty"`
	}

	AssignmentSubmission struct {
		Attachments []Attachment `json:"attachments,omitempty"`
	}

	// StudentProfile is the roster profile of a course member.
	StudentProfile struct {
		ID           string `json:"id"`
		Name         Name   `json:"name"`
		EmailAddress string `json:"emailAddress,omitempty"`
	}

	Name struct {
		GivenName  string `json:"givenName,omitempty"`
		FamilyName string `json:"familyName,omitempty"`
		FullName   string `json:"fullName,omitempty"`
	}
)

// Attachment is one submission attachment. Exactly one of the variant
// fields is set; unrecognized variants keep their raw fields in Raw.
type Attachment struct {
	DriveFile    *DriveFile
	YouTubeVideo *YouTubeVideo
	Link         *Link
	Raw          map[string]interface{}
}

type (
	DriveFile struct {
		ID            string `json:"id"`
		Title         string `json:"title,omitempty"`
		AlternateLink string `json:"alternateLink,omitempty"`
	}

	YouTubeVideo struct {
		ID            string `json:"id"`
		Title         string `json:"title,omitempty"`
		AlternateLink string `json:"alternateLink,omitempty"`
	}

	Link struct {
		URL   string `json:"url"`
		Title string `json:"title,omitempty"`
	}
)

func (a *Attachment) UnmarshalJSON(data []byte) error {
	var known struct {
		DriveFile    *DriveFile    `json:"driveFile"`
		YouTubeVideo *YouTubeVideo `json:"youTubeVideo"`
		Link         *Link         `json:"link"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	a.DriveFile = known.DriveFile
	a.YouTubeVideo = known.YouTubeVideo
	a.Link = known.Link
	if a.DriveFile == nil && a.YouTubeVideo == nil && a.Link == nil {
		return json.Unmarshal(data, &a.Raw)
	}
	return nil
}

func (a Attachment) MarshalJSON() ([]byte, error) {
	switch {
	case a.DriveFile != nil:
		return json.Marshal(map[string]interface{}{"driveFile": a.DriveFile})
	case a.YouTubeVideo != nil:
		return json.Marshal(map[string]interface{}{"youTubeVideo": a.YouTubeVideo})
	case a.Link != nil:
		return json.Marshal(map[string]interface{}{"link": a.Link})
	}
	return json.Marshal(a.Raw)
}

// NewComment is a private comment to post on a submission.
type NewComment struct {
	Text string `json:"text" validate:"required"`
}

func (c NewComment) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.TranslateValidationError(validate.Struct(c), translator)
}

// NewGrade is a numeric grade to write on a submission.
type NewGrade struct {
	Points float64 `json:"points" validate:"gte=0"`
}

func (g NewGrade) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.TranslateValidationError(validate.Struct(g), translator)
}
