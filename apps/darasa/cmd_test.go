package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/drive"
	authsvc "github.com/trezcool/darasa/services/auth"
)

func init() {
	color.NoColor = true
}

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

type (
	fakeCourseRepo struct{ courses []classroom.Course }

	fakeWorkRepo struct{ work []classroom.CourseWork }

	fakeSubmissionRepo struct {
		subs     []classroom.StudentSubmission
		comments []string
		patches  int
		returned []string
	}

	fakeStudentRepo struct{ profiles map[string]classroom.StudentProfile }

	fakeTransport struct{}
)

func (r *fakeCourseRepo) ListCourses(ctx context.Context) ([]classroom.Course, error) {
	return r.courses, nil
}

func (r *fakeCourseRepo) GetCourse(ctx context.Context, id string) (classroom.Course, error) {
	for _, c := range r.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return classroom.Course{}, errors.Errorf("course %s not found", id)
}

func (r *fakeWorkRepo) ListCourseWork(ctx context.Context, courseID string) ([]classroom.CourseWork, error) {
	return r.work, nil
}

func (r *fakeSubmissionRepo) ListSubmissions(ctx context.Context, courseID, workID string) ([]classroom.StudentSubmission, error) {
	return r.subs, nil
}

func (r *fakeSubmissionRepo) GetSubmission(ctx context.Context, courseID, workID, id string) (classroom.StudentSubmission, error) {
	for _, s := range r.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return classroom.StudentSubmission{}, errors.Errorf("submission %s not found", id)
}

func (r *fakeSubmissionRepo) AddComment(ctx context.Context, courseID, workID, id string, comment classroom.NewComment) error {
	r.comments = append(r.comments, comment.Text)
	return nil
}

func (r *fakeSubmissionRepo) PatchGrades(ctx context.Context, courseID, workID, id string, draft, assigned *float64) error {
	r.patches++
	return nil
}

func (r *fakeSubmissionRepo) ReturnSubmission(ctx context.Context, courseID, workID, id string) error {
	r.returned = append(r.returned, id)
	return nil
}

func (r *fakeStudentRepo) GetProfile(ctx context.Context, userID string) (classroom.StudentProfile, error) {
	profile, ok := r.profiles[userID]
	if !ok {
		return classroom.StudentProfile{}, errors.Errorf("profile %s not found", userID)
	}
	return profile, nil
}

func (fakeTransport) FileInfo(ctx context.Context, fileID string) (drive.File, error) {
	return drive.File{ID: fileID, Name: "notes.txt", MimeType: "text/plain"}, nil
}

func (fakeTransport) Download(ctx context.Context, fileID, destPath string) error {
	return os.WriteFile(destPath, []byte("content"), 0o644)
}

func (fakeTransport) Export(ctx context.Context, fileID, mimeType, destPath string) error {
	return os.WriteFile(destPath, []byte("exported"), 0o644)
}

func setup(t *testing.T) (*commandLine, *fakeSubmissionRepo, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	conf := &core.Config{
		CourseID:    "c1",
		DownloadDir: filepath.Join(dir, "downloads"),
		Google: core.GoogleConfig{
			ServiceAccountFile: filepath.Join(dir, "credentials.json"),
			TokenFile:          filepath.Join(dir, "token.json"),
			RequestTimeout:     time.Second,
		},
	}

	subs := &fakeSubmissionRepo{subs: []classroom.StudentSubmission{
		{ID: "s1", UserID: "u1", State: "TURNED_IN", AssignmentSubmission: classroom.AssignmentSubmission{
			Attachments: []classroom.Attachment{
				{DriveFile: &classroom.DriveFile{ID: "f1", Title: "notes.txt"}},
			},
		}},
		{ID: "s2", UserID: "u2", State: "CREATED"},
	}}

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	svc := classroom.NewService(
		&fakeCourseRepo{courses: []classroom.Course{
			{ID: "c1", Name: "Algorithms"},
			{ID: "c2", Name: "Operating Systems"},
		}},
		&fakeWorkRepo{work: []classroom.CourseWork{
			{ID: "w1", Title: "Lab 1: Sorting"},
			{ID: "w2", Title: "Lab 2: Graphs"},
		}},
		subs,
		&fakeStudentRepo{profiles: map[string]classroom.StudentProfile{
			"u1": {ID: "u1", Name: classroom.Name{FullName: "Jane van Dyk"}, EmailAddress: "jane@school.test"},
			"u2": {ID: "u2", Name: classroom.Name{FullName: "Ed Mart"}, EmailAddress: "ed@school.test"},
		}},
		classroom.NewMaterializer(fakeTransport{}, testLogger{}),
		validate,
		translator,
		testLogger{},
	)

	out := &bytes.Buffer{}
	cli := &commandLine{
		conf:   conf,
		svc:    svc,
		drive:  fakeTransport{},
		tokens: authsvc.NewSource(conf, testLogger{}),
		log:    testLogger{},
		out:    out,
	}
	return cli, subs, out
}

type cliTest struct {
	name       string
	args       []string
	wantErrStr string
	wantOut    string // substring expected in the command output
	extra      interface{}
}

func runCLI(t *testing.T, cli *commandLine, args []string) error {
	t.Helper()
	root := cli.rootCommand()
	root.SetArgs(args)
	root.SetOut(cli.out.(*bytes.Buffer))
	root.SetErr(cli.out.(*bytes.Buffer))
	return root.Execute()
}

func Test_commandLine_course(t *testing.T) {
	tests := []cliTest{
		{name: "list", args: []string{"course", "list"}, wantOut: "Algorithms"},
		{name: "get by id", args: []string{"course", "get", "c2"}, wantOut: "Operating Systems"},
		{name: "get by fragment", args: []string{"course", "get", "algo"}, wantOut: "Algorithms"},
		{name: "get unknown", args: []string{"course", "get", "chemistry"}, wantErrStr: `no match found for "chemistry"`},
		{name: "current uses configured course", args: []string{"course", "current"}, wantOut: "Algorithms"},
		{name: "work", args: []string{"course", "work"}, wantOut: "Lab 1: Sorting"},
		{name: "work by course fragment", args: []string{"course", "work", "-c", "operating"}, wantOut: "Lab 1: Sorting"},
		{name: "submissions", args: []string{"course", "submissions", "sorting"}, wantOut: "s1"},
		{
			name:       "ambiguous assignment",
			args:       []string{"course", "submissions", "lab"},
			wantErrStr: `"lab" matches more than one entry: Lab 1: Sorting (w1), Lab 2: Graphs (w2)`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, _, out := setup(t)
			err := runCLI(t, cli, tt.args)
			if tt.wantErrStr != "" {
				if err == nil || err.Error() != tt.wantErrStr {
					t.Fatalf("Execute() error = %v, wantErrStr %q", err, tt.wantErrStr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output = %q, want it to contain %q", out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_courseNotConfigured(t *testing.T) {
	cli, _, _ := setup(t)
	cli.conf.CourseID = ""

	err := runCLI(t, cli, []string{"course", "work"})
	if err == nil || !strings.Contains(err.Error(), "no course given") {
		t.Errorf("Execute() error = %v, want a missing-course error", err)
	}
}

func Test_commandLine_submission(t *testing.T) {
	tests := []cliTest{
		{name: "list", args: []string{"submission", "list", "sorting"}, wantOut: "Jane van Dyk"},
		{name: "info", args: []string{"submission", "info", "sorting", "s1"}, wantOut: "jane@school.test"},
		{name: "attachments", args: []string{"submission", "attachments", "sorting", "s1"}, wantOut: "notes.txt"},
		{name: "no attachments", args: []string{"submission", "attachments", "sorting", "s2"}, wantOut: "No attachments"},
		{name: "comment", args: []string{"submission", "comment", "sorting", "s1", "well done"}, wantOut: "Comment added"},
		{name: "grade", args: []string{"submission", "grade", "sorting", "s1", "85"}, wantOut: "Grade 85 assigned to Jane van Dyk"},
		{name: "draft grade", args: []string{"submission", "draft-grade", "sorting", "s1", "70"}, wantOut: "Grade 70 assigned"},
		{name: "invalid grade", args: []string{"submission", "grade", "sorting", "s1", "lol"}, wantErrStr: `invalid grade "lol"`},
		{name: "negative grade", args: []string{"submission", "grade", "sorting", "s1", "--", "-3"}, wantErrStr: "failed on the 'gte' tag"},
		{name: "return", args: []string{"submission", "return", "sorting", "s1"}, wantOut: "returned"},
		{name: "show grades", args: []string{"submission", "show-grades", "sorting"}, wantOut: "ungraded: 2"},
		{name: "draft grade all", args: []string{"submission", "draft-grade-all", "sorting", "60"}, wantOut: "Draft graded 2/2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, _, out := setup(t)
			err := runCLI(t, cli, tt.args)
			if tt.wantErrStr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErrStr) {
					t.Fatalf("Execute() error = %v, wantErrStr %q", err, tt.wantErrStr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output = %q, want it to contain %q", out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_download(t *testing.T) {
	cli, _, out := setup(t)

	if err := runCLI(t, cli, []string{"submission", "download", "sorting", "s1"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	saved := filepath.Join(cli.conf.DownloadDir, "Jane_van_Dyk", "notes.txt")
	if _, err := os.Stat(saved); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
	if !strings.Contains(out.String(), "notes.txt") {
		t.Errorf("output = %q, want the saved file listed", out.String())
	}
}

func Test_commandLine_downloadAll(t *testing.T) {
	cli, _, out := setup(t)

	if err := runCLI(t, cli, []string{"submission", "download-all", "sorting"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	// s1 has a real attachment, s2 only gets the empty marker
	if _, err := os.Stat(filepath.Join(cli.conf.DownloadDir, "Jane_van_Dyk", "notes.txt")); err != nil {
		t.Errorf("s1 download missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cli.conf.DownloadDir, "Ed_Mart", "_no_attachments.txt")); err != nil {
		t.Errorf("s2 marker missing: %v", err)
	}
	if !strings.Contains(out.String(), "2 submissions processed") {
		t.Errorf("output = %q, want the sweep summary", out.String())
	}
}

func Test_commandLine_gradeSheet(t *testing.T) {
	cli, subs, out := setup(t)
	sheet := filepath.Join(t.TempDir(), "grades.csv")

	if err := runCLI(t, cli, []string{"submission", "export-grades", "sorting", "-o", sheet}); err != nil {
		t.Fatalf("export-grades error = %v", err)
	}
	if !strings.Contains(out.String(), "Exported 2 submissions") {
		t.Errorf("output = %q, want the export summary", out.String())
	}

	// fill in one grade and import, first as a dry run
	data, err := os.ReadFile(sheet)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i, line := range lines {
		if strings.Contains(line, "s1") {
			lines[i] = line + "88.5"
		}
	}
	if err := os.WriteFile(sheet, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := runCLI(t, cli, []string{"submission", "import-grades", "sorting", sheet}); err != nil {
		t.Fatalf("import-grades (dry run) error = %v", err)
	}
	if !strings.Contains(out.String(), "Dry run") || !strings.Contains(out.String(), "would assign 88.5") {
		t.Errorf("output = %q, want a dry-run plan", out.String())
	}
	if subs.patches != 0 {
		t.Errorf("dry run wrote %d grades, want 0", subs.patches)
	}

	out.Reset()
	if err := runCLI(t, cli, []string{"submission", "import-grades", "sorting", sheet, "--apply"}); err != nil {
		t.Fatalf("import-grades --apply error = %v", err)
	}
	if !strings.Contains(out.String(), "Applied 1 grades") {
		t.Errorf("output = %q, want the applied summary", out.String())
	}
	if subs.patches != 1 {
		t.Errorf("applied %d grades, want 1", subs.patches)
	}
}

func Test_commandLine_drive(t *testing.T) {
	cli, _, out := setup(t)

	if err := runCLI(t, cli, []string{"drive", "info", "f1"}); err != nil {
		t.Fatalf("drive info error = %v", err)
	}
	if !strings.Contains(out.String(), "notes.txt") {
		t.Errorf("output = %q, want the file name", out.String())
	}

	out.Reset()
	if err := runCLI(t, cli, []string{"drive", "download", "f1"}); err != nil {
		t.Fatalf("drive download error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(cli.conf.DownloadDir, "notes.txt")); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
}

func Test_commandLine_authLogin(t *testing.T) {
	type extra struct {
		secret    string
		promptErr error
	}
	tests := []cliTest{
		{
			name:       "prompt failure aborts the login",
			args:       []string{"auth", "login"},
			extra:      extra{promptErr: errors.New("prompt aborted")},
			wantErrStr: "prompt aborted",
		},
		{
			name:  "prompted secret feeds the login",
			args:  []string{"auth", "login"},
			extra: extra{secret: "s3cret"},
			// the callback server cannot bind, so the flow fails after the
			// prompt; the captured secret is asserted below
			wantErrStr: "starting callback server",
		},
	}
	for _, tt := range tests {
		var prompted bool
		readPasswordFunc = func(fd int) ([]byte, error) {
			prompted = true
			extra := tt.extra.(extra)
			return []byte(extra.secret), extra.promptErr
		}

		t.Run(tt.name, func(t *testing.T) {
			cli, _, _ := setup(t)
			cli.conf.Google.ClientID = "client-id"
			cli.conf.Google.RedirectPort = -1

			err := runCLI(t, cli, tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.wantErrStr) {
				t.Fatalf("Execute() error = %v, wantErrStr %q", err, tt.wantErrStr)
			}
			if !prompted {
				t.Error("client secret was not prompted for")
			}
			if extra := tt.extra.(extra); extra.promptErr == nil && cli.conf.Google.ClientSecret != extra.secret {
				t.Errorf("ClientSecret = %q, want the prompted %q", cli.conf.Google.ClientSecret, extra.secret)
			}
		})
	}
	readPasswordFunc = term.ReadPassword // reset
}

func Test_commandLine_authReset(t *testing.T) {
	cli, _, out := setup(t)
	if err := os.WriteFile(cli.conf.Google.TokenFile, []byte(`{"access_token": "tok"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := runCLI(t, cli, []string{"auth", "reset"}); err != nil {
		t.Fatalf("auth reset error = %v", err)
	}
	if _, err := os.Stat(cli.conf.Google.TokenFile); !os.IsNotExist(err) {
		t.Error("auth reset left the token cache behind")
	}
	if !strings.Contains(out.String(), "reset") {
		t.Errorf("output = %q, want the reset confirmation", out.String())
	}
}
