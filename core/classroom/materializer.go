package classroom

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/drive"
)

// marker written in a student folder when the submission has no attachments
const noAttachmentsMarker = "_no_attachments.txt"

// Materializer persists a submission's attachments under a per-student
// folder. Every attachment yields exactly one outcome, in input order;
// failures degrade to error stub files instead of aborting the batch.
type Materializer struct {
	transport drive.Transport
	log       core.Logger
}

func NewMaterializer(transport drive.Transport, log core.Logger) *Materializer {
	return &Materializer{transport: transport, log: log}
}

// MaterializeAll downloads all attachments of one submission into
// <root>/<sanitized student name>/. The student folder is created even
// when there is nothing to download, with a marker file recording the
// empty submission.
func (m *Materializer) MaterializeAll(
	ctx context.Context,
	attachments []Attachment,
	root, studentName, studentID string,
) ([]drive.Outcome, error) {
	dir := filepath.Join(root, drive.SanitizeDirName(studentName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating student folder %s", dir)
	}

	if len(attachments) == 0 {
		marker := filepath.Join(dir, noAttachmentsMarker)
		content := fmt.Sprintf("no attachments\nstudent: %s (%s)\n", studentName, studentID)
		if err := os.WriteFile(marker, []byte(content), 0o644); err != nil {
			return nil, errors.Wrap(err, "writing empty-submission marker")
		}
		return nil, nil
	}

	outcomes := make([]drive.Outcome, 0, len(attachments))
	for i, att := range attachments {
		outcomes = append(outcomes, m.materialize(ctx, i+1, att, dir))
	}
	return outcomes, nil
}

func (m *Materializer) materialize(ctx context.Context, n int, att Attachment, dir string) drive.Outcome {
	switch {
	case att.DriveFile != nil:
		path, method, err := drive.Fetch(ctx, m.transport, att.DriveFile.ID, att.DriveFile.Title, dir)
		if err != nil {
			m.log.Warn(fmt.Sprintf("attachment %d (%s): %v", n, att.DriveFile.ID, err), err)
			return m.errorStub(n, dir, att.DriveFile.Title, err)
		}
		return drive.Outcome{LocalPath: path, Method: method}

	case att.YouTubeVideo != nil:
		url := att.YouTubeVideo.AlternateLink
		if url == "" {
			url = "https://youtu.be/" + att.YouTubeVideo.ID
		}
		content := fmt.Sprintf("video: %s\nid: %s\nurl: %s\n", att.YouTubeVideo.Title, att.YouTubeVideo.ID, url)
		return m.stub(n, dir, drive.SanitizeFileName(att.YouTubeVideo.Title)+".txt", content, drive.MethodLinkStub)

	case att.Link != nil:
		content := fmt.Sprintf("link: %s\nurl: %s\n", att.Link.Title, att.Link.URL)
		return m.stub(n, dir, drive.SanitizeFileName(att.Link.Title)+".txt", content, drive.MethodLinkStub)
	}

	raw, err := json.MarshalIndent(att.Raw, "", "  ")
	if err != nil {
		return m.errorStub(n, dir, "", err)
	}
	name := fmt.Sprintf("unknown_attachment_%d.json", n)
	return m.stub(n, dir, name, string(raw)+"\n", drive.MethodMetadataStub)
}

func (m *Materializer) stub(n int, dir, name, content string, method drive.Method) drive.Outcome {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return m.errorStub(n, dir, name, err)
	}
	return drive.Outcome{LocalPath: path, Method: method}
}

// errorStub records a failed attachment as an auditable file so the
// failure is visible after the batch completes.
func (m *Materializer) errorStub(n int, dir, title string, cause error) drive.Outcome {
	path := filepath.Join(dir, fmt.Sprintf("error_attachment_%d.txt", n))
	content := fmt.Sprintf("attachment: %s\nerror: %v\n", title, cause)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		m.log.Error(fmt.Sprintf("writing error stub %s: %v", path, err), err)
	}
	return drive.Outcome{LocalPath: path, Method: drive.MethodErrorStub, Err: cause}
}
