package googleapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/drive"
)

// DriveTransport implements drive.Transport against the Drive REST API.
type DriveTransport struct {
	client *Client
}

var _ drive.Transport = (*DriveTransport)(nil)

func NewDriveTransport(client *Client) *DriveTransport {
	return &DriveTransport{client: client}
}

func (t *DriveTransport) FileInfo(ctx context.Context, fileID string) (drive.File, error) {
	var file drive.File
	url := fmt.Sprintf("%s/files/%s?fields=id,name,mimeType,size,webViewLink", t.client.DriveURL, fileID)
	err := t.client.doJSON(ctx, http.MethodGet, url, nil, &file)
	return file, err
}

func (t *DriveTransport) Download(ctx context.Context, fileID, destPath string) error {
	url := fmt.Sprintf("%s/files/%s?alt=media", t.client.DriveURL, fileID)
	return t.fetchToFile(ctx, url, destPath)
}

func (t *DriveTransport) Export(ctx context.Context, fileID, mimeType, destPath string) error {
	exportURL := fmt.Sprintf("%s/files/%s/export?mimeType=%s", t.client.DriveURL, fileID, url.QueryEscape(mimeType))
	return t.fetchToFile(ctx, exportURL, destPath)
}

// fetchToFile streams the response into a temp file renamed into place
// on success, so a failed transfer never leaves a truncated file behind.
func (t *DriveTransport) fetchToFile(ctx context.Context, url, destPath string) error {
	resp, err := t.client.send(ctx, http.MethodGet, url, nil)
	if err != nil {
		return translateDownloadError(err)
	}
	defer resp.Body.Close()

	tmpPath := destPath + "." + uuid.New().String() + ".partial"
	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrap(err, "creating download file")
	}
	if _, err = io.Copy(f, resp.Body); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "writing download file")
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "closing download file")
	}
	return errors.Wrap(os.Rename(tmpPath, destPath), "finalizing download file")
}

// translateDownloadError maps the API's "this file must be exported"
// rejection to the sentinel the materializer falls back on.
func translateDownloadError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.HasReason("fileNotDownloadable") || apiErr.HasReason("exportOnly") {
			return errors.WithMessage(drive.ErrExportRequired, apiErr.Message)
		}
	}
	return err
}
