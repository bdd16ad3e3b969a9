package drive

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ErrExportRequired is returned by a Transport when a file holds no raw
// bytes and must be converted to a standard format before transfer.
var ErrExportRequired = errors.New("file does not support downloading, it must be exported")

type (
	// File is the metadata of a remote file.
	File struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		MimeType    string `json:"mimeType"`
		Size        int64  `json:"size,string,omitempty"`
		WebViewLink string `json:"webViewLink,omitempty"`
	}

	// Transport fetches file metadata and binary content from the remote
	// storage API. Implementations live in storage/googleapi.
	Transport interface {
		FileInfo(ctx context.Context, fileID string) (File, error)
		Download(ctx context.Context, fileID, destPath string) error
		Export(ctx context.Context, fileID, mimeType, destPath string) error
	}
)

// UnsupportedExportTypeError indicates a workspace-native file whose MIME
// type has no known export mapping.
type UnsupportedExportTypeError struct {
	MimeType string
}

func (e *UnsupportedExportTypeError) Error() string {
	return fmt.Sprintf("cannot download or export file type %q", e.MimeType)
}

// Method records how an attachment was persisted locally.
type Method string

const (
	MethodDirectDownload    Method = "download"
	MethodExport            Method = "export"
	MethodExportPDFFallback Method = "export_pdf_fallback"
	MethodLinkStub          Method = "link_stub"
	MethodMetadataStub      Method = "metadata_stub"
	MethodErrorStub         Method = "error_stub"
)

// Outcome is the result of materializing one attachment.
type Outcome struct {
	LocalPath string
	Method    Method
	Err       error // set when Method is MethodErrorStub
}
