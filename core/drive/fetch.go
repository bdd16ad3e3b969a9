package drive

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Fetch persists one remote file under destDir and reports the method
// used. Workspace-native documents are exported to their mapped format,
// with a PDF export attempted when the mapped export fails; regular
// files are downloaded directly, falling back to export when the
// transport signals ErrExportRequired. fallbackName is used when the
// file metadata cannot be fetched.
func Fetch(ctx context.Context, t Transport, fileID, fallbackName, destDir string) (string, Method, error) {
	name := fallbackName
	var mimeType string

	info, err := t.FileInfo(ctx, fileID)
	if err == nil {
		if info.Name != "" {
			name = info.Name
		}
		mimeType = info.MimeType
	}
	// a failed metadata fetch is not fatal: attempt a direct download
	// under the caller-provided name

	if strings.HasPrefix(mimeType, WorkspacePrefix) {
		return export(ctx, t, fileID, name, mimeType, destDir)
	}

	destPath := filepath.Join(destDir, SanitizeFileName(name))
	err = t.Download(ctx, fileID, destPath)
	if err == nil {
		return destPath, MethodDirectDownload, nil
	}
	if errors.Cause(err) == ErrExportRequired {
		return export(ctx, t, fileID, name, mimeType, destDir)
	}
	return "", MethodErrorStub, errors.Wrapf(err, "downloading file %s", fileID)
}

func export(ctx context.Context, t Transport, fileID, name, mimeType, destDir string) (string, Method, error) {
	format, ok := FormatFor(mimeType)
	if !ok {
		return "", MethodErrorStub, &UnsupportedExportTypeError{MimeType: mimeType}
	}

	destPath := filepath.Join(destDir, ExportFileName(name, format.Ext))
	err := t.Export(ctx, fileID, format.MimeType, destPath)
	if err == nil {
		return destPath, MethodExport, nil
	}
	// a mapping that already targets PDF has no distinct fallback to try
	if format.MimeType == PDFExport.MimeType {
		return "", MethodErrorStub, errors.Wrapf(err, "exporting file %s", fileID)
	}

	destPath = filepath.Join(destDir, ExportFileName(name, PDFExport.Ext))
	if err := t.Export(ctx, fileID, PDFExport.MimeType, destPath); err != nil {
		return "", MethodErrorStub, errors.Wrapf(err, "exporting file %s", fileID)
	}
	return destPath, MethodExportPDFFallback, nil
}
