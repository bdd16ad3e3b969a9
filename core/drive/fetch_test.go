package drive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

// fakeTransport scripts the transport behavior per call.
type fakeTransport struct {
	info        File
	infoErr     error
	downloadErr error
	// export errors per target MIME type; a missing entry means success
	exportErr map[string]error

	exportCalls []string
}

func (f *fakeTransport) FileInfo(ctx context.Context, fileID string) (File, error) {
	return f.info, f.infoErr
}

func (f *fakeTransport) Download(ctx context.Context, fileID, destPath string) error {
	if f.downloadErr != nil {
		return f.downloadErr
	}
	return os.WriteFile(destPath, []byte("content"), 0o644)
}

func (f *fakeTransport) Export(ctx context.Context, fileID, mimeType, destPath string) error {
	f.exportCalls = append(f.exportCalls, mimeType)
	if err, ok := f.exportErr[mimeType]; ok {
		return err
	}
	return os.WriteFile(destPath, []byte("exported"), 0o644)
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	docxMime := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	tests := []struct {
		name       string
		transport  *fakeTransport
		wantFile   string
		wantMethod Method
		wantErr    bool
	}{
		{
			name:       "direct download",
			transport:  &fakeTransport{info: File{Name: "notes.txt", MimeType: "text/plain"}},
			wantFile:   "notes.txt",
			wantMethod: MethodDirectDownload,
		},
		{
			name:       "metadata failure falls back to provided name",
			transport:  &fakeTransport{infoErr: errors.New("boom")},
			wantFile:   "fallback.bin",
			wantMethod: MethodDirectDownload,
		},
		{
			name:       "workspace document exported",
			transport:  &fakeTransport{info: File{Name: "Essay", MimeType: WorkspacePrefix + "document"}},
			wantFile:   "Essay.docx",
			wantMethod: MethodExport,
		},
		{
			name: "export required but no known format",
			transport: &fakeTransport{
				infoErr:     errors.New("boom"),
				downloadErr: errors.Wrap(ErrExportRequired, "fileNotDownloadable"),
			},
			wantErr: true,
		},
		{
			name: "mapped export fails, pdf fallback",
			transport: &fakeTransport{
				info:      File{Name: "Essay", MimeType: WorkspacePrefix + "document"},
				exportErr: map[string]error{docxMime: errors.New("export too large")},
			},
			wantFile:   "Essay.pdf",
			wantMethod: MethodExportPDFFallback,
		},
		{
			name: "pdf fallback fails too",
			transport: &fakeTransport{
				info: File{Name: "Essay", MimeType: WorkspacePrefix + "document"},
				exportErr: map[string]error{
					docxMime:          errors.New("export too large"),
					"application/pdf": errors.New("export too large"),
				},
			},
			wantErr: true,
		},
		{
			name:      "unmapped workspace type",
			transport: &fakeTransport{info: File{Name: "Shared", MimeType: WorkspacePrefix + "folder"}},
			wantErr:   true,
		},
		{
			name: "download fails hard",
			transport: &fakeTransport{
				info:        File{Name: "notes.txt", MimeType: "text/plain"},
				downloadErr: errors.New("connection reset"),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path, method, err := Fetch(ctx, tt.transport, "file1", "fallback.bin", dir)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Fetch() = (%q, %s), want error", path, method)
				}
				if method != MethodErrorStub {
					t.Errorf("Fetch() method = %s, want %s", method, MethodErrorStub)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() unexpected error = %v", err)
			}
			if want := filepath.Join(dir, tt.wantFile); path != want {
				t.Errorf("Fetch() path = %q, want %q", path, want)
			}
			if method != tt.wantMethod {
				t.Errorf("Fetch() method = %s, want %s", method, tt.wantMethod)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("Fetch() did not write %s: %v", path, err)
			}
		})
	}
}

func TestFetch_pdfMappedExportNotRetried(t *testing.T) {
	// the form mapping targets PDF already; a failed export must not be
	// repeated as an identical "fallback" call
	transport := &fakeTransport{
		info:      File{Name: "Survey", MimeType: WorkspacePrefix + "form"},
		exportErr: map[string]error{"application/pdf": errors.New("export too large")},
	}

	_, method, err := Fetch(context.Background(), transport, "file1", "", t.TempDir())
	if err == nil {
		t.Fatal("Fetch() error = nil, want the export failure")
	}
	if method != MethodErrorStub {
		t.Errorf("Fetch() method = %s, want %s", method, MethodErrorStub)
	}
	if len(transport.exportCalls) != 1 {
		t.Errorf("exportCalls = %v, want a single attempt", transport.exportCalls)
	}
}

func TestFetch_unsupportedExportError(t *testing.T) {
	transport := &fakeTransport{info: File{Name: "Shared", MimeType: WorkspacePrefix + "folder"}}

	_, _, err := Fetch(context.Background(), transport, "file1", "", t.TempDir())
	var unsupported *UnsupportedExportTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Fetch() error = %v, want *UnsupportedExportTypeError", err)
	}
	if unsupported.MimeType != WorkspacePrefix+"folder" {
		t.Errorf("MimeType = %q, want %q", unsupported.MimeType, WorkspacePrefix+"folder")
	}
	if len(transport.exportCalls) != 0 {
		t.Errorf("exportCalls = %v, want no export attempts", transport.exportCalls)
	}
}
