package drive

import (
	"path/filepath"
	"strings"
)

// WorkspacePrefix identifies Google-native document formats that cannot
// be downloaded as raw bytes.
const WorkspacePrefix = "application/vnd.google-apps."

// ExportFormat is the output format a workspace document is converted to.
type ExportFormat struct {
	MimeType string
	Ext      string
}

// PDFExport is the fallback format attempted when the mapped export fails.
var PDFExport = ExportFormat{MimeType: "application/pdf", Ext: ".pdf"}

var exportFormats = map[string]ExportFormat{
	WorkspacePrefix + "document": {
		MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Ext:      ".docx",
	},
	WorkspacePrefix + "spreadsheet": {
		MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Ext:      ".xlsx",
	},
	WorkspacePrefix + "presentation": {
		MimeType: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		Ext:      ".pptx",
	},
	WorkspacePrefix + "drawing": {MimeType: "image/png", Ext: ".png"},
	WorkspacePrefix + "form":    {MimeType: "application/pdf", Ext: ".pdf"},
	WorkspacePrefix + "script":  {MimeType: "application/vnd.google-apps.script+json", Ext: ".json"},
}

// FormatFor returns the export format mapped to a workspace MIME type.
func FormatFor(mimeType string) (ExportFormat, bool) {
	f, ok := exportFormats[mimeType]
	return f, ok
}

// ExportFileName derives the local filename for an exported document:
// the sanitized title, any existing extension stripped, plus the mapped
// extension. A title already carrying the mapped extension (in any case)
// does not get it twice.
func ExportFileName(title, ext string) string {
	name := SanitizeFileName(title)
	if cur := filepath.Ext(name); cur != "" {
		name = strings.TrimSuffix(name, cur)
	}
	if name == "" {
		name = placeholderName
	}
	return name + ext
}
