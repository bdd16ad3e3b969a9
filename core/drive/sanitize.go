package drive

import "strings"

// placeholderName replaces names that sanitize down to nothing.
const placeholderName = "untitled"

const invalidNameChars = `<>:"/\|?*`

// SanitizeFileName strips characters disallowed on common filesystems
// and trims leading/trailing dots and spaces. Sanitizing an already
// sanitized name is a no-op.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(invalidNameChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.Trim(b.String(), ". ")
	if cleaned == "" {
		return placeholderName
	}
	return cleaned
}

// SanitizeDirName sanitizes a name for use as a directory segment;
// spaces become underscores so student folders stay shell-friendly.
func SanitizeDirName(name string) string {
	return strings.ReplaceAll(SanitizeFileName(name), " ", "_")
}
