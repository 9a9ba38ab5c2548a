package download

import (
	"mime"
	"strings"
)

// DefaultExtension is used when the media type is unknown or the probe fails.
const DefaultExtension = ".html"

// preferredExtensions pins the extension for types where the system table
// lists several candidates.
var preferredExtensions = map[string]string{
	"text/html":              ".html",
	"text/plain":             ".txt",
	"text/markdown":          ".md",
	"text/csv":               ".csv",
	"text/xml":               ".xml",
	"application/xml":        ".xml",
	"application/json":       ".json",
	"application/pdf":        ".pdf",
	"application/zip":        ".zip",
	"application/postscript": ".ps",
	"application/msword":     ".doc",
	"image/jpeg":             ".jpg",
	"image/png":              ".png",
	"image/gif":              ".gif",
}

// ExtensionForType maps a Content-Type header value to a file extension,
// including the leading dot. Unknown types yield "".
func ExtensionForType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if ext, ok := preferredExtensions[mediaType]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
