package analysis

import "strings"

func isImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

func isText(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/")
}
