package taskgraph

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// CopyTaskName returns the copy-task identifier for an image name,
// e.g. "webServer" → "dockerWebServerCopy".
func CopyTaskName(image string) string {
	return fmt.Sprintf("docker%sCopy", upperCamel(image))
}

// BuildTaskName returns the build-task identifier for an image name.
func BuildTaskName(image string) string {
	return fmt.Sprintf("docker%sBuild", upperCamel(image))
}

// PushTaskName returns the push-task identifier for an image name.
func PushTaskName(image string) string {
	return fmt.Sprintf("docker%sPush", upperCamel(image))
}

// upperCamel converts a lower-camel identifier to upper-camel:
// "webServer" → "WebServer".
func upperCamel(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
