package nameplate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SanitizeName turns a name into a file name fragment.
func SanitizeName(name string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(name, "-"), "-")
	if s == "" {
		return "nameplate"
	}
	return s
}

// Filename is the download name of an export taken at t.
func Filename(name string, t time.Time) string {
	return fmt.Sprintf("nameplate-%s-%d.png", SanitizeName(name), t.UnixMilli())
}
