package api

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	maxTitleLength       = 80
	maxDescriptionLength = 500
)

// allowedUploadExtensions whitelists the container formats accepted for an
// original upload.
var allowedUploadExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
}

func validateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("title exceeds %d characters", maxTitleLength)
	}
	if containsMarkup(title) {
		return fmt.Errorf("title must not contain HTML")
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > maxDescriptionLength {
		return fmt.Errorf("description exceeds %d characters", maxDescriptionLength)
	}
	if containsMarkup(description) {
		return fmt.Errorf("description must not contain HTML")
	}
	return nil
}

func validateUploadFilename(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedUploadExtensions[ext] {
		return fmt.Errorf("unsupported file extension %q", ext)
	}
	return nil
}

func containsMarkup(s string) bool {
	return strings.ContainsAny(s, "<>")
}
