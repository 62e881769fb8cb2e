package preflight

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"voicereel/internal/config"
	"voicereel/internal/services"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckDirectoryReadable verifies that the directory exists and can be listed.
func CheckDirectoryReadable(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// MissingInput describes one unusable input.
type MissingInput struct {
	Field  string
	Path   string
	Reason string
}

// MissingInputError lists every unusable input of a character job.
type MissingInputError struct {
	CharacterID string
	Missing     []MissingInput
}

func (e *MissingInputError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s %s (%s)", m.Field, m.Path, m.Reason))
	}
	return fmt.Sprintf("character %s: %d missing input(s): %s", e.CharacterID, len(e.Missing), strings.Join(parts, "; "))
}

func (e *MissingInputError) Unwrap() error { return services.ErrMissingInput }

// CheckInputs verifies every file a character job reads before any work
// starts. It returns a *MissingInputError naming all problems at once.
func CheckInputs(ch config.Character) error {
	report := &MissingInputError{CharacterID: ch.ID}
	files := []struct {
		field    string
		path     string
		optional bool
	}{
		{field: "image", path: ch.Image},
		{field: "background", path: ch.Background},
		{field: "overlay", path: ch.Overlay, optional: true},
		{field: "table", path: ch.Table},
	}
	for _, f := range files {
		if f.optional && strings.TrimSpace(f.path) == "" {
			continue
		}
		if reason := checkFile(f.path); reason != "" {
			report.Missing = append(report.Missing, MissingInput{Field: f.field, Path: f.path, Reason: reason})
		}
	}
	if r := CheckDirectoryReadable("audio_dir", ch.AudioDir); !r.Passed {
		report.Missing = append(report.Missing, MissingInput{Field: "audio_dir", Path: ch.AudioDir, Reason: detailReason(r.Detail)})
	}
	if len(report.Missing) == 0 {
		return nil
	}
	return report
}

// AsMissingInput extracts a *MissingInputError from err.
func AsMissingInput(err error) (*MissingInputError, bool) {
	var target *MissingInputError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func checkFile(path string) string {
	if strings.TrimSpace(path) == "" {
		return "not configured"
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "does not exist"
		}
		return fmt.Sprintf("stat: %v", err)
	}
	if info.IsDir() {
		return "is a directory"
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return fmt.Sprintf("not readable: %v", err)
	}
	return ""
}

func detailReason(detail string) string {
	if i := strings.Index(detail, "(error: "); i >= 0 {
		return strings.TrimSuffix(detail[i+len("(error: "):], ")")
	}
	return detail
}
