package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"strings"
)

// FormatError indicates a submission archive could not be read or does not
// contain what the operation expects. FormatErrors are meant to be presented
// to submission owners.
type FormatError struct {
	// What names the part of the archive that was being read
	What string

	// Why indicates why reading failed
	Why string

	// InternalError is the non user presentable cause, logged for debug
	// purposes. Can be nil if the error is entirely caused by the
	// archive's content.
	InternalError error
}

// Error returns an internal error string which should not be shown to the user
func (e FormatError) Error() string {
	if e.InternalError != nil {
		return fmt.Sprintf("%s (%s)", e.UserError(), e.InternalError.Error())
	}

	return e.UserError()
}

// UserError returns an error string meant to be displayed to the user
func (e FormatError) UserError() string {
	return fmt.Sprintf("%s: %s", e.What, e.Why)
}

// LineCountError indicates a submission file holds the wrong number of lines
type LineCountError struct {
	// Name is the file inside the archive
	Name string

	// Expected and Found are line counts
	Expected int
	Found    int
}

// Error implements error
func (e LineCountError) Error() string {
	return fmt.Sprintf("%s must be %d lines, not %d", e.Name, e.Expected, e.Found)
}

// ExtractLines opens a tar archive, finds the named member file, and returns
// its lines. A trailing newline on the final line is not counted as an extra
// line. If expectedLines is positive the member must hold exactly that many
// lines.
func ExtractLines(archivePath, name string, expectedLines int) ([]string, error) {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return nil, FormatError{
			What:          "submission archive",
			Why:           "could not be opened",
			InternalError: err,
		}
	}
	defer archiveFile.Close()

	reader := tar.NewReader(archiveFile)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil, FormatError{
				What: "submission archive",
				Why:  fmt.Sprintf("does not contain %s", name),
			}
		} else if err != nil {
			return nil, FormatError{
				What:          "submission archive",
				Why:           "is not a valid tar file",
				InternalError: err,
			}
		}

		if strings.TrimPrefix(header.Name, "./") != name {
			continue
		}

		contents, err := io.ReadAll(reader)
		if err != nil {
			return nil, FormatError{
				What:          name,
				Why:           "could not be read from the archive",
				InternalError: err,
			}
		}

		lines := splitLines(string(contents))
		if expectedLines > 0 && len(lines) != expectedLines {
			return nil, LineCountError{
				Name:     name,
				Expected: expectedLines,
				Found:    len(lines),
			}
		}

		return lines, nil
	}
}

// splitLines splits file content on newlines, ignoring one trailing newline
func splitLines(contents string) []string {
	contents = strings.TrimSuffix(contents, "\n")
	if contents == "" {
		return []string{}
	}

	return strings.Split(contents, "\n")
}
