package sink

import (
	"fmt"
	"os"

	"github.com/acarl005/stripansi"
)

// ReportWriter defines the interface for writing reports to various destinations
type ReportWriter interface {
	Write(content string) error
}

// FileWriter writes reports to a file, replacing any previous content
type FileWriter struct {
	path      string
	stripANSI bool
}

// NewFileWriter creates a new file writer. Color escape sequences are removed
// before writing since files are rarely viewed in a terminal.
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path, stripANSI: true}
}

// Path returns the destination file path
func (fw *FileWriter) Path() string {
	return fw.path
}

// Write writes the content to the file
func (fw *FileWriter) Write(content string) error {
	if fw.stripANSI {
		content = stripansi.Strip(content)
	}
	if err := os.WriteFile(fw.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report file %s: %w", fw.path, err)
	}
	return nil
}

// StdoutWriter writes reports to stdout
type StdoutWriter struct{}

// NewStdoutWriter creates a new stdout writer
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{}
}

// Write writes the content to stdout
func (sw *StdoutWriter) Write(content string) error {
	_, err := fmt.Print(content)
	return err
}

// MemoryWriter keeps the last report in memory.
type MemoryWriter struct {
	Content string
	Writes  int
}

// Write stores the content
func (mw *MemoryWriter) Write(content string) error {
	mw.Content = content
	mw.Writes++
	return nil
}

// ForPath returns a stdout writer for an empty path and a file writer otherwise.
func ForPath(path string) ReportWriter {
	if path == "" {
		return NewStdoutWriter()
	}
	return NewFileWriter(path)
}
