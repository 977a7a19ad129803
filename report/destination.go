package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// ExportState is a step of the interactive export.
type ExportState int

const (
	ExportIdle ExportState = iota
	ExportPicking
	ExportCancelled
	ExportWriting
	ExportSucceeded
	ExportFailed
)

func (s ExportState) String() string {
	switch s {
	case ExportIdle:
		return "idle"
	case ExportPicking:
		return "picking"
	case ExportCancelled:
		return "cancelled"
	case ExportWriting:
		return "writing"
	case ExportSucceeded:
		return "succeeded"
	case ExportFailed:
		return "failed"
	}
	return fmt.Sprintf("ExportState(%d)", int(s))
}

// DestinationPicker asks the user where to save an export. ok is false when
// the user cancelled.
type DestinationPicker interface {
	PickDestination(defaultName string) (path string, ok bool)
}

// Notifier tells the user how an export ended.
type Notifier interface {
	ExportSucceeded(path string)
	ExportFailed(err error)
}

// PromptPicker asks for a destination on a terminal. A blank answer keeps
// the default name, "-" or end of input cancels.
type PromptPicker struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptPicker reads answers from in and writes prompts to out.
func NewPromptPicker(in io.Reader, out io.Writer) *PromptPicker {
	return &PromptPicker{in: bufio.NewReader(in), out: out}
}

func (p *PromptPicker) PickDestination(defaultName string) (string, bool) {
	fmt.Fprintf(p.out, "Save report as [%s] ('-' to cancel): ", defaultName)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return "", false
	}
	answer := strings.TrimSpace(line)
	switch answer {
	case "-":
		return "", false
	case "":
		return defaultName, true
	}
	return answer, true
}

// FixedPicker always answers with Path, or cancels when Path is empty.
type FixedPicker struct {
	Path string
}

func (p FixedPicker) PickDestination(defaultName string) (string, bool) {
	if p.Path == "" {
		return "", false
	}
	return p.Path, true
}

// WriterNotifier prints export outcomes to W.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) ExportSucceeded(path string) {
	fmt.Fprintf(n.W, "Excel export succeeded: %s\n", path)
}

func (n WriterNotifier) ExportFailed(err error) {
	fmt.Fprintf(n.W, "Export failed: %v\n", err)
}

// LogNotifier reports export outcomes to a logger.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (n LogNotifier) ExportSucceeded(path string) {
	n.Log.WithField("path", path).Info("Excel export succeeded")
}

func (n LogNotifier) ExportFailed(err error) {
	n.Log.WithError(err).Error("Export failed")
}
