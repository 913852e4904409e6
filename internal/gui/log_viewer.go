package gui

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// LogViewer displays captured stdout/stderr and the API responses,
// newest first. It is also an io.Writer.
type LogViewer struct {
	widget.BaseWidget

	container  *fyne.Container
	logEntry   *widget.Entry
	scrollView *container.Scroll

	mu          sync.Mutex
	messages    []string
	maxMessages int
	partial     string

	originalStdout *os.File
	originalStderr *os.File
}

// NewLogViewer creates a new log viewer widget
func NewLogViewer() *LogViewer {
	v := &LogViewer{maxMessages: 500}

	v.logEntry = widget.NewMultiLineEntry()
	v.logEntry.Disable()
	v.logEntry.Wrapping = fyne.TextWrapWord

	v.scrollView = container.NewScroll(v.logEntry)
	v.scrollView.SetMinSize(fyne.NewSize(0, 120))

	v.container = container.NewBorder(
		widget.NewLabel("Registro:"),
		nil, nil, nil,
		v.scrollView,
	)

	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget
func (v *LogViewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.container)
}

// Write adds every complete line of p as a message
func (v *LogViewer) Write(p []byte) (int, error) {
	v.mu.Lock()
	text := v.partial + string(p)
	lines := strings.Split(text, "\n")
	v.partial = lines[len(lines)-1]
	v.mu.Unlock()

	for _, line := range lines[:len(lines)-1] {
		if strings.TrimSpace(line) != "" {
			v.AddMessage(line)
		}
	}
	return len(p), nil
}

// StartCapture redirects stdout, stderr and the log package into the
// viewer. Output still reaches the original streams.
func (v *LogViewer) StartCapture() {
	v.originalStdout = os.Stdout
	v.originalStderr = os.Stderr

	os.Stdout = v.pipe(v.originalStdout)
	os.Stderr = v.pipe(v.originalStderr)

	log.SetOutput(os.Stderr)
}

// pipe returns the write end of a pipe copied to original and the viewer
func (v *LogViewer) pipe(original *os.File) *os.File {
	r, w, err := os.Pipe()
	if err != nil {
		return original
	}

	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				original.Write(buf[:n])
				v.Write(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	return w
}

// StopCapture restores stdout and stderr
func (v *LogViewer) StopCapture() {
	if v.originalStdout != nil {
		os.Stdout = v.originalStdout
		v.originalStdout = nil
	}
	if v.originalStderr != nil {
		os.Stderr = v.originalStderr
		v.originalStderr = nil
	}
	log.SetOutput(os.Stderr)
}

// AddMessage adds a timestamped message
func (v *LogViewer) AddMessage(message string) {
	v.mu.Lock()
	v.messages = append([]string{fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message)}, v.messages...)
	if len(v.messages) > v.maxMessages {
		v.messages = v.messages[:v.maxMessages]
	}
	text := strings.Join(v.messages, "\n")
	v.mu.Unlock()

	fyne.Do(func() {
		v.logEntry.SetText(text)
		v.scrollView.ScrollToTop()
	})
}

// Messages returns the messages, newest first
func (v *LogViewer) Messages() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.messages...)
}
