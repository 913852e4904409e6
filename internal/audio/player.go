package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"codeberg.org/snonux/kotoba/internal"
)

// ErrAudioUnavailable is returned when a clip URL no longer serves audio,
// typically because the clip expired on the server.
var ErrAudioUnavailable = errors.New("audio clip unavailable")

// Player downloads clips and plays them with a platform audio command
type Player struct {
	client   *http.Client
	tempDir  string
	goos     string
	lookPath func(string) (string, error)
}

// NewPlayer creates a player that downloads clips into tempDir. An empty
// tempDir uses the system temp directory.
func NewPlayer(tempDir string) *Player {
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "kotoba")
	}

	return &Player{
		client:   &http.Client{},
		tempDir:  tempDir,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
	}
}

// Fetch downloads the clip at url and returns the local file path
func (p *Player) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d", ErrAudioUnavailable, resp.StatusCode)
	}

	if err := os.MkdirAll(p.tempDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	name := internal.SanitizeFilename(strings.TrimSuffix(path.Base(req.URL.Path), path.Ext(req.URL.Path)))
	out, err := os.CreateTemp(p.tempDir, name+"_*"+clipExt(req.URL.Path, resp.Header.Get("Content-Type")))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("failed to download clip: %w", err)
	}
	if written == 0 {
		os.Remove(out.Name())
		return "", fmt.Errorf("%w: empty clip", ErrAudioUnavailable)
	}

	return out.Name(), nil
}

func clipExt(urlPath, contentType string) string {
	if ext := path.Ext(urlPath); ext != "" {
		return ext
	}
	switch {
	case strings.Contains(contentType, "wav"):
		return ".wav"
	case strings.Contains(contentType, "ogg"), strings.Contains(contentType, "opus"):
		return ".opus"
	default:
		return ".mp3"
	}
}

// Start plays a local file in the background
func (p *Player) Start(file string) (*Playback, error) {
	return p.start(file, "")
}

// StartTemp plays a downloaded file and deletes it once playback ends. The
// file is also deleted when playback cannot start.
func (p *Player) StartTemp(file string) (*Playback, error) {
	pb, err := p.start(file, file)
	if err != nil {
		os.Remove(file)
	}
	return pb, err
}

func (p *Player) start(file, remove string) (*Playback, error) {
	name, args, err := p.command(file)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	pb := &Playback{cmd: cmd, remove: remove, done: make(chan struct{})}
	go pb.wait()

	return pb, nil
}

// command picks the platform player for file
func (p *Player) command(file string) (string, []string, error) {
	switch p.goos {
	case "darwin":
		return "afplay", []string{file}, nil
	case "linux":
		// mpg123 first since it handles MP3 files best
		candidates := []struct {
			name string
			args []string
		}{
			{"mpg123", []string{"-q", file}},
			{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet", file}},
			{"play", []string{"-q", file}},
			{"paplay", []string{file}},
			{"aplay", []string{"-q", file}},
		}
		for _, c := range candidates {
			if path, err := p.lookPath(c.name); err == nil {
				return path, c.args, nil
			}
		}
		return "", nil, fmt.Errorf("no audio player found. Install mpg123, ffplay, sox, paplay, or aplay")
	case "windows":
		return "cmd", []string{"/c", "start", "/min", "/wait", file}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", p.goos)
	}
}

// Playback is a running playback process
type Playback struct {
	cmd    *exec.Cmd
	remove string // deleted once the process exits
	done   chan struct{}

	mu      sync.Mutex
	err     error
	stopped bool
}

func (pb *Playback) wait() {
	err := pb.cmd.Wait()

	pb.mu.Lock()
	if !pb.stopped {
		pb.err = err
	}
	pb.mu.Unlock()

	if pb.remove != "" {
		os.Remove(pb.remove)
	}
	close(pb.done)
}

// Stop kills the playback process
func (pb *Playback) Stop() error {
	pb.mu.Lock()
	pb.stopped = true
	pb.mu.Unlock()

	if pb.cmd.Process == nil {
		return nil
	}
	if err := pb.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// Done is closed when playback ends
func (pb *Playback) Done() <-chan struct{} {
	return pb.done
}

// Err returns the exit error of a finished playback. A stopped playback has
// no error.
func (pb *Playback) Err() error {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.err
}
