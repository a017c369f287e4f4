package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// console is where a run talks to the user
type console struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	tty    bool
}

func newConsole(cmd *cobra.Command) *console {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	return &console{
		in:     bufio.NewReader(in),
		out:    out,
		errOut: cmd.ErrOrStderr(),
		tty:    isTerminal(in) && isTerminal(out),
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// confirm reads one answer. EOF or a read error counts as no.
func (c *console) confirm() bool {
	answer, _ := c.in.ReadString('\n')
	return isYes(answer)
}

// readLine prints prompt and returns the trimmed answer
func (c *console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return line, nil
}

func isYes(answer string) bool {
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

// progressLine redraws a single status line while scanning. It stays
// silent when output is not a terminal.
type progressLine struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	last    string
}

func (p *progressLine) update(scanned, total int, current string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.erase()
	p.last = fmt.Sprintf("Progress: %d/%d  %s", scanned, total, shortenPath(current, 50))
	fmt.Fprint(p.w, p.last)
}

func (p *progressLine) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.erase()
}

func (p *progressLine) erase() {
	if p.last == "" {
		return
	}
	fmt.Fprint(p.w, "\r"+strings.Repeat(" ", len([]rune(p.last)))+"\r")
	p.last = ""
}

func shortenPath(path string, maxLen int) string {
	runes := []rune(path)
	if len(runes) <= maxLen {
		return path
	}

	// Try to show filename and as much of the path as possible
	dir, file := filepath.Split(path)
	dirRunes, fileRunes := []rune(dir), []rune(file)
	if len(fileRunes) >= maxLen-3 {
		return "..." + string(fileRunes[len(fileRunes)-(maxLen-3):])
	}

	remaining := maxLen - len(fileRunes) - 4 // 4 for ".../"
	if remaining <= 0 {
		return "..." + file
	}
	if len(dirRunes) > remaining {
		dirRunes = dirRunes[len(dirRunes)-remaining:]
	}
	return "..." + string(dirRunes) + file
}

// openFile opens path with the platform's default viewer
func openFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
