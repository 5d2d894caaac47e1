// Package cliio implements the stdin command reader: the fourth
// goroutine in the concurrency model, alongside the decoder, queue
// manager, and progress bridge, driving the player facade interactively
// when the process runs as `cli` or `both`.
package cliio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/arung-agamani/soundvault/internal/player"
)

// Run reads newline-terminated commands from r until ctx is cancelled or
// r reaches EOF, printing each command's outcome to w. Recognized
// commands: "play <track_id>", "pause", "resume", "next", "previous",
// "quit".
func Run(ctx context.Context, r io.Reader, w io.Writer, p *player.Service) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Fprintln(w, "soundvault cli ready: play <track_id> | pause | resume | next | previous | quit")
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !dispatch(ctx, w, p, line) {
				return
			}
		}
	}
}

func dispatch(ctx context.Context, w io.Writer, p *player.Service, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	var err error
	switch fields[0] {
	case "play":
		if len(fields) != 2 {
			fmt.Fprintln(w, "usage: play <track_id>")
			return true
		}
		err = p.PlayTrack(ctx, fields[1])
	case "pause":
		err = p.ControlPause()
	case "resume":
		err = p.ControlResume()
	case "next":
		p.ControlNext()
	case "previous":
		p.ControlPrevious()
	case "quit", "exit":
		return false
	default:
		fmt.Fprintf(w, "unrecognized command: %s\n", fields[0])
		return true
	}
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
	}
	return true
}
