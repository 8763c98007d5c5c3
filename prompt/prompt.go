package prompt

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/adamleinss/firmware-host-updates/dispatch"
)

// Console is a blocking confirmation prompt on a terminal. The prompt offers
// proceed/cancel and times out to a distinct result; the dispatcher treats
// timeout like cancellation, but the distinction is kept for logging.
type Console struct {
	In  io.Reader
	Out io.Writer
}

func NewConsole() *Console {
	return &Console{In: os.Stdin, Out: os.Stdout}
}

func parseChoice(line string) dispatch.Choice {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "p", "proceed", "y", "yes":
		return dispatch.Proceed
	default:
		return dispatch.Cancel
	}
}

func (console *Console) Confirm(message string, timeout time.Duration) (dispatch.Choice, error) {
	if _, err := fmt.Fprintf(console.Out, "%v\n[proceed/cancel] (cancels in %v): ", message, timeout); err != nil {
		return dispatch.Cancel, fmt.Errorf("Failed to write prompt: %v", err)
	}

	var lines = make(chan string, 1)
	var errs = make(chan error, 1)

	// the reader goroutine leaks on timeout; the run aborts right after, so
	// there is nothing left to unblock it for
	go func() {
		// clean EOF means no interactive stdin (headless run): treat as a
		// declined prompt, not a read failure
		if line, err := bufio.NewReader(console.In).ReadString('\n'); err != nil && err != io.EOF {
			errs <- err
		} else {
			lines <- line
		}
	}()

	select {
	case line := <-lines:
		return parseChoice(line), nil
	case err := <-errs:
		return dispatch.Cancel, fmt.Errorf("Failed to read prompt response: %v", err)
	case <-time.After(timeout):
		log.Printf("prompt: no response within %v", timeout)

		return dispatch.TimedOut, nil
	}
}
