package prompt

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/adamleinss/firmware-host-updates/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirm(t *testing.T, input string, timeout time.Duration) dispatch.Choice {
	var out bytes.Buffer
	var console = Console{In: strings.NewReader(input), Out: &out}

	choice, err := console.Confirm("A BIOS update is required.", timeout)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "A BIOS update is required.")

	return choice
}

func TestConfirmProceed(t *testing.T) {
	assert.Equal(t, dispatch.Proceed, confirm(t, "proceed\n", time.Minute))
	assert.Equal(t, dispatch.Proceed, confirm(t, "y\n", time.Minute))
	assert.Equal(t, dispatch.Proceed, confirm(t, "  YES \n", time.Minute))
}

func TestConfirmCancel(t *testing.T) {
	assert.Equal(t, dispatch.Cancel, confirm(t, "cancel\n", time.Minute))
	assert.Equal(t, dispatch.Cancel, confirm(t, "\n", time.Minute))
	assert.Equal(t, dispatch.Cancel, confirm(t, "whatever\n", time.Minute))
}

func TestConfirmClosedInput(t *testing.T) {
	var out bytes.Buffer
	var console = Console{In: strings.NewReader(""), Out: &out}

	choice, err := console.Confirm("A BIOS update is required.", time.Minute)

	require.NoError(t, err, "closed stdin is a declined prompt, not a failure")
	assert.Equal(t, dispatch.Cancel, choice)
}

func TestConfirmTimeout(t *testing.T) {
	var out bytes.Buffer
	var blocked = make(chan struct{})
	var console = Console{In: blockingReader{blocked}, Out: &out}
	defer close(blocked)

	choice, err := console.Confirm("A BIOS update is required.", 10*time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, dispatch.TimedOut, choice)
}

type blockingReader struct {
	unblock chan struct{}
}

func (reader blockingReader) Read(p []byte) (int, error) {
	<-reader.unblock

	return 0, io.EOF
}
