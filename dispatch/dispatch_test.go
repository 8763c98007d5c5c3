package dispatch

import (
	"fmt"
	"testing"
	"time"

	"github.com/adamleinss/firmware-host-updates/catalog"
	"github.com/adamleinss/firmware-host-updates/hw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrompter struct {
	choice   Choice
	messages []string
	timeouts []time.Duration
}

func (prompter *fakePrompter) Confirm(message string, timeout time.Duration) (Choice, error) {
	prompter.messages = append(prompter.messages, message)
	prompter.timeouts = append(prompter.timeouts, timeout)

	return prompter.choice, nil
}

type runCall struct {
	path string
	args []string
	dir  string
}

type fakeRunner struct {
	exitCode int
	err      error
	calls    []runCall
}

func (runner *fakeRunner) Run(path string, args []string, workingDir string) (int, error) {
	runner.calls = append(runner.calls, runCall{path: path, args: args, dir: workingDir})

	return runner.exitCode, runner.err
}

type suspendCall struct {
	volume      string
	rebootCount int
}

type fakePrecautions struct {
	err   error
	calls []suspendCall
}

func (precautions *fakePrecautions) Suspend(volume string, rebootCount int) error {
	precautions.calls = append(precautions.calls, suspendCall{volume: volume, rebootCount: rebootCount})

	return precautions.err
}

type fakeMarkers struct {
	err    error
	values map[string]string
}

func (markers *fakeMarkers) WriteMarker(key string, value string) error {
	if markers.values == nil {
		markers.values = make(map[string]string)
	}
	markers.values[key] = value

	return markers.err
}

type fixture struct {
	prompter    *fakePrompter
	runner      *fakeRunner
	precautions *fakePrecautions
	markers     *fakeMarkers
	dispatcher  *Dispatcher
}

func makeFixture() *fixture {
	var f = fixture{
		prompter:    &fakePrompter{choice: Proceed},
		runner:      &fakeRunner{},
		precautions: &fakePrecautions{},
		markers:     &fakeMarkers{},
	}

	f.dispatcher = &Dispatcher{
		Prompter:    f.prompter,
		Runner:      f.runner,
		Precautions: f.precautions,
		Markers:     f.markers,
	}

	return &f
}

var testIdentity = hw.Identity{
	Vendor:          "LENOVO",
	Model:           "20BS006LUS",
	FirmwareVersion: "N1CET43W (1.11 )",
}

var testRule = catalog.Rule{
	Model:             "20BS006LUS",
	MinimumVersion:    "N1CET63W (1.31 )",
	Package:           "/opt/firmware/20BS/winuptp",
	Args:              []string{"-s"},
	WorkingDir:        "/opt/firmware/20BS",
	SuspendEncryption: true,
	EncryptionVolume:  "/dev/sda3",
	Prompt:            "A BIOS update is required.",
	PromptTimeout:     300,
}

func TestDispatchExecutesMatchingRule(t *testing.T) {
	var f = makeFixture()

	state, outcome, err := f.dispatcher.Dispatch(testIdentity, []catalog.Rule{testRule})

	require.NoError(t, err)
	assert.True(t, state.UpdateExecuted)
	assert.True(t, outcome.RanUpdate)
	assert.False(t, outcome.CancelledByUser)
	require.NotNil(t, outcome.ExitCode)
	assert.Equal(t, 0, *outcome.ExitCode)

	require.Len(t, f.runner.calls, 1)
	assert.Equal(t, "/opt/firmware/20BS/winuptp", f.runner.calls[0].path)
	assert.Equal(t, []string{"-s"}, f.runner.calls[0].args)
	assert.Equal(t, "/opt/firmware/20BS", f.runner.calls[0].dir)

	require.Len(t, f.precautions.calls, 1)
	assert.Equal(t, "/dev/sda3", f.precautions.calls[0].volume)
	assert.Equal(t, SuspendRebootCount, f.precautions.calls[0].rebootCount)

	require.Len(t, f.prompter.messages, 1)
	assert.Equal(t, "A BIOS update is required.", f.prompter.messages[0])
	assert.Equal(t, 300*time.Second, f.prompter.timeouts[0])

	assert.Contains(t, f.markers.values["firmware-update/20BS006LUS"], "exit-status=0")
}

func TestDispatchSkipsOtherModels(t *testing.T) {
	var f = makeFixture()
	var rule = testRule
	rule.Model = "10MR0047US"

	state, outcome, err := f.dispatcher.Dispatch(testIdentity, []catalog.Rule{rule})

	require.NoError(t, err)
	assert.False(t, state.UpdateExecuted)
	assert.False(t, outcome.RanUpdate)
	assert.Empty(t, f.runner.calls)
	assert.Empty(t, f.prompter.messages)
}

func TestDispatchSkipsCurrentFirmware(t *testing.T) {
	var f = makeFixture()
	var identity = testIdentity
	identity.FirmwareVersion = "N1CET63W (1.31 )" // exactly at threshold

	state, _, err := f.dispatcher.Dispatch(identity, []catalog.Rule{testRule})

	require.NoError(t, err)
	assert.False(t, state.UpdateExecuted)
	assert.Empty(t, f.runner.calls)
}

func TestDispatchUnconditionalRule(t *testing.T) {
	var f = makeFixture()
	var rule = catalog.Rule{
		Model:         "10MR0047US",
		Package:       "/opt/firmware/10MR/flash",
		WorkingDir:    "/opt/firmware/10MR",
		Prompt:        "A firmware update is required.",
		PromptTimeout: 120,
	}
	var identity = hw.Identity{Model: "10MR0047US", FirmwareVersion: "M1AKT59A"}

	state, _, err := f.dispatcher.Dispatch(identity, []catalog.Rule{rule})

	require.NoError(t, err)
	assert.True(t, state.UpdateExecuted, "a rule with no minimum version always matches its model")
	assert.Empty(t, f.precautions.calls, "no encryption suspend requested")
}

func TestDispatchFirstMatchWins(t *testing.T) {
	var f = makeFixture()
	var second = testRule
	second.Package = "/opt/firmware/other/flash"

	state, _, err := f.dispatcher.Dispatch(testIdentity, []catalog.Rule{testRule, second})

	require.NoError(t, err)
	assert.True(t, state.UpdateExecuted)
	require.Len(t, f.runner.calls, 1, "at most one rule executes per run")
	assert.Equal(t, "/opt/firmware/20BS/winuptp", f.runner.calls[0].path)
	require.Len(t, f.prompter.messages, 1)
}

func TestDispatchCancelAbortsRun(t *testing.T) {
	var f = makeFixture()
	f.prompter.choice = Cancel

	state, outcome, err := f.dispatcher.Dispatch(testIdentity, []catalog.Rule{testRule})

	assert.ErrorIs(t, err, ErrCancelled)
	assert.False(t, state.UpdateExecuted)
	assert.True(t, outcome.CancelledByUser)
	assert.Empty(t, f.runner.calls, "no vendor process is launched after cancellation")
	assert.Empty(t, f.precautions.calls)
	assert.Empty(t, f.markers.values)
}

func TestDispatchTimeoutAbortsRun(t *testing.T) {
	var f = makeFixture()
	f.prompter.choice = TimedOut

	state, outcome, err := f.dispatcher.Dispatch(testIdentity, []catalog.Rule{testRule})

	assert.ErrorIs(t, err, ErrCancelled, "prompt timeout is treated as proceed-denial")
	assert.False(t, state.UpdateExecuted)
	assert.True(t, outcome.CancelledByUser)
	assert.Empty(t, f.runner.calls)
}

func TestDispatchSuspendFailureProceeds(t *testing.T) {
	var f = makeFixture()
	f.precautions.err = fmt.Errorf("volume not found")

	state, _, err := f.dispatcher.Dispatch(testIdentity, []catalog.Rule{testRule})

	require.NoError(t, err)
	assert.True(t, state.UpdateExecuted, "encryption suspend failure does not prevent the update")
	require.Len(t, f.runner.calls, 1)
}

func TestDispatchMarkerFailureProceeds(t *testing.T) {
	var f = makeFixture()
	f.markers.err = fmt.Errorf("store unavailable")

	state, _, err := f.dispatcher.Dispatch(testIdentity, []catalog.Rule{testRule})

	require.NoError(t, err)
	assert.True(t, state.UpdateExecuted)
}

func TestDispatchVendorExitCodeRecorded(t *testing.T) {
	var f = makeFixture()
	f.runner.exitCode = 112 // vendor-specific, opaque

	state, outcome, err := f.dispatcher.Dispatch(testIdentity, []catalog.Rule{testRule})

	require.NoError(t, err, "vendor exit codes are recorded, not interpreted")
	assert.True(t, state.UpdateExecuted)
	require.NotNil(t, outcome.ExitCode)
	assert.Equal(t, 112, *outcome.ExitCode)
	assert.Contains(t, f.markers.values["firmware-update/20BS006LUS"], "exit-status=112")
}

func TestDispatchRunnerFailure(t *testing.T) {
	var f = makeFixture()
	f.runner.err = fmt.Errorf("unit failed to start")

	state, _, err := f.dispatcher.Dispatch(testIdentity, []catalog.Rule{testRule})

	assert.Error(t, err)
	assert.False(t, state.UpdateExecuted)
}

func TestSelect(t *testing.T) {
	rule, ok := Select(testIdentity, []catalog.Rule{testRule})

	require.True(t, ok)
	assert.Equal(t, testRule.Package, rule.Package)

	_, ok = Select(hw.Identity{Model: "unknown"}, []catalog.Rule{testRule})

	assert.False(t, ok)
}
