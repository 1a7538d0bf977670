package child

import (
	"io"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/stdiorpc/internal/protocol"
)

func TestSpawnEchoesFrames(t *testing.T) {
	cat, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available")
	}
	p, err := Spawn(cat)
	require.NoError(t, err)
	assert.Positive(t, p.Pid())

	// cat echoes client frames back; decoding them as C2S proves both pipes carry whole frames.
	sent := []protocol.C2S{protocol.NewRequest("a+▲"), protocol.NewReply(-7)}
	for _, m := range sent {
		require.NoError(t, protocol.Send(p.Stdin, m))
		got, err := protocol.Receive[protocol.C2S](p.Stdout)
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	require.NoError(t, p.Stdin.Close())
	_, err = protocol.Receive[protocol.C2S](p.Stdout)
	assert.ErrorIs(t, err, io.EOF)
	require.NoError(t, p.Wait())
}

func TestSpawnMissingBinary(t *testing.T) {
	_, err := Spawn("/nonexistent/stdiod")
	assert.Error(t, err)
}

func TestWaitReportsExitStatus(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	p, err := Spawn(sh, "-c", "exit 3")
	require.NoError(t, err)
	err = p.Wait()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestKill(t *testing.T) {
	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}
	p, err := Spawn(sleep, "30")
	require.NoError(t, err)
	assert.NoError(t, p.Kill())
}
