package snx

import (
	"context"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	C "github.com/snxvpn/snxconnect/constant"
	"github.com/snxvpn/snxconnect/log"

	M "github.com/sagernet/sing/common/metadata"

	"github.com/stretchr/testify/require"
)

func lookHelper(t *testing.T, name string) string {
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skip(name, " not found")
	}
	return path
}

type fakeHelper struct {
	listener net.Listener
	received chan []byte
}

func startFakeHelper(t *testing.T, answer []byte) *fakeHelper {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() {
		listener.Close()
	})
	helper := &fakeHelper{listener: listener, received: make(chan []byte, 1)}
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		content := make([]byte, RecordLength+recordHeader)
		_, err = io.ReadFull(conn, content)
		if err != nil {
			return
		}
		helper.received <- content
		if answer != nil {
			conn.Write(answer)
		}
	}()
	return helper
}

func (h *fakeHelper) addr() M.Socksaddr {
	return M.SocksaddrFromNet(h.listener.Addr())
}

func TestLaunch(t *testing.T) {
	t.Parallel()
	helper := startFakeHelper(t, []byte("answer"))
	answerPath := filepath.Join(t.TempDir(), "snxanswer")
	launcher := NewLauncher(log.NewNOPFactory().Logger(), LauncherOptions{
		Path:        lookHelper(t, "true"),
		ControlAddr: helper.addr(),
		AnswerPath:  answerPath,
	})
	record := NewRecord()
	putString(record.UserName[:], "alice")
	require.NoError(t, launcher.Launch(context.Background(), record))
	content := <-helper.received
	decoded, err := DecodeRecord(content)
	require.NoError(t, err)
	require.Equal(t, "alice", decoded.User())
	answer, err := os.ReadFile(answerPath)
	require.NoError(t, err)
	require.Equal(t, "answer", string(answer))
}

func TestLaunchHelperExitCode(t *testing.T) {
	t.Parallel()
	helper := startFakeHelper(t, []byte("answer"))
	launcher := NewLauncher(log.NewNOPFactory().Logger(), LauncherOptions{
		Path:        lookHelper(t, "false"),
		ControlAddr: helper.addr(),
	})
	require.NoError(t, launcher.Launch(context.Background(), NewRecord()))
}

func TestLaunchHelperMissing(t *testing.T) {
	t.Parallel()
	launcher := NewLauncher(log.NewNOPFactory().Logger(), LauncherOptions{
		Path: filepath.Join(t.TempDir(), "snx"),
	})
	err := launcher.Launch(context.Background(), NewRecord())
	require.ErrorIs(t, err, C.ErrHelperNotStarted)
}

func TestLaunchClosedWithoutAnswer(t *testing.T) {
	t.Parallel()
	helper := startFakeHelper(t, nil)
	launcher := NewLauncher(log.NewNOPFactory().Logger(), LauncherOptions{
		Path:        lookHelper(t, "true"),
		ControlAddr: helper.addr(),
	})
	err := launcher.Launch(context.Background(), NewRecord())
	require.ErrorContains(t, err, "without answering")
}
