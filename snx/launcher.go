package snx

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	C "github.com/snxvpn/snxconnect/constant"
	"github.com/snxvpn/snxconnect/log"

	E "github.com/sagernet/sing/common/exceptions"
	M "github.com/sagernet/sing/common/metadata"
	N "github.com/sagernet/sing/common/network"
	"github.com/sagernet/sing/common/shell"
)

type LauncherOptions struct {
	Path        string
	ControlAddr M.Socksaddr
	AnswerPath  string
	Dialer      N.Dialer
}

// Launcher starts the snx helper in daemon mode and feeds it a handshake
// record over the local control socket.
type Launcher struct {
	logger      log.ContextLogger
	path        string
	controlAddr M.Socksaddr
	answerPath  string
	dialer      N.Dialer
}

func NewLauncher(logger log.ContextLogger, options LauncherOptions) *Launcher {
	launcher := &Launcher{
		logger:      logger,
		path:        options.Path,
		controlAddr: options.ControlAddr,
		answerPath:  options.AnswerPath,
		dialer:      options.Dialer,
	}
	if launcher.path == "" {
		launcher.path = C.DefaultSNXPath
	}
	if !launcher.controlAddr.IsValid() {
		launcher.controlAddr = M.ParseSocksaddrHostPort(C.SNXControlHost, C.SNXControlPort)
	}
	if launcher.dialer == nil {
		launcher.dialer = N.SystemDialer
	}
	return launcher
}

// Launch blocks until the helper closes the control connection or ctx is
// canceled.
func (l *Launcher) Launch(ctx context.Context, record *Record) error {
	content, err := record.Encode()
	if err != nil {
		return err
	}
	err = l.startHelper(ctx)
	if err != nil {
		return err
	}
	conn, err := l.dialer.DialContext(ctx, N.NetworkTCP, l.controlAddr)
	if err != nil {
		return E.Cause(err, "connect to tunnel helper at ", l.controlAddr)
	}
	defer conn.Close()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	_, err = conn.Write(content)
	if err != nil {
		return E.Cause(err, "write handshake record")
	}
	answer := make([]byte, C.HelperAnswerBuffer)
	n, err := conn.Read(answer)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return E.New("tunnel helper closed the connection without answering")
		}
		return E.Cause(err, "read tunnel helper answer")
	}
	answer = answer[:n]
	l.logger.DebugContext(ctx, "helper answered ", n, " bytes")
	if l.answerPath != "" {
		err = os.WriteFile(l.answerPath, answer, 0o600)
		if err != nil {
			l.logger.WarnContext(ctx, E.Cause(err, "write helper answer to ", l.answerPath))
		}
	}
	l.logger.InfoContext(ctx, "SNX connected, leave this running")
	_, err = io.Copy(io.Discard, conn)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return E.Cause(err, "tunnel helper connection")
	}
	l.logger.InfoContext(ctx, "tunnel helper closed the connection")
	return nil
}

func (l *Launcher) startHelper(ctx context.Context) error {
	output, err := shell.Exec(l.path, C.SNXDaemonFlag).Read()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return E.Extend(C.ErrHelperNotStarted, l.path, ": ", err)
	}
	l.logger.WarnContext(ctx, &ProcessError{
		Path:     l.path,
		ExitCode: exitErr.ExitCode(),
		Output:   strings.TrimSpace(output),
	})
	return nil
}
