// Package supervisor boots the container runtime environment: a virtual X
// display, a window manager, a VNC server for remote inspection, and finally
// the application server as the foreground process. Helper processes are
// fire-and-forget; only the foreground process determines the exit code.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/presswatch/presswatch/internal/infrastructure/logging"
)

// vncWaitTimeout bounds how long boot waits for the VNC port before moving
// on. VNC is an inspection aid, never a boot dependency.
const vncWaitTimeout = 10 * time.Second

// Config describes the processes to launch.
type Config struct {
	// Display is the X display identifier, e.g. ":1".
	Display string
	// Geometry is the Xvfb screen geometry, e.g. "1920x1080x24".
	Geometry string
	// VNCPort is the port x11vnc serves on.
	VNCPort int

	// XvfbBin, WMBin, and VNCBin override the helper binaries. Empty values
	// use the defaults (Xvfb, fluxbox, x11vnc).
	XvfbBin string
	WMBin   string
	VNCBin  string

	// ServerBin and ServerArgs define the foreground application server.
	ServerBin  string
	ServerArgs []string

	// VNCWait bounds the wait for the VNC port. Zero means the default.
	VNCWait time.Duration
}

// Launcher starts the display stack and the application server.
type Launcher struct {
	cfg Config
	log *logging.Logger
}

// New creates a launcher, filling in default helper binaries.
func New(cfg Config, log *logging.Logger) *Launcher {
	if cfg.XvfbBin == "" {
		cfg.XvfbBin = "Xvfb"
	}
	if cfg.WMBin == "" {
		cfg.WMBin = "fluxbox"
	}
	if cfg.VNCBin == "" {
		cfg.VNCBin = "x11vnc"
	}
	if cfg.VNCWait == 0 {
		cfg.VNCWait = vncWaitTimeout
	}
	return &Launcher{cfg: cfg, log: log}
}

// Run boots the stack and blocks on the foreground server. It returns the
// server's exit code; helper process failures are logged and ignored.
func (l *Launcher) Run(ctx context.Context) (int, error) {
	// Children inherit DISPLAY through the environment, so it must be set
	// before anything graphical starts.
	if err := os.Setenv("DISPLAY", l.cfg.Display); err != nil {
		return 1, fmt.Errorf("set DISPLAY: %w", err)
	}
	l.log.Info("virtual display configured", zap.String("display", l.cfg.Display))

	l.startHelper(l.cfg.XvfbBin, l.cfg.Display, "-screen", "0", l.cfg.Geometry, "-ac")
	l.startHelper(l.cfg.WMBin)
	l.startHelper(l.cfg.VNCBin,
		"-display", l.cfg.Display,
		"-rfbport", strconv.Itoa(l.cfg.VNCPort),
		"-forever", "-shared", "-nopw")

	if err := waitForPort(ctx, l.cfg.VNCPort, l.cfg.VNCWait); err != nil {
		l.log.Warn("vnc server did not come up, continuing without it",
			zap.Int("port", l.cfg.VNCPort), zap.Error(err))
	} else {
		l.log.Info("vnc server ready", zap.Int("port", l.cfg.VNCPort))
	}

	return l.runForeground(ctx)
}

// startHelper launches a background process without supervision. A helper
// that fails to start or dies later is logged, never restarted.
func (l *Launcher) startHelper(bin string, args ...string) {
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		l.log.Warn("helper process failed to start",
			zap.String("bin", bin), zap.Error(err))
		return
	}
	l.log.Info("helper process started",
		zap.String("bin", bin), zap.Int("pid", cmd.Process.Pid))

	// Reap the child when it exits so it never lingers as a zombie.
	go func() {
		if err := cmd.Wait(); err != nil {
			l.log.Warn("helper process exited",
				zap.String("bin", bin), zap.Error(err))
		}
	}()
}

// runForeground runs the application server attached to this process's
// stdio and reports its exit code.
func (l *Launcher) runForeground(ctx context.Context) (int, error) {
	cmd := exec.CommandContext(ctx, l.cfg.ServerBin, l.cfg.ServerArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	l.log.Info("starting application server", zap.String("bin", l.cfg.ServerBin))
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, fmt.Errorf("run %s: %w", l.cfg.ServerBin, err)
}

// waitForPort polls until a TCP port on localhost accepts connections.
func waitForPort(ctx context.Context, port int, timeout time.Duration) error {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	deadline := time.Now().Add(timeout)

	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			conn.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("port %d not listening after %s", port, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}
