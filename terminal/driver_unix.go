//go:build unix

package terminal

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// pollInterval is the poll timeout in milliseconds. Each expiry gives the
// driver a chance to observe stop requests and settle a pending lone ESC.
const pollInterval = 100

// readChunk waits for input with a poll timeout. timedOut reports an empty
// poll cycle; io.EOF marks a closed input stream.
func readChunk(fd int) (data []byte, timedOut bool, err error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, pollInterval)
	if err != nil {
		if err == unix.EINTR {
			return nil, true, nil
		}
		return nil, false, err
	}
	if n == 0 {
		return nil, true, nil
	}
	buf := make([]byte, 256)
	rn, err := unix.Read(fd, buf)
	if err != nil {
		if err == unix.EINTR || err == unix.EAGAIN {
			return nil, true, nil
		}
		return nil, false, err
	}
	if rn == 0 {
		return nil, false, io.EOF
	}
	return buf[:rn], false, nil
}

// winSize queries the terminal dimensions, falling back to 80x24 when the
// ioctl is unavailable.
func winSize(fd int) (width, height int) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

func notifyResize(ch chan<- os.Signal) {
	signal.Notify(ch, syscall.SIGWINCH)
}
