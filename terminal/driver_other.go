//go:build !unix

package terminal

import (
	"errors"
	"os"
)

func readChunk(int) (data []byte, timedOut bool, err error) {
	return nil, false, errors.New("raw terminal input is not supported on this platform")
}

func winSize(int) (width, height int) {
	return 80, 24
}

func notifyResize(chan<- os.Signal) {}
