//go:build windows

package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

func dialIPC(ctx context.Context) (io.ReadWriteCloser, error) {
	var errs []error
	for i := 0; i < 10; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pipe, err := os.OpenFile(fmt.Sprintf(`\\.\pipe\discord-ipc-%d`, i), os.O_RDWR, 0)
		if err == nil {
			return pipe, nil
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("no discord-ipc pipe available, is Discord running?: %w", errors.Join(errs...))
}

func isPlatformClosed(err error) bool {
	return errors.Is(err, syscall.ERROR_BROKEN_PIPE)
}
