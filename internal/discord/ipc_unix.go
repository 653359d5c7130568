//go:build !windows

package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
)

// socketDirs lists where Discord creates its socket, including Flatpak and Snap sandboxes.
func socketDirs() []string {
	var bases []string
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if dir := os.Getenv(env); dir != "" {
			bases = append(bases, dir)
		}
	}
	bases = append(bases, "/tmp")

	dirs := make([]string, 0, len(bases)*3)
	for _, base := range bases {
		dirs = append(dirs,
			base,
			filepath.Join(base, "app", "com.discordapp.Discord"),
			filepath.Join(base, "snap.discord"),
		)
	}
	return dirs
}

func dialIPC(ctx context.Context) (io.ReadWriteCloser, error) {
	var dialer net.Dialer
	var errs []error
	for _, dir := range socketDirs() {
		for i := 0; i < 10; i++ {
			path := filepath.Join(dir, fmt.Sprintf("discord-ipc-%d", i))
			if _, err := os.Stat(path); err != nil {
				continue
			}
			conn, err := dialer.DialContext(ctx, "unix", path)
			if err == nil {
				return conn, nil
			}
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, errors.New("no discord-ipc socket found, is Discord running?")
	}
	return nil, errors.Join(errs...)
}

func isPlatformClosed(error) bool {
	return false
}
