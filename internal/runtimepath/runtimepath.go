package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// SocketEnv overrides the daemon socket path when set.
const SocketEnv = "SNAPDESK_SOCKET"

const (
	socketName = "snapdesk.sock"
	logName    = "snapdesk.log"
)

// Dir returns the per-user directory for the session socket and log.
// XDG_RUNTIME_DIR wins, then an existing /run/user/<uid>, then a private
// directory under /tmp that is created on demand.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}
	uid := os.Getuid()
	if dir := fmt.Sprintf("/run/user/%d", uid); isDir(dir) {
		return dir, nil
	}
	dir := filepath.Join(os.TempDir(), fmt.Sprintf("snapdesk-runtime-%d", uid))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create runtime dir: %w", err)
	}
	return dir, nil
}

// SocketPath returns the daemon IPC socket path, honoring SNAPDESK_SOCKET.
func SocketPath() (string, error) {
	if p := os.Getenv(SocketEnv); p != "" {
		return p, nil
	}
	return join(socketName)
}

// LogPath is where the terminal desktop writes its log while it owns the TTY.
func LogPath() (string, error) {
	return join(logName)
}

func join(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
