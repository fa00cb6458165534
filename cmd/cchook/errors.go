package main

import (
	"errors"
	"fmt"
	"net"
	"os"

	"cchook/internal/config"
	"cchook/internal/notify"
)

// friendlyError maps an internal error to the categorized one-liner a human
// sees. Hook invocations never go through here; their caller is a machine.
func friendlyError(err error) string {
	if err == nil {
		return ""
	}

	var cfgErr *config.ConfigError
	switch {
	case errors.As(err, &cfgErr), errors.Is(err, notify.ErrUnsupportedChannel):
		return fmt.Sprintf("Configuration error: %v", err)
	case isNetworkError(err):
		return fmt.Sprintf("Network error: %v", err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Sprintf("Permission error: %v (check file permissions under your home directory)", err)
	case isFilesystemError(err):
		return fmt.Sprintf("Filesystem error: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func isFilesystemError(err error) bool {
	var pathErr *os.PathError
	return errors.As(err, &pathErr)
}
