//go:build !windows

package main

import (
	"os"
	"time"
)

const defaultDebounce = 500 * time.Millisecond

func defaultTargetDir() string {
	return "/tmp/conclude_stripped/"
}

func defaultImageName() string {
	return os.TempDir() + "/conclude_stats.png"
}
