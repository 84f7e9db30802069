//go:build windows

package main

import (
	"os/user"
	"path/filepath"
	"time"
)

const defaultDebounce = time.Second

func defaultTargetDir() string {
	usr, err := user.Current()
	if err != nil {
		panic(err)
	}
	return filepath.Join(usr.HomeDir, "conclude_stripped")
}

func defaultImageName() string {
	usr, err := user.Current()
	if err != nil {
		panic(err)
	}
	return filepath.Join(usr.HomeDir, "conclude_stats.png")
}
