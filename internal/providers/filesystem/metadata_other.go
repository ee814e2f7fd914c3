//go:build !linux

package filesystem

import (
	"errors"
)

// nativeStat is not implemented outside Linux
func nativeStat(path string) (rawStat, error) {
	return rawStat{}, errors.New("file metadata probing is only supported on linux")
}
