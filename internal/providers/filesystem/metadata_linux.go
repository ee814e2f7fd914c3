//go:build linux

package filesystem

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// nativeStat uses statx(2), the only Linux primitive that reports birth
// time. Kernels older than 4.11 fall back to stat(2) without it.
func nativeStat(path string) (rawStat, error) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT,
		unix.STATX_BASIC_STATS|unix.STATX_BTIME, &stx)
	if errors.Is(err, unix.ENOSYS) {
		return legacyStat(path)
	}
	if err != nil {
		return rawStat{}, err
	}

	raw := rawStat{uid: stx.Uid, gid: stx.Gid}
	if stx.Mask&unix.STATX_MTIME != 0 {
		modified := statxTime(stx.Mtime)
		raw.modified = &modified
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		created := statxTime(stx.Btime)
		raw.created = &created
	}
	return raw, nil
}

func legacyStat(path string) (rawStat, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return rawStat{}, err
	}
	modified := time.Unix(st.Mtim.Unix())
	return rawStat{uid: st.Uid, gid: st.Gid, modified: &modified}, nil
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}
