//go:build unix

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// readFile maps path read-only. Empty files are returned as an empty slice
// since a zero-length mapping is rejected by the kernel.
func readFile(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var stat unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &stat); err != nil {
		return nil, nil, err
	}
	if stat.Size == 0 {
		return []byte{}, nil, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(stat.Size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return unix.Munmap(data) }, nil
}
