//go:build windows

package serialization

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func mmapFile(f *os.File, size int64) ([]byte, error) {
	//nolint:gosec // G115: split of a non-negative size into dwords
	hi, lo := uint32(size>>32), uint32(size)
	mapping, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, hi, lo, nil)
	if err != nil {
		return nil, err
	}
	// The view keeps the mapping alive after the handle is closed.
	defer windows.CloseHandle(mapping) //nolint:errcheck

	addr, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		return nil, err
	}
	//nolint:govet,gosec // addr is a live view returned by MapViewOfFile
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size)), nil
}

func munmapFile(data []byte) error {
	return windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&data[0])))
}
