//go:build windows

package irsdk

import (
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	memMapName         = `Local\IRSDKMemMapFileName`
	dataValidEventName = `Local\IRSDKDataValidEvent`
)

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMappingW = kernel32.NewProc("OpenFileMappingW")
)

type mappedMemory struct {
	mapping windows.Handle
	event   windows.Handle
	addr    uintptr
}

func openMemory() (memory, error) {
	name, err := windows.UTF16PtrFromString(memMapName)
	if err != nil {
		return nil, err
	}
	r, _, callErr := procOpenFileMappingW.Call(uintptr(windows.FILE_MAP_READ), 0, uintptr(unsafe.Pointer(name)))
	if r == 0 {
		return nil, callErr
	}
	m := &mappedMemory{mapping: windows.Handle(r)}

	m.addr, err = windows.MapViewOfFile(m.mapping, windows.FILE_MAP_READ, 0, 0, 0)
	if err != nil {
		m.Close()
		return nil, err
	}

	eventName, err := windows.UTF16PtrFromString(dataValidEventName)
	if err != nil {
		m.Close()
		return nil, err
	}
	m.event, err = windows.OpenEvent(windows.SYNCHRONIZE, false, eventName)
	if err != nil {
		m.Close()
		return nil, err
	}

	return m, nil
}

func (m *mappedMemory) Bytes() []byte {
	head := unsafe.Slice((*byte)(unsafe.Pointer(m.addr)), headerSize)
	h, err := parseHeader(head)
	if err != nil {
		return head
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(m.addr)), h.extent())
}

func (m *mappedMemory) Wait(timeout time.Duration) (bool, error) {
	event, err := windows.WaitForSingleObject(m.event, uint32(timeout.Milliseconds()))
	if err != nil {
		return false, err
	}

	return event == windows.WAIT_OBJECT_0, nil
}

func (m *mappedMemory) Close() error {
	var firstErr error
	if m.addr != 0 {
		firstErr = windows.UnmapViewOfFile(m.addr)
		m.addr = 0
	}
	for _, h := range []*windows.Handle{&m.event, &m.mapping} {
		if *h == 0 {
			continue
		}
		if err := windows.CloseHandle(*h); err != nil && firstErr == nil {
			firstErr = err
		}
		*h = 0
	}

	return firstErr
}
