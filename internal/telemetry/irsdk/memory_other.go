//go:build !windows

package irsdk

import "fmt"

func openMemory() (memory, error) {
	return nil, fmt.Errorf("iRacing shared memory is only available on Windows")
}
