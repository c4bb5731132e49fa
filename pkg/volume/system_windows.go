//go:build windows

package volume

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// System returns the enumerator for the running OS
func System() Enumerator {
	return EnumeratorFunc(listWindowsVolumes)
}

// listWindowsVolumes returns every logical drive root with its drive type
func listWindowsVolumes() ([]Volume, error) {
	buf := make([]uint16, 254)
	n, err := windows.GetLogicalDriveStrings(uint32(len(buf)), &buf[0])
	if err != nil {
		return nil, fmt.Errorf("failed to list logical drives: %w", err)
	}
	if int(n) > len(buf) {
		buf = make([]uint16, n)
		if n, err = windows.GetLogicalDriveStrings(uint32(len(buf)), &buf[0]); err != nil {
			return nil, fmt.Errorf("failed to list logical drives: %w", err)
		}
	}

	var volumes []Volume
	start := 0
	for i := 0; i < int(n); i++ {
		if buf[i] != 0 {
			continue
		}
		if i > start {
			root := windows.UTF16ToString(buf[start:i])
			driveType := windows.GetDriveType(&buf[start])
			volumes = append(volumes, Volume{
				Root:      root,
				Device:    root,
				Removable: driveType == windows.DRIVE_REMOVABLE,
			})
		}
		start = i + 1
	}

	return volumes, nil
}
