//go:build linux

package volume

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/sys/mountinfo"
)

// sysBlock is where the kernel exposes block device attributes
var sysBlock = "/sys/class/block"

// System returns the enumerator for the running OS
func System() Enumerator {
	return EnumeratorFunc(listLinuxVolumes)
}

func listLinuxVolumes() ([]Volume, error) {
	mounts, err := mountinfo.GetMounts(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get mount info: %w", err)
	}
	return volumesFromMounts(mounts), nil
}

// volumesFromMounts converts the mount table in kernel order. Every mount is
// kept so that a path on tmpfs, NFS or FUSE resolves to its own mount rather
// than to the block device mounted above it; only mounts backed by a /dev
// node can be removable.
func volumesFromMounts(mounts []*mountinfo.Info) []Volume {
	volumes := make([]Volume, 0, len(mounts))
	for _, m := range mounts {
		volumes = append(volumes, Volume{
			Root:      m.Mountpoint,
			Device:    m.Source,
			FSType:    m.FSType,
			Removable: strings.HasPrefix(m.Source, "/dev/") && isRemovableDevice(m.Source),
		})
	}
	return volumes
}

// isRemovableDevice reports whether the device, or the disk it is a partition
// of, has the sysfs removable flag set or is an SD card on an MMC host.
// Built-in card readers report removable=0, but their cards carry
// device/type "SD" while soldered eMMC reports "MMC".
func isRemovableDevice(source string) bool {
	dev, err := filepath.EvalSymlinks(source)
	if err != nil {
		dev = source
	}

	// Partitions live under their disk; /sys/class/block/sdb1 links to .../block/sdb/sdb1
	sysPath, err := filepath.EvalSymlinks(filepath.Join(sysBlock, filepath.Base(dev)))
	if err != nil {
		return false
	}

	for _, dir := range []string{sysPath, filepath.Dir(sysPath)} {
		if readAttr(filepath.Join(dir, "removable")) == "1" {
			return true
		}
		if readAttr(filepath.Join(dir, "device", "type")) == "SD" {
			return true
		}
	}

	return false
}

func readAttr(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
