//go:build !linux && !windows

package volume

import (
	"fmt"

	"github.com/moby/sys/mountinfo"
)

// System returns the enumerator for the running OS
func System() Enumerator {
	return EnumeratorFunc(listMounts)
}

// listMounts reports every mount as not removable; there is no portable
// removable flag here so purges on these systems always need an override
func listMounts() ([]Volume, error) {
	mounts, err := mountinfo.GetMounts(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get mount info: %w", err)
	}

	volumes := make([]Volume, 0, len(mounts))
	for _, m := range mounts {
		volumes = append(volumes, Volume{
			Root:   m.Mountpoint,
			Device: m.Source,
			FSType: m.FSType,
		})
	}
	return volumes, nil
}
