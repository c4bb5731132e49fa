//go:build linux

package volume

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/moby/sys/mountinfo"
)

// fakeSysfs builds a sysfs tree and points sysBlock at it:
// sdz is a removable USB stick with partition sdz1, sdy is a fixed disk,
// mmcblk0 is an SD card in a built-in reader, mmcblk1 is soldered eMMC.
func fakeSysfs(t *testing.T) {
	t.Helper()

	root := t.TempDir()
	devices := filepath.Join(root, "devices")
	classBlock := filepath.Join(root, "class", "block")

	for _, dir := range []string{
		filepath.Join(devices, "sdz", "sdz1"),
		filepath.Join(devices, "sdy"),
		filepath.Join(devices, "mmcblk0", "mmcblk0p1"),
		filepath.Join(devices, "mmcblk0", "device"),
		filepath.Join(devices, "mmcblk1", "mmcblk1p2"),
		filepath.Join(devices, "mmcblk1", "device"),
		classBlock,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	writeAttr := func(path, value string) {
		if err := os.WriteFile(path, []byte(value), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	writeAttr(filepath.Join(devices, "sdz", "removable"), "1\n")
	writeAttr(filepath.Join(devices, "sdy", "removable"), "0\n")
	writeAttr(filepath.Join(devices, "mmcblk0", "removable"), "0\n")
	writeAttr(filepath.Join(devices, "mmcblk0", "device", "type"), "SD\n")
	writeAttr(filepath.Join(devices, "mmcblk1", "removable"), "0\n")
	writeAttr(filepath.Join(devices, "mmcblk1", "device", "type"), "MMC\n")

	links := map[string]string{
		"sdz":       filepath.Join(devices, "sdz"),
		"sdz1":      filepath.Join(devices, "sdz", "sdz1"),
		"sdy":       filepath.Join(devices, "sdy"),
		"mmcblk0":   filepath.Join(devices, "mmcblk0"),
		"mmcblk0p1": filepath.Join(devices, "mmcblk0", "mmcblk0p1"),
		"mmcblk1":   filepath.Join(devices, "mmcblk1"),
		"mmcblk1p2": filepath.Join(devices, "mmcblk1", "mmcblk1p2"),
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(classBlock, name)); err != nil {
			t.Fatalf("failed to link %s: %v", name, err)
		}
	}

	old := sysBlock
	sysBlock = classBlock
	t.Cleanup(func() { sysBlock = old })
}

func TestIsRemovableDevice(t *testing.T) {
	fakeSysfs(t)

	tests := []struct {
		source string
		want   bool
	}{
		{"/dev/sdz", true},
		{"/dev/sdz1", true},
		{"/dev/sdy", false},
		{"/dev/mmcblk0p1", true},
		{"/dev/mmcblk0", true},
		{"/dev/mmcblk1p2", false},
		{"/dev/mmcblk7p1", false},
		{"/dev/unknown0", false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := isRemovableDevice(tt.source); got != tt.want {
				t.Errorf("isRemovableDevice(%q) = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

func TestVolumesFromMounts(t *testing.T) {
	fakeSysfs(t)

	mounts := []*mountinfo.Info{
		{Mountpoint: "/", Source: "/dev/mmcblk1p2", FSType: "ext4"},
		{Mountpoint: "/dev/shm", Source: "tmpfs", FSType: "tmpfs"},
		{Mountpoint: "/media/sd", Source: "/dev/mmcblk0p1", FSType: "exfat"},
		{Mountpoint: "/media/sd/share", Source: "nas:/export", FSType: "nfs4"},
		{Mountpoint: "/media/usb", Source: "/dev/sdz1", FSType: "vfat"},
		{Mountpoint: "/media/usb", Source: "tmpfs", FSType: "tmpfs"},
	}
	volumes := volumesFromMounts(mounts)
	if len(volumes) != len(mounts) {
		t.Fatalf("got %d volumes, want %d", len(volumes), len(mounts))
	}

	tests := []struct {
		name          string
		path          string
		wantDevice    string
		wantRemovable bool
	}{
		{"EmmcRoot", "/home/pi/videos", "/dev/mmcblk1p2", false},
		{"Tmpfs", "/dev/shm/clips", "tmpfs", false},
		{"SdCard", "/media/sd/DCIM/100GOPRO", "/dev/mmcblk0p1", true},
		{"NetworkShareBelowSdCard", "/media/sd/share/DCIM", "nas:/export", false},
		{"StackedMount", "/media/usb/DCIM", "tmpfs", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Resolve(volumes, tt.path)
			if !ok {
				t.Fatalf("Resolve(%q) found no volume", tt.path)
			}
			if v.Device != tt.wantDevice || v.Removable != tt.wantRemovable {
				t.Errorf("Resolve(%q) = %s (removable=%v), want %s (removable=%v)",
					tt.path, v.Device, v.Removable, tt.wantDevice, tt.wantRemovable)
			}
		})
	}
}

func TestSystem_ListsRoot(t *testing.T) {
	volumes, err := System().ListVolumes()
	if err != nil {
		t.Skipf("mount table unavailable: %v", err)
	}
	for _, v := range volumes {
		if v.Root == "" {
			t.Errorf("volume %+v has empty root", v)
		}
	}
}
