package resilience

import "syscall"

// ResourceStatus reports the outcome of a resource health check.
type ResourceStatus struct {
	Healthy        bool
	FreeBytes      uint64
	FreeBytesRatio float64
	Reason         string
}

// ResourceProbe checks whether the system has enough local resources
// (disk space) to safely perform file operations. There is no library in
// the stack for this — it is a thin wrapper over syscall.Statfs.
type ResourceProbe interface {
	Check() ResourceStatus
}

// DiskSpaceProbe reports unhealthy when free space on Path's filesystem
// drops below MinFreeRatio of total capacity.
type DiskSpaceProbe struct {
	Path         string
	MinFreeRatio float64
}

// NewDiskSpaceProbe creates a DiskSpaceProbe for path, requiring at least
// minFreeRatio (0.0-1.0) of the filesystem to remain free.
func NewDiskSpaceProbe(path string, minFreeRatio float64) *DiskSpaceProbe {
	return &DiskSpaceProbe{Path: path, MinFreeRatio: minFreeRatio}
}

// Check stats the filesystem backing Path and compares free space against
// the configured floor.
func (p *DiskSpaceProbe) Check() ResourceStatus {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(p.Path, &stat); err != nil {
		return ResourceStatus{Healthy: false, Reason: "statfs failed: " + err.Error()}
	}

	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)

	var ratio float64
	if total > 0 {
		ratio = float64(free) / float64(total)
	}

	status := ResourceStatus{
		Healthy:        ratio >= p.MinFreeRatio,
		FreeBytes:      free,
		FreeBytesRatio: ratio,
	}
	if !status.Healthy {
		status.Reason = "free disk space below configured floor"
	}
	return status
}
