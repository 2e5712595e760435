//go:build linux

package scan

import "golang.org/x/sys/unix"

// rtSchedPriority mirrors the fixed SCHED_FIFO priority the original
// runtime's setThreadPriorityRT uses.
const rtSchedPriority = 30

func raisePriorityImpl() rtResult {
	var res rtResult

	if err := unix.SchedSetscheduler(0, unix.SCHED_FIFO, &unix.SchedParam{Priority: rtSchedPriority}); err == nil {
		res.PriorityOK = true
	}

	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err == nil {
		res.MemLockOK = true
	}

	return res
}
