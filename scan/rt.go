package scan

// rtResult reports what raisePriority actually managed to obtain, so the
// caller can warn on partial failure rather than abort, matching
// setThreadPriorityRT's warn-only degrade in the original runtime.
type rtResult struct {
	PriorityOK bool
	MemLockOK  bool
}

// raisePriority places the calling thread into a real-time FIFO scheduling
// class at priority 30 and locks all process memory, on platforms that
// support it. Implemented per-platform in rt_linux.go and rt_other.go.
func raisePriority() rtResult {
	return raisePriorityImpl()
}
