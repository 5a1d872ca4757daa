package strand

import "runtime"

// currentGoroutineID parses the running goroutine's id out of a runtime.Stack
// dump. It exists solely so Fiber/Scheduler can assert "this call happened on
// the goroutine currently holding the resume token" without adding a real
// mutex to the hot path, mirroring the teacher's getGoroutineID/isLoopThread
// pair in loop.go.
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
