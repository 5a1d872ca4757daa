package strand_test

import (
	"fmt"

	"github.com/strandrt/strand"
)

// Example_spawnChain demonstrates a fiber spawning a successor and exiting,
// repeated until a counter bottoms out — the minimal "fiber tree" shape most
// programs built on this package start from.
func Example_spawnChain() {
	rt, err := strand.New()
	if err != nil {
		fmt.Println("new:", err)
		return
	}
	defer rt.Close()

	var entry func(f *strand.Fiber, arg any)
	entry = func(f *strand.Fiber, arg any) {
		n := arg.(int)
		fmt.Println("fiber at", n)
		if n > 0 {
			if _, err := f.Runtime().Spawn(entry, n-1); err != nil {
				fmt.Println("spawn:", err)
			}
		}
	}

	if err := rt.Work(entry, 3); err != nil {
		fmt.Println("work:", err)
	}

	// Output:
	// fiber at 3
	// fiber at 2
	// fiber at 1
	// fiber at 0
}

// Example_mutexContention shows two fibers contending for a Mutex: the
// first fiber postpones itself while holding the lock, forcing the second
// fiber to observe it busy before eventually acquiring it.
func Example_mutexContention() {
	rt, err := strand.New()
	if err != nil {
		fmt.Println("new:", err)
		return
	}
	defer rt.Close()

	m := strand.NewMutex()
	shared := 0

	entryA := func(f *strand.Fiber, arg any) {
		m.Lock(f)
		f.Postpone()
		shared++
		fmt.Println("A set shared to", shared)
		m.Unlock(f)
	}
	entryB := func(f *strand.Fiber, arg any) {
		if m.TryLock(f) {
			fmt.Println("B unexpectedly acquired an uncontended lock")
			return
		}
		fmt.Println("B observed the mutex busy")
		m.Lock(f)
		shared++
		fmt.Println("B set shared to", shared)
		m.Unlock(f)
	}
	root := func(f *strand.Fiber, arg any) {
		if _, err := f.Runtime().Spawn(entryA, nil); err != nil {
			fmt.Println("spawn A:", err)
		}
		if _, err := f.Runtime().Spawn(entryB, nil); err != nil {
			fmt.Println("spawn B:", err)
		}
	}

	if err := rt.Work(root, nil); err != nil {
		fmt.Println("work:", err)
	}

	// Output:
	// B observed the mutex busy
	// A set shared to 1
	// B set shared to 2
}

// Example_condvarPingPong shows one fiber waiting on a condition that a
// second fiber later satisfies and signals.
func Example_condvarPingPong() {
	rt, err := strand.New()
	if err != nil {
		fmt.Println("new:", err)
		return
	}
	defer rt.Close()

	m := strand.NewMutex()
	c := strand.NewCond()
	ready := false

	waiter := func(f *strand.Fiber, arg any) {
		m.Lock(f)
		for !ready {
			fmt.Println("waiter: not ready yet")
			c.Wait(f, m)
		}
		fmt.Println("waiter: woke up, ready")
		m.Unlock(f)
	}
	signaler := func(f *strand.Fiber, arg any) {
		m.Lock(f)
		ready = true
		fmt.Println("signaler: set ready")
		c.Signal(f)
		m.Unlock(f)
	}
	root := func(f *strand.Fiber, arg any) {
		if _, err := f.Runtime().Spawn(waiter, nil); err != nil {
			fmt.Println("spawn waiter:", err)
		}
		if _, err := f.Runtime().Spawn(signaler, nil); err != nil {
			fmt.Println("spawn signaler:", err)
		}
	}

	if err := rt.Work(root, nil); err != nil {
		fmt.Println("work:", err)
	}

	// Output:
	// waiter: not ready yet
	// signaler: set ready
	// waiter: woke up, ready
}
