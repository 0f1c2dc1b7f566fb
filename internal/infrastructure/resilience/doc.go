/*
Package resilience provides a circuit breaker for unreliable collaborators.

The launcher wraps two kinds of calls with it: each registered observer handle
gets its own breaker so a dead observer is skipped instead of costing the
controller a full notify timeout on every event, and process spawning goes
through a shared breaker so a broken launcher backend fails fast.

# Usage

	breaker := resilience.New("observer", resilience.Settings{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	err := breaker.Execute(func() error {
		return observer.Notify(ctx, event)
	})

	pid, err := resilience.Call(spawnBreaker, func() (int, error) {
		return launcher.Spawn(ctx, path)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
