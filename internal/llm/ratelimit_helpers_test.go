package llm

func (rl *rateLimiter) tryAcquire() bool {
	delay, err := rl.reserve()
	return err == nil && delay == 0
}

// available returns the whole tokens currently in the bucket.
func (rl *rateLimiter) available() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.credit()
	return int(rl.tokens)
}
