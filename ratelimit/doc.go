// Package ratelimit throttles login attempts per client.
//
// Both implementations count attempts in fixed windows: the first attempt
// for a key opens a window of Config.Window, and at most Config.Attempts
// attempts are allowed until it closes. MemoryLimiter keeps the counters in
// process; RedisLimiter shares them across instances and fails open when
// Redis is unreachable.
package ratelimit
