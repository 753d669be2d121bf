// Package rate holds the Redis fixed-window counter behind the middleware
// rejection throttle.
//
// Counters use INCR with an EXPIRE on the first hit of each window, keyed
// <prefix>:<ip> (default prefix btr).
package rate
