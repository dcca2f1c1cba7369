// Package fdlimit queries the process descriptor ceiling and derives a safe
// admission capacity from it.
//
// The package never raises the limit. Raising RLIMIT_NOFILE is left to the
// environment (ulimit, systemd LimitNOFILE, container runtime).
//
// # Capacity rule
//
// The capacity handed to a descriptor budget keeps a reserve for descriptors
// the host process needs outside the budget (stdio, sockets, directory
// listings):
//
//	reserve  = max(soft/10, MinReserve)
//	capacity = max(soft-reserve, 1)
//
// An "unlimited" soft limit is clamped to MaxCapacity.
package fdlimit
