//go:build !unix

package fdlimit

// Soft returns FallbackLimit on platforms without RLIMIT_NOFILE.
func Soft() (uint64, error) {
	return FallbackLimit, nil
}
