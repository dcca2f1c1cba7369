package fdlimit

const (
	// MinReserve is the smallest number of descriptors kept out of the budget.
	MinReserve = 8

	// MaxCapacity bounds the capacity derived from very large or unlimited
	// soft limits.
	MaxCapacity = 1 << 20

	// FallbackLimit is assumed when the soft limit cannot be queried.
	FallbackLimit = 1024
)

// Capacity derives an admission capacity from a soft descriptor limit.
func Capacity(soft uint64) int64 {
	if soft > MaxCapacity {
		soft = MaxCapacity
	}

	reserve := soft / 10
	if reserve < MinReserve {
		reserve = MinReserve
	}

	if soft <= reserve {
		return 1
	}
	return int64(soft - reserve)
}

// DefaultCapacity returns Capacity of the current soft limit, or of
// FallbackLimit if the limit cannot be read.
func DefaultCapacity() int64 {
	soft, err := Soft()
	if err != nil || soft == 0 {
		soft = FallbackLimit
	}
	return Capacity(soft)
}
