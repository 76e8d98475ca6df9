package cache

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// ResolveAvailableBytes interprets a configured capacity. Values of at least
// 1 are a byte count. Values strictly between 0 and 1 are a fraction of total
// system memory. Zero disables retention.
func ResolveAvailableBytes(v float64) (int64, error) {
	switch {
	case v < 0:
		return 0, fmt.Errorf("available bytes must not be negative, got %v", v)
	case v == 0:
		return 0, nil
	case v >= 1:
		return int64(v), nil
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("reading system memory: %w", err)
	}
	return int64(float64(vm.Total) * v), nil
}
