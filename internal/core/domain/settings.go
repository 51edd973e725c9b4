package domain

import "fmt"

type OrderMode string

const (
	OrderRandom                  OrderMode = "random"
	OrderChronologicalAscending  OrderMode = "chronological-ascending"
	OrderChronologicalDescending OrderMode = "chronological-descending"
)

func ParseOrderMode(s string) (OrderMode, error) {
	switch m := OrderMode(s); m {
	case OrderRandom, OrderChronologicalAscending, OrderChronologicalDescending:
		return m, nil
	case "":
		return OrderRandom, nil
	default:
		return "", fmt.Errorf("unknown order mode %q", s)
	}
}

func (m OrderMode) Chronological() bool {
	return m == OrderChronologicalAscending || m == OrderChronologicalDescending
}

// SortOrder is the remote listing order for a chronological mode.
func (m OrderMode) SortOrder() string {
	if m == OrderChronologicalDescending {
		return "desc"
	}
	return "asc"
}
