package student

import (
	"sort"
	"strings"

	"github.com/solomonake/student-crm-dashboard/core"
)

// Ordering fields accepted by `?ordering=`.
const (
	OrderName       = "name"
	OrderEmail      = "email"
	OrderCountry    = "country"
	OrderStatus     = "application_status"
	OrderLastActive = "last_active"
	OrderCreatedAt  = "created_at"
	OrderUpdatedAt  = "updated_at"
)

var (
	OrderingFields  = []string{OrderName, OrderEmail, OrderCountry, OrderStatus, OrderLastActive, OrderCreatedAt, OrderUpdatedAt}
	DefaultOrdering = []core.DBOrdering{{Field: OrderName, Ascending: true}}
)

// ParseOrderings keeps the known fields of a raw `?ordering=` value; empty yields DefaultOrdering.
func ParseOrderings(raw string) []core.DBOrdering {
	ords := core.ParseOrderings(raw, OrderingFields...)
	if len(ords) == 0 {
		return DefaultOrdering
	}
	return ords
}

// Sort orders students in place. Ties keep their relative order.
func Sort(students []Student, orderings ...core.DBOrdering) {
	if len(orderings) == 0 {
		orderings = DefaultOrdering
	}
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(students[i], students[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compare(a, b Student, field string) int {
	switch field {
	case OrderName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case OrderEmail:
		return strings.Compare(a.Email, b.Email)
	case OrderCountry:
		return strings.Compare(strings.ToLower(a.Country), strings.ToLower(b.Country))
	case OrderStatus:
		ai, _ := a.ApplicationStatus.Index()
		bi, _ := b.ApplicationStatus.Index()
		return ai - bi
	case OrderLastActive:
		return a.LastActive.Compare(b.LastActive)
	case OrderCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case OrderUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}
