package routing

import (
	"math/rand"

	"github.com/upb/llm-gateway/models"
	"github.com/upb/llm-gateway/services"
)

// PickRoute selects one route for the alias by weighted random draw: a
// route's long-run selection frequency converges to weight/total. The call is
// pure and safe for concurrent use.
//
// Candidates whose model does not match the alias are ignored. If no
// candidate matches, the request fails with the route-not-found rejection;
// there is no implicit fallback alias.
func PickRoute(alias string, routes []models.Route) (models.Route, error) {
	var candidates []models.Route
	var total uint
	for _, r := range routes {
		if r.Model != alias {
			continue
		}
		candidates = append(candidates, r)
		total += r.EffectiveWeight()
	}

	if len(candidates) == 0 {
		return models.Route{}, services.ErrRouteNotFound.WithDetail("alias", alias)
	}

	// Cumulative-weight draw. The final return is a deliberate safety net:
	// if the remainder never drops to zero the last candidate wins, so the
	// call always resolves.
	remainder := rand.Float64() * float64(total)
	for _, c := range candidates {
		remainder -= float64(c.EffectiveWeight())
		if remainder <= 0 {
			return c, nil
		}
	}
	return candidates[len(candidates)-1], nil
}
