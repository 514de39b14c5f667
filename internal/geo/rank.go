package geo

import (
	"cmp"
	"math"
	"slices"

	"github.com/alexivanou/city-api/internal/model"
)

type rankedCity struct {
	city       model.City
	distanceKm float64
}

// Rank returns up to k candidates ordered by non-decreasing distance from
// query. Candidates at equal distance keep their input order. The input slice
// is left untouched.
func Rank(query model.Coordinates, candidates []model.City, k int) []model.City {
	if len(candidates) == 0 || k <= 0 {
		return []model.City{}
	}

	ranked := make([]rankedCity, len(candidates))
	for i, city := range candidates {
		d := Distance(query.Latitude, query.Longitude, city.Latitude, city.Longitude)
		if math.IsNaN(d) {
			// never let an undefined distance outrank a real one
			d = math.Inf(1)
		}
		ranked[i] = rankedCity{city: city, distanceKm: d}
	}

	slices.SortStableFunc(ranked, func(a, b rankedCity) int {
		return cmp.Compare(a.distanceKm, b.distanceKm)
	})

	n := min(k, len(ranked))
	result := make([]model.City, n)
	for i := 0; i < n; i++ {
		result[i] = ranked[i].city
	}
	return result
}
