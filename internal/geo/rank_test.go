package geo

import (
	"math/rand"
	"testing"

	"github.com/alexivanou/city-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func russianCities() []model.City {
	return []model.City{
		{ID: 1, Name: "Moscow", Latitude: 55.75, Longitude: 37.62},
		{ID: 2, Name: "Tula", Latitude: 54.20, Longitude: 37.62},
		{ID: 3, Name: "Kazan", Latitude: 55.80, Longitude: 49.10},
	}
}

func names(cities []model.City) []string {
	result := make([]string, len(cities))
	for i, c := range cities {
		result[i] = c.Name
	}
	return result
}

func TestRank(t *testing.T) {
	query := model.Coordinates{Latitude: 55.70, Longitude: 37.60}

	tests := []struct {
		name       string
		candidates []model.City
		k          int
		expected   []string
	}{
		{
			name:       "Two nearest",
			candidates: russianCities(),
			k:          2,
			expected:   []string{"Moscow", "Tula"},
		},
		{
			name:       "k larger than candidates",
			candidates: russianCities(),
			k:          10,
			expected:   []string{"Moscow", "Tula", "Kazan"},
		},
		{
			name:       "Single candidate",
			candidates: russianCities()[2:],
			k:          2,
			expected:   []string{"Kazan"},
		},
		{
			name:       "Empty candidates",
			candidates: nil,
			k:          2,
			expected:   []string{},
		},
		{
			name:       "Zero k",
			candidates: russianCities(),
			k:          0,
			expected:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(query, tt.candidates, tt.k)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, names(got))
		})
	}
}

func TestRank_UniqueMinimumFirstRegardlessOfOrder(t *testing.T) {
	query := model.Coordinates{Latitude: 55.70, Longitude: 37.60}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		candidates := russianCities()
		rng.Shuffle(len(candidates), func(a, b int) {
			candidates[a], candidates[b] = candidates[b], candidates[a]
		})

		got := Rank(query, candidates, 2)
		require.Len(t, got, 2)
		assert.Equal(t, "Moscow", got[0].Name)
		assert.Equal(t, "Tula", got[1].Name)
	}
}

func TestRank_NonDecreasingDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	candidates := make([]model.City, 200)
	for i := range candidates {
		candidates[i] = model.City{
			ID:        i + 1,
			Latitude:  rng.Float64()*180 - 90,
			Longitude: rng.Float64()*360 - 180,
		}
	}
	query := model.Coordinates{Latitude: 12.5, Longitude: -45}

	for _, k := range []int{1, 2, 50, 200, 500} {
		got := Rank(query, candidates, k)
		require.Len(t, got, min(k, len(candidates)))

		for i := 1; i < len(got); i++ {
			prev := Distance(query.Latitude, query.Longitude, got[i-1].Latitude, got[i-1].Longitude)
			cur := Distance(query.Latitude, query.Longitude, got[i].Latitude, got[i].Longitude)
			assert.LessOrEqual(t, prev, cur)
		}
	}
}

func TestRank_StableForEquidistantCandidates(t *testing.T) {
	// Points mirrored across the query's meridian are at the same distance.
	query := model.Coordinates{Latitude: 0, Longitude: 0}
	candidates := []model.City{
		{ID: 10, Name: "East", Latitude: 0, Longitude: 1},
		{ID: 11, Name: "Far", Latitude: 0, Longitude: 5},
		{ID: 12, Name: "West", Latitude: 0, Longitude: -1},
		{ID: 13, Name: "EastAgain", Latitude: 0, Longitude: 1},
	}

	got := Rank(query, candidates, 3)
	assert.Equal(t, []string{"East", "West", "EastAgain"}, names(got))

	reordered := []model.City{candidates[3], candidates[2], candidates[1], candidates[0]}
	got = Rank(query, reordered, 3)
	assert.Equal(t, []string{"EastAgain", "West", "East"}, names(got))
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	candidates := russianCities()
	candidates[0], candidates[2] = candidates[2], candidates[0]
	before := names(candidates)

	Rank(model.Coordinates{Latitude: 55.70, Longitude: 37.60}, candidates, 2)

	assert.Equal(t, before, names(candidates))
}

func TestRank_AntipodeRankedLast(t *testing.T) {
	query := model.Coordinates{Latitude: 10, Longitude: 0}
	candidates := []model.City{
		{ID: 1, Name: "Near", Latitude: 10, Longitude: 1},
		{ID: 2, Name: "Near2", Latitude: 10, Longitude: 2},
		{ID: 3, Name: "Antipode", Latitude: -10, Longitude: 180},
	}

	assert.Equal(t, []string{"Near", "Near2"}, names(Rank(query, candidates, 2)))
	assert.Equal(t, []string{"Near", "Near2", "Antipode"}, names(Rank(query, candidates, 3)))

	// order of the input must not matter
	reversed := []model.City{candidates[2], candidates[1], candidates[0]}
	assert.Equal(t, []string{"Near", "Near2"}, names(Rank(query, reversed, 2)))
}
