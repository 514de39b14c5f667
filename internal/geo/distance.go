// Package geo ranks cities by their geodesic distance from a point.
package geo

import "math"

// WGS-84 ellipsoid
const (
	semiMajorAxis = 6378137.0
	flattening    = 1 / 298.257223563
	semiMinorAxis = (1 - flattening) * semiMajorAxis

	meanEarthRadiusKm = 6371.0088

	vincentyMaxIterations = 200
	vincentyTolerance     = 1e-12
)

// Distance returns the geodesic distance in kilometers between two points
// given in degrees. It uses Vincenty's inverse formula on the WGS-84
// ellipsoid and falls back to the haversine great-circle distance when the
// iteration does not converge (nearly antipodal points).
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if d, ok := vincenty(lat1, lon1, lat2, lon2); ok {
		return d
	}
	return haversine(lat1, lon1, lat2, lon2)
}

func vincenty(lat1, lon1, lat2, lon2 float64) (float64, bool) {
	L := toRadians(lon2 - lon1)
	U1 := math.Atan((1 - flattening) * math.Tan(toRadians(lat1)))
	U2 := math.Atan((1 - flattening) * math.Tan(toRadians(lat2)))
	sinU1, cosU1 := math.Sincos(U1)
	sinU2, cosU2 := math.Sincos(U2)

	lambda := L
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	converged := false

	for i := 0; i < vincentyMaxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Hypot(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda)
		if sinSigma == 0 {
			// coincident points
			return 0, true
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			// equatorial line
			cos2SigmaM = 0
		}
		C := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
		prev := lambda
		lambda = L + (1-C)*flattening*sinAlpha*
			(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) < vincentyTolerance {
			converged = true
			break
		}
	}
	if !converged {
		return 0, false
	}

	uSq := cosSqAlpha * (semiMajorAxis*semiMajorAxis - semiMinorAxis*semiMinorAxis) / (semiMinorAxis * semiMinorAxis)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	meters := semiMinorAxis * A * (sigma - deltaSigma)
	if math.IsNaN(meters) || math.IsInf(meters, 0) {
		return 0, false
	}
	return meters / 1000, true
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))
	// rounding can push a just outside [0, 1] for antipodal points
	a = math.Max(0, math.Min(1, a))
	c := 2 * math.Asin(math.Sqrt(a))
	return meanEarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
