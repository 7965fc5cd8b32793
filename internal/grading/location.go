package grading

import "fmt"

type LocationGrade string

const (
	LocationInside LocationGrade = "INSIDE"
	LocationNear   LocationGrade = "NEAR"
	LocationFar    LocationGrade = "FAR"
	LocationWrong  LocationGrade = "WRONG"
)

const (
	insideScore = 100.0
	nearScore   = 70.0
	farScore    = 30.0
	wrongScore  = 0.0
)

type LocationResult struct {
	Grade       LocationGrade
	Score       float64
	Distance    float64
	Explanation string
}

// GradeLocation maps a click to a proximity band. Band limits scale with the lesion size.
func GradeLocation(g Geometry, x, y float64) (LocationResult, error) {
	if err := ValidateGeometry(g); err != nil {
		return LocationResult{}, err
	}
	if err := validateClick(x, y); err != nil {
		return LocationResult{}, err
	}

	inside, d, near, far := g.locate(x, y)

	res := LocationResult{Distance: d}
	switch {
	case inside:
		res.Grade, res.Score = LocationInside, insideScore
		res.Explanation = fmt.Sprintf("Location: the click is inside the %s lesion.", g.Shape())
	case d <= near:
		res.Grade, res.Score = LocationNear, nearScore
		res.Explanation = fmt.Sprintf("Location: the click is near the lesion (%.3f from its edge).", edgeDistance(g, d))
	case d <= far:
		res.Grade, res.Score = LocationFar, farScore
		res.Explanation = fmt.Sprintf("Location: the click is far from the lesion (%.3f from its edge).", edgeDistance(g, d))
	default:
		res.Grade, res.Score = LocationWrong, wrongScore
		res.Explanation = "Location: the click is outside the tolerance area of the lesion."
	}
	return res, nil
}

// circle distances are measured from the center, rect distances from the border.
func edgeDistance(g Geometry, d float64) float64 {
	if c, ok := g.(Circle); ok {
		return d - c.R
	}
	return d
}
