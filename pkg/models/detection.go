package models

// Vec2 is a point or extent in normalized [0,1]x[0,1] image space, x growing
// right and y growing down.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detection is one visual target reported by an external detector: the box
// center and the box extent, both in normalized image space.
type Detection struct {
	Position Vec2 `json:"position"`
	Size     Vec2 `json:"size"`
}

// Airport is reference data resolved through the airport lookup.
type Airport struct {
	Code     string           `json:"code"`
	Name     string           `json:"name,omitempty"`
	Position GeodeticPosition `json:"position"`
}
