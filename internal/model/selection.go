package model

// Selection is a percentage sub-interval of the displayed bin axis.
type Selection struct {
	LeftPercent  float64 `json:"left_percent"`
	RightPercent float64 `json:"right_percent"`
}

// Span returns the selection width in percent.
func (s Selection) Span() float64 {
	return s.RightPercent - s.LeftPercent
}

// Midpoint returns the selection centre in percent.
func (s Selection) Midpoint() float64 {
	return (s.LeftPercent + s.RightPercent) / 2
}

// BinIndexSelection is a click-drag selection expressed as indexes into the
// snapshot bin array (inclusive on both ends).
type BinIndexSelection struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}
