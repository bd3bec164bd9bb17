package models

// Stats summarizes the current scheduling state of the catalog.
// Due, New and Later are counted independently and may overlap;
// Total is always the catalog size.
type Stats struct {
	Due   int `json:"due"`
	New   int `json:"new"`
	Later int `json:"later"`
	Total int `json:"total"`
}
