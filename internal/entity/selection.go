package entity

// Selection is the outcome of one spin.
type Selection struct {
	ID        string `json:"id"`
	Film      Film   `json:"film"`
	Lost      bool   `json:"lost"`
	BadCount  int    `json:"bad_count"`  // configured bad quota (balas)
	GoodCount int    `json:"good_count"` // 6 - balas
	DrawnBad  int    `json:"drawn_bad"`
	DrawnGood int    `json:"drawn_good"`
}
