package domain

// Category is one of the five leaderboard kinds.
type Category string

const (
	CategoryVolume   Category = "volume"
	CategoryLong     Category = "long"
	CategoryShort    Category = "short"
	CategoryNetLong  Category = "netLong"
	CategoryNetShort Category = "netShort"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryVolume, CategoryLong, CategoryShort, CategoryNetLong, CategoryNetShort}

// IsNet reports whether the category is derived from long minus short.
func (c Category) IsNet() bool {
	return c == CategoryNetLong || c == CategoryNetShort
}

// Label is the human readable column title used by exporters.
func (c Category) Label() string {
	switch c {
	case CategoryVolume:
		return "成交量"
	case CategoryLong:
		return "持买单量"
	case CategoryShort:
		return "持卖单量"
	case CategoryNetLong:
		return "净多单"
	case CategoryNetShort:
		return "净空单"
	default:
		return string(c)
	}
}

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	Broker string `json:"broker"`
	Value  int64  `json:"value"`
	Change int64  `json:"change"`
	Rank   Rank   `json:"rank"`
}

// RankingList is an ordered leaderboard of strictly positive values.
type RankingList []RankingEntry

// Total sums the values of the first n entries, bounded by the list length.
func (l RankingList) Total(n int) int64 {
	if n > len(l) {
		n = len(l)
	}
	var total int64
	for _, e := range l[:n] {
		total += e.Value
	}
	return total
}

// SummaryStats compares a leaderboard total with the previous trading day.
type SummaryStats struct {
	TodayTotal int64 `json:"today_total"`
	PrevTotal  int64 `json:"prev_total"`
	Change     int64 `json:"change"`
	Top5Total  int64 `json:"top5_total"`
	Top10Total int64 `json:"top10_total"`
	Top20Total int64 `json:"top20_total"`
}

// ShareSlice is one segment of a leaderboard share breakdown.
type ShareSlice struct {
	Label   string  `json:"label"`
	Value   int64   `json:"value"`
	Percent float64 `json:"percent"`
	Other   bool    `json:"other,omitempty"`
}

// CategoryBoard bundles the outputs for one category.
type CategoryBoard struct {
	Category Category     `json:"category"`
	Entries  RankingList  `json:"entries"`
	Summary  SummaryStats `json:"summary"`
	Shares   []ShareSlice `json:"shares"`
}

// Leaderboard is the full set of category boards for one date and contract selector.
type Leaderboard struct {
	Date     Date            `json:"date"`
	Contract string          `json:"contract,omitempty"`
	PrevDate Date            `json:"prev_date,omitempty"`
	Boards   []CategoryBoard `json:"boards"`
}

// Board returns the board for c.
func (lb Leaderboard) Board(c Category) (CategoryBoard, bool) {
	for _, b := range lb.Boards {
		if b.Category == c {
			return b, true
		}
	}
	return CategoryBoard{}, false
}
