package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Rank is a 1-based leaderboard position reported by the exchange or
// assigned by the ranking engine. The zero value is unranked.
type Rank struct {
	pos int
}

// Unranked is the absent rank.
var Unranked = Rank{}

// RankOf returns the rank for a 1-based position. Non-positive positions
// are unranked.
func RankOf(pos int) Rank {
	if pos <= 0 {
		return Unranked
	}
	return Rank{pos: pos}
}

// Position returns the 1-based position and whether the rank is present.
func (r Rank) Position() (int, bool) {
	return r.pos, r.pos > 0
}

// Ranked reports whether a position is present.
func (r Rank) Ranked() bool {
	return r.pos > 0
}

// Int returns the position, or 0 when unranked.
func (r Rank) Int() int {
	return r.pos
}

func (r Rank) String() string {
	if !r.Ranked() {
		return ""
	}
	return strconv.Itoa(r.pos)
}

// MarshalJSON encodes an unranked value as null.
func (r Rank) MarshalJSON() ([]byte, error) {
	if !r.Ranked() {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(r.pos)), nil
}

// UnmarshalJSON accepts a number or null.
func (r *Rank) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = Unranked
		return nil
	}
	var pos int
	if err := json.Unmarshal(data, &pos); err != nil {
		return err
	}
	*r = RankOf(pos)
	return nil
}
