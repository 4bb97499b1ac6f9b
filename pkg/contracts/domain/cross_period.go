package domain

// CrossPeriodEntry is the all-broker net position of one contract month.
// NetLong and NetShort are mutually exclusive.
type CrossPeriodEntry struct {
	Contract      string `json:"contract"`
	TotalLong     int64  `json:"total_long"`
	TotalShort    int64  `json:"total_short"`
	NetLong       int64  `json:"net_long"`
	NetShort      int64  `json:"net_short"`
	TotalPosition int64  `json:"total_position"`
}

// BrokerCell is one broker's net position on one contract month.
type BrokerCell struct {
	NetLong  int64 `json:"net_long"`
	NetShort int64 `json:"net_short"`
}

// Exposure returns the absolute net exposure of the cell.
func (c BrokerCell) Exposure() int64 {
	return c.NetLong + c.NetShort
}

// BrokerRow is one matrix row keyed by contract.
// Contracts where the broker is flat have no cell.
type BrokerRow struct {
	Broker   string                `json:"broker"`
	Cells    map[string]BrokerCell `json:"cells"`
	Exposure int64                 `json:"exposure"`
}

// Cell returns the broker's cell for contract.
func (r BrokerRow) Cell(contract string) (BrokerCell, bool) {
	c, ok := r.Cells[contract]
	return c, ok
}

// CrossPeriodResult is the inter-month view for one date.
// HasData is false when the date has no snapshots at all, which differs from
// a date whose contracts all net to zero position.
type CrossPeriodResult struct {
	Date       Date               `json:"date"`
	HasData    bool               `json:"has_data"`
	Entries    []CrossPeriodEntry `json:"entries"`
	Contracts  []string           `json:"contracts"`
	Matrix     []BrokerRow        `json:"matrix"`
	TopBrokers []BrokerRow        `json:"top_brokers"`
}

// SpreadPair compares a broker's base contract against another month.
type SpreadPair struct {
	Base       string `json:"base"`
	Other      string `json:"other"`
	BaseLong   int64  `json:"base_long"`
	OtherShort int64  `json:"other_short"`
	BaseShort  int64  `json:"base_short"`
	OtherLong  int64  `json:"other_long"`
}

// BrokerDetail is the per-broker drill down for one contract and date.
type BrokerDetail struct {
	Broker   string           `json:"broker"`
	Contract string           `json:"contract"`
	Trend    []BrokerTrendRow `json:"trend"`
	Spread   []SpreadPair     `json:"spread"`
}
