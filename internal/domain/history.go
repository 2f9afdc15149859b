package domain

import "time"

// HistoryEntry is the summary of one suite run.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Overall   float64   `json:"overall"`
	Lines     float64   `json:"lines"`
	Covered   int       `json:"covered"`
	Total     int       `json:"total"`
	Files     int       `json:"files"`
	Examples  int       `json:"examples"`
}

// NewHistoryEntry summarizes a coverage result.
func NewHistoryEntry(cov Coverage, at time.Time) HistoryEntry {
	stat := cov.Stat()
	return HistoryEntry{
		Timestamp: at,
		Overall:   stat.PercentRounded(),
		Lines:     cov.LineStat().PercentRounded(),
		Covered:   stat.Covered,
		Total:     stat.Total,
		Files:     len(cov.Files),
		Examples:  len(cov.Sessions),
	}
}

// Trend represents the direction and magnitude of coverage change.
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Delta     float64        `json:"delta"`
}

// TrendDirection indicates whether coverage is improving, declining, or stable.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// Symbol returns an arrow for terminal output.
func (d TrendDirection) Symbol() string {
	switch d {
	case TrendUp:
		return "↑"
	case TrendDown:
		return "↓"
	default:
		return "→"
	}
}

// History contains all historical coverage entries.
type History struct {
	Entries []HistoryEntry `json:"entries"`
}

// LatestEntry returns the most recent history entry, or nil if empty.
func (h *History) LatestEntry() *HistoryEntry {
	if len(h.Entries) == 0 {
		return nil
	}
	latestIndex := 0
	latestTime := h.Entries[0].Timestamp
	for i := 1; i < len(h.Entries); i++ {
		if h.Entries[i].Timestamp.After(latestTime) {
			latestIndex = i
			latestTime = h.Entries[i].Timestamp
		}
	}
	return &h.Entries[latestIndex]
}

// EntriesAfter returns all entries after the given time.
func (h *History) EntriesAfter(t time.Time) []HistoryEntry {
	var result []HistoryEntry
	for _, e := range h.Entries {
		if e.Timestamp.After(t) {
			result = append(result, e)
		}
	}
	return result
}

// Trend compares the last two entries. A history with fewer than two
// entries is stable.
func (h *History) Trend() Trend {
	if len(h.Entries) < 2 {
		return Trend{Direction: TrendStable}
	}
	prev := h.Entries[len(h.Entries)-2]
	cur := h.Entries[len(h.Entries)-1]
	return CalculateTrend(prev.Overall, cur.Overall)
}

// CalculateTrend computes the trend between two coverage values.
func CalculateTrend(previous, current float64) Trend {
	delta := current - previous
	var direction TrendDirection

	switch {
	case delta > 0.5:
		direction = TrendUp
	case delta < -0.5:
		direction = TrendDown
	default:
		direction = TrendStable
	}

	return Trend{
		Direction: direction,
		Delta:     delta,
	}
}
