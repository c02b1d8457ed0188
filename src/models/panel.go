package models

import "encoding/json"

// MMonthlyPanel is a month-indexed table with one column per entity key.
// It is immutable: every accessor hands out copies.
type MMonthlyPanel struct {
	name    string
	months  []YearMonth
	keys    []string
	columns [][]MNullFloat
	rowIdx  map[int]int
	colIdx  map[string]int
}

// -----------------------------------------------------------------------------

// NewMonthlyPanel copies its inputs. columns[i] belongs to keys[i] and must be len(months) long;
// structural checks live in analysis.ValidatePanel.
func NewMonthlyPanel(name string, months []YearMonth, keys []string, columns [][]MNullFloat) *MMonthlyPanel {
	p := &MMonthlyPanel{
		name:    name,
		months:  append([]YearMonth(nil), months...),
		keys:    append([]string(nil), keys...),
		columns: make([][]MNullFloat, len(columns)),
		rowIdx:  make(map[int]int, len(months)),
		colIdx:  make(map[string]int, len(keys)),
	}
	for i, col := range columns {
		p.columns[i] = append([]MNullFloat(nil), col...)
	}
	for i, m := range p.months {
		if _, dup := p.rowIdx[m.Ordinal()]; !dup {
			p.rowIdx[m.Ordinal()] = i
		}
	}
	for i, k := range p.keys {
		if _, dup := p.colIdx[k]; !dup {
			p.colIdx[k] = i
		}
	}
	return p
}

// -----------------------------------------------------------------------------

func (p *MMonthlyPanel) Name() string { return p.name }
func (p *MMonthlyPanel) Len() int     { return len(p.months) }
func (p *MMonthlyPanel) Width() int   { return len(p.keys) }

func (p *MMonthlyPanel) Months() []YearMonth {
	return append([]YearMonth(nil), p.months...)
}

func (p *MMonthlyPanel) Keys() []string {
	return append([]string(nil), p.keys...)
}

// RowIndex returns the row for a month, or -1.
func (p *MMonthlyPanel) RowIndex(month YearMonth) int {
	if i, ok := p.rowIdx[month.Ordinal()]; ok {
		return i
	}
	return -1
}

func (p *MMonthlyPanel) ColumnAt(i int) []MNullFloat {
	if i < 0 || i >= len(p.columns) {
		return nil
	}
	return append([]MNullFloat(nil), p.columns[i]...)
}

func (p *MMonthlyPanel) Column(key string) ([]MNullFloat, bool) {
	i, ok := p.colIdx[key]
	if !ok {
		return nil, false
	}
	return p.ColumnAt(i), true
}

// Value returns the cell at (month, key). ok is false when the row or column does not exist.
func (p *MMonthlyPanel) Value(month YearMonth, key string) (MNullFloat, bool) {
	r := p.RowIndex(month)
	c, ok := p.colIdx[key]
	if r < 0 || !ok || r >= len(p.columns[c]) {
		return MNullFloat{}, false
	}
	return p.columns[c][r], true
}

// -----------------------------------------------------------------------------

type panelSeriesJSON struct {
	Key    string       `json:"key"`
	Values []MNullFloat `json:"values"`
}

type panelJSON struct {
	Name   string            `json:"name"`
	Months []YearMonth       `json:"months"`
	Series []panelSeriesJSON `json:"series"`
}

func (p *MMonthlyPanel) MarshalJSON() ([]byte, error) {
	out := panelJSON{Name: p.name, Months: p.months, Series: make([]panelSeriesJSON, len(p.keys))}
	if out.Months == nil {
		out.Months = []YearMonth{}
	}
	for i, k := range p.keys {
		out.Series[i] = panelSeriesJSON{Key: k, Values: p.columns[i]}
	}
	return json.Marshal(out)
}
