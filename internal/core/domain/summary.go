package domain

// CountFilter restricts a count to rows whose column is one of Values.
type CountFilter struct {
	Column string
	Values []string
}

// CountQuery describes one aggregate over an event table.
type CountQuery struct {
	// Name is the stable identifier used in JSON and metrics.
	Name string

	// Label is the dashboard caption.
	Label string

	// Table is the event table counted.
	Table string

	// Filter is optional; a zero Filter counts every row.
	Filter CountFilter
}

// HasFilter returns true if the count is restricted.
func (q CountQuery) HasFilter() bool {
	return q.Filter.Column != "" && len(q.Filter.Values) > 0
}

// DashboardKPIs returns the headline counters shown on the dashboard.
func DashboardKPIs() []CountQuery {
	return []CountQuery{
		{Name: "total_accidents", Label: "Total Accidents", Table: "accident_events"},
		{Name: "road_damage_events", Label: "Road Damage Events", Table: "road_damage_events"},
		{
			Name: "overcrowded_events", Label: "Overcrowded Events", Table: "crowd_events",
			Filter: CountFilter{Column: "severity", Values: []string{"Overcrowded"}},
		},
		{
			Name: "high_traffic_events", Label: "High Traffic Events", Table: "traffic_events",
			Filter: CountFilter{Column: "congestion_level", Values: []string{"High"}},
		},
		{
			Name: "poor_aqi_readings", Label: "Poor AQI Readings", Table: "air_quality_events",
			Filter: CountFilter{Column: "aqi_category", Values: []string{"Poor", "Severe"}},
		},
		{
			Name: "high_priority_complaints", Label: "High Priority Complaints", Table: "nlp_complaints",
			Filter: CountFilter{Column: "priority", Values: []string{"HIGH"}},
		},
	}
}

// CityBreakdowns returns the per-city aggregates shown on the dashboard.
func CityBreakdowns() []CountQuery {
	return []CountQuery{
		{Name: "accidents", Label: "Accidents", Table: "accident_events"},
		{Name: "complaints", Label: "Complaints", Table: "nlp_complaints"},
		{
			Name: "overcrowded", Label: "Overcrowded", Table: "crowd_events",
			Filter: CountFilter{Column: "severity", Values: []string{"Overcrowded"}},
		},
	}
}

// KPI is one computed dashboard counter.
type KPI struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value int64  `json:"value"`

	// Available is false when the count could not be computed.
	Available bool `json:"available"`
}

// CityCount is a per-city aggregate value.
type CityCount struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}

// Breakdown is one per-city aggregate.
type Breakdown struct {
	Name      string      `json:"name"`
	Label     string      `json:"label"`
	Cities    []CityCount `json:"cities"`
	Available bool        `json:"available"`
}

// Summary is the dashboard overview.
type Summary struct {
	KPIs       []KPI       `json:"kpis"`
	Breakdowns []Breakdown `json:"breakdowns"`
}

// KPI returns the counter with the given name.
func (s Summary) KPI(name string) (KPI, bool) {
	for _, k := range s.KPIs {
		if k.Name == name {
			return k, true
		}
	}
	return KPI{}, false
}
