package domain

// EventQuery describes the fixed read query for one topic.
// Identifiers come from this table only, never from user input.
type EventQuery struct {
	// Topic is the topic this query serves.
	Topic Topic

	// Table is the event table name.
	Table string

	// Columns is the projected column list, in output order.
	Columns []string

	// OrderBy is the timestamp column sorted descending.
	OrderBy string

	// Limit is the maximum number of rows returned.
	Limit int
}

// Default row limits.
const (
	AccidentLimit = 10
	DefaultLimit  = 5
)

// EventQueryFor returns the query for a topic.
// The boolean is false for General and unknown topics.
func EventQueryFor(t Topic) (EventQuery, bool) {
	q, ok := eventQueries()[t]
	return q, ok
}

func eventQueries() map[Topic]EventQuery {
	return map[Topic]EventQuery{
		TopicAccident: {
			Topic:   TopicAccident,
			Table:   "accident_events",
			Columns: []string{"city", "severity", "confidence_score", "event_time"},
			OrderBy: "event_time",
			Limit:   AccidentLimit,
		},
		TopicTraffic: {
			Topic:   TopicTraffic,
			Table:   "traffic_events",
			Columns: []string{"city", "predicted_traffic", "congestion_level", "event_time"},
			OrderBy: "event_time",
			Limit:   DefaultLimit,
		},
		TopicAirQuality: {
			Topic:   TopicAirQuality,
			Table:   "air_quality_events",
			Columns: []string{"city", "aqi", "aqi_category", "timestamp"},
			OrderBy: "timestamp",
			Limit:   DefaultLimit,
		},
		TopicRoadDamage: {
			Topic:   TopicRoadDamage,
			Table:   "road_damage_events",
			Columns: []string{"city", "area", "damage_count", "event_time"},
			OrderBy: "event_time",
			Limit:   DefaultLimit,
		},
		TopicCrowd: {
			Topic:   TopicCrowd,
			Table:   "crowd_events",
			Columns: []string{"city", "camera_id", "crowd_count", "severity", "event_time"},
			OrderBy: "event_time",
			Limit:   DefaultLimit,
		},
		TopicComplaint: {
			Topic:   TopicComplaint,
			Table:   "nlp_complaints",
			Columns: []string{"city", "category", "sentiment", "priority", "created_at"},
			OrderBy: "created_at",
			Limit:   DefaultLimit,
		},
	}
}

// EventRecord is one read-only row. Values align with the query's Columns.
type EventRecord struct {
	Values []string
}

// Get returns the value for a column name, or "" if absent.
func (r EventRecord) Get(columns []string, name string) string {
	for i, c := range columns {
		if c == name && i < len(r.Values) {
			return r.Values[i]
		}
	}
	return ""
}

// RetrievalStatus tags the outcome of a fetch.
type RetrievalStatus string

// Retrieval outcomes.
const (
	RetrievalOK     RetrievalStatus = "ok"
	RetrievalEmpty  RetrievalStatus = "empty"
	RetrievalFailed RetrievalStatus = "failed"
)

// String returns the string representation.
func (s RetrievalStatus) String() string {
	return string(s)
}

// Retrieval is the tagged result of fetching one topic's latest rows.
type Retrieval struct {
	Topic   Topic
	Columns []string
	Records []EventRecord
	Status  RetrievalStatus

	// Err is set only when Status is RetrievalFailed.
	Err error
}

// HasData returns true if the retrieval produced at least one row.
func (r Retrieval) HasData() bool {
	return r.Status == RetrievalOK && len(r.Records) > 0
}
