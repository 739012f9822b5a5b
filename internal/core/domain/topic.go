package domain

import "strings"

// Topic is the closed classification label assigned to a question.
type Topic string

// Available topics, in classification priority order.
const (
	// TopicAccident covers road accidents and collisions.
	TopicAccident Topic = "accident"

	// TopicTraffic covers traffic congestion forecasts.
	TopicTraffic Topic = "traffic"

	// TopicAirQuality covers AQI readings.
	TopicAirQuality Topic = "air_quality"

	// TopicRoadDamage covers pothole and road surface detections.
	TopicRoadDamage Topic = "road_damage"

	// TopicCrowd covers crowd density detections.
	TopicCrowd Topic = "crowd"

	// TopicComplaint covers classified citizen complaints.
	TopicComplaint Topic = "complaint"

	// TopicGeneral is the fallback when no rule matches. It has no data source.
	TopicGeneral Topic = "general"
)

// AllTopics returns every topic in priority order, General last.
func AllTopics() []Topic {
	return []Topic{
		TopicAccident,
		TopicTraffic,
		TopicAirQuality,
		TopicRoadDamage,
		TopicCrowd,
		TopicComplaint,
		TopicGeneral,
	}
}

// IsValid returns true if the topic is recognised.
func (t Topic) IsValid() bool {
	switch t {
	case TopicAccident, TopicTraffic, TopicAirQuality, TopicRoadDamage,
		TopicCrowd, TopicComplaint, TopicGeneral:
		return true
	default:
		return false
	}
}

// HasData returns true if the topic is backed by an event table.
func (t Topic) HasData() bool {
	return t.IsValid() && t != TopicGeneral
}

// String returns the string representation.
func (t Topic) String() string {
	return string(t)
}

// Label returns the human-readable topic name used in messages.
func (t Topic) Label() string {
	switch t {
	case TopicAccident:
		return "accident"
	case TopicTraffic:
		return "traffic"
	case TopicAirQuality:
		return "AQI"
	case TopicRoadDamage:
		return "road damage"
	case TopicCrowd:
		return "crowd density"
	case TopicComplaint:
		return "citizen complaints"
	case TopicGeneral:
		return "general"
	default:
		return unknownDescription
	}
}

// ReportName returns the title-cased name used in report headings and subjects.
func (t Topic) ReportName() string {
	switch t {
	case TopicAccident:
		return "Accident"
	case TopicTraffic:
		return "Traffic"
	case TopicAirQuality:
		return "AQI"
	case TopicRoadDamage:
		return "Road Damage"
	case TopicCrowd:
		return "Crowd Density"
	case TopicComplaint:
		return "Citizen Complaints"
	default:
		return ""
	}
}

// Subject returns the notification subject for a report on this topic.
func (t Topic) Subject() string {
	name := t.ReportName()
	if name == "" {
		return "UrbanBot Report"
	}
	return "UrbanBot " + name + " Report"
}

// ParseTopic converts a string into a Topic.
// Matching is case-insensitive and accepts the report name ("Road Damage").
func ParseTopic(s string) (Topic, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "_")
	t := Topic(norm)
	if norm == "aqi" {
		t = TopicAirQuality
	}
	if !t.IsValid() {
		return "", ErrInvalidInput
	}
	return t, nil
}

// TopicRule maps a topic to the keywords that select it.
type TopicRule struct {
	// Topic is the label assigned when any keyword matches.
	Topic Topic

	// Keywords are lower-case substrings searched for in the question.
	Keywords []string
}

// Matches returns true if the lower-cased question contains any keyword.
func (r TopicRule) Matches(lowered string) bool {
	for _, kw := range r.Keywords {
		if kw != "" && strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// DefaultTopicRules returns the built-in rule table in priority order.
// The first matching rule wins, so order is significant.
func DefaultTopicRules() []TopicRule {
	return []TopicRule{
		{Topic: TopicAccident, Keywords: []string{"accident", "crash", "collision"}},
		{Topic: TopicTraffic, Keywords: []string{"traffic", "congestion"}},
		{Topic: TopicAirQuality, Keywords: []string{"aqi", "air quality", "pollution"}},
		{Topic: TopicRoadDamage, Keywords: []string{"road", "pothole"}},
		{Topic: TopicCrowd, Keywords: []string{"crowd"}},
		{Topic: TopicComplaint, Keywords: []string{"complaint"}},
	}
}

// DeliveryKeywords are the substrings that request e-mail delivery of a report.
func DeliveryKeywords() []string {
	return []string{"email", "send"}
}

// Fixed user-facing messages.
const (
	// DispatchSuccessSuffix is appended when the report was delivered.
	DispatchSuccessSuffix = "\n\n📧 Report Emailed successfully."

	// DispatchFailureSuffix is appended when delivery was requested but failed.
	DispatchFailureSuffix = "\n\n❌ Email failed. Check SMTP configuration."

	// GenerationFailedMessage is returned when the LLM call fails.
	GenerationFailedMessage = "⚠️ AI service unavailable, please try again."

	// GenerationTimeoutMessage is returned when the LLM call exceeds its deadline.
	GenerationTimeoutMessage = "⚠️ AI service timed out, please try again."
)

// NoDataMessage returns the message shown when a topic has no rows.
func NoDataMessage(t Topic) string {
	return "⚠️ No " + t.Label() + " data available in database."
}
