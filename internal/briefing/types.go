// Package briefing defines the canonical briefing data model and the
// pipeline that turns raw LLM output into a validated Briefing.
package briefing

// Analysis modes.
const (
	ModeStandard = "STANDARD"
	ModeMilitary = "MILITARY"
)

// Output languages.
const (
	LanguageEN = "EN"
	LanguageTR = "TR"
)

// SummaryLengths are the supported summary lengths in seconds.
var SummaryLengths = []int{15, 30, 60}

// Categories is the fixed category list the model is instructed to pick from.
var Categories = []string{"Politics", "Military", "Tech", "Economy", "Health", "Science", "General"}

// Triage statuses for stored briefings.
const (
	TriageNew    = "new"
	TriageReview = "review"
	TriageClosed = "closed"
)

// Request describes one analysis request. At least one of URL or Article
// must be non-empty; the caller enforces this before submission.
type Request struct {
	URL            string
	Title          string
	Source         string
	Date           string
	Mode           string // STANDARD or MILITARY
	OutputLanguage string // EN or TR
	SummaryLength  int    // 15, 30 or 60 seconds
	Article        string
}

// Briefing is the validated structured output of one analysis request.
// JSON tags follow the wire format the model is prompted to produce.
type Briefing struct {
	Meta             Meta              `json:"meta"`
	Summary          string            `json:"summary_30s"`
	KeyPoints        []string          `json:"key_points"`
	ContextNotes     string            `json:"context_notes"`
	BiasNotes        string            `json:"bias_or_uncertainty"`
	MilitaryMode     MilitaryMode      `json:"military_mode"`
	GroundingSources []GroundingSource `json:"grounding_sources,omitempty"`
}

// Meta holds briefing metadata.
type Meta struct {
	Title               string   `json:"title"`
	Source              string   `json:"source,omitempty"`
	Date                string   `json:"date,omitempty"`
	URL                 string   `json:"url,omitempty"`
	Mode                string   `json:"mode,omitempty"`
	OutputLanguage      string   `json:"output_language,omitempty"`
	ReadingTimeSeconds  int      `json:"estimated_reading_time_seconds"`
	Category            string   `json:"category"`
	Tags                []string `json:"tags"`
	Region              string   `json:"region,omitempty"`
	Country             string   `json:"country,omitempty"`
	ReliabilityScore    *int     `json:"reliability_score,omitempty"`
	CredibilityAnalysis string   `json:"credibility_analysis,omitempty"`
	Entities            []Entity `json:"entities"`
}

// Entity is a named entity the model identified in the article.
type Entity struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"` // person, org, location, event, other
	Sentiment   string       `json:"sentiment,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Coordinates is a lat/lng pair for mappable entities.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MilitaryMode is the optional OSINT analysis sub-section.
type MilitaryMode struct {
	IsIncluded              bool     `json:"is_included"`
	RiskLevel               string   `json:"risk_level,omitempty"`
	Actors                  []string `json:"actors"`
	TheaterTags             []string `json:"theater_tags"`
	DomainTags              []string `json:"domain_tags"`
	CommanderBrief          string   `json:"commander_brief,omitempty"`
	Objectives              string   `json:"interests_and_objectives,omitempty"`
	Timeline                string   `json:"timeline,omitempty"`
	Risks                   string   `json:"risks_and_threats,omitempty"`
	OperationalImplications string   `json:"operational_implications,omitempty"`
	TechRelevance           string   `json:"tech_and_ai_relevance,omitempty"`
	Watchpoints             []string `json:"watchpoints_for_commanders"`
}

// GroundingSource is source-attribution metadata returned by a transport
// that used web search augmentation. Attached post-validation.
type GroundingSource struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

// HistoryItem is a persisted briefing. ID and Timestamp are immutable;
// Pinned and TriageStatus are the only mutable fields.
type HistoryItem struct {
	ID           string   `json:"id"`
	Timestamp    int64    `json:"timestamp"` // epoch millis
	Data         Briefing `json:"data"`
	Pinned       bool     `json:"pinned"`
	TriageStatus string   `json:"triageStatus,omitempty"`
}
