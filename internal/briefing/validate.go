package briefing

import (
	"fmt"
	"math"
	"strings"
)

// SchemaError reports every field path that violated the briefing contract.
type SchemaError struct {
	Issues []Issue
}

// Issue is a single violated field path.
type Issue struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.Path + ": " + issue.Reason
	}
	return strings.Join(parts, "; ")
}

var entityTypes = map[string]bool{
	"person": true, "org": true, "location": true, "event": true, "other": true,
}

var sentiments = map[string]bool{
	"positive": true, "negative": true, "neutral": true,
}

// Validate enforces the briefing's structural contract on a parsed object,
// applying defaults for optional fields. All violations are collected
// before failing; a Briefing is only returned when there are none.
func Validate(raw map[string]any) (*Briefing, error) {
	v := &validator{}

	b := &Briefing{
		Summary:      v.requiredString(raw, "summary_30s"),
		KeyPoints:    v.stringSlice(raw, "key_points"),
		ContextNotes: v.optionalString(raw, "context_notes"),
		BiasNotes:    v.optionalString(raw, "bias_or_uncertainty"),
	}

	b.Meta = v.meta(raw)
	b.MilitaryMode = v.militaryMode(raw)

	if len(v.issues) > 0 {
		return nil, &SchemaError{Issues: v.issues}
	}
	return b, nil
}

type validator struct {
	issues []Issue
}

func (v *validator) fail(path, format string, args ...any) {
	v.issues = append(v.issues, Issue{Path: path, Reason: fmt.Sprintf(format, args...)})
}

func (v *validator) meta(raw map[string]any) Meta {
	m := Meta{
		Title:    "Untitled Briefing",
		Category: "General",
		Tags:     []string{},
		Entities: []Entity{},
	}

	metaRaw, ok := raw["meta"]
	if !ok || metaRaw == nil {
		v.fail("meta", "required object is missing")
		return m
	}
	metaMap, ok := metaRaw.(map[string]any)
	if !ok {
		v.fail("meta", "expected an object, got %T", metaRaw)
		return m
	}

	if title := v.optionalStringAt("meta", metaMap, "title"); title != "" {
		m.Title = title
	}
	m.Source = v.optionalStringAt("meta", metaMap, "source")
	m.Date = v.optionalStringAt("meta", metaMap, "date")
	m.URL = v.optionalStringAt("meta", metaMap, "url")
	m.Mode = v.optionalStringAt("meta", metaMap, "mode")
	m.OutputLanguage = v.optionalStringAt("meta", metaMap, "output_language")
	m.Region = v.optionalStringAt("meta", metaMap, "region")
	m.Country = v.optionalStringAt("meta", metaMap, "country")
	m.CredibilityAnalysis = v.optionalStringAt("meta", metaMap, "credibility_analysis")

	if category := v.optionalStringAt("meta", metaMap, "category"); category != "" {
		m.Category = category
	}
	if tags, ok := metaMap["tags"]; ok && tags != nil {
		m.Tags = v.stringSliceValue("meta.tags", tags)
	}

	// Range and integrality are checked on the raw number; truncating
	// first would let fractional out-of-range values slip through.
	if secs, ok := metaMap["estimated_reading_time_seconds"]; ok && secs != nil {
		f, numOK := asFloat(secs)
		switch {
		case !numOK:
			v.fail("meta.estimated_reading_time_seconds", "expected a number, got %T", secs)
		case f < 0:
			v.fail("meta.estimated_reading_time_seconds", "must be >= 0, got %v", f)
		case f != math.Trunc(f):
			v.fail("meta.estimated_reading_time_seconds", "must be a whole number of seconds, got %v", f)
		default:
			m.ReadingTimeSeconds = int(f)
		}
	}

	if score, ok := metaMap["reliability_score"]; ok && score != nil {
		f, numOK := asFloat(score)
		switch {
		case !numOK:
			v.fail("meta.reliability_score", "expected a number, got %T", score)
		case f < 0 || f > 100:
			v.fail("meta.reliability_score", "must be between 0 and 100, got %v", f)
		case f != math.Trunc(f):
			v.fail("meta.reliability_score", "must be a whole number, got %v", f)
		default:
			n := int(f)
			m.ReliabilityScore = &n
		}
	}

	if entities, ok := metaMap["entities"]; ok && entities != nil {
		m.Entities = v.entities(entities)
	}

	return m
}

func (v *validator) entities(raw any) []Entity {
	arr, ok := raw.([]any)
	if !ok {
		v.fail("meta.entities", "expected an array, got %T", raw)
		return []Entity{}
	}

	entities := make([]Entity, 0, len(arr))
	for i, item := range arr {
		path := fmt.Sprintf("meta.entities[%d]", i)
		obj, ok := item.(map[string]any)
		if !ok {
			v.fail(path, "expected an object, got %T", item)
			continue
		}

		e := Entity{}
		if name, ok := obj["name"].(string); ok && name != "" {
			e.Name = name
		} else {
			v.fail(path+".name", "required string is missing")
		}

		if typ, ok := obj["type"].(string); ok && entityTypes[typ] {
			e.Type = typ
		} else {
			v.fail(path+".type", "must be one of person, org, location, event, other; got %q", obj["type"])
		}

		if sent, ok := obj["sentiment"]; ok && sent != nil {
			s, isStr := sent.(string)
			if !isStr || !sentiments[s] {
				v.fail(path+".sentiment", "must be one of positive, negative, neutral; got %q", sent)
			} else {
				e.Sentiment = s
			}
		}

		if coords, ok := obj["coordinates"]; ok && coords != nil {
			cObj, isObj := coords.(map[string]any)
			lat, latOK := asFloat(cObj["lat"])
			lng, lngOK := asFloat(cObj["lng"])
			if !isObj || !latOK || !lngOK {
				v.fail(path+".coordinates", "expected an object with numeric lat and lng")
			} else {
				e.Coordinates = &Coordinates{Lat: lat, Lng: lng}
			}
		}

		entities = append(entities, e)
	}
	return entities
}

func (v *validator) militaryMode(raw map[string]any) MilitaryMode {
	mm := MilitaryMode{
		Actors:      []string{},
		TheaterTags: []string{},
		DomainTags:  []string{},
		Watchpoints: []string{},
	}

	mmRaw, ok := raw["military_mode"]
	if !ok || mmRaw == nil {
		return mm
	}
	mmMap, ok := mmRaw.(map[string]any)
	if !ok {
		v.fail("military_mode", "expected an object, got %T", mmRaw)
		return mm
	}

	if inc, ok := mmMap["is_included"]; ok && inc != nil {
		b, isBool := inc.(bool)
		if !isBool {
			v.fail("military_mode.is_included", "expected a boolean, got %T", inc)
		} else {
			mm.IsIncluded = b
		}
	}

	mm.RiskLevel = v.optionalStringAt("military_mode", mmMap, "risk_level")
	mm.CommanderBrief = v.optionalStringAt("military_mode", mmMap, "commander_brief")
	mm.Objectives = v.optionalStringAt("military_mode", mmMap, "interests_and_objectives")
	mm.Timeline = v.optionalStringAt("military_mode", mmMap, "timeline")
	mm.Risks = v.optionalStringAt("military_mode", mmMap, "risks_and_threats")
	mm.OperationalImplications = v.optionalStringAt("military_mode", mmMap, "operational_implications")
	mm.TechRelevance = v.optionalStringAt("military_mode", mmMap, "tech_and_ai_relevance")

	if actors, ok := mmMap["actors"]; ok && actors != nil {
		mm.Actors = v.stringSliceValue("military_mode.actors", actors)
	}
	if tags, ok := mmMap["theater_tags"]; ok && tags != nil {
		mm.TheaterTags = v.stringSliceValue("military_mode.theater_tags", tags)
	}
	if tags, ok := mmMap["domain_tags"]; ok && tags != nil {
		mm.DomainTags = v.stringSliceValue("military_mode.domain_tags", tags)
	}
	if wp, ok := mmMap["watchpoints_for_commanders"]; ok && wp != nil {
		mm.Watchpoints = v.stringSliceValue("military_mode.watchpoints_for_commanders", wp)
	}

	return mm
}

func (v *validator) requiredString(raw map[string]any, key string) string {
	val, ok := raw[key]
	if !ok || val == nil {
		v.fail(key, "required string is missing")
		return ""
	}
	s, ok := val.(string)
	if !ok {
		v.fail(key, "expected a string, got %T", val)
		return ""
	}
	if strings.TrimSpace(s) == "" {
		v.fail(key, "must not be empty")
		return ""
	}
	return s
}

func (v *validator) optionalString(raw map[string]any, key string) string {
	return v.optionalStringAt("", raw, key)
}

func (v *validator) optionalStringAt(prefix string, raw map[string]any, key string) string {
	val, ok := raw[key]
	if !ok || val == nil {
		return ""
	}
	s, ok := val.(string)
	if !ok {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		v.fail(path, "expected a string, got %T", val)
		return ""
	}
	return s
}

func (v *validator) stringSlice(raw map[string]any, key string) []string {
	val, ok := raw[key]
	if !ok || val == nil {
		return []string{}
	}
	return v.stringSliceValue(key, val)
}

func (v *validator) stringSliceValue(path string, val any) []string {
	arr, ok := val.([]any)
	if !ok {
		v.fail(path, "expected an array of strings, got %T", val)
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			v.fail(fmt.Sprintf("%s[%d]", path, i), "expected a string, got %T", item)
			continue
		}
		out = append(out, s)
	}
	return out
}

func asFloat(val any) (float64, bool) {
	switch n := val.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
