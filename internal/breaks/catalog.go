package breaks

import "strings"

// Activity is the kind of break suggested to the user.
type Activity string

const (
	ActivityMeditation        Activity = "meditation"
	ActivityWalk              Activity = "walk"
	ActivityBreathing         Activity = "breathing"
	ActivityStretch           Activity = "stretch"
	ActivityRest              Activity = "rest"
	ActivityHydrate           Activity = "hydrate"
	ActivityPowerNap          Activity = "power_nap"
	ActivityMindfulnessSketch Activity = "mindfulness_sketch"
	ActivitySnack             Activity = "snack"
	ActivityEyeRest           Activity = "eye_rest"
)

// Ambience groups activities by the mood they aim for.
type Ambience string

const (
	AmbienceCalm       Ambience = "calm"
	AmbienceEnergizing Ambience = "energizing"
	AmbienceRefreshing Ambience = "refreshing"
	AmbienceCreative   Ambience = "creative"
	AmbienceNeutral    Ambience = "neutral"
)

// BreakType describes an activity for display.
type BreakType struct {
	ID              Activity `json:"id"`
	Name            string   `json:"name"`
	Icon            string   `json:"icon"`
	Description     string   `json:"description"`
	DefaultDuration int      `json:"default_duration"`
	MinDuration     int      `json:"min_duration"`
	MaxDuration     int      `json:"max_duration"`
	Ambience        Ambience `json:"ambience"`
	Color           string   `json:"color"`
}

// catalogOrder fixes the listing order of AllBreakTypes.
var catalogOrder = []Activity{
	ActivityMeditation,
	ActivityWalk,
	ActivityBreathing,
	ActivityStretch,
	ActivityRest,
	ActivityHydrate,
	ActivityPowerNap,
	ActivityMindfulnessSketch,
	ActivitySnack,
	ActivityEyeRest,
}

var catalog = map[Activity]BreakType{
	ActivityMeditation: {
		Name: "Meditation", Icon: "🧘", Description: "Quiet mindfulness and breathing exercise",
		DefaultDuration: 10, MinDuration: 5, MaxDuration: 30, Ambience: AmbienceCalm, Color: "#6366f1",
	},
	ActivityWalk: {
		Name: "Walk", Icon: "🚶", Description: "Short walk to refresh and move",
		DefaultDuration: 15, MinDuration: 5, MaxDuration: 30, Ambience: AmbienceEnergizing, Color: "#10b981",
	},
	ActivityBreathing: {
		Name: "Breathing Exercise", Icon: "💨", Description: "Deep breathing and relaxation",
		DefaultDuration: 5, MinDuration: 3, MaxDuration: 15, Ambience: AmbienceCalm, Color: "#3b82f6",
	},
	ActivityStretch: {
		Name: "Stretch", Icon: "🤸", Description: "Gentle stretching and movement",
		DefaultDuration: 10, MinDuration: 5, MaxDuration: 20, Ambience: AmbienceEnergizing, Color: "#f59e0b",
	},
	ActivityRest: {
		Name: "Rest", Icon: "😴", Description: "Quiet rest and recovery",
		DefaultDuration: 15, MinDuration: 10, MaxDuration: 30, Ambience: AmbienceCalm, Color: "#8b5cf6",
	},
	ActivityHydrate: {
		Name: "Hydrate", Icon: "💧", Description: "Drink water and refresh",
		DefaultDuration: 5, MinDuration: 3, MaxDuration: 10, Ambience: AmbienceRefreshing, Color: "#06b6d4",
	},
	ActivityPowerNap: {
		Name: "Power Nap", Icon: "😴", Description: "Short rest to recharge",
		DefaultDuration: 20, MinDuration: 10, MaxDuration: 30, Ambience: AmbienceCalm, Color: "#6366f1",
	},
	ActivityMindfulnessSketch: {
		Name: "Mindfulness Sketch", Icon: "✏️", Description: "Creative drawing or sketching",
		DefaultDuration: 10, MinDuration: 5, MaxDuration: 20, Ambience: AmbienceCreative, Color: "#ec4899",
	},
	ActivitySnack: {
		Name: "Healthy Snack", Icon: "🍎", Description: "Nutritious snack break",
		DefaultDuration: 10, MinDuration: 5, MaxDuration: 15, Ambience: AmbienceRefreshing, Color: "#f59e0b",
	},
	ActivityEyeRest: {
		Name: "Eye Rest", Icon: "👁️", Description: "Rest eyes from screen time",
		DefaultDuration: 5, MinDuration: 3, MaxDuration: 10, Ambience: AmbienceCalm, Color: "#8b5cf6",
	},
}

// LookupBreakType returns the metadata for an activity. Unknown activities
// get a neutral custom entry.
func LookupBreakType(activity Activity) BreakType {
	if bt, ok := catalog[activity]; ok {
		bt.ID = activity
		return bt
	}
	name := strings.ReplaceAll(string(activity), "_", " ")
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return BreakType{
		ID:              activity,
		Name:            name,
		Icon:            "⏸️",
		Description:     "Custom break",
		DefaultDuration: 10,
		MinDuration:     5,
		MaxDuration:     30,
		Ambience:        AmbienceNeutral,
		Color:           "#6b7280",
	}
}

// AllBreakTypes lists the catalog in a fixed order.
func AllBreakTypes() []BreakType {
	types := make([]BreakType, 0, len(catalogOrder))
	for _, a := range catalogOrder {
		types = append(types, LookupBreakType(a))
	}
	return types
}

// IsValidActivity reports whether activity is part of the catalog.
func IsValidActivity(activity Activity) bool {
	_, ok := catalog[activity]
	return ok
}

// IsCalming reports whether activity belongs to the calming category.
func IsCalming(activity Activity) bool {
	bt, ok := catalog[activity]
	return ok && bt.Ambience == AmbienceCalm
}

var defaultSuggestions = []Activity{
	ActivityMeditation, ActivityWalk, ActivityBreathing, ActivityStretch, ActivityRest, ActivityHydrate,
}

// SuggestActivities returns up to six activities that fit a free-text context
// such as "tired after a long meeting".
func SuggestActivities(context string) []Activity {
	c := strings.ToLower(context)

	var front []Activity
	switch {
	case strings.Contains(c, "tired") || strings.Contains(c, "exhausted"):
		front = []Activity{ActivityPowerNap, ActivityRest, ActivityMeditation}
	case strings.Contains(c, "stressed") || strings.Contains(c, "overwhelmed"):
		front = []Activity{ActivityBreathing, ActivityMeditation, ActivityWalk}
	case strings.Contains(c, "long") && strings.Contains(c, "meeting"):
		front = []Activity{ActivityStretch, ActivityWalk, ActivityEyeRest}
	case strings.Contains(c, "focus") || strings.Contains(c, "deep work"):
		front = []Activity{ActivityWalk, ActivityBreathing, ActivitySnack}
	}

	// Distinct activities only.
	seen := make(map[Activity]bool)
	out := make([]Activity, 0, 6)
	for _, a := range append(front, defaultSuggestions...) {
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
		if len(out) == 6 {
			break
		}
	}
	return out
}
