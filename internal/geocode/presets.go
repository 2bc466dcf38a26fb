package geocode

import "strings"

// Presets are well-known dark-sky sites offered as quick picks.
var Presets = []Location{
	{Name: "Atacama Desert, Chile", LatDeg: -24.5, LonDeg: -69.25},
	{Name: "Natural Bridges, Utah", LatDeg: 37.601383, LonDeg: -110.013744},
	{Name: "Iriomote-Ishigaki National Park, Japan", LatDeg: 24.316667, LonDeg: 123.883333},
	{Name: "Kruger National Park, South Africa", LatDeg: -24.011389, LonDeg: 31.485278},
	{Name: "Pic du Midi Observatory, France", LatDeg: 42.936389, LonDeg: 0.142778},
	{Name: "Mauna Kea, Hawaii, United States", LatDeg: 19.820667, LonDeg: -155.468056},
	{Name: "Kiruna, Sweden", LatDeg: 67.848889, LonDeg: 20.302778},
	{Name: "Tenerife, Spain", LatDeg: 28.268611, LonDeg: -16.605556},
}

// LookupPreset finds a preset by full name or by the part before the first
// comma, ignoring case ("kiruna" matches "Kiruna, Sweden").
func LookupPreset(name string) (Location, bool) {
	name = strings.TrimSpace(name)
	for _, p := range Presets {
		short, _, _ := strings.Cut(p.Name, ",")
		if strings.EqualFold(p.Name, name) || strings.EqualFold(short, name) {
			return p, true
		}
	}
	return Location{}, false
}

// PresetNames returns the preset names in display order.
func PresetNames() []string {
	names := make([]string, len(Presets))
	for i, p := range Presets {
		names[i] = p.Name
	}
	return names
}
