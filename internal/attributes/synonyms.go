package attributes

import "github.com/nextbit-dev/storelift/internal/models"

// SynonymTable maps canonical attribute keys to the label fragments that
// identify them in supplier spec sheets. Matching is case-insensitive
// substring. The table is versioned so extraction behavior can be pinned
// and extended without touching the matcher.
type SynonymTable struct {
	Version  int
	Synonyms map[models.AttributeKey][]string
}

// synonymTableV1 covers English and German label variants seen in supplier
// feeds.
var synonymTableV1 = SynonymTable{
	Version: 1,
	Synonyms: map[models.AttributeKey][]string{
		models.KeyProcessor: {
			"processor", "prozessor", "cpu", "chipsatz-modell",
		},
		models.KeyRAM: {
			"ram", "arbeitsspeicher", "memory", "speicher (ram)", "hauptspeicher",
		},
		models.KeyStorage: {
			"ssd", "hdd", "festplatte", "storage", "speicherkapazität",
			"hard drive", "massenspeicher", "interner speicher",
		},
		models.KeyDisplaySize: {
			"display size", "bildschirmdiagonale", "displaygröße",
			"screen size", "bilddiagonale", "diagonale",
		},
		models.KeyDisplayType: {
			"display type", "displaytyp", "paneltyp", "panel type",
			"bildschirmtechnologie", "display-technologie",
		},
		models.KeyResolution: {
			"resolution", "auflösung", "native auflösung",
		},
		models.KeyAspectRatio: {
			"aspect ratio", "seitenverhältnis", "bildformat",
		},
		models.KeyTouch: {
			"touchscreen", "touch screen", "berührungsempfindlich", "touchdisplay",
		},
		models.KeyGPU: {
			"graphics", "grafikkarte", "gpu", "grafikchip", "grafikprozessor",
			"video card",
		},
		models.KeyOS: {
			"operating system", "betriebssystem", "os installiert",
		},
		models.KeyWeight: {
			"weight", "gewicht",
		},
		models.KeyBattery: {
			"battery", "akku", "batterie", "akkulaufzeit", "battery life",
		},
		models.KeyConnectivity: {
			"wireless", "wlan", "wi-fi", "wifi", "bluetooth", "konnektivität",
			"connectivity", "funkverbindungen",
		},
		models.KeyPorts: {
			"ports", "anschlüsse", "schnittstellen", "interfaces", "usb-anschlüsse",
		},
	},
}

// DefaultSynonyms returns the current synonym table.
func DefaultSynonyms() SynonymTable { return synonymTableV1 }

// negativeValues are boilerplate fillers that carry no information and are
// discarded instead of stored.
var negativeValues = []string{
	"no", "none", "n/a", "not available", "not applicable", "-", "--",
	"nein", "keine", "keiner", "nicht vorhanden", "nicht verfügbar", "ohne",
}

// categoryBlacklist names category fragments for which a device form factor
// must never be inferred: an HDMI cable in the "cables" category is not a
// Desktop no matter what its spec sheet mentions.
var categoryBlacklist = []string{
	"accessor", "zubehör", "cable", "kabel", "fan", "lüfter", "cooling",
	"peripher", "component", "komponent", "mouse", "maus", "keyboard",
	"tastatur", "adapter",
}
