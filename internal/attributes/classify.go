package attributes

import (
	"strings"
	"unicode"

	"github.com/nextbit-dev/storelift/internal/models"
)

// DisplayTechnology is the normalized panel technology.
type DisplayTechnology string

const (
	DisplayOLED    DisplayTechnology = "OLED"
	DisplayAMOLED  DisplayTechnology = "AMOLED"
	DisplayMiniLED DisplayTechnology = "Mini-LED"
	DisplayIPS     DisplayTechnology = "IPS"
	DisplayVA      DisplayTechnology = "VA"
	DisplayTN      DisplayTechnology = "TN"
	DisplayLED     DisplayTechnology = "LED"
	DisplayLCD     DisplayTechnology = "LCD"
	DisplayUnknown DisplayTechnology = "unknown"
)

// ResolutionBucket is the coarse resolution class used for tagging.
type ResolutionBucket string

const (
	ResolutionHD      ResolutionBucket = "HD"
	ResolutionFullHD  ResolutionBucket = "FullHD"
	ResolutionQHD     ResolutionBucket = "QHD"
	Resolution4K      ResolutionBucket = "4K"
	Resolution8K      ResolutionBucket = "8K"
	ResolutionUnknown ResolutionBucket = "unknown"
)

// TouchState is the normalized touchscreen capability.
type TouchState string

const (
	TouchYes     TouchState = "yes"
	TouchNo      TouchState = "no"
	TouchUnknown TouchState = "unknown"
)

// PCType is the inferred device form factor.
type PCType string

const (
	PCTypeNotebook    PCType = "Notebook"
	PCTypeDesktop     PCType = "Desktop"
	PCTypeAllInOne    PCType = "All-in-One"
	PCTypeWorkstation PCType = "Workstation"
	PCTypeGaming      PCType = "Gaming PC"
	PCTypeMini        PCType = "Mini PC"
	PCTypeTablet      PCType = "Tablet"
	PCTypeNone        PCType = "none"
)

// ClassifyDisplayTechnology maps a free-form panel description to a
// normalized technology. More specific technologies are checked first so
// "AMOLED" never classifies as plain LED.
func ClassifyDisplayTechnology(value string) DisplayTechnology {
	v := strings.ToLower(value)
	switch {
	case strings.Contains(v, "amoled"):
		return DisplayAMOLED
	case strings.Contains(v, "oled"):
		return DisplayOLED
	case strings.Contains(v, "mini-led"), strings.Contains(v, "mini led"), strings.Contains(v, "miniled"):
		return DisplayMiniLED
	case strings.Contains(v, "ips"):
		return DisplayIPS
	case hasPanelToken(v, "va"):
		return DisplayVA
	case hasPanelToken(v, "tn"):
		return DisplayTN
	case strings.Contains(v, "led"):
		return DisplayLED
	case strings.Contains(v, "lcd"):
		return DisplayLCD
	}
	return DisplayUnknown
}

// hasPanelToken reports whether a short panel code appears as a standalone
// token ("VA-Panel", "TN Film") rather than inside another word ("Nova",
// "Advanced").
func hasPanelToken(v, code string) bool {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		if f == code {
			return true
		}
	}
	return false
}

// ClassifyResolution buckets a resolution string by its pixel dimensions or
// a marketing label.
func ClassifyResolution(value string) ResolutionBucket {
	v := strings.ToLower(strings.ReplaceAll(value, " ", ""))
	switch {
	case strings.Contains(v, "7680"), strings.Contains(v, "8k"):
		return Resolution8K
	case strings.Contains(v, "3840"), strings.Contains(v, "4096"),
		strings.Contains(v, "4k"), strings.Contains(v, "uhd"):
		return Resolution4K
	case strings.Contains(v, "2560"), strings.Contains(v, "qhd"),
		strings.Contains(v, "1440"), strings.Contains(v, "wqhd"):
		return ResolutionQHD
	case strings.Contains(v, "1920"), strings.Contains(v, "1080"),
		strings.Contains(v, "fullhd"), strings.Contains(v, "fhd"):
		return ResolutionFullHD
	case strings.Contains(v, "1366"), strings.Contains(v, "1280"),
		strings.Contains(v, "720"), strings.Contains(v, "hdready"),
		v == "hd":
		return ResolutionHD
	}
	return ResolutionUnknown
}

// ClassifyTouch normalizes a touchscreen spec value to yes/no/unknown.
func ClassifyTouch(value string) TouchState {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return TouchUnknown
	case isNegativeValue(v), strings.Contains(v, "non-touch"), strings.Contains(v, "kein touch"):
		return TouchNo
	case v == "yes", v == "ja", v == "touch", strings.Contains(v, "touchscreen"),
		strings.Contains(v, "multi-touch"), strings.Contains(v, "multitouch"):
		return TouchYes
	}
	return TouchUnknown
}

// ClassifyPCType infers the device form factor from category text plus
// already-extracted attributes. Callers must suppress this for blacklisted
// categories; the function itself only looks at positive signals.
func ClassifyPCType(category string, attrs models.AttributeMap) PCType {
	text := strings.ToLower(category)

	switch {
	case containsAny(text, "tablet"):
		return PCTypeTablet
	case containsAny(text, "all-in-one", "all in one", "aio"):
		return PCTypeAllInOne
	case containsAny(text, "workstation"):
		return PCTypeWorkstation
	case containsAny(text, "mini-pc", "mini pc", "minipc", "nuc"):
		return PCTypeMini
	case containsAny(text, "gaming-pc", "gaming pc", "gamer-pc"):
		return PCTypeGaming
	case containsAny(text, "notebook", "laptop", "ultrabook", "convertible"):
		return PCTypeNotebook
	case containsAny(text, "desktop", "tower", "pc-system"):
		// A desktop category with a dedicated gaming GPU reads as a
		// gaming machine for merchandising purposes.
		if gpu := strings.ToLower(attrs.Get(models.KeyGPU)); containsAny(gpu, "rtx", "gtx", "radeon rx") {
			return PCTypeGaming
		}
		return PCTypeDesktop
	}
	return PCTypeNone
}

func containsAny(s string, fragments ...string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
