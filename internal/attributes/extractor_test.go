package attributes

import (
	"testing"

	"github.com/nextbit-dev/storelift/internal/models"
)

func TestExtract_FullSpecSheet(t *testing.T) {
	extractor := NewExtractor()

	set := models.SpecificationSet{
		{Name: "Prozessor", Value: "Intel Core i7-1355U"},
		{Name: "Arbeitsspeicher", Value: "16 GB DDR4"},
		{Name: "SSD Kapazität", Value: "512", Unit: "GB"},
		{Name: "Grafikkarte", Value: "Intel Iris Xe"},
		{Name: "Betriebssystem", Value: "Windows 11 Pro"},
		{Name: "Bildschirmdiagonale", Value: "15.6 Zoll"},
		{Name: "Paneltyp", Value: "IPS-Panel"},
		{Name: "Touchscreen", Value: "Nein"},
	}

	attrs := extractor.Extract(set, "Notebooks")

	want := map[models.AttributeKey]string{
		models.KeyProcessor:   "Intel Core i7-1355U",
		models.KeyRAM:         "16 GB DDR4",
		models.KeyStorage:     "512 GB",
		models.KeyGPU:         "Intel Iris Xe",
		models.KeyOS:          "Windows 11 Pro",
		models.KeyDisplaySize: "15.6 Zoll",
		models.KeyDisplayType: "IPS",
		models.KeyTouch:       "no",
		models.KeyPCType:      "Notebook",
	}
	for key, value := range want {
		if got := attrs.Get(key); got != value {
			t.Errorf("%s: got %q, want %q", key, got, value)
		}
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	extractor := NewExtractor()

	set := models.SpecificationSet{
		{Name: "Processor", Value: "AMD Ryzen 5 7530U"},
		{Name: "CPU", Value: "should not override"},
	}

	attrs := extractor.Extract(set, "Notebooks")
	if got := attrs.Get(models.KeyProcessor); got != "AMD Ryzen 5 7530U" {
		t.Errorf("processor = %q, first matching entry must win", got)
	}
}

func TestExtract_NegativeValuesDiscarded(t *testing.T) {
	extractor := NewExtractor()

	set := models.SpecificationSet{
		{Name: "Bluetooth", Value: "nicht vorhanden"},
		{Name: "Operating System", Value: "n/a"},
		{Name: "Akku", Value: "-"},
	}

	attrs := extractor.Extract(set, "Notebooks")
	for _, key := range []models.AttributeKey{models.KeyConnectivity, models.KeyOS, models.KeyBattery} {
		if got := attrs.Get(key); got != "" {
			t.Errorf("%s = %q, boilerplate negatives must not be stored", key, got)
		}
	}
}

func TestExtract_NegativeTouchStored(t *testing.T) {
	extractor := NewExtractor()

	set := models.SpecificationSet{
		{Name: "Touchscreen", Value: "Nein"},
		{Name: "Bluetooth", Value: "nein"},
	}

	attrs := extractor.Extract(set, "Notebooks")
	if got := attrs.Get(models.KeyTouch); got != string(TouchNo) {
		t.Errorf("touch = %q, a negative touch answer must classify as %q", got, TouchNo)
	}
	if got := attrs.Get(models.KeyConnectivity); got != "" {
		t.Errorf("connectivity = %q, boilerplate negatives must still be discarded", got)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	extractor := NewExtractor()

	attrs := extractor.Extract(nil, "Notebooks")
	if len(attrs) != 0 {
		t.Errorf("empty input must yield an empty map, got %v", attrs)
	}
}

func TestExtract_BlacklistedCategorySuppressesPCType(t *testing.T) {
	extractor := NewExtractor()

	set := models.SpecificationSet{
		{Name: "Anschlüsse", Value: "2x USB-A"},
	}

	attrs := extractor.Extract(set, "Kabel & Adapter")
	if got := attrs.Get(models.KeyPCType); got != "" {
		t.Errorf("pc_type = %q, must never be inferred for a blacklisted category", got)
	}
}

func TestClassifyDisplayTechnology(t *testing.T) {
	cases := []struct {
		value string
		want  DisplayTechnology
	}{
		{"Super AMOLED", DisplayAMOLED},
		{"OLED Panel", DisplayOLED},
		{"Mini-LED Backlight", DisplayMiniLED},
		{"IPS-Level", DisplayIPS},
		{"TN Film", DisplayTN},
		{"VA-Panel", DisplayVA},
		{"LED-Backlit", DisplayLED},
		{"Nova Screen", DisplayUnknown},
		{"Advanced Matrix", DisplayUnknown},
		{"Matrix Screen", DisplayUnknown},
	}
	for _, c := range cases {
		if got := ClassifyDisplayTechnology(c.value); got != c.want {
			t.Errorf("ClassifyDisplayTechnology(%q) = %q, want %q", c.value, got, c.want)
		}
	}
}

func TestClassifyResolution(t *testing.T) {
	cases := []struct {
		value string
		want  ResolutionBucket
	}{
		{"1920 x 1080", ResolutionFullHD},
		{"3840x2160 (UHD)", Resolution4K},
		{"2560 x 1440", ResolutionQHD},
		{"7680 x 4320", Resolution8K},
		{"1366 x 768", ResolutionHD},
		{"whatever", ResolutionUnknown},
	}
	for _, c := range cases {
		if got := ClassifyResolution(c.value); got != c.want {
			t.Errorf("ClassifyResolution(%q) = %q, want %q", c.value, got, c.want)
		}
	}
}

func TestClassifyPCType_GamingDesktop(t *testing.T) {
	attrs := models.NewAttributeMap()
	attrs.SetIfAbsent(models.KeyGPU, "NVIDIA GeForce RTX 4070")

	if got := ClassifyPCType("Desktop PC Systeme", attrs); got != PCTypeGaming {
		t.Errorf("desktop with RTX GPU = %q, want %q", got, PCTypeGaming)
	}
}

func TestSynonymTableVersioned(t *testing.T) {
	table := DefaultSynonyms()
	if table.Version < 1 {
		t.Fatalf("synonym table must carry a version, got %d", table.Version)
	}
	for key := range table.Synonyms {
		if !models.IsCanonicalKey(key) {
			t.Errorf("synonym table contains non-canonical key %q", key)
		}
	}
}
