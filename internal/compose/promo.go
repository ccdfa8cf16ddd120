package compose

import (
	"math/rand"
	"strings"

	"github.com/nextbit-dev/storelift/internal/models"
)

// Promo copy pools. The combination headline + feature clause + CTA is
// intentionally non-deterministic: this is marketing prose, not a
// technical fact.
var promoHeadlines = map[Segment][]string{
	SegmentGaming: {
		"Bereit für die nächste Runde:",
		"Maximale FPS, minimale Kompromisse:",
		"Gaming auf den Punkt gebracht:",
	},
	SegmentBusiness: {
		"Ihr Büro, überall:",
		"Produktivität ohne Umwege:",
		"Verlässlich im Arbeitsalltag:",
	},
	SegmentUltrabook: {
		"Leicht. Schnell. Unterwegs:",
		"Mobilität neu gedacht:",
		"Immer dabei, nie im Weg:",
	},
	SegmentGeneric: {
		"Starkes Gesamtpaket:",
		"Technik, die überzeugt:",
		"Ein Gerät für alles:",
	},
}

var promoCTAs = []string{
	"Jetzt zugreifen, solange der Vorrat reicht!",
	"Heute bestellt, morgen unterwegs!",
	"Sichern Sie sich Ihr Exemplar!",
}

// BuildPromoText combines a segment-appropriate headline, a feature clause
// built from the key hardware attributes, and a call-to-action.
func BuildPromoText(segment Segment, attrs models.AttributeMap) string {
	headlines := promoHeadlines[segment]
	headline := headlines[rand.Intn(len(headlines))]
	cta := promoCTAs[rand.Intn(len(promoCTAs))]

	clause := featureClause(attrs)
	if clause == "" {
		return headline + " " + cta
	}
	return headline + " " + clause + ". " + cta
}

func featureClause(attrs models.AttributeMap) string {
	var features []string
	for _, key := range []models.AttributeKey{
		models.KeyProcessor, models.KeyRAM, models.KeyStorage, models.KeyGPU,
	} {
		if v := attrs.Get(key); v != "" {
			features = append(features, v)
		}
	}
	if len(features) == 0 {
		return ""
	}
	return "Mit " + strings.Join(features, ", ")
}
