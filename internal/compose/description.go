package compose

import (
	"fmt"
	"html"
	"strings"

	"github.com/nextbit-dev/storelift/internal/models"
)

// Marker identifies descriptions generated by this pipeline. Rendering
// always starts from raw extracted content, so the marker is purely a skip
// signal for repeated composition, never something to unwrap.
const Marker = "<!-- storelift:v1 -->"

// HasMarker reports whether a stored description was generated by this
// pipeline.
func HasMarker(description string) bool {
	return strings.Contains(description, Marker)
}

var introTemplates = map[Segment]string{
	SegmentGaming:    "Das %s aus dem Hause %s bringt kompromisslose Leistung für anspruchsvolle Spieler.",
	SegmentBusiness:  "Das %s von %s ist der zuverlässige Begleiter für den professionellen Arbeitsalltag.",
	SegmentUltrabook: "Das %s von %s verbindet elegantes Design mit starker Mobilität.",
	SegmentGeneric:   "Das %s von %s bietet ein ausgewogenes Gesamtpaket für den täglichen Einsatz.",
}

var idealForPhrases = map[Segment][]string{
	SegmentGaming: {
		"Aktuelle Spieletitel in hohen Einstellungen",
		"Streaming und Content Creation",
		"VR-Anwendungen",
	},
	SegmentBusiness: {
		"Büroanwendungen und Videokonferenzen",
		"Mobiles Arbeiten im Homeoffice und unterwegs",
		"Sichere Verwaltung geschäftlicher Daten",
	},
	SegmentUltrabook: {
		"Arbeiten unterwegs dank geringem Gewicht",
		"Lange Akkulaufzeit für ganze Arbeitstage",
		"Studium, Reisen und den mobilen Alltag",
	},
	SegmentGeneric: {
		"Alltägliche Aufgaben im Web und Office",
		"Multimedia und Unterhaltung",
		"Familie, Schule und Freizeit",
	},
}

// RenderDescription assembles the description HTML in fixed section order:
// intro, attribute-gated feature sections, specification section, ideal-for
// list, warranty/shipping footer. The result opens with the wrapper marker.
func RenderDescription(product *models.ProductRecord, attrs models.AttributeMap, segment Segment, specTable, rawDescription string) string {
	var b strings.Builder
	b.WriteString(Marker)
	b.WriteString("\n<div class=\"storelift-description\">\n")

	writeIntro(&b, product, segment)
	writeFeatureSections(&b, attrs)
	writeSpecSection(&b, specTable, rawDescription)
	writeIdealFor(&b, segment)
	writeFooter(&b)

	b.WriteString("</div>")
	return b.String()
}

func writeIntro(b *strings.Builder, product *models.ProductRecord, segment Segment) {
	subject := product.Category
	if subject == "" {
		subject = "Produkt"
	}
	brand := product.Brand
	if brand == "" {
		brand = "einem etablierten Hersteller"
	}
	b.WriteString("<p>")
	b.WriteString(fmt.Sprintf(introTemplates[segment], html.EscapeString(subject), html.EscapeString(brand)))
	b.WriteString("</p>\n")
}

// writeFeatureSections emits one narrative section per feature area whose
// attributes are present. Sections with no data are omitted entirely.
func writeFeatureSections(b *strings.Builder, attrs models.AttributeMap) {
	if cpu, ram := attrs.Get(models.KeyProcessor), attrs.Get(models.KeyRAM); cpu != "" || ram != "" {
		b.WriteString("<h3>Leistung</h3>\n<p>")
		if cpu != "" {
			b.WriteString(fmt.Sprintf("Der Prozessor %s sorgt für flüssiges Arbeiten. ", html.EscapeString(cpu)))
		}
		if ram != "" {
			b.WriteString(fmt.Sprintf("Mit %s Arbeitsspeicher laufen auch mehrere Anwendungen parallel ohne Wartezeiten.", html.EscapeString(ram)))
		}
		b.WriteString("</p>\n")
	}

	size := attrs.Get(models.KeyDisplaySize)
	resolution := attrs.Get(models.KeyResolution)
	panel := attrs.Get(models.KeyDisplayType)
	if size != "" || resolution != "" || panel != "" {
		b.WriteString("<h3>Display</h3>\n<p>")
		if size != "" {
			b.WriteString(fmt.Sprintf("Das %s Display ", html.EscapeString(size)))
		} else {
			b.WriteString("Das Display ")
		}
		if resolution != "" {
			b.WriteString(fmt.Sprintf("löst mit %s auf", html.EscapeString(resolution)))
		} else {
			b.WriteString("bietet ein klares Bild")
		}
		if panel != "" && panel != "unknown" {
			b.WriteString(fmt.Sprintf(" und setzt auf %s-Technologie", html.EscapeString(panel)))
		}
		b.WriteString(".</p>\n")
	}

	weight := attrs.Get(models.KeyWeight)
	battery := attrs.Get(models.KeyBattery)
	if weight != "" || battery != "" {
		b.WriteString("<h3>Mobilität</h3>\n<p>")
		if weight != "" {
			b.WriteString(fmt.Sprintf("Mit einem Gewicht von %s bleibt das Gerät angenehm transportabel. ", html.EscapeString(weight)))
		}
		if battery != "" {
			b.WriteString(fmt.Sprintf("Der Akku (%s) hält auch längere Einsätze ohne Steckdose durch.", html.EscapeString(battery)))
		}
		b.WriteString("</p>\n")
	}

	connectivity := attrs.Get(models.KeyConnectivity)
	ports := attrs.Get(models.KeyPorts)
	if connectivity != "" || ports != "" {
		b.WriteString("<h3>Anschlüsse & Verbindungen</h3>\n<p>")
		if connectivity != "" {
			b.WriteString(fmt.Sprintf("Drahtlos verbindet sich das Gerät über %s. ", html.EscapeString(connectivity)))
		}
		if ports != "" {
			b.WriteString(fmt.Sprintf("An Anschlüssen stehen bereit: %s.", html.EscapeString(ports)))
		}
		b.WriteString("</p>\n")
	}

	if gpu := attrs.Get(models.KeyGPU); gpu != "" {
		b.WriteString("<h3>Grafik</h3>\n<p>")
		b.WriteString(fmt.Sprintf("Für die Bildausgabe ist eine %s zuständig.", html.EscapeString(gpu)))
		b.WriteString("</p>\n")
	}
}

func writeSpecSection(b *strings.Builder, specTable, rawDescription string) {
	if specTable != "" {
		b.WriteString("<h3>Technische Daten</h3>\n")
		b.WriteString(specTable)
		b.WriteString("\n")
		return
	}
	// Without a table, fall back to whatever descriptive text the source
	// carried; raw content is escaped, never trusted as markup.
	if raw := strings.TrimSpace(rawDescription); raw != "" && !HasMarker(raw) {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(raw))
		b.WriteString("</p>\n")
	}
}

func writeIdealFor(b *strings.Builder, segment Segment) {
	b.WriteString("<h3>Ideal für</h3>\n<ul>\n")
	for _, phrase := range idealForPhrases[segment] {
		b.WriteString("<li>")
		b.WriteString(phrase)
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("<h3>Garantie & Versand</h3>\n")
	b.WriteString("<p>12 Monate Gewährleistung. Versand innerhalb von 24 Stunden an Werktagen. Rechnung mit ausgewiesener MwSt. liegt jeder Bestellung bei.</p>\n")
}
