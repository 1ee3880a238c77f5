package crawler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mibarrio-uy/listing-harvester/internal/domain"
	"github.com/mibarrio-uy/listing-harvester/internal/normalize"
)

const (
	minNameLength       = 2
	minDescriptionChars = 50
)

var (
	whatsappRe = regexp.MustCompile(`wa\.me/(\d+)`)
	coordsRe   = regexp.MustCompile(`(-?\d+\.\d+)_(-?\d+\.\d+)`)
	slugSpaces = regexp.MustCompile(`\s+`)

	// Weekday labels as they appear on the source site.
	weekdays = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

	// Free-form service flags the source site renders as "<phrase> SI/NO".
	infoPhrases = []string{
		"Trabajos a medida",
		"Atención rápida",
		"Trabajo garantizado",
		"Presupuesto sin cargo",
		"Envío a domicilio",
	}
)

// Extract parses a rendered detail page into a ScrapedListing. The rules are
// positional heuristics tied to the source site's markup. It returns
// (nil, nil) when the page carries no usable business name; in that case the
// whole listing is discarded, never a partial record.
func Extract(html, pageURL, category string) (*domain.ScrapedListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse detail page: %w", err)
	}

	name := strings.TrimSpace(doc.Find("h1").First().Text())
	if utf8.RuneCountInString(name) < minNameLength {
		return nil, nil
	}

	listing := &domain.ScrapedListing{
		BusinessName: name,
		Department:   domain.DefaultDepartment,
		Category:     category,
		Source:       domain.Source1122,
		SourceURL:    pageURL,
		ExternalID:   externalID(pageURL, name),
	}

	extractAddress(doc, listing)

	listing.ContactPhone = normalize.Phone(strings.TrimSpace(doc.Find(`a[href^="tel:"]`).First().Text()))

	if href, ok := doc.Find(`a[href*="wa.me"]`).First().Attr("href"); ok {
		if m := whatsappRe.FindStringSubmatch(href); m != nil {
			listing.ContactWhatsapp = m[1]
		}
	}

	doc.Find("h3").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if utf8.RuneCountInString(text) > minDescriptionChars {
			listing.Description = text
			return false
		}
		return true
	})

	if href, ok := doc.Find(`a[href*="instagram.com"]`).First().Attr("href"); ok {
		listing.SocialInstagram = href
	}

	logo := doc.Find(`img[src*="/icono/big/"]`).First()
	if logo.Length() == 0 {
		logo = doc.Find(`img[src*="/icono/i"]`).First()
	}
	if src, ok := logo.Attr("src"); ok {
		listing.LogoURL = src
	}

	listing.Photos = extractPhotos(doc)
	listing.Categories = extractCategories(doc)
	listing.Hours = extractHours(doc)

	pageText := doc.Text()
	listing.Is24Hrs = strings.Contains(pageText, "24 hrs") || strings.Contains(pageText, "24 horas")
	listing.AdditionalInfo = extractAdditionalInfo(pageText)
	listing.PaymentMethods = extractPaymentMethods(doc)

	extractCoordinates(doc, listing)

	return listing, nil
}

// extractAddress splits the first h2 ("Address - Neighborhood - Department")
// into its parts. Fewer parts degrade gracefully; the department keeps its
// default when unspecified.
func extractAddress(doc *goquery.Document, listing *domain.ScrapedListing) {
	text := strings.TrimSpace(doc.Find("h2").First().Text())
	if text == "" {
		return
	}

	parts := strings.Split(text, " - ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch {
	case len(parts) >= 3:
		listing.Address = parts[0]
		listing.Neighborhood = normalize.Neighborhood(parts[1])
		listing.Department = parts[2]
	case len(parts) == 2:
		listing.Address = parts[0]
		listing.Neighborhood = normalize.Neighborhood(parts[1])
	default:
		listing.Address = text
	}
}

func extractPhotos(doc *goquery.Document) []string {
	var photos []string
	doc.Find(`a[href*="/galeria/"] img, a[href*="/fotos/"] img`).Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || strings.Contains(src, "data:image") {
			return
		}
		// The gallery serves small variants; rewrite to the large form.
		large := strings.ReplaceAll(src, "-sm-", "-")
		large = strings.ReplaceAll(large, ".webp", ".jpg")
		photos = append(photos, large)
	})
	return photos
}

func extractCategories(doc *goquery.Document) []string {
	var cats []string
	seen := make(map[string]struct{})
	doc.Find(`a[href*="/rubro-zona/"]`).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if utf8.RuneCountInString(text) <= 2 || strings.Contains(text, "(") {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		cats = append(cats, text)
	})
	return cats
}

// extractHours scans the complementary/aside element for per-weekday time
// ranges ("7:00 - 17:00") or "Cerrado".
func extractHours(doc *goquery.Document) map[string]string {
	section := doc.Find(`[class*="complementary"], aside`).First()
	if section.Length() == 0 {
		return nil
	}

	text := section.Text()
	hours := make(map[string]string)
	for _, day := range weekdays {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(day) + `\s*([\d:]+\s*-\s*[\d:]+|Cerrado)`)
		if m := re.FindStringSubmatch(text); m != nil {
			hours[day] = strings.TrimSpace(m[1])
		}
	}
	if len(hours) == 0 {
		return nil
	}
	return hours
}

func extractAdditionalInfo(pageText string) map[string]string {
	info := make(map[string]string)
	for _, phrase := range infoPhrases {
		if !strings.Contains(pageText, phrase) {
			continue
		}
		re := regexp.MustCompile(regexp.QuoteMeta(phrase) + `\s*(SI|NO|Sí|No)`)
		m := re.FindStringSubmatch(pageText)
		if m == nil {
			continue
		}
		val := m[1]
		if strings.EqualFold(val, "si") || strings.EqualFold(val, "sí") {
			info[phrase] = "SI"
		} else {
			info[phrase] = "NO"
		}
	}
	if len(info) == 0 {
		return nil
	}
	return info
}

// extractPaymentMethods reads the labels rendered next to payment-method
// icons (imgs under /fp/).
func extractPaymentMethods(doc *goquery.Document) []string {
	var methods []string
	doc.Find(`img[src*="/fp/"]`).Each(func(_ int, sel *goquery.Selection) {
		label := strings.TrimSpace(sel.Parent().Text())
		if label == "" {
			return
		}
		label = strings.TrimSpace(strings.SplitN(label, "\n", 2)[0])
		n := utf8.RuneCountInString(label)
		if n > 2 && n < 30 {
			methods = append(methods, label)
		}
	})
	return methods
}

// extractCoordinates parses a lat_lng float pair out of the static map
// image URL.
func extractCoordinates(doc *goquery.Document, listing *domain.ScrapedListing) {
	src, ok := doc.Find(`img[src*="maps"]`).First().Attr("src")
	if !ok {
		return
	}
	m := coordsRe.FindStringSubmatch(src)
	if m == nil {
		return
	}
	lat, errLat := strconv.ParseFloat(m[1], 64)
	lng, errLng := strconv.ParseFloat(m[2], 64)
	if errLat != nil || errLng != nil {
		return
	}
	listing.LocationLat = lat
	listing.LocationLng = lng
	listing.HasLocation = true
}

// externalID derives the provenance id from the last URL path segment,
// falling back to a slug of the business name.
func externalID(pageURL, name string) string {
	trimmed := strings.TrimRight(pageURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx < len(trimmed)-1 {
		return trimmed[idx+1:]
	}
	slug := slugSpaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return domain.Source1122 + "-" + slug
}
