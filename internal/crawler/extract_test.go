package crawler

import (
	"testing"
)

const detailPage = `<html><body>
<h1> Electricidad Silva </h1>
<h2>Av. Italia 1234 - Pocitos - Montevideo</h2>
<h3>Contacto</h3>
<h3>Instalaciones eléctricas residenciales y comerciales con más de veinte años de experiencia en Montevideo.</h3>
<a href="tel:099123456">099 123 456</a>
<a href="https://wa.me/59899123456?text=hola">WhatsApp</a>
<a href="https://instagram.com/electricidadsilva">Instagram</a>
<img src="https://1122.com.uy/icono/big/123.png">
<a href="/galeria/1"><img src="https://cdn.1122.com.uy/foto-sm-1.webp"></a>
<a href="/rubro-zona/montevideo/electricistas/PRD1000390/Z01000">Electricistas</a>
<a href="/rubro-zona/montevideo/sanitarios/PRD1000922/Z01000">Sanitarios</a>
<a href="/rubro-zona/montevideo/otros/PRD9/Z01000">Otros (34)</a>
<aside class="complementary">
Lunes 8:00 - 18:00
Martes 8:00 - 18:00
Domingo Cerrado
Presupuesto sin cargo SI
Envío a domicilio NO
</aside>
<div><img src="/img/fp/visa.png">Visa</div>
<img src="https://maps.example.com/static/-34.901234_-56.164532/15.png">
</body></html>`

func TestExtractFullDetailPage(t *testing.T) {
	l, err := Extract(detailPage, "https://1122.com.uy/local/electricidad-silva-12345", "electricista")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if l == nil {
		t.Fatalf("expected a listing")
	}

	if l.BusinessName != "Electricidad Silva" {
		t.Errorf("BusinessName = %q", l.BusinessName)
	}
	if l.Address != "Av. Italia 1234" || l.Neighborhood != "Pocitos" || l.Department != "Montevideo" {
		t.Errorf("address triple = %q / %q / %q", l.Address, l.Neighborhood, l.Department)
	}
	if l.ContactPhone != "59899123456" {
		t.Errorf("ContactPhone = %q", l.ContactPhone)
	}
	if l.ContactWhatsapp != "59899123456" {
		t.Errorf("ContactWhatsapp = %q", l.ContactWhatsapp)
	}
	if l.Description == "" || len(l.Description) < 50 {
		t.Errorf("Description too short: %q", l.Description)
	}
	if l.SocialInstagram != "https://instagram.com/electricidadsilva" {
		t.Errorf("SocialInstagram = %q", l.SocialInstagram)
	}
	if l.LogoURL != "https://1122.com.uy/icono/big/123.png" {
		t.Errorf("LogoURL = %q", l.LogoURL)
	}
	if len(l.Photos) != 1 || l.Photos[0] != "https://cdn.1122.com.uy/foto-1.jpg" {
		t.Errorf("Photos = %v; want large jpg variant", l.Photos)
	}
	// The "(34)" counter link is navigation, not a category.
	if len(l.Categories) != 2 || l.Categories[0] != "Electricistas" || l.Categories[1] != "Sanitarios" {
		t.Errorf("Categories = %v", l.Categories)
	}
	if got := l.Hours["Lunes"]; got != "8:00 - 18:00" {
		t.Errorf("Hours[Lunes] = %q", got)
	}
	if got := l.Hours["Domingo"]; got != "Cerrado" {
		t.Errorf("Hours[Domingo] = %q", got)
	}
	if l.Is24Hrs {
		t.Errorf("Is24Hrs should be false for this page")
	}
	if got := l.AdditionalInfo["Presupuesto sin cargo"]; got != "SI" {
		t.Errorf("AdditionalInfo[Presupuesto sin cargo] = %q", got)
	}
	if got := l.AdditionalInfo["Envío a domicilio"]; got != "NO" {
		t.Errorf("AdditionalInfo[Envío a domicilio] = %q", got)
	}
	if len(l.PaymentMethods) != 1 || l.PaymentMethods[0] != "Visa" {
		t.Errorf("PaymentMethods = %v", l.PaymentMethods)
	}
	if !l.HasLocation || l.LocationLat != -34.901234 || l.LocationLng != -56.164532 {
		t.Errorf("coords = %v %v (has=%v)", l.LocationLat, l.LocationLng, l.HasLocation)
	}
	if l.ExternalID != "electricidad-silva-12345" {
		t.Errorf("ExternalID = %q", l.ExternalID)
	}
	if l.Source != "1122" || l.SourceURL == "" || l.Category != "electricista" {
		t.Errorf("provenance fields wrong: %q %q %q", l.Source, l.SourceURL, l.Category)
	}
}

func TestExtractDiscardsPageWithoutName(t *testing.T) {
	for _, html := range []string{
		`<html><body><h2>Av. Italia 1234</h2></body></html>`,
		`<html><body><h1>A</h1></body></html>`,
	} {
		l, err := Extract(html, "https://1122.com.uy/local/x", "electricista")
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if l != nil {
			t.Fatalf("expected nil listing for nameless page, got %+v", l)
		}
	}
}

func TestExtractTwoPartAddressKeepsDefaultDepartment(t *testing.T) {
	html := `<html><body><h1>Taller Pérez</h1><h2>Rivera 2200 - Malvin</h2></body></html>`
	l, err := Extract(html, "https://1122.com.uy/local/taller-perez", "mecanico")
	if err != nil || l == nil {
		t.Fatalf("Extract: %v, listing=%v", err, l)
	}
	if l.Address != "Rivera 2200" || l.Neighborhood != "Malvín" {
		t.Errorf("address = %q / %q", l.Address, l.Neighborhood)
	}
	if l.Department != "Montevideo" {
		t.Errorf("Department = %q; want default", l.Department)
	}
}

func TestExtractDetects24Hrs(t *testing.T) {
	html := `<html><body><h1>Cerrajería Norte</h1><p>Atención 24 hrs</p></body></html>`
	l, err := Extract(html, "https://1122.com.uy/local/cerrajeria-norte", "cerrajero")
	if err != nil || l == nil {
		t.Fatalf("Extract: %v", err)
	}
	if !l.Is24Hrs {
		t.Errorf("Is24Hrs should be true")
	}
}

func TestExternalIDFallsBackToNameSlug(t *testing.T) {
	if got := externalID("", "Electricidad Silva"); got != "1122-electricidad-silva" {
		t.Errorf("externalID fallback = %q", got)
	}
	if got := externalID("https://1122.com.uy/local/foo-99/", ""); got != "foo-99" {
		t.Errorf("externalID trailing slash = %q", got)
	}
}

func TestListingURLsRequiresCardAnchor(t *testing.T) {
	html := `<html><body>
<a href="/local/foo-1"><h2>Foo</h2></a>
<a href="/local/foo-1"><h2>Foo duplicate</h2></a>
<a href="/local/nav-link">plain navigation</a>
<a href="https://1122.com.uy/local/bar-2"><h2>Bar</h2></a>
</body></html>`

	urls, err := ListingURLs(html, "https://1122.com.uy/")
	if err != nil {
		t.Fatalf("ListingURLs: %v", err)
	}
	want := []string{
		"https://1122.com.uy/local/foo-1",
		"https://1122.com.uy/local/bar-2",
	}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v; want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q; want %q", i, urls[i], want[i])
		}
	}
}
