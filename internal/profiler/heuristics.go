package profiler

import (
	"regexp"
	"strings"
)

// businessKinds maps keyword families to a type label and a default audience.
// Scored by distinct keyword hits; first entry wins ties.
var businessKinds = []struct {
	label    string
	audience string
	keywords []string
}{
	{"Restaurant / Food Service", "Local diners and food lovers",
		[]string{"restaurant", "menu", "chef", "dining", "cuisine", "pizza", "burger", "cafe", "coffee", "bakery", "catering"}},
	{"Beauty & Wellness", "Clients looking for beauty and self-care services",
		[]string{"salon", "spa", "massage", "facial", "beauty", "hair", "nails", "barber", "treatment"}},
	{"Fitness & Sports", "People building healthier routines",
		[]string{"gym", "fitness", "workout", "yoga", "training session", "pilates", "crossfit", "athlete"}},
	{"Health & Medical", "Patients and health-conscious clients",
		[]string{"clinic", "dental", "doctor", "medical", "health", "therapy", "pharmacy", "veterinary"}},
	{"Technology / Software", "Businesses adopting digital tools",
		[]string{"software", "app", "development", "digital", "technology", "platform", "cloud", "saas", "devops", "api"}},
	{"Retail / E-commerce", "Shoppers looking for quality products",
		[]string{"shop", "store", "boutique", "collection", "products", "shipping", "sale", "cart", "wholesale"}},
	{"Professional Services", "Businesses needing expert guidance",
		[]string{"consulting", "advisory", "accounting", "legal", "law firm", "agency", "marketing", "recruitment"}},
	{"Real Estate & Construction", "Property buyers and owners",
		[]string{"real estate", "property", "construction", "architecture", "renovation", "interior design", "plumbing"}},
	{"Education & Training", "Learners and parents",
		[]string{"school", "course", "education", "tutoring", "academy", "workshop", "curriculum"}},
}

var ctaPhrases = []string{
	"Contact Us", "Book Now", "Order Now", "Get Started", "Learn More",
	"Call Us", "Sign Up", "Subscribe", "Get a Quote", "Follow Us",
}

var (
	locationRe  = regexp.MustCompile(`(?i:based|located|headquartered)\s+(?i:in)\s+([A-Z][A-Za-z]+(?:,? [A-Z][A-Za-z]+)*)`)
	valuePropRe = regexp.MustCompile(`(?i)[^.!?\n]*\b(?:specializ\w*|we provide|we offer|we help|we create|we build|dedicated to|committed to)\b[^.!?]*[.!?]`)
	audienceRe  = regexp.MustCompile(`(?i)target (?:clients?|audience|customers?)\s*(?:include|is|are)?\s*([^.\n]+)`)
	bulletRe    = regexp.MustCompile(`(?m)^\s*[-•*]\s+(.+)$`)
)

// HeuristicProfile classifies content with keyword tables. It never fails;
// unknown content comes back as a generic business profile.
func HeuristicProfile(title, content string) *Profile {
	lower := strings.ToLower(content)

	label, audience := classify(lower)

	profile := &Profile{
		BusinessName:   businessNameFrom(title, content),
		BusinessType:   label,
		TargetAudience: audience,
	}

	if m := locationRe.FindStringSubmatch(content); m != nil {
		profile.Location = strings.TrimSpace(m[1])
	}
	if m := valuePropRe.FindString(content); m != "" {
		profile.ValueProposition = strings.TrimSpace(collapseSpaces(m))
	}
	if m := audienceRe.FindStringSubmatch(content); m != nil {
		profile.TargetAudience = strings.TrimSpace(m[1])
	}

	var services []string
	for _, m := range bulletRe.FindAllStringSubmatch(content, -1) {
		item := strings.TrimSpace(m[1])
		if len(item) >= 3 && len(item) <= 80 {
			services = append(services, item)
		}
		if len(services) == 10 {
			break
		}
	}
	profile.Services = strings.Join(services, ", ")

	for _, phrase := range ctaPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			profile.CallsToAction = append(profile.CallsToAction, phrase)
		}
	}
	if len(profile.CallsToAction) == 0 {
		profile.CallsToAction = []string{"Learn More"}
	}

	return profile
}

func classify(lower string) (label, audience string) {
	label, audience = "General Business", "Local customers"
	best := 0
	for _, kind := range businessKinds {
		score := 0
		for _, kw := range kind.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > best {
			best = score
			label = kind.label
			audience = kind.audience
		}
	}
	return label, audience
}

func businessNameFrom(title, content string) string {
	name := title
	for _, sep := range []string{" | ", " – ", " - "} {
		if i := strings.Index(name, sep); i > 0 {
			name = name[:i]
		}
	}
	name = strings.TrimSpace(name)
	if name != "" {
		return name
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, prefix := range []string{"About ", "about ", "Welcome to ", "welcome to "} {
			line = strings.TrimPrefix(line, prefix)
		}
		line = strings.TrimSpace(line)
		if line != "" && len(line) <= 60 {
			return line
		}
		break
	}
	return "Unknown Business"
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
