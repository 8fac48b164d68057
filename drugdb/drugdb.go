// Package drugdb holds the embedded drug reference catalog and its
// lookup rules: exact name, alias, then fuzzy spelling match. The
// OpenFDA client and the SQLite result cache live here too so the
// service resolves a query in one place.
package drugdb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// Record is one drug's reference entry, in the wire shape the service
// returns to clients.
type Record struct {
	GenericName  string `json:"generic_name"`
	BrandName    string `json:"brand_name"`
	Manufacturer string `json:"manufacturer"`
	Indications  string `json:"indications"`
	Dosage       string `json:"dosage"`
	Warnings     string `json:"warnings"`
	SideEffects  string `json:"side_effects"`
}

// Match is a catalog hit. CorrectedTo is set when the query reached the
// record through an alias or a close spelling rather than its own name.
type Match struct {
	Record      Record
	CorrectedTo string
}

const (
	// lookupCutoff is the minimum similarity for a spelling to count
	// as the same drug.
	lookupCutoff = 0.6
	// suggestCutoff is looser; suggestions only have to be plausible.
	suggestCutoff = 0.4
)

// names keeps the catalog's listing order for suggestion messages.
var names = []string{
	"paracetamol", "acetaminophen", "ibuprofen", "aspirin",
	"metformin", "lisinopril", "amoxicillin", "omeprazole", "cytarabine",
}

var catalog = map[string]Record{
	"paracetamol": {
		GenericName:  "Acetaminophen (Paracetamol)",
		BrandName:    "Tylenol, Panadol, Calpol",
		Manufacturer: "Various",
		Indications:  "Used to treat pain and reduce fever. Commonly used for headaches, muscle aches, arthritis, backaches, toothaches, colds, and fevers.",
		Dosage:       "Adults: 325-650 mg every 4-6 hours or 1000 mg every 6-8 hours. Maximum 4000 mg per day.",
		Warnings:     "Do not exceed recommended dose. Overdose can cause serious liver damage that may be fatal.",
		SideEffects:  "Generally well tolerated when used as directed. Rare side effects may include nausea, stomach pain, loss of appetite.",
	},
	"acetaminophen": {
		GenericName:  "Acetaminophen",
		BrandName:    "Tylenol, Panadol, Calpol",
		Manufacturer: "Various",
		Indications:  "Used to treat pain and reduce fever. Commonly used for headaches, muscle aches, arthritis, backaches, toothaches, colds, and fevers.",
		Dosage:       "Adults: 325-650 mg every 4-6 hours or 1000 mg every 6-8 hours. Maximum 4000 mg per day.",
		Warnings:     "Do not exceed recommended dose. Overdose can cause serious liver damage.",
		SideEffects:  "Generally well tolerated. May cause nausea, stomach pain, loss of appetite, or rash in rare cases.",
	},
	"ibuprofen": {
		GenericName:  "Ibuprofen",
		BrandName:    "Advil, Motrin, Nurofen",
		Manufacturer: "Various",
		Indications:  "NSAID used to reduce fever and treat pain or inflammation caused by conditions such as headache, toothache, back pain, arthritis.",
		Dosage:       "Adults: 200-400 mg every 4-6 hours as needed. Maximum 1200 mg per day for OTC use.",
		Warnings:     "May increase risk of heart attack or stroke. Can cause stomach bleeding and ulcers.",
		SideEffects:  "Common: Stomach upset, heartburn, nausea, vomiting, headache, diarrhea, constipation, dizziness.",
	},
	"aspirin": {
		GenericName:  "Aspirin (Acetylsalicylic Acid)",
		BrandName:    "Bayer, Bufferin, Ecotrin",
		Manufacturer: "Various",
		Indications:  "Used to reduce fever and relieve mild to moderate pain. Also used in low doses to prevent heart attacks and strokes.",
		Dosage:       "Adults: 325-650 mg every 4 hours for pain/fever. For cardiovascular protection: 81 mg daily.",
		Warnings:     "Can cause stomach bleeding and ulcers. Do not give to children under 16 due to risk of Reye's syndrome.",
		SideEffects:  "Common: Stomach irritation, heartburn, drowsiness, headache, mild nausea.",
	},
	"metformin": {
		GenericName:  "Metformin",
		BrandName:    "Glucophage, Fortamet, Glumetza",
		Manufacturer: "Various",
		Indications:  "Used to treat type 2 diabetes mellitus. Helps control blood sugar levels by decreasing glucose production in the liver.",
		Dosage:       "Adults: Usually start with 500 mg twice daily or 850 mg once daily with meals. May gradually increase to maximum 2000-2550 mg daily.",
		Warnings:     "May cause lactic acidosis (rare but serious). Avoid excessive alcohol consumption. Monitor kidney function regularly.",
		SideEffects:  "Common: Diarrhea, nausea, vomiting, gas, weakness, indigestion, abdominal discomfort, headache, metallic taste.",
	},
	"lisinopril": {
		GenericName:  "Lisinopril",
		BrandName:    "Prinivil, Zestril",
		Manufacturer: "Various",
		Indications:  "ACE inhibitor used to treat high blood pressure (hypertension), heart failure, and to improve survival after heart attacks.",
		Dosage:       "Adults: Usually start with 10 mg once daily. May increase to 20-40 mg daily based on response.",
		Warnings:     "Can cause severe drop in blood pressure. May cause birth defects - do not use during pregnancy.",
		SideEffects:  "Common: Dry persistent cough, dizziness, headache, fatigue, nausea, low blood pressure.",
	},
	"amoxicillin": {
		GenericName:  "Amoxicillin",
		BrandName:    "Amoxil, Trimox",
		Manufacturer: "Various",
		Indications:  "Penicillin antibiotic used to treat various bacterial infections including respiratory tract infections, urinary tract infections, skin infections.",
		Dosage:       "Adults: 250-500 mg every 8 hours or 500-875 mg every 12 hours. Complete full course even if feeling better.",
		Warnings:     "Do not use if allergic to penicillin. May reduce effectiveness of birth control pills.",
		SideEffects:  "Common: Nausea, vomiting, diarrhea, stomach pain, headache, dizziness.",
	},
	"omeprazole": {
		GenericName:  "Omeprazole",
		BrandName:    "Prilosec, Losec",
		Manufacturer: "Various",
		Indications:  "Proton pump inhibitor used to treat GERD, stomach ulcers, duodenal ulcers. Reduces stomach acid production.",
		Dosage:       "Adults: 20-40 mg once daily before breakfast. Take 30-60 minutes before eating.",
		Warnings:     "Long-term use may increase risk of bone fractures, vitamin B12 deficiency, and kidney problems.",
		SideEffects:  "Common: Headache, diarrhea, nausea, vomiting, stomach pain, gas, dizziness.",
	},
	"cytarabine": {
		GenericName:  "Cytarabine",
		BrandName:    "Cytosar-U, Tarabine PFS, Ara-C",
		Manufacturer: "Various",
		Indications:  "Antineoplastic agent used to treat acute lymphocytic leukemia, acute myelogenous leukemia, chronic myelogenous leukemia, and certain lymphomas. Works by interfering with DNA synthesis in cancer cells.",
		Dosage:       "Dosage varies greatly depending on the specific condition being treated, patient factors, and treatment protocol. Typically given as intravenous infusion. Common regimens range from 100-200 mg/m² daily for 5-10 days. Must be administered by qualified healthcare professionals only.",
		Warnings:     "Severe myelosuppression (bone marrow suppression), cytarabine syndrome, neurotoxicity at high doses, hepatotoxicity. Requires close monitoring of blood counts, liver function, and neurological status. Only for use under strict medical supervision in specialized cancer treatment facilities.",
		SideEffects:  "Common: Severe nausea and vomiting, diarrhea, mouth sores, fever, bone marrow suppression leading to increased infection risk, bleeding, and anemia. Serious: Liver toxicity, lung problems, neurological effects (especially at high doses), severe infections due to immunosuppression.",
	},
}

// aliases maps brand names and common misspellings to catalog names.
var aliases = map[string]string{
	"paracitamol": "paracetamol",
	"paracitemol": "paracetamol",
	"tylenol":     "acetaminophen",
	"panadol":     "paracetamol",
	"advil":       "ibuprofen",
	"motrin":      "ibuprofen",
	"glucophage":  "metformin",
	"prinivil":    "lisinopril",
	"zestril":     "lisinopril",
	"cytosar":     "cytarabine",
	"ara-c":       "cytarabine",
	"cytosar-u":   "cytarabine",
	"tarabine":    "cytarabine",
}

// Names returns the catalog's drug names in listing order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup resolves a drug name against the catalog: exact match first,
// then the alias table, then the closest spelling among names and
// aliases. The zero Match and false mean nothing came close enough.
func Lookup(name string) (Match, bool) {
	q := normalize(name)
	if q == "" {
		return Match{}, false
	}

	if rec, ok := catalog[q]; ok {
		return Match{Record: rec}, true
	}
	if canonical, ok := aliases[q]; ok {
		return Match{Record: catalog[canonical], CorrectedTo: canonical}, true
	}

	candidates := make([]string, 0, len(names)+len(aliases))
	candidates = append(candidates, names...)
	for alias := range aliases {
		candidates = append(candidates, alias)
	}
	sort.Strings(candidates[len(names):])

	best, ok := closest(q, candidates, lookupCutoff)
	if !ok {
		return Match{}, false
	}
	if canonical, isAlias := aliases[best]; isAlias {
		return Match{Record: catalog[canonical], CorrectedTo: canonical}, true
	}
	return Match{Record: catalog[best], CorrectedTo: best}, true
}

// closest picks the candidate with the highest similarity to query.
// Earlier candidates win ties so catalog names beat aliases.
func closest(query string, candidates []string, cutoff float64) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, cand := range candidates {
		if score := levenshtein.Similarity(query, cand, nil); score > bestScore {
			best, bestScore = cand, score
		}
	}
	if bestScore < cutoff {
		return "", false
	}
	return best, true
}

// Suggestions builds the help text for a query nothing matched: up to
// three plausibly intended catalog names, or the catalog listing when
// the query resembles none of them.
func Suggestions(name string) string {
	q := normalize(name)

	type scored struct {
		name  string
		score float64
	}
	var hits []scored
	for _, cand := range names {
		if score := levenshtein.Similarity(q, cand, nil); score >= suggestCutoff {
			hits = append(hits, scored{cand, score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > 3 {
		hits = hits[:3]
	}

	if len(hits) > 0 {
		parts := make([]string, len(hits))
		for i, h := range hits {
			parts[i] = h.name
		}
		return fmt.Sprintf("Did you mean one of these: %s?", strings.Join(parts, ", "))
	}
	return fmt.Sprintf("I have detailed information about these common drugs: %s. Try searching for one of these!",
		strings.Join(names[:6], ", "))
}
