package chat

import (
	"strings"

	"github.com/varun-cu-unv/MedAssist/locale"
)

// Field is one labeled line of a drug-information card.
type Field struct {
	Label string
	Value string
}

type fieldSpec struct {
	key   string
	max   int
	value func(*DrugInfo) string
}

// Display budgets per field. Names stay short; clinical text gets room.
var fieldSpecs = []fieldSpec{
	{locale.FieldGenericName, 100, func(d *DrugInfo) string { return d.GenericName }},
	{locale.FieldBrandName, 100, func(d *DrugInfo) string { return d.BrandName }},
	{locale.FieldManufacturer, 100, func(d *DrugInfo) string { return d.Manufacturer }},
	{locale.FieldIndications, 400, func(d *DrugInfo) string { return d.Indications }},
	{locale.FieldDosage, 300, func(d *DrugInfo) string { return d.Dosage }},
	{locale.FieldWarnings, 400, func(d *DrugInfo) string { return d.Warnings }},
	{locale.FieldSideEffects, 300, func(d *DrugInfo) string { return d.SideEffects }},
}

// Fields renders a record for display: every field labeled in the user's
// language, independently truncated to its budget, never blank. Missing
// values show the localized "not available" placeholder.
func Fields(info *DrugInfo, lang string) []Field {
	out := make([]Field, 0, len(fieldSpecs))
	for _, fs := range fieldSpecs {
		v := strings.TrimSpace(fs.value(info))
		if v == "" {
			v = locale.Text(lang, locale.NotAvailable)
		} else {
			v = truncate(v, fs.max)
		}
		out = append(out, Field{Label: locale.Text(lang, fs.key), Value: v})
	}
	return out
}

// truncate cuts at max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
