// template.go holds the static, versioned audit question templates and the
// reconciliation logic that merges a stored checklist against the current
// template. Templates are compile-time seed data, not user-editable.
package compliance

// TemplateItem is one (code, question) pair in a template.
type TemplateItem struct {
	Code     string `json:"code"`
	Question string `json:"question"`
}

// TemplatePart is a named display grouping of template items. Parts only
// affect rendering; scoring always operates over the flat checklist.
type TemplatePart struct {
	Name  string         `json:"name"`
	Items []TemplateItem `json:"items"`
}

// Template is a versioned question set for one audit type. Bump Version
// whenever the item list changes so reconciliation against stored audits is
// a deterministic migration rather than an implicit merge.
type Template struct {
	Key     string         `json:"key"`
	Version int            `json:"version"`
	Name    string         `json:"name"`
	Parts   []TemplatePart `json:"parts"`
}

// Checklist returns the template's items flattened into an unanswered
// checklist, preserving part order.
func (t Template) Checklist() []ChecklistItem {
	var items []ChecklistItem
	for _, p := range t.Parts {
		for _, ti := range p.Items {
			items = append(items, ChecklistItem{Code: ti.Code, Question: ti.Question})
		}
	}
	return items
}

// templates is the registry of audit types. Order of parts and items is the
// rendering order.
var templates = map[string]Template{
	"iso-compliance": {
		Key:     "iso-compliance",
		Version: 2,
		Name:    "ISO Compliance Audit",
		Parts: []TemplatePart{
			{
				Name: "Documentation",
				Items: []TemplateItem{
					{Code: "C1", Question: "Are quality policy documents available at the work site?"},
					{Code: "C2", Question: "Are work instructions displayed for each loom section?"},
					{Code: "C3", Question: "Are raw material inspection records maintained and current?"},
					{Code: "C4", Question: "Is the approved sample (counter sample) available for the running quality?"},
				},
			},
			{
				Name: "Process Control",
				Items: []TemplateItem{
					{Code: "C5", Question: "Is yarn stored off the floor and protected from moisture?"},
					{Code: "C6", Question: "Are dye lots segregated and labelled correctly?"},
					{Code: "C7", Question: "Is the weaving tension checked against the specification card?"},
					{Code: "C8", Question: "Are finishing chemicals within their expiry dates?"},
				},
			},
			{
				Name: "Final Inspection",
				Items: []TemplateItem{
					{Code: "C9", Question: "Is the final inspection table adequately lit (minimum 1000 lux)?"},
					{Code: "C10", Question: "Are measurement tolerances recorded for every inspected piece?"},
					{Code: "C11", Question: "Are rejected pieces quarantined and tagged?"},
					{Code: "C12", Question: "Is packing carried out per the buyer's packing instruction?"},
				},
			},
		},
	},
	"social-compliance": {
		Key:     "social-compliance",
		Version: 1,
		Name:    "Social Compliance Audit",
		Parts: []TemplatePart{
			{
				Name: "Workplace",
				Items: []TemplateItem{
					{Code: "S1", Question: "Are fire extinguishers accessible and inspected within the last year?"},
					{Code: "S2", Question: "Are emergency exits unobstructed and marked?"},
					{Code: "S3", Question: "Is drinking water available to all workers?"},
				},
			},
			{
				Name: "Records",
				Items: []TemplateItem{
					{Code: "S4", Question: "Are age verification documents on file for all workers?"},
					{Code: "S5", Question: "Are wage registers complete for the last three months?"},
				},
			},
		},
	},
}

// TemplateByKey looks up a registered template. The boolean is false when
// the key is unknown.
func TemplateByKey(key string) (Template, bool) {
	t, ok := templates[key]
	return t, ok
}

// TemplateKeys returns the registered template keys. Used by handlers to
// expose the available audit types.
func TemplateKeys() []string {
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	return keys
}

// Reconcile merges a stored checklist with the current template:
//
//   - items in the template keep their stored response, remark, and evidence
//     when present, and default to unanswered when missing (a template item
//     added after the audit was stored);
//   - stored items absent from the template are preserved, appended after
//     the template block in their stored order and marked Legacy so
//     template-driven rendering can skip them.
//
// Legacy items keep participating in scoring. Silently shrinking the
// denominator when a template drops a question would inflate historic
// scores.
func Reconcile(stored []ChecklistItem, t Template) []ChecklistItem {
	byCode := make(map[string]ChecklistItem, len(stored))
	for _, it := range stored {
		byCode[it.Code] = it
	}

	merged := t.Checklist()
	inTemplate := make(map[string]bool, len(merged))
	for i := range merged {
		inTemplate[merged[i].Code] = true
		if prev, ok := byCode[merged[i].Code]; ok {
			merged[i].Response = prev.Response
			merged[i].Remark = prev.Remark
			merged[i].Evidence = prev.Evidence
		}
	}

	for _, it := range stored {
		if !inTemplate[it.Code] {
			it.Legacy = true
			merged = append(merged, it)
		}
	}
	return merged
}
