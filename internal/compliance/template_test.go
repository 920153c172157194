package compliance

import "testing"

func TestTemplateByKey(t *testing.T) {
	tmpl, ok := TemplateByKey("iso-compliance")
	if !ok {
		t.Fatal("iso-compliance template not registered")
	}
	if tmpl.Version < 1 {
		t.Errorf("Version = %d, want >= 1", tmpl.Version)
	}
	if len(tmpl.Checklist()) == 0 {
		t.Error("template produced an empty checklist")
	}

	if _, ok := TemplateByKey("nope"); ok {
		t.Error("unknown key resolved to a template")
	}
}

func TestTemplateChecklist_UniqueCodes(t *testing.T) {
	for _, key := range TemplateKeys() {
		tmpl, _ := TemplateByKey(key)
		if err := validateChecklist(tmpl.Checklist()); err != nil {
			t.Errorf("template %s: %v", key, err)
		}
	}
}

func TestReconcile_KeepsStoredAnswers(t *testing.T) {
	tmpl, _ := TemplateByKey("iso-compliance")
	stored := []ChecklistItem{
		{Code: "C1", Response: ResponseYes, Remark: "policy on wall", Evidence: []string{"https://img/1.jpg"}},
		{Code: "C5", Response: ResponseNo},
	}

	merged := Reconcile(stored, tmpl)
	if len(merged) != len(tmpl.Checklist()) {
		t.Fatalf("len = %d, want %d", len(merged), len(tmpl.Checklist()))
	}

	c1 := findItem(t, merged, "C1")
	if c1.Response != ResponseYes || c1.Remark != "policy on wall" || len(c1.Evidence) != 1 {
		t.Errorf("C1 lost stored data: %+v", c1)
	}
	// The question text always comes from the template, not storage.
	if c1.Question == "" {
		t.Error("C1 question not filled from template")
	}

	// Items the audit never answered default to unanswered.
	c2 := findItem(t, merged, "C2")
	if c2.Response != ResponseUnset {
		t.Errorf("C2 response = %q, want unset", c2.Response)
	}
}

func TestReconcile_PreservesOrphanedItems(t *testing.T) {
	tmpl, _ := TemplateByKey("social-compliance")
	stored := []ChecklistItem{
		{Code: "S1", Response: ResponseYes},
		{Code: "S99", Question: "Removed question", Response: ResponseNo, Remark: "kept"},
	}

	merged := Reconcile(stored, tmpl)

	orphan := findItem(t, merged, "S99")
	if !orphan.Legacy {
		t.Error("orphaned item not marked legacy")
	}
	if orphan.Response != ResponseNo || orphan.Remark != "kept" {
		t.Errorf("orphaned item lost data: %+v", orphan)
	}
	// Orphans sort after the template block.
	if merged[len(merged)-1].Code != "S99" {
		t.Errorf("orphan not appended last: last code = %s", merged[len(merged)-1].Code)
	}

	// Orphans still count toward the score.
	s := CalculateScore(merged)
	if s.TotalItems != len(tmpl.Checklist())+1 {
		t.Errorf("TotalItems = %d, want %d", s.TotalItems, len(tmpl.Checklist())+1)
	}
	if s.NoCount != 1 {
		t.Errorf("NoCount = %d, want 1 (legacy item scored)", s.NoCount)
	}
}

func findItem(t *testing.T, list []ChecklistItem, code string) ChecklistItem {
	t.Helper()
	for _, it := range list {
		if it.Code == code {
			return it
		}
	}
	t.Fatalf("item %s not found", code)
	return ChecklistItem{}
}
