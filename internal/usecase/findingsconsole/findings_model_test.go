package findingsconsole

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pinkong/internal/domain/quality"
)

func newTestModel() *findingsModel {
	model := NewFindingsModel(context.Background(), nil, FindingsOptions{RootID: 7})
	return model.(*findingsModel)
}

func loadedMsg(findings []quality.Finding) findingsLoadedMsg {
	return findingsLoadedMsg{
		findings: findings,
		counts:   quality.CountBySeverity(findings),
	}
}

func sampleFindings() []quality.Finding {
	return []quality.Finding{
		{Rule: quality.RuleUncoveredHighRisk, Severity: quality.SeverityHigh, TargetKind: quality.TargetAnalysisLine, TargetID: 1, Message: "uncovered line"},
		{Rule: quality.RuleSamplingMismatch, Severity: quality.SeverityMedium, TargetKind: quality.TargetInspectionItem, TargetID: 4, Message: "sampling drift"},
	}
}

func TestUpdateFindingsLoaded(t *testing.T) {
	model := newTestModel()

	updated, _ := model.Update(loadedMsg(sampleFindings()))
	m := updated.(*findingsModel)

	if len(m.findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(m.findings))
	}
	if m.counts[quality.SeverityHigh] != 1 || m.counts[quality.SeverityMedium] != 1 {
		t.Fatalf("counts = %#v", m.counts)
	}
	if !strings.Contains(m.status, "2 findings") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestUpdateEmptyResultReportsConsistent(t *testing.T) {
	model := newTestModel()

	updated, _ := model.Update(loadedMsg(nil))
	m := updated.(*findingsModel)

	if m.status != "chain is consistent" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestUpdateClampsSelectionWhenListShrinks(t *testing.T) {
	model := newTestModel()

	updated, _ := model.Update(loadedMsg(sampleFindings()))
	m := updated.(*findingsModel)
	m.selectedIndex = 1

	single := sampleFindings()[:1]
	updated, _ = m.Update(loadedMsg(single))
	m = updated.(*findingsModel)

	if m.selectedIndex != 0 {
		t.Fatalf("selectedIndex = %d, want 0", m.selectedIndex)
	}
}

func TestUpdateKeyNavigation(t *testing.T) {
	model := newTestModel()
	updated, _ := model.Update(loadedMsg(sampleFindings()))
	m := updated.(*findingsModel)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(*findingsModel)
	if m.selectedIndex != 1 {
		t.Fatalf("selectedIndex after down = %d, want 1", m.selectedIndex)
	}

	// Already at the last row; stays put.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(*findingsModel)
	if m.selectedIndex != 1 {
		t.Fatalf("selectedIndex after second down = %d, want 1", m.selectedIndex)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(*findingsModel)
	if m.selectedIndex != 0 {
		t.Fatalf("selectedIndex after up = %d, want 0", m.selectedIndex)
	}
}

func TestUpdateQuitKeys(t *testing.T) {
	model := newTestModel()
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("q should produce a quit command")
	}
}

func TestViewRendersFindingsAndCounts(t *testing.T) {
	model := newTestModel()
	updated, _ := model.Update(loadedMsg(sampleFindings()))
	m := updated.(*findingsModel)

	view := m.View()
	for _, fragment := range []string{"Consistency Findings", "HIGH=1", "MEDIUM=1", "LOW=0", "uncovered line", "sampling drift", "root=7"} {
		if !strings.Contains(view, fragment) {
			t.Fatalf("view missing %q:\n%s", fragment, view)
		}
	}
}

func TestViewEmptyState(t *testing.T) {
	model := newTestModel()
	updated, _ := model.Update(loadedMsg(nil))
	m := updated.(*findingsModel)

	if !strings.Contains(m.View(), "no findings") {
		t.Fatalf("empty view should mention no findings")
	}
}

func TestUpdatePersistDone(t *testing.T) {
	model := newTestModel()

	updated, cmd := model.Update(persistDoneMsg{count: 3})
	m := updated.(*findingsModel)
	if !strings.Contains(m.status, "persisted 3") {
		t.Fatalf("status = %q", m.status)
	}
	if cmd == nil {
		t.Fatalf("persist completion should trigger a refresh")
	}
}
