package searchselect

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sarahs = map[string][]person{
	"Sa":    {{id: "7", name: "Sarah Cohen"}, {id: "8", name: "Samuel Levi"}},
	"Sarah": {{id: "7", name: "Sarah Cohen"}},
	"al": {
		{id: "1", name: "Alan Katz"},
		{id: "2", name: "Alice Stern"},
		{id: "3", name: "Sally Gold"},
	},
	"ali": {{id: "2", name: "Alice Stern"}},
}

func TestDebounceCoalescesBurstIntoOneFetch(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)

	m, cmds := typeText(m, "Sarah")
	// "S" is below the minimum and schedules nothing.
	require.Len(t, cmds, 4)
	assert.Empty(t, src.Calls(), "no fetch before the quiet period ends")

	m, _ = settle(m, cmds...)

	assert.Equal(t, []string{"Sarah"}, src.Calls())
	assert.Equal(t, OpenWithResults, m.State())
	assert.Equal(t, []person{{id: "7", name: "Sarah Cohen"}}, m.Rows())
}

func TestClearAndRetypeFetchesOnlySettledValue(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)

	m, first := typeText(m, "Sam")
	var cmds []tea.Cmd
	cmds = append(cmds, first...)
	for range 3 {
		var cmd tea.Cmd
		m, cmd = m.Update(keyType(tea.KeyBackspace))
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	m, again := typeText(m, "Sarah")
	cmds = append(cmds, again...)

	m, _ = settle(m, cmds...)

	assert.Equal(t, []string{"Sarah"}, src.Calls())
	assert.Equal(t, "Sarah", m.Query())
}

func TestShortQuerySuppressesFetchAndClearsResults(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)

	m = search(m, "al")
	require.Equal(t, OpenWithResults, m.State())
	require.Equal(t, 0, m.Highlight())

	m, cmd := m.Update(keyType(tea.KeyBackspace))
	m, _ = settle(m, cmd)

	assert.Equal(t, "a", m.Query())
	assert.Empty(t, m.Rows())
	assert.Equal(t, -1, m.Highlight())
	assert.Equal(t, Closed, m.State())
	assert.Equal(t, []string{"al"}, src.Calls())

	// The old highlight must not be committable.
	m, _ = m.Update(keyType(tea.KeyDown))
	m, cmd = m.Update(keyType(tea.KeyEnter))
	_, changed := settle(m, cmd)
	assert.Empty(t, changed)
}

func TestWhitespaceOnlyQueryIsBelowMinimum(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)

	_, cmds := typeText(m, "   ")
	assert.Empty(t, cmds)
}

func TestSlowOlderResponseNeverOverwritesNewer(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)

	// Issue fetch A for "al".
	m, cmds := typeText(m, "al")
	require.Len(t, cmds, 1)
	debounceA := runCmd(cmds[0])
	require.Len(t, debounceA, 1)
	m, fetchA := m.Update(debounceA[0])
	require.NotNil(t, fetchA)
	assert.True(t, m.Loading())

	// Issue fetch B for "ali" before A resolves.
	m, cmds = typeText(m, "i")
	require.Len(t, cmds, 1)
	debounceB := runCmd(cmds[0])
	m, fetchB := m.Update(debounceB[0])
	require.NotNil(t, fetchB)

	respA := runCmd(fetchA)
	respB := runCmd(fetchB)
	require.Len(t, respA, 1)
	require.Len(t, respB, 1)

	// B resolves first, then A.
	m, _ = m.Update(respB[0])
	m, cmd := m.Update(respA[0])
	assert.Nil(t, cmd)

	assert.Equal(t, []person{{id: "2", name: "Alice Stern"}}, m.Rows())
	assert.False(t, m.Loading())
	assert.Equal(t, []string{"al", "ali"}, src.Calls())
}

func TestStaleResponseLeavesLoadingUntouched(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)

	m, cmds := typeText(m, "al")
	m, fetchA := m.Update(runCmd(cmds[0])[0])
	m, cmds = typeText(m, "i")
	m, _ = m.Update(runCmd(cmds[0])[0])

	m, _ = m.Update(runCmd(fetchA)[0])

	assert.True(t, m.Loading(), "newer fetch still owns the loading flag")
	assert.Empty(t, m.Rows())
	assert.Equal(t, Closed, m.State())
}

func TestHighlightClampsAtBothEnds(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m = search(m, "al")
	require.Len(t, m.Rows(), 3)

	for range 5 {
		m, _ = m.Update(keyType(tea.KeyDown))
	}
	assert.Equal(t, 2, m.Highlight())

	for range 5 {
		m, _ = m.Update(keyType(tea.KeyUp))
	}
	assert.Equal(t, 0, m.Highlight())
}

func TestEnterCommitsHighlightedRowOnce(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m = search(m, "al")
	m, _ = m.Update(keyType(tea.KeyDown))

	m, cmd := m.Update(keyType(tea.KeyEnter))
	m, changed := settle(m, cmd)

	require.Len(t, changed, 1)
	assert.Equal(t, ChangedMsg{Picker: m.ID(), ID: "2", Label: "Alice Stern"}, changed[0])
	assert.Equal(t, Closed, m.State())
	assert.Equal(t, "Alice Stern", m.Query())
	assert.Equal(t, "2", m.Value())

	// A second Enter on the closed dropdown does nothing.
	m, cmd = m.Update(keyType(tea.KeyEnter))
	_, changed = settle(m, cmd)
	assert.Empty(t, changed)
}

func TestCommitInvalidatesPendingWork(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m = search(m, "al")

	// Type another char and commit before the debounce fires.
	m, cmds := typeText(m, "i")
	m, enter := m.Update(keyType(tea.KeyEnter))
	m, changed := settle(m, append(cmds, enter)...)

	require.Len(t, changed, 1)
	assert.Equal(t, "1", changed[0].ID)
	assert.Equal(t, Closed, m.State())
	assert.Equal(t, []string{"al"}, src.Calls())
}

func TestOutsideClickClosesWithoutCommit(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m.SetOrigin(2, 3)
	m = search(m, "al")
	require.Equal(t, OpenWithResults, m.State())
	require.Equal(t, 1, m.opts.Capture.Holders())

	m, cmd := m.Update(press(10, 20))
	m, changed := settle(m, cmd)

	assert.Empty(t, changed)
	assert.Equal(t, Closed, m.State())
	assert.Equal(t, "al", m.Query())
	assert.Equal(t, 0, m.opts.Capture.Holders())
}

func TestPressOnRowCommitsThatRow(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m.SetOrigin(2, 3)
	m = search(m, "al")
	require.Equal(t, 0, m.Highlight())

	// Line 0 is the input; rows start one line below the origin.
	m, cmd := m.Update(press(5, 6))
	m, changed := settle(m, cmd)

	require.Len(t, changed, 1)
	assert.Equal(t, "3", changed[0].ID)
	assert.Equal(t, "Sally Gold", m.Query())
}

func TestPressOnInputLineKeepsDropdownOpen(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m = search(m, "al")

	m, cmd := m.Update(press(1, 0))
	_, changed := settle(m, cmd)

	assert.Empty(t, changed)
	assert.Equal(t, OpenWithResults, m.State())
}

func TestRowPressDuringBlurGraceStillCommits(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m = search(m, "al")

	blurClose := m.Blur()
	require.NotNil(t, blurClose)
	assert.Equal(t, OpenWithResults, m.State(), "blur defers the close")

	m, cmd := m.Update(press(0, 2))
	m, changed := settle(m, cmd, blurClose)

	require.Len(t, changed, 1)
	assert.Equal(t, "2", changed[0].ID)
	assert.Equal(t, Closed, m.State())
}

func TestBlurClosesAfterGrace(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m = search(m, "al")

	cmd := m.Blur()
	m, changed := settle(m, cmd)

	assert.Empty(t, changed)
	assert.Equal(t, Closed, m.State())
	assert.Equal(t, 0, m.opts.Capture.Holders())

	// Focusing again reopens with the earlier results.
	m.Focus()
	assert.Equal(t, OpenWithResults, m.State())
}

func TestBlurBeforeDebounceDoesNotLeaveDropdownOpen(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)

	m, cmds := typeText(m, "al")
	blurCmd := m.Blur()
	assert.Nil(t, blurCmd, "nothing open yet")
	m, _ = settle(m, cmds...)

	assert.Equal(t, []string{"al"}, src.Calls())
	assert.False(t, m.Focused())
	assert.Equal(t, Closed, m.State())
	assert.Equal(t, 0, m.opts.Capture.Holders())
	assert.Len(t, m.Rows(), 3)

	m.Focus()
	assert.Equal(t, OpenWithResults, m.State())
	assert.Equal(t, 1, m.opts.Capture.Holders())
}

func TestRefocusCancelsBlurClose(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m = search(m, "al")

	cmd := m.Blur()
	m.Focus()
	m, _ = settle(m, cmd)

	assert.Equal(t, OpenWithResults, m.State())
}

func TestEscapeClosesWithoutCommit(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m = search(m, "al")

	m, cmd := m.Update(keyType(tea.KeyEsc))
	m, changed := settle(m, cmd)

	assert.Empty(t, changed)
	assert.Equal(t, Closed, m.State())
	assert.Equal(t, "al", m.Query())
}

func TestArrowOpensClosedDropdown(t *testing.T) {
	m := newTestModel(t, &fakeSource{})

	m, _ = m.Update(keyType(tea.KeyDown))

	assert.Equal(t, OpenEmpty, m.State())
	assert.Equal(t, -1, m.Highlight())
	assert.Contains(t, m.View(), "type at least 2 characters")
}

func TestSoleResultEnterWithoutHighlight(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src, func(o *Options[person]) { o.HighlightFirst = false })
	m = search(m, "Sarah")
	require.Equal(t, -1, m.Highlight())

	m, cmd := m.Update(keyType(tea.KeyEnter))
	m, changed := settle(m, cmd)

	require.Len(t, changed, 1)
	assert.Equal(t, "7", changed[0].ID)
	assert.Equal(t, "Sarah Cohen", m.Query())
}

func TestSoleResultRuleCanBeDisabled(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src, func(o *Options[person]) {
		o.HighlightFirst = false
		o.SoleMatchCommit = false
	})
	m = search(m, "Sarah")

	m, cmd := m.Update(keyType(tea.KeyEnter))
	m, changed := settle(m, cmd)

	assert.Empty(t, changed)
	assert.Equal(t, OpenWithResults, m.State())
}

func TestEnterWithoutHighlightAndManyRowsIsNoop(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src, func(o *Options[person]) { o.HighlightFirst = false })
	m = search(m, "al")

	m, cmd := m.Update(keyType(tea.KeyEnter))
	_, changed := settle(m, cmd)

	assert.Empty(t, changed)
}

func TestFailedFetchShowsNoResults(t *testing.T) {
	src := &fakeSource{err: errors.New("api returned status 500")}
	m := newTestModel(t, src)

	m = search(m, "zz")

	assert.Equal(t, []string{"zz"}, src.Calls())
	assert.Equal(t, OpenEmpty, m.State())
	assert.False(t, m.Loading())
	assert.Contains(t, m.View(), "no results")

	m, cmd := m.Update(keyType(tea.KeyEnter))
	_, changed := settle(m, cmd)
	assert.Empty(t, changed)
}

func TestFailedFetchClearsPreviousRows(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m = search(m, "al")
	require.NotEmpty(t, m.Rows())

	src.mu.Lock()
	src.err = errors.New("boom")
	src.mu.Unlock()
	m = search(m, "i")

	assert.Empty(t, m.Rows())
	assert.Equal(t, -1, m.Highlight())
}

func TestCloseIgnoresLateResponseAndReleasesCapture(t *testing.T) {
	started := make(chan struct{})
	var sawCancel bool
	src := SourceFunc[person](func(ctx context.Context, q string) (Results[person], error) {
		close(started)
		<-ctx.Done()
		sawCancel = true
		return Flat([]person{{id: "1", name: "late"}}), nil
	})
	m := newTestModel(t, src)

	m, cmds := typeText(m, "al")
	m, fetch := m.Update(runCmd(cmds[0])[0])
	require.NotNil(t, fetch)

	// Open the dropdown so the capture is held.
	m, _ = m.Update(keyType(tea.KeyDown))
	require.Equal(t, 1, m.opts.Capture.Holders())

	done := make(chan []tea.Msg)
	go func() { done <- runCmd(fetch) }()
	<-started

	m.Close()
	late := <-done

	require.Len(t, late, 1)
	m, cmd := m.Update(late[0])
	assert.Nil(t, cmd)
	assert.True(t, sawCancel)
	assert.True(t, m.Closed())
	assert.Empty(t, m.Rows())
	assert.Equal(t, Closed, m.State())
	assert.Equal(t, 0, m.opts.Capture.Holders())
	assert.Empty(t, m.View())

	m, cmd = m.Update(keyRunes("x"))
	assert.Nil(t, cmd)
	assert.Equal(t, "al", m.Query())
}

func TestMessagesForOtherInstancesAreIgnored(t *testing.T) {
	src := &fakeSource{results: sarahs}
	a := newTestModel(t, src)
	b := newTestModel(t, src)

	a, cmds := typeText(a, "al")
	tick := runCmd(cmds[0])

	b, cmd := b.Update(tick[0])
	assert.Nil(t, cmd)
	assert.Empty(t, b.Rows())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestUnfocusedModelIgnoresKeys(t *testing.T) {
	m := New(Options[person]{Source: &fakeSource{}})

	m, cmd := m.Update(keyRunes("al"))

	assert.Nil(t, cmd)
	assert.Empty(t, m.Query())
}

func TestSetValueReconcilesWithoutChange(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m = search(m, "al")

	cmd := m.SetValue(person{id: "9", name: "Rivka Adler"}, true)
	m, changed := settle(m, cmd)

	assert.Empty(t, changed)
	assert.Equal(t, "Rivka Adler", m.Query())
	assert.Equal(t, "9", m.Value())
	assert.Equal(t, Closed, m.State())
	assert.Empty(t, m.Rows())

	cmd = m.SetValue(person{}, false)
	m, _ = settle(m, cmd)
	assert.Empty(t, m.Query())
	assert.Empty(t, m.Value())
}

func TestClearKeyEmitsClearedChange(t *testing.T) {
	src := &fakeSource{results: sarahs}
	m := newTestModel(t, src)
	m = search(m, "Sarah")
	m, cmd := m.Update(keyType(tea.KeyEnter))
	m, _ = settle(m, cmd)
	require.Equal(t, "7", m.Value())

	m, cmd = m.Update(keyType(tea.KeyCtrlX))
	m, changed := settle(m, cmd)

	require.Len(t, changed, 1)
	assert.True(t, changed[0].Cleared)
	assert.Empty(t, m.Value())
	assert.Empty(t, m.Query())
}

func TestGroupedResultsHighlightAcrossGroups(t *testing.T) {
	src := SourceFunc[person](func(context.Context, string) (Results[person], error) {
		return Grouped(
			Group[person]{Name: "members", Items: []person{{id: "m1", name: "Dan Fried"}}},
			Group[person]{Name: "students", Items: nil},
			Group[person]{Name: "tiers", Items: []person{{id: "t1", name: "Family"}, {id: "t2", name: "Fellow"}}},
		), nil
	})
	m := newTestModel(t, src, func(o *Options[person]) { o.SoleMatchCommit = false })
	m = search(m, "fa")

	require.Len(t, m.Rows(), 3)
	assert.Len(t, m.Results().Groups(), 2, "empty groups are dropped")

	m, _ = m.Update(keyType(tea.KeyDown))
	assert.Equal(t, 1, m.Highlight())

	view := m.View()
	assert.Contains(t, view, "members")
	assert.Contains(t, view, "tiers")
	assert.NotContains(t, view, "students")

	// Lines: input, members header, Dan, tiers header, Family, Fellow.
	m, cmd := m.Update(press(0, 3))
	_, changed := settle(m, cmd)
	assert.Empty(t, changed, "headers are not selectable")

	m, cmd = m.Update(press(0, 5))
	_, changed = settle(m, cmd)
	require.Len(t, changed, 1)
	assert.Equal(t, "t2", changed[0].ID)
}

func TestViewScrollsToHighlight(t *testing.T) {
	var many []person
	for _, n := range []string{"a1", "a2", "a3", "a4", "a5"} {
		many = append(many, person{id: n, name: "Abe " + n})
	}
	src := &fakeSource{results: map[string][]person{"ab": many}}
	m := newTestModel(t, src, func(o *Options[person]) { o.MaxRows = 2 })
	m = search(m, "ab")

	for range 4 {
		m, _ = m.Update(keyType(tea.KeyDown))
	}
	view := m.View()
	assert.Contains(t, view, "Abe a5")
	assert.Contains(t, view, "Abe a4")
	assert.NotContains(t, view, "Abe a1")

	_, _, _, h := m.Bounds()
	assert.Equal(t, 3, h)
}

func TestViewShowsDetailAndMarker(t *testing.T) {
	src := &fakeSource{results: map[string][]person{
		"co": {{id: "1", name: "Cohen", note: "Gold tier"}},
	}}
	m := newTestModel(t, src)
	m = search(m, "co")

	view := m.View()
	assert.Contains(t, view, "› Cohen")
	assert.Contains(t, view, "Gold tier")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open-empty", OpenEmpty.String())
	assert.Equal(t, "open-with-results", OpenWithResults.String())
}
