package ui

// renderHelp draws the key help footer in the current theme.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	h := m.help
	h.Styles.ShortKey = styles.AccentText
	h.Styles.ShortDesc = styles.MutedText
	h.Styles.ShortSeparator = styles.FaintText
	h.Styles.Ellipsis = styles.FaintText
	h.Styles.FullKey = styles.AccentText
	h.Styles.FullDesc = styles.MutedText
	h.Styles.FullSeparator = styles.FaintText
	return h.View(m.keys)
}
