package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"hzchat-client/internal/app/chat"
	"hzchat-client/internal/app/header"
	"hzchat-client/internal/app/timeline"
)

// imageBadge stands in for an avatar image, which a terminal cannot draw.
const imageBadge = "◉"

func (m Model) View() string {
	v := m.session.View()

	var b strings.Builder
	b.WriteString(renderHeader(v.Header, m.width))
	b.WriteString("\n")

	if v.Entry.Visible {
		b.WriteString(m.entryView())
		if v.Notice != "" {
			b.WriteString("\n" + noticeStyle.Render(v.Notice))
		}
		b.WriteString("\n" + m.help.View(entryKeys{keys}))
		return b.String()
	}

	b.WriteString(m.timeline.View())
	b.WriteString("\n")
	b.WriteString(footerStyle.Width(m.width).Render(m.composer.View()))
	if v.Notice != "" {
		b.WriteString("\n" + noticeStyle.Render(v.Notice))
	}
	b.WriteString("\n" + m.help.View(keys))

	return b.String()
}

func (m Model) entryView() string {
	v := m.session.View().Entry

	photo := mutedStyle.Render("no photo selected")
	switch {
	case v.Pending:
		photo = mutedStyle.Render("reading photo...")
	case v.Avatar != "":
		photo = onlineStyle.Render(imageBadge + " photo ready")
	}

	submit := mutedStyle.Render("fill in name and photo to enter")
	if v.CanSubmit {
		submit = onlineStyle.Render("press enter on the name field to join")
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Who are you?"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Name"), m.nameInput.View()),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Photo"), m.avatarInput.View()),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(""), photo),
		"",
		submit,
	)

	return lipgloss.Place(m.width, lipgloss.Height(form)+2, lipgloss.Center, lipgloss.Center, formStyle.Render(form))
}

func renderHeader(h header.View, width int) string {
	status := offlineStyle.Render("● " + h.Status)
	if h.State == chat.Connected {
		status = onlineStyle.Render("● " + h.Status)
	}

	who := mutedStyle.Render("not entered")
	if h.HasProfile {
		who = avatarStyle.Render(avatarGlyph(h.Avatar, h.Glyph)) + " " + profileStyle.Render(ansi.Strip(h.Name))
	}

	left := titleStyle.Render("hzchat") + " " + who
	gap := width - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + status)
}

// renderTimeline draws entries in order; self entries on the right, others on the left.
func renderTimeline(entries []timeline.EntryView, width int) string {
	if len(entries) == 0 {
		return mutedStyle.Render("No messages yet.")
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, renderEntry(e, width))
	}
	return strings.Join(lines, "\n")
}

func renderEntry(e timeline.EntryView, width int) string {
	maxBubble := width * 2 / 3
	if maxBubble < 10 {
		maxBubble = 10
	}

	text := ansi.Strip(e.Text)
	meta := mutedStyle.Render(e.Time)

	if e.IsSelf() {
		bubble := selfBubbleStyle.MaxWidth(maxBubble).Render(text)
		avatar := selfAvatarStyle.Render(avatarGlyph(e.Avatar, e.Glyph))
		row := lipgloss.JoinHorizontal(lipgloss.Bottom, meta, " ", bubble, " ", avatar)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, row)
	}

	label := senderStyle.Render(ansi.Strip(e.Name))
	bubble := otherBubbleStyle.MaxWidth(maxBubble).Render(text)
	avatar := avatarStyle.Render(avatarGlyph(e.Avatar, e.Glyph))
	body := lipgloss.JoinVertical(lipgloss.Left, label, bubble)
	return lipgloss.JoinHorizontal(lipgloss.Bottom, avatar, " ", body, " ", meta)
}

func avatarGlyph(avatar, glyph string) string {
	if avatar != "" {
		return imageBadge
	}
	return glyph
}
