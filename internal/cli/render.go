package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/progression"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(12)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	DangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var stageColors = map[constants.Stage]lipgloss.Color{
	constants.StageSapling: lipgloss.Color("150"),
	constants.StageSprout:  lipgloss.Color("114"),
	constants.StageYoung:   lipgloss.Color("71"),
	constants.StageMature:  lipgloss.Color("28"),
	constants.StageElder:   lipgloss.Color("22"),
}

var rarityColors = map[constants.Rarity]lipgloss.Color{
	constants.RarityCommon:    lipgloss.Color("250"),
	constants.RarityUncommon:  lipgloss.Color("42"),
	constants.RarityRare:      lipgloss.Color("39"),
	constants.RarityEpic:      lipgloss.Color("135"),
	constants.RarityLegendary: lipgloss.Color("214"),
}

// StageBadge renders a stage as a colored pill.
func StageBadge(stage constants.Stage) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(stageColors[stage]).
		Padding(0, 1).
		Render(string(stage))
}

// RarityLabel renders an item rarity in its tier color.
func RarityLabel(r constants.Rarity) string {
	return lipgloss.NewStyle().Foreground(rarityColors[r]).Render(string(r))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// RenderStatus draws a duo's status card.
func RenderStatus(st progression.DuoStatus) string {
	next := "max level"
	if st.NextThreshold > 0 {
		next = fmt.Sprintf("%d to level %d", st.NextThreshold-st.Duo.TrustScore, st.Level+1)
	}
	streak := fmt.Sprintf("%d day(s)", st.Duo.Streak)
	if st.StreakDecayed {
		streak += " " + WarningStyle.Render("(streak lapsed)")
	}

	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s & %s", st.Duo.User1, st.Duo.User2)),
		mutedStyle.Render(st.Duo.ID),
		"",
		row("Stage", StageBadge(st.Tree.Stage)),
		row("Level", fmt.Sprintf("%d (%s)", st.Level, next)),
		row("Trust", fmt.Sprintf("%d", st.Duo.TrustScore)),
		row("Streak", streak),
		row("Leaves", fmt.Sprintf("%d", st.Tree.Leaves)),
		row("Fruits", fmt.Sprintf("%d", st.Tree.Fruits)),
		row("Equipped", fmt.Sprintf("%d / %d", len(st.Tree.Decorations), st.Capacity)),
	}
	if b := renderBuffs(st.Buffs); b != "" {
		lines = append(lines, row("Buffs", b))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func renderBuffs(b progression.BuffSummary) string {
	var parts []string
	if b.XPMultiplier != 1 {
		parts = append(parts, fmt.Sprintf("x%.2f XP", b.XPMultiplier))
	}
	if b.DailyXPBonus > 0 {
		parts = append(parts, fmt.Sprintf("+%d XP", b.DailyXPBonus))
	}
	if b.FocusBonus > 0 {
		parts = append(parts, fmt.Sprintf("+%d focus", b.FocusBonus))
	}
	if b.StreakProtection {
		parts = append(parts, "streak protection")
	}
	return strings.Join(parts, ", ")
}

// RenderCheckIn summarizes a check-in and any rewards it earned.
func RenderCheckIn(res progression.CheckInResult) string {
	if !res.CheckedIn {
		return mutedStyle.Render("Already checked in for this period.")
	}
	if !res.BothCompleted || res.Rewards == nil {
		return SuccessStyle.Render("✓ Checked in.") + " Waiting for your partner."
	}

	r := res.Rewards
	lines := []string{
		SuccessStyle.Render("✓ Habit completed together!"),
		fmt.Sprintf("  +%d XP (trust %d, level %d)", r.XP, r.TrustScore, r.Level),
		fmt.Sprintf("  Streak: %d", r.Streak),
	}
	if r.ProtectionUsed {
		lines = append(lines, WarningStyle.Render("  Streak protection saved a missed day."))
	}
	if r.Item != nil {
		lines = append(lines, fmt.Sprintf("  Found: %s [%s]", r.Item.Name, RarityLabel(r.Item.Rarity)))
	}
	if r.StageChanged {
		lines = append(lines, "  Your tree grew to "+StageBadge(r.Stage))
	}
	return strings.Join(lines, "\n")
}

// RenderTree lists a tree's decorations, inventory and recent growth.
func RenderTree(tree models.Tree, catalog map[string]models.TreeItem) string {
	name := func(id string) string {
		if it, ok := catalog[id]; ok {
			return it.Name
		}
		return id
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  leaves %d  fruits %d\n", StageBadge(tree.Stage), tree.Leaves, tree.Fruits)

	b.WriteString(titleStyle.Render("Decorations") + "\n")
	if len(tree.Decorations) == 0 {
		b.WriteString(mutedStyle.Render("  none") + "\n")
	}
	for i, d := range tree.Decorations {
		fmt.Fprintf(&b, "  [%d] %s at (%.0f, %.0f)\n", i, name(d.ItemID), d.Position.X, d.Position.Y)
	}

	b.WriteString(titleStyle.Render("Inventory") + "\n")
	ids := make([]string, 0, len(tree.Inventory))
	for id, n := range tree.Inventory {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		b.WriteString(mutedStyle.Render("  empty") + "\n")
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(&b, "  %-24s x%d (%d equipped)\n", name(id), tree.Inventory[id], tree.EquippedCount(id))
	}

	b.WriteString(titleStyle.Render("Growth log") + "\n")
	for _, e := range tree.GrowthLog {
		fmt.Fprintf(&b, "  %s  %-10s %s\n", e.At.Format("2006-01-02 15:04"), e.Kind, e.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderItems draws the item catalog one item per line.
func RenderItems(items []models.TreeItem) string {
	if len(items) == 0 {
		return "No items found."
	}
	var b strings.Builder
	for _, it := range items {
		status := ""
		if !it.IsActive {
			status = " " + mutedStyle.Render("[inactive]")
		}
		fmt.Fprintf(&b, "%-20s %-24s %-6s %s%s\n", it.ItemID, it.Name, it.Category, RarityLabel(it.Rarity), status)
	}
	return strings.TrimRight(b.String(), "\n")
}
