package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dmitrijs2005/workplan/internal/common"
	"github.com/dmitrijs2005/workplan/internal/models"
	"github.com/dmitrijs2005/workplan/internal/services/session"
)

// Dashboard shows the administrator view to admins and the personal
// dashboard to everyone else.
func (a *App) Dashboard(ctx context.Context) error {
	st := a.manager.State()
	if st.User == nil {
		return common.ErrNoSession
	}
	if st.User.IsAdmin() {
		return a.adminDashboard(ctx, *st.User)
	}
	a.userDashboard(st)
	return nil
}

func (a *App) userDashboard(st session.State) {
	u := st.User

	info := strings.Join([]string{
		titleStyle.Render("Employee Information"),
		fmt.Sprintf("Name:   %s", u.FullName()),
		fmt.Sprintf("Email:  %s", u.Email),
		fmt.Sprintf("Role:   %s", u.Role.Title()),
		dimStyle.Render(fmt.Sprintf("Session expires in %s", session.FormatRemaining(st.SessionTimeRemaining))),
	}, "\n")

	plan := strings.Join([]string{
		titleStyle.Render("As an Employee"),
		"Planning & Continuous Monitoring",
		dimStyle.Render("  Deadline Date: 03 Mar 2025 - 31 Mar 2025 (2025)"),
		"Evaluation",
		dimStyle.Render("  Deadline Date: 01 May 2024 - 31 May 2024 (2024), closed"),
		"View My Past Evaluation",
	}, "\n")

	printlnFn(fmt.Sprintf("Welcome back, %s!", u.FullName()))
	printlnFn(lipgloss.JoinVertical(lipgloss.Left, boxStyle.Render(info), boxStyle.Render(plan)))
}

func (a *App) adminDashboard(ctx context.Context, u models.User) error {
	all, err := a.accounts.List(ctx, "")
	if err != nil {
		return err
	}

	admins := 0
	for _, acc := range all {
		if acc.Role == models.RoleAdmin {
			admins++
		}
	}

	printlnFn(titleStyle.Render("Admin Dashboard") + "  " + dimStyle.Render(u.FullName()+" (Admin)"))
	printlnFn(fmt.Sprintf("Total users: %d  Administrators: %d  Employees: %d", len(all), admins, len(all)-admins))
	printlnFn(renderAccounts(all))
	return nil
}

// renderAccounts draws the user table shown on the admin screens.
func renderAccounts(list []models.Account) string {
	if len(list) == 0 {
		return dimStyle.Render("No users found.")
	}

	rows := make([][]string, 0, len(list))
	for _, acc := range list {
		created := ""
		if !acc.CreatedAt.IsZero() {
			created = acc.CreatedAt.Local().Format("2006-01-02")
		}
		rows = append(rows, []string{
			acc.ID,
			strings.TrimSpace(acc.FirstName + " " + acc.LastName),
			acc.Email,
			string(acc.Role),
			created,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "EMAIL", "ROLE", "CREATED").
		Rows(rows...).
		String()
}
