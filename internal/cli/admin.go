package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dmitrijs2005/workplan/internal/common"
	"github.com/dmitrijs2005/workplan/internal/models"
)

// requireAdmin returns common.ErrNoSession when signed out and
// common.ErrForbidden for non-admin users.
func (a *App) requireAdmin() error {
	u := a.manager.State().User
	if u == nil {
		return common.ErrNoSession
	}
	if !u.IsAdmin() {
		return common.ErrForbidden
	}
	return nil
}

// Users lists accounts, optionally filtered by a case-insensitive search
// over names and email.
func (a *App) Users(ctx context.Context, search string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	list, err := a.accounts.List(ctx, search)
	if err != nil {
		return err
	}
	printlnFn(renderAccounts(list))
	printlnFn(fmt.Sprintf("%d user(s)", len(list)))
	return nil
}

func (a *App) findAccount(ctx context.Context, id string) (*models.Account, error) {
	all, err := a.accounts.List(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

// prompted returns the entered value, or current when the input is empty.
func (a *App) prompted(label, current string) (string, error) {
	v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", label, current), a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

// EditUser edits names, email and role of an account. The password cannot
// be changed here.
func (a *App) EditUser(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	id, err := getSimpleText(a.reader, "User ID", a.out)
	if err != nil {
		return err
	}
	acc, err := a.findAccount(ctx, id)
	if err != nil {
		return err
	}

	var u models.AccountUpdate
	if u.FirstName, err = a.prompted("First name", acc.FirstName); err != nil {
		return err
	}
	if u.LastName, err = a.prompted("Last name", acc.LastName); err != nil {
		return err
	}
	if u.Email, err = a.prompted("Email", acc.Email); err != nil {
		return err
	}
	role, err := a.prompted("Role (user/admin)", string(acc.Role))
	if err != nil {
		return err
	}
	u.Role = models.Role(role)

	if _, err := a.accounts.Update(ctx, acc.ID, u); err != nil {
		return err
	}
	printlnFn(successStyle.Render("User updated successfully!"))
	return nil
}

// DeleteUser removes an account after confirmation. A session the account
// holds elsewhere stays valid until it expires.
func (a *App) DeleteUser(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	id, err := getSimpleText(a.reader, "User ID", a.out)
	if err != nil {
		return err
	}
	acc, err := a.findAccount(ctx, id)
	if err != nil {
		return err
	}

	ok, err := getConfirmation(a.reader,
		fmt.Sprintf("Delete %s %s (%s)? This cannot be undone.", acc.FirstName, acc.LastName, acc.Email), a.out)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Cancelled.")
		return nil
	}

	if err := a.accounts.Remove(ctx, acc.ID); err != nil {
		return err
	}
	printlnFn(successStyle.Render("User deleted successfully!"))
	return nil
}

// CreateAdmin bootstraps the default administrator. It is available while
// signed out so that a fresh installation can be administered.
func (a *App) CreateAdmin(ctx context.Context) error {
	acc, err := a.accounts.CreateAdmin(ctx)
	if err != nil {
		return err
	}
	printlnFn(successStyle.Render(fmt.Sprintf("Admin user created! Email: %s, Password: %s",
		acc.Email, common.DefaultAdminPassword)))
	return nil
}

// Storage lists the keys this profile keeps in the storage backend.
func (a *App) Storage(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	entries, err := a.profile.Entries(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Key, fmt.Sprintf("%d B", e.Size)})
	}
	printlnFn(table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KEY", "SIZE").
		Rows(rows...).
		String())
	printlnFn(fmt.Sprintf("%d key(s)", len(entries)))
	return nil
}

// Reset removes every account and the session record after confirmation,
// then signs the caller out.
func (a *App) Reset(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	ok, err := getConfirmation(a.reader, "Remove all accounts and the stored session? This cannot be undone.", a.out)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Cancelled.")
		return nil
	}

	n, err := a.profile.Reset(ctx)
	if err != nil {
		return err
	}
	a.manager.Logout(ctx)
	printlnFn(successStyle.Render(fmt.Sprintf("Removed %d key(s). You have been logged out.", n)))
	return nil
}
