package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stickyhabits/internal/client/client"
	"github.com/dmitrijs2005/stickyhabits/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errNotLoggedIn = errors.New("login first")

// Register prompts for an account name and password and creates the account.
// The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter account name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and authenticates. On success the account
// name shows in the prompt and authenticated commands become available.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter account name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, userName, password); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}

	a.setUser(userName)
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}
