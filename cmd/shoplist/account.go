package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

func (a *app) registerCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("register")
	name := fs.String("name", "", "First name")
	surname := fs.String("surname", "", "Surname")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	cell := fs.String("cell", "", "Cell number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dto := model.CreateUserDto{
		Name:       *name,
		Surname:    *surname,
		Email:      *email,
		Password:   *password,
		CellNumber: *cell,
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	existing, err := a.api.GetUserByEmail(ctx, dto.User().Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("an account with this email already exists")
	}

	user, err := a.api.CreateUser(ctx, dto)
	if err != nil {
		return err
	}

	if _, err := a.sessions.Save(ctx, *user); err != nil {
		return err
	}
	a.printf("Registered %s %s <%s>\n", user.Name, user.Surname, user.Email)
	return nil
}

func (a *app) loginCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("email and password are required")
	}

	user, err := a.api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}

	if _, err := a.sessions.Save(ctx, *user); err != nil {
		return err
	}
	a.printf("Logged in as %s %s\n", user.Name, user.Surname)
	return nil
}

func (a *app) logoutCommand(ctx context.Context, args []string) error {
	if err := a.flagSet("logout").Parse(args); err != nil {
		return err
	}
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}

func (a *app) whoamiCommand(ctx context.Context, args []string) error {
	if err := a.flagSet("whoami").Parse(args); err != nil {
		return err
	}
	info, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	a.printf("%s %s <%s>\n", info.Name, info.Surname, info.Email)
	a.printf("id:        %s\n", info.ID)
	a.printf("logged in: %s\n", info.LoginTime.Local().Format(time.RFC1123))
	return nil
}

func (a *app) profileCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("profile")
	name := fs.String("name", "", "New first name")
	surname := fs.String("surname", "", "New surname")
	email := fs.String("email", "", "New email address")
	cell := fs.String("cell", "", "New cell number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	info, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	if fs.NFlag() == 0 {
		user, err := a.api.GetUser(ctx, info.ID)
		if err != nil {
			return err
		}
		a.printProfile(*user)
		return nil
	}

	dto := model.UpdateUserDto{
		Name:       info.Name,
		Surname:    info.Surname,
		Email:      info.Email,
		CellNumber: info.CellNumber,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			dto.Name = *name
		case "surname":
			dto.Surname = *surname
		case "email":
			dto.Email = *email
		case "cell":
			dto.CellNumber = *cell
		}
	})

	user, err := a.api.UpdateUser(ctx, info.ID, dto)
	if err != nil {
		return err
	}
	if _, err := a.sessions.Update(ctx, *user); err != nil {
		return err
	}

	a.printf("Profile updated\n")
	a.printProfile(*user)
	return nil
}

func (a *app) printProfile(u model.User) {
	a.printf("name:    %s %s\n", u.Name, u.Surname)
	a.printf("email:   %s\n", u.Email)
	a.printf("cell:    %s\n", u.CellNumber)
	a.printf("joined:  %s\n", u.CreatedAt.Local().Format("2 January 2006"))
}
