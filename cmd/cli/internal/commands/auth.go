package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tmaekawa/nippo/cmd/cli/internal/session"
)

type LoginCmd struct {
	Server   string `help:"Server URL." default:""`
	Username string `arg:"" help:"Username to log in as."`
	Password string `help:"Password. Prompted for when omitted." env:"NIPPO_PASSWORD" default:""`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	password := l.Password
	if password == "" {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	server, err := resolveServer(l.Server)
	if err != nil {
		return err
	}

	client, err := apiClient(l.Server, "")
	if err != nil {
		return err
	}

	manager, err := openSession()
	if err != nil {
		return err
	}
	if !manager.Authenticate(ctx, client, l.Username, password, server) {
		return fmt.Errorf("login failed: %w", manager.Err())
	}

	// Remember an explicitly chosen server for later commands.
	if l.Server != "" {
		if err := saveConfig(&Config{Server: l.Server}); err != nil {
			log.Warn().Err(err).Msg("failed to save config")
		}
	}

	profile := manager.Profile()
	fmt.Printf("Logged in as %s (session expires %s)\n",
		profile.Username, profile.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	manager, err := openSession()
	if err != nil {
		return err
	}

	if err := manager.Logout(); err != nil {
		log.Warn().Err(err).Msg("failed to remove the saved token")
	}

	fmt.Println("Logged out")
	return nil
}

type WhoamiCmd struct{}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	manager, err := openSession()
	if err != nil {
		return err
	}

	if manager.State() != session.StateAuthenticated {
		if sessionErr := manager.Err(); sessionErr != nil {
			fmt.Printf("Not logged in (%s)\n", sessionErr)
		} else {
			fmt.Println("Not logged in")
		}
		return nil
	}

	profile := manager.Profile()
	fmt.Printf("Logged in as %s\n", profile.Username)
	fmt.Printf("User ID:      %s\n", profile.UserID)
	fmt.Printf("Expires:      %s\n", profile.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

type RegisterCmd struct {
	Server   string `help:"Server URL." default:""`
	Username string `arg:"" help:"Username for the new account."`
	Password string `help:"Password. Prompted for when omitted." env:"NIPPO_PASSWORD" default:""`
}

func (r *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	password := r.Password
	if password == "" {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	client, err := apiClient(r.Server, "")
	if err != nil {
		return err
	}

	user, err := client.Register(ctx, r.Username, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Printf("Registered %s, you can log in now\n", user.Username)
	return nil
}
