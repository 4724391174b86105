package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/races"
	"github.com/cory-johannsen/tale/internal/lang"
	"github.com/cory-johannsen/tale/internal/render"
	"github.com/cory-johannsen/tale/internal/savegame"
	"github.com/cory-johannsen/tale/internal/storage/postgres"
)

// maxLoginAttempts is the number of failed logins before the connection
// is dropped.
const maxLoginAttempts = 3

// AccountStore is the account persistence the MUD login needs.
type AccountStore interface {
	Create(ctx context.Context, na postgres.NewAccount) (postgres.Account, error)
	Authenticate(ctx context.Context, name, password string) (postgres.Account, error)
}

// joinRequest is what a session asks the driver to create a player from.
type joinRequest struct {
	name       string
	gender     lang.Gender
	race       string
	privileges []string
	// snapshot continues a saved game when not nil.
	snapshot *savegame.Snapshot
}

// errQuitLogin ends a session that quit before logging in.
var errQuitLogin = errors.New("quit during login")

// prompter wraps a connection for the conversation before the player
// exists.
type prompter struct {
	conn Conn
}

func (p prompter) say(text string) error {
	return p.conn.WriteText(render.ApplyStyles(text, p.conn.Styles()) + "\n")
}

// ask writes prompt and reads an answer until check accepts it. A user
// facing error from check is shown and the question is asked again.
func (p prompter) ask(prompt string, check func(string) error) (string, error) {
	for {
		if err := p.conn.WritePrompt(render.ApplyStyles(prompt, p.conn.Styles())); err != nil {
			return "", err
		}
		line, err := p.conn.ReadLine()
		if errors.Is(err, ErrInterrupted) {
			continue
		}
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if check == nil {
			return line, nil
		}
		if err := check(line); err != nil {
			msg, ok := errs.UserMessage(err)
			if !ok {
				return "", err
			}
			if err := p.say("<red>" + msg + "</>"); err != nil {
				return "", err
			}
			continue
		}
		return line, nil
	}
}

func (p prompter) askYesNo(prompt string) (bool, error) {
	var yes bool
	_, err := p.ask(prompt, func(s string) error {
		switch strings.ToLower(s) {
		case "y", "yes":
			yes = true
		case "n", "no":
			yes = false
		default:
			return errs.Parse("Please answer yes or no.")
		}
		return nil
	})
	return yes, err
}

func checkGender(s string) error {
	if _, err := lang.ParseGender(strings.ToLower(s)); err != nil {
		return errs.Parse("That's not a valid gender, use m, f or n.")
	}
	return nil
}

func checkRace(s string) error {
	for _, r := range races.Playable() {
		if r == strings.ToLower(s) {
			return nil
		}
	}
	return errs.Parse("That's not a playable race. Choose from %s.", lang.Join(races.Playable(), "or"))
}

// loginIF asks who the player is, or takes the story's player, and offers
// to continue a saved game.
func (d *Driver) loginIF(ctx context.Context, conn Conn) (*joinRequest, error) {
	p := prompter{conn: conn}
	cfg := d.story.Config()
	req := &joinRequest{name: cfg.PlayerName, race: cfg.PlayerRace}
	if req.race == "" {
		req.race = "human"
	}
	if d.opts.Wizard {
		req.privileges = []string{postgres.PrivilegeWizard}
	}

	if req.name == "" {
		name, err := p.ask("What is your name? ", func(s string) error {
			return postgres.ValidateName(strings.ToLower(s))
		})
		if err != nil {
			return nil, err
		}
		req.name = strings.ToLower(name)
	}
	if cfg.PlayerGender != "" {
		g, err := lang.ParseGender(cfg.PlayerGender)
		if err != nil {
			return nil, fmt.Errorf("story player gender: %w", err)
		}
		req.gender = g
	} else {
		g, err := p.ask("What is your gender (m/f/n)? ", checkGender)
		if err != nil {
			return nil, err
		}
		req.gender, _ = lang.ParseGender(strings.ToLower(g))
	}

	if !cfg.SavegamesEnabled || d.opts.Savegames == nil {
		return req, nil
	}
	snap, err := d.opts.Savegames.Load(ctx, req.name)
	if errors.Is(err, savegame.ErrSavegameNotFound) {
		return req, nil
	}
	if err != nil {
		d.logger.Error("loading savegame", zap.String("player", req.name), zap.Error(err))
		return req, p.say("<red>Your saved game could not be read, starting a new game.</>")
	}
	cont, err := p.askYesNo(fmt.Sprintf("There is a saved game from %s. Continue it? ", snap.SavedAt.Format("2006-01-02 15:04")))
	if err != nil {
		return nil, err
	}
	if cont {
		req.snapshot = snap
	}
	return req, nil
}

const loginHelp = `<bright>Available commands:</>
  <green>login <name></>     log in to your account
  <green>register <name></>  create a new account
  <green>quit</>             disconnect`

// loginMUD runs the account menu until the user logs in or quits.
func (d *Driver) loginMUD(ctx context.Context, conn Conn) (*joinRequest, error) {
	if d.opts.Accounts == nil {
		return nil, errors.New("driver: mud mode needs an account store")
	}
	p := prompter{conn: conn}
	if err := p.say(fmt.Sprintf("\n<bright>Welcome to %s.</>\n\n%s", d.story.Config().Name, loginHelp)); err != nil {
		return nil, err
	}
	failures := 0
	for failures < maxLoginAttempts {
		line, err := p.ask("> ", nil)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := strings.ToLower(fields[0]), fields[1:]
		switch cmd {
		case "quit", "exit":
			_ = p.say("<cyan>Goodbye!</>")
			return nil, errQuitLogin
		case "login":
			if len(args) != 1 {
				_ = p.say("<red>Usage: login <name></>")
				continue
			}
			acct, err := d.authenticate(ctx, p, strings.ToLower(args[0]))
			if err != nil {
				return nil, err
			}
			if acct == nil {
				failures++
				continue
			}
			return accountJoin(acct), nil
		case "register":
			if len(args) != 1 {
				_ = p.say("<red>Usage: register <name></>")
				continue
			}
			acct, err := d.register(ctx, p, strings.ToLower(args[0]))
			if err != nil {
				return nil, err
			}
			if acct != nil {
				return accountJoin(acct), nil
			}
		case "help":
			_ = p.say(loginHelp)
		default:
			_ = p.say(fmt.Sprintf("<red>Unknown command: %s. Type 'help' for available commands.</>", cmd))
		}
	}
	_ = p.say("<red>Too many failed attempts.</>")
	return nil, errQuitLogin
}

func accountJoin(acct *postgres.Account) *joinRequest {
	g, err := lang.ParseGender(acct.Gender)
	if err != nil {
		g = lang.Neuter
	}
	return &joinRequest{
		name:       acct.Name,
		gender:     g,
		race:       acct.Race,
		privileges: acct.Privileges,
	}
}

// authenticate returns nil, nil when the attempt failed in a way already
// shown to the user.
func (d *Driver) authenticate(ctx context.Context, p prompter, name string) (*postgres.Account, error) {
	password, err := p.conn.ReadPassword("Password: ")
	if err != nil {
		return nil, err
	}
	acct, err := d.opts.Accounts.Authenticate(ctx, name, password)
	switch {
	case err == nil:
		d.logger.Info("player logged in", zap.String("player", name), zap.String("remote_addr", p.conn.RemoteAddr()))
		return &acct, nil
	case errors.Is(err, postgres.ErrAccountNotFound), errors.Is(err, postgres.ErrInvalidCredentials):
		d.logger.Info("login failed", zap.String("player", name), zap.String("remote_addr", p.conn.RemoteAddr()))
		return nil, p.say("<red>Invalid name or password.</>")
	default:
		d.logger.Error("authentication error", zap.Error(err))
		return nil, p.say("<red>An internal error occurred. Please try again.</>")
	}
}

func (d *Driver) register(ctx context.Context, p prompter, name string) (*postgres.Account, error) {
	if err := postgres.ValidateName(name); err != nil {
		msg, _ := errs.UserMessage(err)
		return nil, p.say("<red>" + msg + "</>")
	}
	var password string
	for {
		pw, err := p.conn.ReadPassword("Password: ")
		if err != nil {
			return nil, err
		}
		if err := postgres.ValidatePassword(pw); err != nil {
			msg, _ := errs.UserMessage(err)
			if err := p.say("<red>" + msg + "</>"); err != nil {
				return nil, err
			}
			continue
		}
		again, err := p.conn.ReadPassword("Repeat password: ")
		if err != nil {
			return nil, err
		}
		if again != pw {
			if err := p.say("<red>The passwords don't match.</>"); err != nil {
				return nil, err
			}
			continue
		}
		password = pw
		break
	}
	email, err := p.ask("Email address: ", func(s string) error {
		if !strings.Contains(s, "@") {
			return errs.Parse("That doesn't look like an email address.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	gender, err := p.ask("What is your gender (m/f/n)? ", checkGender)
	if err != nil {
		return nil, err
	}
	race, err := p.ask(fmt.Sprintf("What is your race (%s)? ", strings.Join(races.Playable(), "/")), checkRace)
	if err != nil {
		return nil, err
	}
	acct, err := d.opts.Accounts.Create(ctx, postgres.NewAccount{
		Name:     name,
		Email:    email,
		Password: password,
		Gender:   strings.ToLower(gender),
		Race:     strings.ToLower(race),
	})
	if errors.Is(err, postgres.ErrAccountExists) {
		return nil, p.say("<red>That name is already taken.</>")
	}
	if err != nil {
		if msg, ok := errs.UserMessage(err); ok {
			return nil, p.say("<red>" + msg + "</>")
		}
		d.logger.Error("registration error", zap.Error(err))
		return nil, p.say("<red>An internal error occurred. Please try again.</>")
	}
	d.logger.Info("account created", zap.String("player", acct.Name), zap.Int64("account_id", acct.ID))
	return &acct, nil
}
