package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	accountdomain "mailsweep/internal/account/domain"
	accountusecase "mailsweep/internal/account/usecase"
	emailusecase "mailsweep/internal/email/usecase"
	unsubusecase "mailsweep/internal/unsubscribe/usecase"
	"mailsweep/pkg/activitylog"

	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
)

const usage = `usage: mailsweep <command> [flags]

commands:
  worker                          run the sync scheduler until interrupted
  user add <email>
  account link|list|primary|delete
  category add|list|delete
  emails list
  unsubscribe                     unsubscribe from one message's sender
`

// ErrUsage is returned for unknown commands or missing arguments.
var ErrUsage = errors.New("invalid usage")

// App holds the service boundary the CLI drives.
type App struct {
	Accounts    accountusecase.AccountUsecase
	Categories  emailusecase.CategoryUsecase
	Unsubscribe unsubusecase.UnsubscribeUsecase
	Activity    emailusecase.ActivityUsecase
	// Worker blocks running background sync until ctx is cancelled
	Worker func(ctx context.Context) error
	Out    io.Writer
}

// Run dispatches args (without the program name) to a command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.Out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "worker":
		if a.Worker == nil {
			return fmt.Errorf("worker is not configured")
		}
		return a.Worker(ctx)
	case "user":
		return a.user(rest)
	case "account":
		return a.account(rest)
	case "category":
		return a.category(rest)
	case "emails":
		return a.emails(rest)
	case "unsubscribe":
		return a.unsubscribe(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.Out, usage)
		return nil
	default:
		fmt.Fprint(a.Out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (a *App) print(v interface{}) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	return fs
}

func subcommand(group string, args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: %s needs a subcommand", ErrUsage, group)
	}
	return args[0], args[1:], nil
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: --%s is required", ErrUsage, name)
	}
	return nil
}

// userID resolves the --user flag, which takes the user's email address.
func (a *App) userID(email string) (string, error) {
	if err := required("user", email); err != nil {
		return "", err
	}
	u, err := a.Accounts.GetUserByEmail(email)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (a *App) user(args []string) error {
	sub, rest, err := subcommand("user", args)
	if err != nil {
		return err
	}
	if sub != "add" || len(rest) != 1 {
		return fmt.Errorf("%w: user add <email>", ErrUsage)
	}
	u, err := a.Accounts.CreateUser(rest[0])
	if err != nil {
		return err
	}
	return a.print(u)
}

func (a *App) account(args []string) error {
	sub, rest, err := subcommand("account", args)
	if err != nil {
		return err
	}

	fs := newFlags("account " + sub)
	user := fs.String("user", "", "owner email")
	switch sub {
	case "link":
		email := fs.String("email", "", "mailbox address")
		provider := fs.String("provider", string(accountdomain.ProviderGmail), "gmail or imap")
		googleID := fs.String("google-id", "", "Google account id (defaults to the address)")
		host := fs.String("imap-host", "", "IMAP server host")
		port := fs.Int("imap-port", 0, "IMAP server port")
		access := fs.String("access-token", "", "OAuth access token")
		refresh := fs.String("refresh-token", "", "OAuth refresh token")
		expiry := fs.Duration("expires-in", 0, "access token lifetime")
		primary := fs.Bool("primary", false, "make this the primary account")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		uid, err := a.userID(*user)
		if err != nil {
			return err
		}
		input := accountusecase.LinkAccountInput{
			UserID:       uid,
			Email:        *email,
			GoogleID:     *googleID,
			Provider:     accountdomain.Provider(*provider),
			IMAPHost:     *host,
			IMAPPort:     *port,
			AccessToken:  *access,
			RefreshToken: *refresh,
			IsPrimary:    *primary,
		}
		if *expiry > 0 {
			at := time.Now().Add(*expiry)
			input.TokenExpiry = &at
		}
		acc, err := a.Accounts.LinkAccount(input)
		if err != nil {
			return err
		}
		return a.print(acc)

	case "list":
		if err := fs.Parse(rest); err != nil {
			return err
		}
		uid, err := a.userID(*user)
		if err != nil {
			return err
		}
		accounts, err := a.Accounts.ListAccounts(uid)
		if err != nil {
			return err
		}
		return a.print(accounts)

	case "primary", "delete":
		id := fs.String("account", "", "account id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		uid, err := a.userID(*user)
		if err != nil {
			return err
		}
		if err := required("account", *id); err != nil {
			return err
		}
		if sub == "primary" {
			return a.Accounts.SetPrimary(uid, *id)
		}
		return a.Accounts.DeleteAccount(uid, *id)

	default:
		return fmt.Errorf("%w: unknown account command %q", ErrUsage, sub)
	}
}

func (a *App) category(args []string) error {
	sub, rest, err := subcommand("category", args)
	if err != nil {
		return err
	}

	fs := newFlags("category " + sub)
	user := fs.String("user", "", "owner email")
	switch sub {
	case "add":
		name := fs.String("name", "", "category name")
		desc := fs.String("description", "", "what belongs in the category")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		uid, err := a.userID(*user)
		if err != nil {
			return err
		}
		var description *string
		if fs.Changed("description") {
			description = desc
		}
		c, err := a.Categories.CreateCategory(uid, *name, description)
		if err != nil {
			return err
		}
		return a.print(c)

	case "list":
		if err := fs.Parse(rest); err != nil {
			return err
		}
		uid, err := a.userID(*user)
		if err != nil {
			return err
		}
		categories, err := a.Categories.ListCategories(uid)
		if err != nil {
			return err
		}
		return a.print(categories)

	case "delete":
		id := fs.String("id", "", "category id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		uid, err := a.userID(*user)
		if err != nil {
			return err
		}
		if err := required("id", *id); err != nil {
			return err
		}
		return a.Categories.DeleteCategory(uid, *id)

	default:
		return fmt.Errorf("%w: unknown category command %q", ErrUsage, sub)
	}
}

func (a *App) emails(args []string) error {
	sub, rest, err := subcommand("emails", args)
	if err != nil {
		return err
	}
	if sub != "list" {
		return fmt.Errorf("%w: unknown emails command %q", ErrUsage, sub)
	}

	fs := newFlags("emails list")
	user := fs.String("user", "", "owner email")
	category := fs.String("category", "", "only messages in this category")
	limit := fs.Int("limit", 0, "most recent messages to show")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	uid, err := a.userID(*user)
	if err != nil {
		return err
	}

	if *category != "" {
		messages, err := a.Categories.ListEmailsForCategory(uid, *category)
		if err != nil {
			return err
		}
		return a.print(messages)
	}
	messages, err := a.Categories.ListRecentEmails(uid, *limit)
	if err != nil {
		return err
	}
	return a.print(messages)
}

func (a *App) unsubscribe(ctx context.Context, args []string) error {
	fs := newFlags("unsubscribe")
	user := fs.String("user", "", "owner email")
	message := fs.String("message", "", "message id")
	url := fs.String("url", "", "unsubscribe page (defaults to the stored link)")
	trace := fs.Bool("trace", false, "include the agent's activity entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	uid, err := a.userID(*user)
	if err != nil {
		return err
	}
	if err := required("message", *message); err != nil {
		return err
	}

	out, err := a.Unsubscribe.TriggerUnsubscribe(ctx, uid, *message, *url)
	if err != nil {
		return err
	}
	if !*trace || a.Activity == nil {
		return a.print(out)
	}

	// The activity log is in-process, so it only holds this run's entries.
	entries := a.Activity.RecentActivity(0, activitylog.Filter{
		TaskID:   *message,
		MinLevel: zapcore.DebugLevel,
	})
	return a.print(struct {
		*unsubusecase.Outcome
		Activity []activitylog.Entry `json:"activity"`
	}{out, entries})
}
