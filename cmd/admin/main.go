// Command admin manages CMS accounts and schema from the shell.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sunoy2004/yanc-cms-sub001/internal/config"
	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"github.com/sunoy2004/yanc-cms-sub001/internal/logger"
	"github.com/sunoy2004/yanc-cms-sub001/internal/service"
	"golang.org/x/term"
	"gorm.io/gorm"
)

const usage = `usage: admin <command> [flags]

commands:
  migrate                          create or update the database schema
  adduser -username NAME [-name]   create an account (password is prompted)
  resetpassword -username NAME     replace an account password
  listusers                        print every account
  seed                             insert demo content into an empty database
`

// readPasswordFunc is swapped out in tests.
var readPasswordFunc = readPassword

type app struct {
	db  *gorm.DB
	out io.Writer
	now func() time.Time
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	logger.Setup(cfg.Env)

	gdb, err := db.Open(db.Options{Driver: cfg.Database.Driver, Path: cfg.Database.Path, URL: cfg.Database.URL})
	if err != nil {
		fail(err)
	}

	a := &app{db: gdb, out: os.Stdout, now: time.Now}
	if err := a.run(os.Args[1:]); err != nil {
		fail(err)
	}
}

func fail(err error) {
	slog.Error("admin command failed", "error", err)
	os.Exit(1)
}

func (a *app) run(args []string) error {
	if len(args) == 0 {
		return errors.New("missing command")
	}

	switch args[0] {
	case "migrate":
		if err := db.Migrate(a.db); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "schema is up to date")
		return nil
	case "adduser":
		return a.addUser(args[1:])
	case "resetpassword":
		return a.resetPassword(args[1:])
	case "listusers":
		return a.listUsers()
	case "seed":
		return a.seed()
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *app) authService() *service.AuthService {
	// accounts only; tokens are never issued from here
	return service.NewAuthService(a.db, service.AuthOptions{Secret: "admin-cli"})
}

func (a *app) addUser(args []string) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(a.out)
	username := fs.String("username", "", "login name")
	displayName := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*username) == "" {
		return errors.New("-username is required")
	}

	password, err := readPasswordFunc("Password: ")
	if err != nil {
		return err
	}

	user, err := a.authService().CreateUser(*username, password, *displayName)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created user %s (id %d)\n", user.Username, user.ID)
	return nil
}

func (a *app) resetPassword(args []string) error {
	fs := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	fs.SetOutput(a.out)
	username := fs.String("username", "", "login name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*username) == "" {
		return errors.New("-username is required")
	}

	password, err := readPasswordFunc("New password: ")
	if err != nil {
		return err
	}
	if err := a.authService().ResetPassword(*username, password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "password updated for %s\n", strings.TrimSpace(*username))
	return nil
}

func (a *app) listUsers() error {
	users, err := a.authService().ListUsers()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tLAST LOGIN")
	for _, user := range users {
		lastLogin := "never"
		if user.LastLoginAt != nil {
			lastLogin = user.LastLoginAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", user.ID, user.Username, user.DisplayName, lastLogin)
	}
	return w.Flush()
}

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// 非交互模式：从标准输入读取一行
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Repeat: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
