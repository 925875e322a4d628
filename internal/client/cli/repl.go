package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	AddHabit(ctx context.Context) error
	SetEvidence(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Fetch(ctx context.Context, args []string) error
	Approve(ctx context.Context, args []string) error
	Unlock(ctx context.Context, args []string) error
	Habits(ctx context.Context, args []string) error
	Watching(ctx context.Context, args []string) error
	Balance(ctx context.Context) error
	Contract(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, habits <user>, watching <beneficiary>, balance, contract, exit"
	helpLoggedIn  = "Available commands: add, evidence <index> <text>, upload <index> <file>, fetch <user> <index>, " +
		"approve <user> <index>, unlock <user> <index>, habits [user] [from] [limit], watching [beneficiary] [from] [limit], " +
		"balance, contract, exit"
)

// runREPL reads commands from scanner until EOF or exit/quit and dispatches
// them to a. Command errors are printed and never end the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sh %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "add":
			err = a.AddHabit(ctx)
		case "evidence":
			err = a.SetEvidence(ctx, args)
		case "upload":
			err = a.Upload(ctx, args)
		case "fetch":
			err = a.Fetch(ctx, args)
		case "approve":
			err = a.Approve(ctx, args)
		case "unlock":
			err = a.Unlock(ctx, args)
		case "habits":
			err = a.Habits(ctx, args)
		case "watching":
			err = a.Watching(ctx, args)
		case "balance":
			err = a.Balance(ctx)
		case "contract":
			err = a.Contract(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err)
		}
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", strings.TrimSpace(s))
	}
	return s
}

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to stickyhabits CLI (type 'help' for commands)")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
