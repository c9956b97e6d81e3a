package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests provide a stub.
type execIface interface {
	helpText() string
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	NewPassword(ctx context.Context) error
	OpenURL(ctx context.Context, rawURL string) error
	Resend(ctx context.Context) error
	Check(ctx context.Context) error
	UseDifferentEmail(ctx context.Context) error
	Onboard(ctx context.Context) error
	Studies(ctx context.Context) error
	Enroll(ctx context.Context, ref string) error
	Profile(ctx context.Context) error
	Logout(ctx context.Context) error
	afterCommand()
}

// runREPL reads commands from reader and dispatches them to a until EOF or
// "exit". Commands that are not valid in the current phase are rejected by
// the handlers themselves.
//
//	register              create an account (resumes a saved draft)
//	login                 sign in
//	reset                 email a password reset link
//	url <link>            open an auth link from an email
//	resend | check        resend or re-check email verification
//	different             abandon the pending verification
//	onboard               complete the participant profile
//	studies               list studies
//	enroll <n|id>         enroll in a study from the last list
//	profile               show the participant profile
//	newpassword           set a new password after a recovery link
//	logout | exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("tt %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help", "?":
			printlnFn(a.helpText())
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "reset":
			cmdErr = a.ResetPassword(ctx)
		case "newpassword":
			cmdErr = a.NewPassword(ctx)
		case "url":
			if len(args) == 0 {
				printlnFn("Usage: url <link>")
				continue
			}
			cmdErr = a.OpenURL(ctx, args[0])
		case "resend":
			cmdErr = a.Resend(ctx)
		case "check":
			cmdErr = a.Check(ctx)
		case "different":
			cmdErr = a.UseDifferentEmail(ctx)
		case "onboard":
			cmdErr = a.Onboard(ctx)
		case "studies", "s":
			cmdErr = a.Studies(ctx)
		case "enroll":
			if len(args) == 0 {
				printlnFn("Usage: enroll <number|study id>")
				continue
			}
			cmdErr = a.Enroll(ctx, args[0])
		case "profile":
			cmdErr = a.Profile(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if cmdErr != nil {
			printlnFn(cmdErr.Error())
		}
		a.afterCommand()
	}
}
