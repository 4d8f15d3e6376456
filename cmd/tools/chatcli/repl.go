package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	modelchat "github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/chat"
)

type repl struct {
	client   *chat.Client
	promoter *chat.Promoter
	dispatch *chat.Dispatcher
	out      io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader, user string) error {
	if user != "" {
		r.login(user)
	}

	scanner := bufio.NewScanner(in)
	r.prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if quit := r.handle(ctx, strings.TrimSpace(scanner.Text())); quit {
			return nil
		}
		r.prompt()
	}
	return scanner.Err()
}

// handle runs one input line and reports whether the user asked to quit.
func (r *repl) handle(ctx context.Context, line string) bool {
	switch {
	case line == "":
		return false
	case line == "/quit" || line == "/exit":
		return true
	case line == "/clear":
		if _, err := r.client.ClearSession(); err != nil {
			r.printErr(err)
			return false
		}
		fmt.Fprintln(r.out, "-- nueva conversación --")
		r.showSuggestions()
	case line == "/logout":
		_, _ = r.client.OnAuthChange(nil)
		fmt.Fprintln(r.out, "-- sesión cerrada --")
	case strings.HasPrefix(line, "/login"):
		r.login(strings.TrimSpace(strings.TrimPrefix(line, "/login")))
	case strings.HasPrefix(line, "/"):
		r.selectSuggestion(ctx, strings.TrimPrefix(line, "/"))
	default:
		r.reply(r.dispatch.SendMessage(ctx, r.client.Session(), line))
	}
	return false
}

func (r *repl) login(user string) {
	if _, err := r.client.OnAuthChange(&chat.User{ID: user}); err != nil {
		r.printErr(err)
		return
	}
	fmt.Fprintf(r.out, "-- conectado como %s --\n", user)
	r.showSuggestions()
}

func (r *repl) selectSuggestion(ctx context.Context, arg string) {
	n, err := strconv.Atoi(arg)
	visible := r.promoter.Visible(r.client.Session())
	if err != nil || n < 1 || n > len(visible) {
		fmt.Fprintf(r.out, "comando desconocido: /%s\n", arg)
		return
	}
	fmt.Fprintf(r.out, "tú> %s\n", visible[n-1].Text)
	r.reply(r.promoter.Select(ctx, r.client.Session(), visible[n-1].ID))
}

func (r *repl) reply(msg *modelchat.Message, err error) {
	switch {
	case errors.Is(err, chat.ErrNoSession):
		fmt.Fprintln(r.out, "inicia sesión con /login <id> para conversar")
	case err != nil:
		r.printErr(err)
	default:
		fmt.Fprintf(r.out, "bot> %s\n", msg.Text)
	}
}

func (r *repl) showSuggestions() {
	for i, prompt := range r.promoter.Visible(r.client.Session()) {
		fmt.Fprintf(r.out, "  /%d %s\n", i+1, prompt.Text)
	}
}

// prompt shows who is signed in, if anyone.
func (r *repl) prompt() {
	if user := r.client.User(); user != nil {
		fmt.Fprintf(r.out, "%s> ", user.ID)
		return
	}
	fmt.Fprint(r.out, "> ")
}

func (r *repl) printErr(err error) {
	fmt.Fprintf(r.out, "error: %v\n", err)
}
