package commands

import (
	"errors"
	"testing"
)

func TestParseFilter(t *testing.T) {
	cmd, err := Parse("/filter todo")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Type != TypeFilter || cmd.Filter.Scope != ScopeTodo {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	if _, err := Parse("filter everything"); err == nil {
		t.Fatal("unknown scope must fail")
	}
	var cmdErr *CommandError
	_, err = Parse("filter")
	if !errors.As(err, &cmdErr) || cmdErr.Code != ErrCodeInvalidArgument {
		t.Fatalf("missing scope: got %v", err)
	}
}

func TestParseSearch(t *testing.T) {
	cmd, err := Parse("search algebra homework")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Type != TypeSearch || cmd.Search.Text != "algebra homework" {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	cmd, err = Parse("search")
	if err != nil {
		t.Fatalf("bare search must clear, got %v", err)
	}
	if cmd.Search.Text != "" {
		t.Fatalf("bare search text: %q", cmd.Search.Text)
	}
}

func TestParseOpen(t *testing.T) {
	cmd, err := Parse("open 1234")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Open.TaskID != 1234 || cmd.Open.Page != "" {
		t.Fatalf("numeric open: %+v", cmd.Open)
	}

	cmd, err = Parse("open /subjects/maths")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Open.Page != "/subjects/maths" || cmd.Open.TaskID != 0 {
		t.Fatalf("page open: %+v", cmd.Open)
	}

	if _, err := Parse("open"); err == nil {
		t.Fatal("open without target must fail")
	}
}

func TestParsePinUnpin(t *testing.T) {
	cmd, err := Parse("pin Physics Notes")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Type != TypePin || cmd.Pin.Title != "Physics Notes" {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	cmd, err = Parse("unpin Physics Notes")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Type != TypeUnpin || cmd.Unpin.Title != "Physics Notes" {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	if _, err := Parse("pin"); err == nil {
		t.Fatal("pin without title must fail")
	}
}

func TestParseEdgeCases(t *testing.T) {
	var cmdErr *CommandError
	_, err := Parse("   ")
	if !errors.As(err, &cmdErr) || cmdErr.Code != ErrCodeEmptyInput {
		t.Fatalf("blank input: got %v", err)
	}

	_, err = Parse("/")
	if !errors.As(err, &cmdErr) || cmdErr.Code != ErrCodeEmptyInput {
		t.Fatalf("bare slash: got %v", err)
	}

	_, err = Parse("teleport home")
	if !errors.As(err, &cmdErr) || cmdErr.Code != ErrCodeUnknownCommand {
		t.Fatalf("unknown verb: got %v", err)
	}

	cmd, err := Parse("LOGOUT")
	if err != nil {
		t.Fatalf("verb must be case insensitive: %v", err)
	}
	if cmd.Type != TypeLogout {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestExecute(t *testing.T) {
	cmd, err := Parse("filter done")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var gotScope FilterScope
	res, err := Execute(cmd, Handlers{
		Filter: func(args FilterArgs) (Result, error) {
			gotScope = args.Scope
			return Result{Message: "filter set"}, nil
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotScope != ScopeDone || res.Message != "filter set" {
		t.Fatalf("unexpected result: scope=%q res=%+v", gotScope, res)
	}

	var cmdErr *CommandError
	_, err = Execute(cmd, Handlers{})
	if !errors.As(err, &cmdErr) || cmdErr.Code != ErrCodeHandlerMissing {
		t.Fatalf("missing handler: got %v", err)
	}
}
