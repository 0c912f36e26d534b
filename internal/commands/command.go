package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeFilter Type = "filter"
	TypeSearch Type = "search"
	TypeOpen   Type = "open"
	TypePin    Type = "pin"
	TypeUnpin  Type = "unpin"
	TypeLogout Type = "logout"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FilterScope is the palette-facing name of a listing filter.
type FilterScope string

const (
	ScopeAll  FilterScope = "all"
	ScopeTodo FilterScope = "todo"
	ScopeDone FilterScope = "done"
)

type FilterArgs struct {
	Scope FilterScope
}

type SearchArgs struct {
	Text string
}

type OpenArgs struct {
	TaskID int64
	Page   string
}

type PinArgs struct {
	Title string
}

type UnpinArgs struct {
	Title string
}

type Command struct {
	Type   Type
	Raw    string
	Filter *FilterArgs
	Search *SearchArgs
	Open   *OpenArgs
	Pin    *PinArgs
	Unpin  *UnpinArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeFilter:
		return parseFilter(input, args)
	case TypeSearch:
		return parseSearch(input, args)
	case TypeOpen:
		return parseOpen(input, args)
	case TypePin:
		return parsePin(input, args)
	case TypeUnpin:
		return parseUnpin(input, args)
	case TypeLogout:
		return Command{Type: TypeLogout, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "filter requires one of: all, todo, done"}
	}
	scope := FilterScope(strings.ToLower(args[0]))
	switch scope {
	case ScopeAll, ScopeTodo, ScopeDone:
		return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Scope: scope}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown filter scope: %s", args[0])}
	}
}

func parseSearch(raw string, args []string) (Command, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	// An empty search is valid: it clears the active one.
	return Command{Type: TypeSearch, Raw: raw, Search: &SearchArgs{Text: text}}, nil
}

func parseOpen(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "open requires a task id or a page url"}
	}
	target := args[0]
	if id, err := strconv.ParseInt(target, 10, 64); err == nil {
		return Command{Type: TypeOpen, Raw: raw, Open: &OpenArgs{TaskID: id}}, nil
	}
	return Command{Type: TypeOpen, Raw: raw, Open: &OpenArgs{Page: target}}, nil
}

func parsePin(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "pin requires a page title"}
	}
	return Command{Type: TypePin, Raw: raw, Pin: &PinArgs{Title: title}}, nil
}

func parseUnpin(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "unpin requires a page title"}
	}
	return Command{Type: TypeUnpin, Raw: raw, Unpin: &UnpinArgs{Title: title}}, nil
}
