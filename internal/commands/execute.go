package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Filter func(FilterArgs) (Result, error)
	Search func(SearchArgs) (Result, error)
	Open   func(OpenArgs) (Result, error)
	Pin    func(PinArgs) (Result, error)
	Unpin  func(UnpinArgs) (Result, error)
	Logout func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeFilter:
		if handlers.Filter == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "filter handler not configured"}
		}
		return handlers.Filter(*cmd.Filter)
	case TypeSearch:
		if handlers.Search == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "search handler not configured"}
		}
		return handlers.Search(*cmd.Search)
	case TypeOpen:
		if handlers.Open == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "open handler not configured"}
		}
		return handlers.Open(*cmd.Open)
	case TypePin:
		if handlers.Pin == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "pin handler not configured"}
		}
		return handlers.Pin(*cmd.Pin)
	case TypeUnpin:
		if handlers.Unpin == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "unpin handler not configured"}
		}
		return handlers.Unpin(*cmd.Unpin)
	case TypeLogout:
		if handlers.Logout == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "logout handler not configured"}
		}
		return handlers.Logout()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
