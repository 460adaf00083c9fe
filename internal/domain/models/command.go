package models

import "strings"

// CommandType enumerates the owner commands understood over WhatsApp.
type CommandType string

const (
	CommandDates   CommandType = "dates"
	CommandSummary CommandType = "summary"
	CommandExport  CommandType = "export"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed owner instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text such as "/summary 2025-05-01".
// Arguments keep their case since dates are form names.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(message)
	if len(tokens) == 0 {
		return cmd
	}

	switch head := CommandType(strings.ToLower(strings.TrimPrefix(tokens[0], "/"))); head {
	case CommandDates, CommandSummary, CommandExport, CommandHelp:
		cmd.Type = head
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
