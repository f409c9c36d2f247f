package agent

import "strings"

// CommandKind identifies a built-in verbal command.
type CommandKind int

const (
	CommandGeneral CommandKind = iota
	CommandCancel
	CommandStartRecording
	CommandStopRecording
	CommandPlay
	CommandList
	CommandDelete
	CommandEdit
)

func (k CommandKind) String() string {
	switch k {
	case CommandCancel:
		return "cancel"
	case CommandStartRecording:
		return "start_recording"
	case CommandStopRecording:
		return "stop_recording"
	case CommandPlay:
		return "play"
	case CommandList:
		return "list"
	case CommandDelete:
		return "delete"
	case CommandEdit:
		return "edit"
	default:
		return "general"
	}
}

// Command is a classified utterance. Name and Description are only set for
// the macro commands that carry them.
type Command struct {
	Kind        CommandKind
	Text        string
	Name        string
	Description string
}

type commandRule struct {
	kind   CommandKind
	phrase string
	exact  bool
}

// Checked in order; the first match wins.
var commandRules = []commandRule{
	{CommandCancel, "cancel current task", true},
	{CommandStartRecording, "start recording action", false},
	{CommandStopRecording, "stop recording action", true},
	{CommandPlay, "play action", false},
	{CommandList, "list actions", true},
	{CommandDelete, "delete action", false},
	{CommandEdit, "edit action", false},
}

// normalize trims whitespace and trailing sentence punctuation, which
// transcribers tend to add.
func normalize(text string) string {
	return strings.TrimRight(strings.TrimSpace(text), ".!? ")
}

// Classify maps an utterance to a command. Matching ignores case; names and
// descriptions keep the case of the original text.
func Classify(utterance string) Command {
	text := normalize(utterance)
	lower := strings.ToLower(text)

	for _, r := range commandRules {
		var ok bool
		if r.exact {
			ok = lower == r.phrase
		} else {
			ok = strings.HasPrefix(lower, r.phrase)
		}
		if !ok {
			continue
		}

		cmd := Command{Kind: r.kind, Text: text}
		switch r.kind {
		case CommandStartRecording:
			cmd.Name, cmd.Description = recordingArgs(text)
		case CommandPlay, CommandDelete, CommandEdit:
			if fields := strings.Fields(text); len(fields) > 2 {
				cmd.Name = strings.Join(fields[2:], " ")
			}
		}
		return cmd
	}
	return Command{Kind: CommandGeneral, Text: strings.TrimSpace(utterance)}
}

// recordingArgs reads "start recording action <name> <description...>".
// Both are empty unless a name and a description are present.
func recordingArgs(text string) (name, description string) {
	fields := strings.Fields(text)
	if len(fields) < 5 {
		return "", ""
	}
	return fields[3], strings.Join(fields[4:], " ")
}
