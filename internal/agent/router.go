package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rahul/dictum/internal/observability"
	"github.com/rahul/dictum/internal/store"
	"github.com/rahul/dictum/internal/vision"
	"github.com/rahul/dictum/internal/voice"
)

const instructionFormat = "Command: %s\nRecent context: %s\nAnalyze the screenshot and provide step-by-step instructions to execute the command. Be specific about coordinates and actions. If you need clarification, ask a question. For complex tasks, break them down into subtasks."

const finishEditing = "finish editing"

// MacroStore persists named macros for the current user.
type MacroStore interface {
	SaveAction(name, description string, steps []string) error
	GetAction(name string) (store.Macro, bool)
	ListActions() []string
	DeleteAction(name string) error
}

// ScreenCapturer saves a screenshot and returns its path.
type ScreenCapturer interface {
	Capture(ctx context.Context) (string, error)
}

// ConversationStore keeps the conversation across restarts.
type ConversationStore interface {
	AddMessage(username, role, content string) error
}

// Router dispatches utterances to the built-in commands or to the model
// and execution pipeline.
type Router struct {
	Session      *Session
	Engine       *Engine
	Builder      *Builder
	Model        vision.Model
	Screen       ScreenCapturer
	Macros       MacroStore
	Speaker      voice.Speaker
	Listener     Listener
	History      ConversationStore
	SystemPrompt string
	Logger       *observability.Logger

	// ReadFile loads a captured screenshot.
	ReadFile func(name string) ([]byte, error)

	// planning counts model round-trips whose tasks are not queued yet.
	planning atomic.Int32
}

// Handle processes one utterance to completion. Built-in commands speak
// their reply; everything else is sent to the model and the resulting
// tasks are executed.
func (r *Router) Handle(ctx context.Context, utterance string) error {
	cmd := Classify(utterance)
	r.logger().LogCommand(r.Session.Username, cmd.Text, cmd.Kind.String())

	if cmd.Kind == CommandGeneral {
		return r.run(ctx, cmd.Text)
	}

	reply, err := r.builtin(ctx, cmd)
	if err != nil {
		return err
	}
	r.say(ctx, reply)
	return nil
}

// Clarify asks question, waits for the answer and processes it. A general
// answer yields the model's instructions; a built-in one is handled on the
// spot and yields nothing.
func (r *Router) Clarify(ctx context.Context, question string) (string, error) {
	observability.SetStatus(observability.RoleListening, question)
	r.say(ctx, question)

	answer, err := r.Listener.Listen(ctx)
	if err != nil {
		return "", err
	}
	log.Printf("User: %s", answer)

	cmd := Classify(answer)
	r.logger().LogCommand(r.Session.Username, cmd.Text, cmd.Kind.String())
	if cmd.Kind != CommandGeneral {
		reply, err := r.builtin(ctx, cmd)
		if err != nil {
			return "", err
		}
		r.say(ctx, reply)
		return "", nil
	}
	return r.Respond(ctx, cmd.Text)
}

// Respond captures the screen and asks the model how to carry out command.
func (r *Router) Respond(ctx context.Context, command string) (string, error) {
	observability.SetStatus(observability.RolePlanning, command)
	defer observability.SetStatus(observability.RoleIdle, "")

	path, err := r.Screen.Capture(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}
	readFile := r.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	image, err := readFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read screenshot: %w", err)
	}

	r.Session.Memory.Remember(command)
	instruction := fmt.Sprintf(instructionFormat, command, formatContext(r.Session.Memory.Items()))

	response, err := r.Model.Complete(ctx, vision.Request{
		System:      r.SystemPrompt,
		History:     r.Session.Conversation(),
		Image:       image,
		Instruction: instruction,
	})
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	r.logger().LogLLM(r.Session.Username, instruction, response)

	r.addTurn(vision.RoleUser, command)
	r.addTurn(vision.RoleAssistant, response)
	return response, nil
}

func (r *Router) addTurn(role, text string) {
	r.Session.AddTurn(role, text)
	if r.History == nil {
		return
	}
	if err := r.History.AddMessage(r.Session.Username, role, text); err != nil {
		log.Printf("Warning: failed to store conversation turn: %v", err)
	}
}

// run sends text through the model, builds tasks from the reply and
// executes them.
func (r *Router) run(ctx context.Context, text string) error {
	r.planning.Add(1)
	tasks, err := r.plan(ctx, text)
	r.planning.Add(-1)
	if err != nil {
		return err
	}
	r.Engine.Enqueue(tasks...)
	return r.Engine.Run(ctx)
}

func (r *Router) plan(ctx context.Context, text string) ([]*Task, error) {
	response, err := r.Respond(ctx, text)
	if err != nil {
		return nil, err
	}

	builder := r.Builder
	if builder == nil {
		builder = &Builder{}
	}
	if builder.Clarifier == nil {
		b := *builder
		b.Clarifier = r
		builder = &b
	}

	return builder.Build(ctx, response)
}

func (r *Router) builtin(ctx context.Context, cmd Command) (string, error) {
	switch cmd.Kind {
	case CommandCancel:
		// A cancel spoken as a clarification answer drops the tasks being
		// planned as well.
		if running := r.Engine.Cancel(); running || r.planning.Load() > 0 {
			return "Cancelling the current task.", nil
		}
		return "There is no task currently running.", nil
	case CommandStartRecording:
		return r.startRecording(cmd), nil
	case CommandStopRecording:
		return r.stopRecording()
	case CommandPlay:
		return r.play(ctx, cmd)
	case CommandList:
		return r.list(), nil
	case CommandDelete:
		return r.delete(cmd)
	case CommandEdit:
		return r.edit(ctx, cmd)
	}
	return "", fmt.Errorf("unhandled command %s", cmd.Kind)
}

func (r *Router) startRecording(cmd Command) string {
	if cmd.Name == "" {
		return "Please provide a name and description for the action."
	}
	r.Session.StartRecording(cmd.Text)
	return fmt.Sprintf("Started recording action: %s. %s", cmd.Name, cmd.Description)
}

func (r *Router) stopRecording() (string, error) {
	lines, ok := r.Session.StopRecording()
	if !ok {
		return "No action is currently being recorded.", nil
	}
	name, description := recordingArgs(lines[0])
	if err := r.Macros.SaveAction(name, description, lines[1:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("Action '%s' has been saved.", name), nil
}

func (r *Router) play(ctx context.Context, cmd Command) (string, error) {
	if cmd.Name == "" {
		return "Please specify the name of the action to play.", nil
	}
	macro, ok := r.Macros.GetAction(cmd.Name)
	if !ok {
		return fmt.Sprintf("No action found with the name '%s'.", cmd.Name), nil
	}
	for _, step := range macro.Steps {
		if !r.Session.Listening() {
			return fmt.Sprintf("Cancelled playing action: %s", cmd.Name), nil
		}
		if err := r.run(ctx, step); err != nil {
			return "", err
		}
	}
	if !r.Session.Listening() {
		return fmt.Sprintf("Cancelled playing action: %s", cmd.Name), nil
	}
	return fmt.Sprintf("Completed playing action: %s", cmd.Name), nil
}

func (r *Router) list() string {
	names := r.Macros.ListActions()
	if len(names) == 0 {
		return "No saved actions found."
	}
	return "Saved actions:\n" + strings.Join(names, "\n")
}

func (r *Router) delete(cmd Command) (string, error) {
	if cmd.Name == "" {
		return "Please specify the name of the action to delete.", nil
	}
	err := r.Macros.DeleteAction(cmd.Name)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("No action found with the name '%s'.", cmd.Name), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Action '%s' has been deleted.", cmd.Name), nil
}

func (r *Router) edit(ctx context.Context, cmd Command) (string, error) {
	if cmd.Name == "" {
		return "Please specify the name of the action to edit.", nil
	}
	macro, ok := r.Macros.GetAction(cmd.Name)
	if !ok {
		return fmt.Sprintf("No action found with the name '%s'.", cmd.Name), nil
	}

	observability.SetStatus(observability.RoleListening, "editing "+cmd.Name)
	defer observability.SetStatus(observability.RoleIdle, "")
	r.say(ctx, fmt.Sprintf("Editing action '%s'. Please provide new steps. Say '%s' when done.", cmd.Name, finishEditing))

	var steps []string
	for {
		step, err := r.Listener.Listen(ctx)
		if err != nil {
			return "", err
		}
		if strings.ToLower(normalize(step)) == finishEditing {
			break
		}
		steps = append(steps, step)
	}

	if err := r.Macros.SaveAction(cmd.Name, macro.Description, steps); err != nil {
		return "", err
	}
	return fmt.Sprintf("Action '%s' has been updated.", cmd.Name), nil
}

func (r *Router) say(ctx context.Context, text string) {
	if err := r.Speaker.Speak(ctx, text); err != nil {
		log.Printf("Warning: text-to-speech failed: %v", err)
	}
}

func (r *Router) logger() *observability.Logger {
	if r.Logger == nil {
		return observability.NewNopLogger()
	}
	return r.Logger
}

// formatContext renders memory items as a bracketed, quoted list.
func formatContext(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "'" + item + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
