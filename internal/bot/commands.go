package bot

import (
	"context"
	"sort"

	"github.com/go-telegram/bot/models"
)

// Command represents a bot command that can be executed.
// Execute returns the reply text sent back to the chat.
type Command interface {
	Execute(ctx context.Context, msg *models.Message) (string, error)
}

// CommandFunc is an adapter to allow ordinary functions to be used as commands
type CommandFunc func(ctx context.Context, msg *models.Message) (string, error)

// Execute implements the Command interface
func (f CommandFunc) Execute(ctx context.Context, msg *models.Message) (string, error) {
	return f(ctx, msg)
}

type entry struct {
	cmd         Command
	description string
}

// Registry holds all registered commands
type Registry struct {
	commands map[string]entry
}

// NewRegistry creates a new command registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]entry),
	}
}

// Register adds a command to the registry under name, without the leading slash
func (r *Registry) Register(name, description string, cmd Command) {
	r.commands[name] = entry{cmd: cmd, description: description}
}

// Get retrieves a command by name
func (r *Registry) Get(name string) (Command, bool) {
	e, ok := r.commands[name]
	return e.cmd, ok
}

// Has checks if a command is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.commands[name]
	return ok
}

// List returns all registered command names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BotCommands describes the registered commands for setMyCommands
func (r *Registry) BotCommands() []models.BotCommand {
	cmds := make([]models.BotCommand, 0, len(r.commands))
	for _, name := range r.List() {
		cmds = append(cmds, models.BotCommand{
			Command:     name,
			Description: r.commands[name].description,
		})
	}
	return cmds
}
