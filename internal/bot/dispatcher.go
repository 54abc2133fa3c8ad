package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/graffic/kwoatle-go/internal/quotes"
	"github.com/prometheus/client_golang/prometheus"
)

// Sender delivers replies; *bot.Bot satisfies it
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Dispatcher routes command messages to registered commands and sends their replies
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	commands *prometheus.CounterVec
}

// NewDispatcher creates a new dispatcher. Command outcomes are counted on reg.
func NewDispatcher(registry *Registry, logger *slog.Logger, reg prometheus.Registerer) (*Dispatcher, error) {
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kwoatle",
		Subsystem: "bot",
		Name:      "commands_total",
		Help:      "Bot commands handled, by command and outcome.",
	}, []string{"command", "result"})

	if err := reg.Register(commands); err != nil {
		return nil, err
	}

	return &Dispatcher{
		registry: registry,
		logger:   logger,
		commands: commands,
	}, nil
}

// HandlerFunc adapts the dispatcher to the go-telegram/bot handler signature
func (d *Dispatcher) HandlerFunc() bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		d.Process(ctx, b, update)
	}
}

// Process executes the command carried by update, if any, and sends the reply
func (d *Dispatcher) Process(ctx context.Context, sender Sender, update *models.Update) {
	// Extract message from update (handle both regular and edited messages)
	var msg *models.Message
	if update.Message != nil {
		msg = update.Message
	} else if update.EditedMessage != nil {
		msg = update.EditedMessage
	}

	if msg == nil {
		return
	}

	reply, ok := d.Reply(ctx, msg)
	if !ok {
		return
	}

	_, err := sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   reply,
	})
	if err != nil {
		d.logger.Error("failed to send reply", "chat_id", msg.Chat.ID, "error", err)
	}
}

// Reply runs the command in msg and returns the text to answer with.
// ok is false when msg is not a registered command.
func (d *Dispatcher) Reply(ctx context.Context, msg *models.Message) (reply string, ok bool) {
	name := extractCommand(msg.Text)
	if name == "" {
		return "", false
	}

	cmd, found := d.registry.Get(name)
	if !found {
		d.logger.Debug("unknown command", "command", name)
		return "", false
	}

	d.logger.Info("executing command", "command", name, "chat_id", msg.Chat.ID)
	reply, err := cmd.Execute(ctx, msg)
	if err == nil {
		d.commands.WithLabelValues(name, "ok").Inc()
		return reply, true
	}

	var usage *UsageError
	switch {
	case errors.As(err, &usage):
		d.commands.WithLabelValues(name, "usage").Inc()
		return "Usage: " + usage.Usage, true
	case quotes.IsValidation(err), quotes.IsNotFound(err):
		d.commands.WithLabelValues(name, "rejected").Inc()
		return userMessage(err), true
	default:
		d.commands.WithLabelValues(name, "error").Inc()
		d.logger.Error("command execution failed", "command", name, "error", err)
		return "Something went wrong, please try again.", true
	}
}

// userMessage turns a domain error into a sentence for the chat
func userMessage(err error) string {
	var verr *quotes.ValidationError
	if errors.As(err, &verr) {
		if verr.Field != "" {
			return "Invalid " + verr.Field + ": " + verr.Message + "."
		}
		return "Invalid input: " + verr.Message + "."
	}

	var nf *quotes.NotFoundError
	if errors.As(err, &nf) {
		return capitalize(nf.Error()) + "."
	}
	return err.Error()
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
