// Package chat composes the router, the conversation store, the tool
// adapters and the LLM into the "handle one incoming message" operation.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/charlabot/charla/agent"
	"github.com/charlabot/charla/conversation"
	"github.com/charlabot/charla/convert"
	"github.com/charlabot/charla/llm"
	"github.com/charlabot/charla/router"
	"github.com/charlabot/charla/translate"
)

// GenericFailureReply is the one fixed message for the case where every
// fallback failed. It is never recorded into conversation history.
const GenericFailureReply = "Disculpa, hubo un problema al procesar tu mensaje. ¿Podrías intentarlo de nuevo?"

const apologyReply = "Lo siento, hubo un error al procesar tu mensaje. Por favor intenta de nuevo."

const defaultSystemPrompt = `Eres un asistente inteligente y amigable de un bot de Telegram.

Características:
- Respondes de manera clara y concisa
- Eres educado y profesional
- Si no sabes algo, lo admites honestamente
- Usas emojis ocasionalmente para ser más amigable
- Mantienes respuestas de máximo 3-4 párrafos
- Hablas en español

Tu objetivo es ayudar al usuario de la mejor manera posible.`

// CurrencyConverter, Translator and AgentRunner are the orchestrator's view
// of its collaborators, so tests can substitute stubs.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount float64, from, to string) (convert.Result, error)
}

type Translator interface {
	Translate(ctx context.Context, q translate.Query) (translate.Result, error)
}

type AgentRunner interface {
	Run(ctx context.Context, task string, opts agent.RunOptions) (string, *agent.Context, error)
}

type Config struct {
	Model         string
	HistoryLimit  int // entries of context fed to plain chat, default 6
	MinAgentReply int // runes below which an agent answer is discarded, default 10
	SystemPrompt  string
}

type Option func(*Orchestrator)

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

type Orchestrator struct {
	store      *conversation.Store
	client     llm.Client
	runner     AgentRunner
	converter  CurrencyConverter
	translator Translator
	config     Config
	log        *slog.Logger
}

func NewOrchestrator(store *conversation.Store, client llm.Client, runner AgentRunner, converter CurrencyConverter, translator Translator, cfg Config, opts ...Option) *Orchestrator {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 6
	}
	if cfg.MinAgentReply <= 0 {
		cfg.MinAgentReply = 10
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	o := &Orchestrator{
		store:      store,
		client:     client,
		runner:     runner,
		converter:  converter,
		translator: translator,
		config:     cfg,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// HandleMessage routes one message and always returns a non-empty reply.
// It never panics out to the caller; if every fallback fails, the fixed
// generic message is returned and nothing is recorded in history.
func (o *Orchestrator) HandleMessage(ctx context.Context, userID int64, userName, text string) (reply string) {
	msgID := uuid.NewString()
	log := o.log.With("msg_id", msgID, "user_id", userID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("handle_panic", "panic", fmt.Sprint(r))
			reply = GenericFailureReply
		}
	}()

	text = strings.TrimSpace(text)
	if text == "" {
		return "¿En qué puedo ayudarte? Escríbeme un mensaje. 📝"
	}

	decision := router.Classify(text)
	log.Info("message_routed", "kind", decision.Kind.String(), "tool", decision.Tool, "text_len", len(text))

	var response string
	switch decision.Kind {
	case router.KindDirectTool:
		response = o.handleDirectTool(ctx, decision, log)
	case router.KindAgent:
		response = o.handleAgent(ctx, userID, text, log)
	default:
		response = o.plainChat(ctx, userID, userName, text, log)
	}

	if strings.TrimSpace(response) == "" {
		log.Error("empty_response")
		return GenericFailureReply
	}

	o.store.Append(userID, conversation.RoleUser, text)
	o.store.Append(userID, conversation.RoleAssistant, response)
	return response
}

// Reset clears the user's history and returns the confirmation text.
func (o *Orchestrator) Reset(userID int64, userName string) string {
	o.store.Clear(userID)
	st := o.store.Stats()
	o.log.Info("history_reset", "user_id", userID, "active_users", st.ActiveUsers, "total_messages", st.TotalMessages)
	return fmt.Sprintf(
		"🔄 *Conversación reiniciada*\n\n¡Hola de nuevo, %s! 👋\n\n"+
			"He limpiado nuestro historial de conversación. "+
			"Ahora empezamos desde cero con memoria fresca.\n\n"+
			"💬 ¿En qué puedo ayudarte ahora?", userName)
}

func (o *Orchestrator) handleDirectTool(ctx context.Context, d router.Decision, log *slog.Logger) string {
	switch d.Tool {
	case router.ToolCurrency:
		q, err := router.ParseCurrencyQuery(d.Text)
		if err != nil {
			log.Warn("currency_extraction_failed", "error", err.Error())
			return "❌ No pude determinar las monedas origen/destino. Usa: '100 USD a EUR'"
		}
		res, err := o.converter.Convert(ctx, q.Amount, q.From, q.To)
		if err != nil {
			log.Warn("currency_convert_failed", "error", err.Error())
			return convert.FormatError(err)
		}
		return convert.FormatResult(res)

	case router.ToolTranslation:
		q, err := router.ParseTranslationQuery(d.Text)
		if err != nil {
			log.Warn("translation_extraction_failed", "error", err.Error())
			return "❌ No se encontró texto para traducir. Usa: traduce 'hola' al inglés"
		}
		res, err := o.translator.Translate(ctx, translate.Query{Text: q.Text, Source: q.Source, Target: q.Target})
		if err != nil {
			log.Warn("translation_failed", "error", err.Error())
			return translate.FormatError(err)
		}
		return translate.FormatResult(res)

	default:
		log.Error("unknown_direct_tool", "tool", d.Tool)
		return GenericFailureReply
	}
}

// handleAgent runs the tool-picking loop and falls back to plain chat when
// the agent errors out or produces a degenerate answer.
func (o *Orchestrator) handleAgent(ctx context.Context, userID int64, text string, log *slog.Logger) string {
	history := o.historyMessages(userID)
	output, agentCtx, err := o.runner.Run(ctx, text, agent.RunOptions{Model: o.config.Model, History: history})
	if agentCtx != nil {
		log.Info("agent_done", "steps", len(agentCtx.Steps), "total_tokens", agentCtx.Metrics.TotalTokens)
	}
	if err != nil {
		log.Warn("agent_failed", "error", err.Error())
		return o.plainChat(ctx, userID, "", text, log)
	}
	if len([]rune(strings.TrimSpace(output))) < o.config.MinAgentReply {
		log.Warn("agent_reply_too_short", "len", len(output))
		return o.plainChat(ctx, userID, "", text, log)
	}
	return output
}

func (o *Orchestrator) plainChat(ctx context.Context, userID int64, userName, text string, log *slog.Logger) string {
	system := o.config.SystemPrompt
	if strings.TrimSpace(userName) != "" {
		system += fmt.Sprintf("\n\nEl usuario se llama %s.", userName)
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	messages = append(messages, o.historyMessages(userID)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: text})

	if log.Enabled(ctx, slog.LevelDebug) {
		log.Debug("chat_context", "summary", o.store.ContextSummary(userID, o.config.HistoryLimit))
	}

	result, err := o.client.Chat(ctx, llm.Request{Model: o.config.Model, Messages: messages})
	if err != nil {
		log.Warn("chat_failed", "error", err.Error())
		return apologyReply
	}
	return strings.TrimSpace(result.Text)
}

// Joke asks the model for a single fresh joke; used by the /chiste command.
func (o *Orchestrator) Joke(ctx context.Context, category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		category = "general"
	}
	prompt := fmt.Sprintf(
		"Genera UN SOLO chiste corto, original y gracioso sobre: %s. "+
			"Debe ser apropiado y divertido. Sé creativo, evita chistes genéricos. "+
			"Formato: solo el chiste con un emoji al inicio. Nada más.", category)

	result, err := o.client.Chat(ctx, llm.Request{
		Model: o.config.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "Eres un comediante. Hablas en español."},
			{Role: llm.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		o.log.Warn("joke_failed", "error", err.Error())
		return apologyReply
	}
	return strings.TrimSpace(result.Text)
}

func (o *Orchestrator) historyMessages(userID int64) []llm.Message {
	entries := o.store.History(userID, o.config.HistoryLimit)
	out := make([]llm.Message, 0, len(entries))
	for _, e := range entries {
		role := llm.RoleUser
		if e.Role == conversation.RoleAssistant {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: e.Content})
	}
	return out
}
