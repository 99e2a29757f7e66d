// Package telegramcmd runs the long-polling Telegram front end. Messages
// for the same chat are handled in order by a per-chat worker; a global
// semaphore bounds concurrent LLM work across chats.
package telegramcmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/charlabot/charla/weather"
)

// Handler is the orchestrator surface the bot loop needs.
type Handler interface {
	HandleMessage(ctx context.Context, userID int64, userName, text string) string
	Reset(userID int64, userName string) string
	Joke(ctx context.Context, category string) string
}

type Dependencies struct {
	LoggerFromViper  func() (*slog.Logger, error)
	HandlerFromViper func(logger *slog.Logger) (Handler, error)
	WeatherFromViper func() *weather.Client
}

type job struct {
	ChatID    int64
	UserID    int64
	UserName  string
	Text      string
	MessageID int64
}

type chatWorker struct {
	Jobs chan job
}

func NewCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(viper.GetString("telegram.bot_token"))
			if token == "" {
				return fmt.Errorf("missing telegram.bot_token (set via config or %s_TELEGRAM_BOT_TOKEN)", "CHARLA")
			}

			logger, err := deps.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			handler, err := deps.HandlerFromViper(logger)
			if err != nil {
				return err
			}
			weatherClient := deps.WeatherFromViper()

			api := newTelegramAPI(
				&http.Client{Timeout: viper.GetDuration("telegram.poll_timeout") + 10*time.Second},
				viper.GetString("telegram.base_url"),
				token,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			meCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			bot, err := api.getMe(meCtx)
			cancel()
			if err != nil {
				return fmt.Errorf("telegram getMe failed: %w", err)
			}
			logger.Info("bot_started", "username", bot.Username, "id", bot.ID)

			pollTimeout := viper.GetDuration("telegram.poll_timeout")
			handleTimeout := viper.GetDuration("telegram.handle_timeout")
			if handleTimeout <= 0 {
				handleTimeout = 2 * time.Minute
			}
			maxConcurrency := viper.GetInt("telegram.max_concurrency")
			if maxConcurrency <= 0 {
				maxConcurrency = 3
			}
			sem := make(chan struct{}, maxConcurrency)

			var mu sync.Mutex
			workers := make(map[int64]*chatWorker)

			getOrStartWorker := func(chatID int64) *chatWorker {
				mu.Lock()
				defer mu.Unlock()
				if w, ok := workers[chatID]; ok && w != nil {
					return w
				}
				w := &chatWorker{Jobs: make(chan job, 16)}
				workers[chatID] = w

				go func(chatID int64, w *chatWorker) {
					for j := range w.Jobs {
						sem <- struct{}{}
						func() {
							defer func() { <-sem }()

							typingStop := startTypingTicker(ctx, api, chatID, 4*time.Second)
							defer typingStop()

							handleCtx, cancel := context.WithTimeout(ctx, handleTimeout)
							reply := dispatch(handleCtx, handler, weatherClient, bot, j)
							cancel()

							sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
							defer cancel()
							if err := api.sendMessageChunked(sendCtx, chatID, reply); err != nil {
								logger.Warn("send_failed", "chat_id", chatID, "error", err.Error())
							}
						}()
					}
				}(chatID, w)

				return w
			}

			var offset int64
			for {
				if err := ctx.Err(); err != nil {
					logger.Info("bot_stopped")
					return nil
				}

				updates, next, err := api.getUpdates(ctx, offset, pollTimeout)
				if err != nil {
					if ctx.Err() != nil {
						logger.Info("bot_stopped")
						return nil
					}
					if isTelegramPollTimeoutError(err) {
						continue
					}
					logger.Warn("poll_error", "error", err.Error())
					time.Sleep(2 * time.Second)
					continue
				}
				offset = next

				for _, u := range updates {
					msg := u.Message
					if msg == nil || msg.Chat == nil {
						continue
					}
					if msg.From != nil && msg.From.IsBot {
						continue
					}
					if strings.TrimSpace(msg.Text) == "" {
						if msg.hasMedia() {
							go func(chatID int64) {
								sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
								defer cancel()
								if err := api.sendMessageChunked(sendCtx, chatID, mediaNotSupportedText()); err != nil {
									logger.Warn("send_failed", "chat_id", chatID, "error", err.Error())
								}
							}(msg.Chat.ID)
						}
						continue
					}

					userID := msg.Chat.ID
					if msg.From != nil && msg.From.ID != 0 {
						userID = msg.From.ID
					}

					j := job{
						ChatID:    msg.Chat.ID,
						UserID:    userID,
						UserName:  telegramDisplayName(msg.From),
						Text:      strings.TrimSpace(msg.Text),
						MessageID: msg.MessageID,
					}
					logger.Info("update_received", "chat_id", j.ChatID, "user_id", j.UserID, "text_len", len(j.Text))

					w := getOrStartWorker(j.ChatID)
					select {
					case w.Jobs <- j:
					default:
						logger.Warn("chat_queue_full", "chat_id", j.ChatID)
					}
				}
			}
		},
	}

	return cmd
}

// dispatch answers slash commands locally and routes everything else
// through the orchestrator.
func dispatch(ctx context.Context, handler Handler, weatherClient *weather.Client, bot *telegramUser, j job) string {
	if !strings.HasPrefix(j.Text, "/") {
		return handler.HandleMessage(ctx, j.UserID, j.UserName, j.Text)
	}

	cmd, arg := splitCommand(j.Text, bot.Username)
	switch cmd {
	case "/start":
		return startText(j.UserName)
	case "/help":
		return helpText()
	case "/fecha":
		return fechaText(time.Now().In(fechaLocation))
	case "/clima":
		city := arg
		if city == "" {
			city = strings.TrimSpace(viper.GetString("weather.default_city"))
		}
		report, err := weatherClient.Current(ctx, city)
		if err != nil {
			return weather.FormatError(err)
		}
		return weather.FormatReport(report)
	case "/chiste":
		return handler.Joke(ctx, arg)
	case "/reset":
		return handler.Reset(j.UserID, j.UserName)
	default:
		// Unknown commands go through normal chat so the bot can respond.
		return handler.HandleMessage(ctx, j.UserID, j.UserName, j.Text)
	}
}

// splitCommand separates "/clima@MyBot Madrid" into "/clima" and "Madrid".
func splitCommand(text, botUsername string) (string, string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	cmd := strings.ToLower(fields[0])
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		mention := cmd[at+1:]
		if botUsername == "" || strings.EqualFold(mention, botUsername) {
			cmd = cmd[:at]
		}
	}
	return cmd, strings.TrimSpace(strings.Join(fields[1:], " "))
}

func startText(userName string) string {
	name := strings.TrimSpace(userName)
	if name == "" {
		name = "amigo"
	}
	return fmt.Sprintf(
		"¡Hola %s! 👋\n\n"+
			"Soy tu asistente conversacional. Puedo ayudarte con:\n\n"+
			"💬 Conversación general con memoria\n"+
			"💱 Conversión de monedas ('100 USD a EUR')\n"+
			"🌍 Traducciones (traduce 'hola' al inglés)\n"+
			"🎵 Letras de canciones ('letra de Bohemian Rhapsody')\n"+
			"🌤️ Clima con /clima\n"+
			"😄 Chistes con /chiste\n\n"+
			"Escribe /help para ver todos los comandos.", name)
}

func helpText() string {
	return "📋 *Comandos disponibles*\n\n" +
		"/start - Mensaje de bienvenida\n" +
		"/help - Esta ayuda\n" +
		"/fecha - Fecha y hora actual\n" +
		"/clima [ciudad] - Clima actual\n" +
		"/chiste [tema] - Un chiste\n" +
		"/reset - Reiniciar la conversación\n\n" +
		"También puedes escribirme directamente:\n" +
		"• 'convierte 50 EUR a USD'\n" +
		"• traduce 'good morning' al español\n" +
		"• 'letra de Yellow Submarine'"
}

func mediaNotSupportedText() string {
	return "🎤 Por ahora solo entiendo mensajes de texto.\n" +
		"Notas de voz, fotos y documentos llegarán pronto. ✍️"
}

// fechaLocation pins /fecha to the bot's home timezone.
var fechaLocation = func() *time.Location {
	loc, err := time.LoadLocation("America/El_Salvador")
	if err != nil {
		return time.UTC
	}
	return loc
}()

var spanishDays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var spanishMonths = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

func fechaText(now time.Time) string {
	return fmt.Sprintf("📅 *Fecha y hora actual*\n\n🗓️ %s, %d de %s de %d\n🕐 Hora: %02d:%02d",
		spanishDays[now.Weekday()], now.Day(), spanishMonths[now.Month()-1], now.Year(),
		now.Hour(), now.Minute())
}
