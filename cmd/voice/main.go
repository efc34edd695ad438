package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"caregiver-assistant/internal/adapters/gemini"
	"caregiver-assistant/internal/adapters/portaudio"
	"caregiver-assistant/internal/adapters/store/restapi"
	"caregiver-assistant/internal/domain/assistant"
	"caregiver-assistant/internal/platform/config"
	"caregiver-assistant/internal/platform/logger"
	"caregiver-assistant/internal/voice/codec"
	"caregiver-assistant/internal/voice/live"
	"caregiver-assistant/internal/voice/tools"
)

type flags struct {
	apiURL      string
	caregiverID string
	token       string
	language    string
	voice       string
	out         string
}

func main() {
	var f flags

	rootCmd := &cobra.Command{
		Use:          "voice",
		Short:        "Asistente de voz para caregivers desde la terminal",
		Long:         "Abre una sesión de voz en vivo con micrófono y parlante del sistema. Los pacientes, medicinas y recordatorios se leen y guardan en la API.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLive(cmd, f)
		},
	}

	rootCmd.PersistentFlags().StringVar(&f.apiURL, "api", "http://localhost:8080", "base URL de la API de registros")
	rootCmd.PersistentFlags().StringVar(&f.caregiverID, "caregiver", "", "caregiver id (modo dev, X-Debug-User-ID)")
	rootCmd.PersistentFlags().StringVar(&f.token, "token", "", "bearer token (si la API tiene verifier)")
	rootCmd.Flags().StringVarP(&f.language, "lang", "l", "en", "idioma: en, ml, hi, ta, kn")

	speakCmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "Convierte un texto a voz y lo guarda como WAV",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpeak(cmd, f, strings.Join(args, " "))
		},
	}
	speakCmd.Flags().StringVar(&f.voice, "voice", "Kore", "voz prearmada")
	speakCmd.Flags().StringVarP(&f.out, "out", "o", "speech.wav", "archivo de salida")

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Pregunta libre sobre los pacientes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, f, strings.Join(args, " "))
		},
	}

	rootCmd.AddCommand(speakCmd, askCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup arma lo común a los tres comandos; la API key y los modelos salen
// del mismo .env/entorno que usa cmd/api.
func setup(f flags) (logger.Logger, *gemini.Client, *restapi.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.NewFromEnv()

	ai := gemini.New(gemini.Config{
		APIKey:    cfg.GeminiAPIKey,
		LiveModel: cfg.LiveModel,
		TTSModel:  cfg.TTSModel,
		TextModel: cfg.TextModel,
		Logger:    log,
	})

	store, err := restapi.New(restapi.Config{
		BaseURL:     f.apiURL,
		CaregiverID: f.caregiverID,
		BearerToken: f.token,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return log, ai, store, nil
}

func runLive(cmd *cobra.Command, f flags) error {
	log, ai, store, err := setup(f)
	if err != nil {
		return err
	}
	if err := ai.Ready(); err != nil {
		return errors.New(live.UserMessage(err))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, err := store.LoadState(ctx)
	if err != nil {
		return err
	}

	devices, err := portaudio.Open(log)
	if err != nil {
		return err
	}
	defer devices.Close()

	out := cmd.OutOrStdout()
	worker := tools.NewWorker(store, tools.WorkerOptions{
		Logger: log,
		OnOutcome: func(o tools.Outcome) {
			if o.Err != nil {
				fmt.Fprintf(out, "! could not save %s: %v\n", o.Command.Kind, o.Err)
			}
		},
	})
	defer worker.Close()

	ended := make(chan struct{}, 1)
	ctrl := live.NewController(live.Config{
		Dialer:  ai,
		Devices: devices,
		Tools:   tools.NewDispatcher(state, worker, log),
		Hooks: live.Hooks{
			OnState: func(s live.State) {
				if s == live.StateIdle {
					select {
					case ended <- struct{}{}:
					default:
					}
				}
			},
			OnTurns: func(turns []live.Turn) { printTurn(out, turns) },
			OnTool: func(call tools.Call, res tools.Result) {
				fmt.Fprintf(out, "* %s: %s\n", call.Name, res.Message)
			},
			OnError: func(err error) {
				fmt.Fprintf(out, "! %s\n", live.UserMessage(err))
			},
		},
		Logger: log,
	})

	lang := tools.ParseLanguage(f.language)
	err = ctrl.Start(ctx, live.Setup{
		SystemPrompt: tools.SystemPrompt(lang, state.Patients()),
		Tools:        tools.Declarations(),
		Voice:        tools.VoiceFor(lang),
		Language:     lang,
	})
	if err != nil {
		return errors.New(live.UserMessage(err))
	}
	fmt.Fprintln(out, "Listening. Press Ctrl+C to stop.")
	select {
	case <-ctx.Done():
	case <-ended:
	}
	if err := ctrl.Stop(); err != nil {
		log.Warn("stop incomplete", map[string]any{"err": err})
	}
	return ctrl.Err()
}

func printTurn(out io.Writer, turns []live.Turn) {
	if len(turns) == 0 {
		return
	}
	// imprime el último intercambio (usuario + asistente)
	start := max(0, len(turns)-2)
	for _, t := range turns[start:] {
		fmt.Fprintf(out, "%s: %s\n", t.Role, t.Text)
	}
}

func runSpeak(cmd *cobra.Command, f flags, text string) error {
	_, ai, _, err := setup(f)
	if err != nil {
		return err
	}
	pcm, err := ai.Speak(cmd.Context(), text, f.voice)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.out, codec.WAV(pcm, codec.PlaybackSampleRate, 1), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", f.out)
	return nil
}

func runAsk(cmd *cobra.Command, f flags, question string) error {
	_, ai, store, err := setup(f)
	if err != nil {
		return err
	}
	state, err := store.LoadState(cmd.Context())
	if err != nil {
		return err
	}
	answer, err := ai.Ask(cmd.Context(), question, assistant.FormatRoster(state))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
