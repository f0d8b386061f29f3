package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lodestar/internal/chat"
	"lodestar/internal/format"
	"lodestar/internal/wiring"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question answering session",
	Long: `Starts an interactive session. Each question runs through the configured
workflow; the exchange is kept in the session history.

Commands: /history shows the transcript, /reset clears it, /quit exits.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, _ []string) error {
	app, err := wiring.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	promptColor := color.New(color.FgCyan, color.Bold)
	answerColor := color.New(color.FgGreen)
	metaColor := color.New(color.FgYellow)

	session := chat.NewSessionID()
	fmt.Fprintf(out, "session %s (variant: %s)\n", session, cfg.Workflow.Variant)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		promptColor.Fprint(out, "you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/reset":
			if err := app.Chat.Reset(cmd.Context(), session); err != nil {
				return err
			}
			metaColor.Fprintln(out, "history cleared")
			continue
		case "/history":
			transcript, err := app.Chat.Transcript(cmd.Context(), session)
			if err != nil {
				return err
			}
			for _, m := range transcript {
				fmt.Fprintf(out, "%s: %s\n", m.Role, format.Truncate(m.Content, 120))
			}
			continue
		}

		res, err := app.Chat.Ask(cmd.Context(), session, line)
		if err != nil {
			metaColor.Fprintf(out, "error: %v\n", err)
			continue
		}

		answerColor.Fprintln(out, res.Answer)
		if res.Exhausted() {
			metaColor.Fprintln(out, "(best effort: the answer did not reach the confidence bar)")
		}
		metaColor.Fprintf(out, "confidence: %s\n", format.FmtConfidence(res.Confidence))
		for _, s := range res.Suggestions {
			metaColor.Fprintf(out, "suggestion: %s\n", s)
		}
	}
	return scanner.Err()
}
