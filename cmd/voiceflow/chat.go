package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat [flow-id]",
	Short: "Simulate a call in the terminal",
	Long:  `Runs a flow interactively: the agent's lines are printed and your typed input plays the caller. Type 'exit' to hang up.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, err := buildEngine(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		ctx := cmd.Context()
		flowID := ""
		if len(args) > 0 {
			flowID = args[0]
		} else {
			ids, err := eng.Loader().ListFlows(ctx)
			if err != nil || len(ids) == 0 {
				fmt.Fprintln(os.Stderr, "No flows available")
				os.Exit(1)
			}
			flowID = ids[0]
		}

		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		agent := func(s string) string { return s }
		caller := func(s string) string { return s }
		faint := func(s string) string { return s }
		if interactive {
			p := termenv.ColorProfile()
			agent = func(s string) string {
				return termenv.String(s).Foreground(p.Color("#34d399")).String()
			}
			caller = func(s string) string {
				return termenv.String(s).Foreground(p.Color("#818cf8")).String()
			}
			faint = func(s string) string {
				return termenv.String(s).Faint().String()
			}
		}

		sess, turn, err := eng.StartCall(ctx, flowID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error starting call: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(faint(fmt.Sprintf("-- call %s on flow %q --", sess.ID, flowID)))
		speak(agent, turn)

		reader := bufio.NewReader(os.Stdin)
		for !sess.Ended {
			fmt.Print(caller("you> "))
			line, err := reader.ReadString('\n')
			if err != nil {
				break
			}
			input := strings.TrimSpace(line)
			if input == "exit" || input == "quit" {
				_ = eng.EndCall(ctx, sess.ID)
				fmt.Println(faint("-- call abandoned --"))
				return
			}
			if input == "" {
				continue
			}

			sess, turn, err = eng.Turn(ctx, sess.ID, input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return
			}
			speak(agent, turn)
		}

		switch turn.Action {
		case domain.ActionTransfer:
			fmt.Println(faint(fmt.Sprintf("-- call transferred to %s (%s) --", turn.TransferTo, turn.TransferType)))
		default:
			fmt.Println(faint("-- call ended --"))
		}
	},
}

func speak(color func(string) string, turn domain.TurnResult) {
	if turn.Response != "" {
		fmt.Println(color("agent> " + turn.Response))
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
