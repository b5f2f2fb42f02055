package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"ytbpm/internal/actions"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:   "ytbpm",
		Usage:  "Download YouTube audio as mp3 and tag each track with its BPM and genre.",
		Flags:  append(actions.ToolFlags(), actions.ProcessFlags()...),
		Action: actions.ProcessURL,
		Commands: []*cli.Command{
			{
				Name:   "setup",
				Usage:  "Install yt-dlp into the tools directory and record the tool manifest",
				Flags:  actions.ToolFlags(),
				Action: actions.Setup,
			},
			{
				Name:   "check",
				Usage:  "Show which yt-dlp and ffmpeg will be used",
				Flags:  actions.ToolFlags(),
				Action: actions.Check,
			},
			{
				Name:      "inspect",
				Usage:     "Print the BPM and genre tags of mp3 files",
				ArgsUsage: "FILE...",
				Action:    actions.Inspect,
			},
		},
	}

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}
