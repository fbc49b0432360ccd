package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"time"

	"genstudio/internal/filecodec"
	"genstudio/internal/genclient"
	"genstudio/internal/session"
	"genstudio/internal/studio"

	"github.com/spf13/cobra"
)

var (
	askMode   string
	askPrompt string
	askImage  string
	askFile   string
	askOut    string
)

var errResult = errors.New("request failed")

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Run one submission and print the result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		mode, err := studio.ParseMode(askMode)
		if err != nil {
			return err
		}
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		gen, err := genclient.NewGemini(cmd.Context(), cfg.APIKey,
			genclient.WithModels(cfg.Models.Image, cfg.Models.Text),
			genclient.WithLogger(log),
		)
		if err != nil {
			return err
		}

		ctrl := session.NewController(gen, session.WithLogger(log))
		if err := fillAsk(ctrl, mode); err != nil {
			return err
		}
		if ctrl.Submit(cmd.Context()) == session.OutcomeIgnored {
			return errors.New("a prompt is required (-p)")
		}
		return printResult(cmd, ctrl.Snapshot().Result)
	},
}

func fillAsk(ctrl *session.Controller, mode studio.Mode) error {
	if err := ctrl.ChangeMode(mode); err != nil {
		return err
	}
	if err := ctrl.SetPrompt(askPrompt); err != nil {
		return err
	}
	if askImage != "" {
		f, err := filecodec.NewOnDisk(askImage)
		if err != nil {
			return err
		}
		if err := ctrl.SetImageAttachment(f); err != nil {
			return err
		}
	}
	if askFile != "" {
		f, err := filecodec.NewOnDisk(askFile)
		if err != nil {
			return err
		}
		if err := ctrl.SetFileAttachment(f); err != nil {
			return err
		}
	}
	return nil
}

func printResult(cmd *cobra.Command, res *studio.Result) error {
	if res == nil {
		return errResult
	}
	switch res.Kind {
	case studio.ResultText:
		fmt.Fprintln(cmd.OutOrStdout(), res.Content)
		return nil
	case studio.ResultImage:
		data, err := base64.StdEncoding.DecodeString(res.Content)
		if err != nil {
			return err
		}
		out := askOut
		if out == "" {
			out = fmt.Sprintf("genstudio-%d%s", time.Now().Unix(), imageExt(res.MIMEType))
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	default:
		fmt.Fprintln(cmd.ErrOrStderr(), res.Content)
		return errResult
	}
}

func imageExt(mimeType string) string {
	if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
		return exts[0]
	}
	return ".png"
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", string(studio.ModeImage), "image, vision or file")
	askCmd.Flags().StringVarP(&askPrompt, "prompt", "p", "", "prompt text")
	askCmd.Flags().StringVarP(&askImage, "image", "i", "", "image to analyze (vision mode)")
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "text file to chat with (file mode)")
	askCmd.Flags().StringVarP(&askOut, "out", "o", "", "where to write a generated image")
}
