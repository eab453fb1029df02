package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadName string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the service and report whether it runs in mock mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadClient()
		if err != nil {
			return err
		}
		h, err := c.Health(context.Background())
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		return printJSON(cmd, h)
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a local contract",
	Long: `Requests an upload destination for the file and writes its bytes there.
When the service is in mock mode the destination is a placeholder and no bytes are sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var processCmd = &cobra.Command{
	Use:   "process [filename]",
	Short: "Extract and summarise an uploaded contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadClient()
		if err != nil {
			return err
		}
		result, err := c.Process(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("process failed: %w", err)
		}
		return printJSON(cmd, result)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [text-file] [question]",
	Short: "Ask a question about extracted contract text",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		c, err := loadClient()
		if err != nil {
			return err
		}
		ans, err := c.Ask(context.Background(), string(text), args[1])
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
		return printJSON(cmd, ans)
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "object name to upload as (defaults to the file's base name)")
	rootCmd.AddCommand(healthCmd, uploadCmd, processCmd, askCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	name := uploadName
	if name == "" {
		name = filepath.Base(args[0])
	}

	c, err := loadClient()
	if err != nil {
		return err
	}
	ctx := context.Background()

	target, err := c.UploadURL(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get upload URL: %w", err)
	}
	sent, err := c.Upload(ctx, target, content)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if sent {
		cmd.Printf("Uploaded %s (%d bytes)\n", name, len(content))
	} else {
		cmd.Printf("Mock destination for %s, nothing uploaded\n", name)
	}
	return nil
}
