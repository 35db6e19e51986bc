package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds minimal global/persistent flags for CLI commands
type GlobalFlags struct {
	ConfigPath string
}

// APIFlags holds the daemon connection flags shared by remote commands
type APIFlags struct {
	APIUrl     string
	APITimeout time.Duration
}

// CreateFlags holds flags for the create command
type CreateFlags struct {
	Name         string
	Participants []string
	AtNames      []string
	Description  string
	File         string
	APIFlags
}

// buildRoot creates the root command and attaches all subcommands
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	cmds := command{}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createServeCommand(globalFlags),
		createStatusCommand(cmds),
		createListCommand(cmds),
		createToggleCommand(cmds),
		createSaveCommand(cmds),
		createDiscardCommand(cmds),
		createSwitchCommand(cmds),
		createCreateCommand(cmds, globalFlags),
		createModeCommand(cmds),
		createDeleteCommand(cmds),
		createTemplateCommand(),
	)
	return root
}

// createRootCommand creates the root command with minimal persistent flags
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "rollcall",
		Short: "Checklist and roll-call manager",
		Long: `Rollcall tracks named checklists of participants split between
finished and unfinished, with signed webhook notifications on save.

Examples:
  rollcall serve --config=config.json       # Start daemon
  rollcall create --name="Team A" --participant=Alice --participant=Bob
  rollcall toggle Alice                     # Mark Alice finished
  rollcall save                             # Commit and notify
  rollcall status --api-url=http://remote:8080/api`,
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to JSON config file (optional)")
	return root
}

// addAPIFlags registers the daemon connection flags on a remote command
func addAPIFlags(cmd *cobra.Command, flags *APIFlags) {
	cmd.Flags().StringVar(&flags.APIUrl, "api-url", "", "daemon URL (e.g. http://host:8080/api)")
	cmd.Flags().DurationVar(&flags.APITimeout, "api-timeout", 10*time.Second, "request timeout")
}

func createStatusCommand(cmds command) *cobra.Command {
	flags := &APIFlags{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active process and its working lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmds.Status(*flags)
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

func createListCommand(cmds command) *cobra.Command {
	flags := &APIFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmds.List(*flags)
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

func createToggleCommand(cmds command) *cobra.Command {
	flags := &APIFlags{}
	cmd := &cobra.Command{
		Use:   "toggle <participant>",
		Short: "Flip a participant between unfinished and finished",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmds.Toggle(args[0], *flags)
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

func createSaveCommand(cmds command) *cobra.Command {
	flags := &APIFlags{}
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Commit pending toggles and send the notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmds.Save(*flags)
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

func createDiscardCommand(cmds command) *cobra.Command {
	flags := &APIFlags{}
	cmd := &cobra.Command{
		Use:   "discard",
		Short: "Drop pending toggles and restore the last saved lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmds.Discard(*flags)
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

func createSwitchCommand(cmds command) *cobra.Command {
	flags := &APIFlags{}
	cmd := &cobra.Command{
		Use:   "switch <name>",
		Short: "Make another process active",
		Long: `Make another process active. Refused while toggles are pending;
save or discard first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmds.Switch(args[0], *flags)
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

func createCreateCommand(cmds command, global *GlobalFlags) *cobra.Command {
	flags := &CreateFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new process",
		Long: `Create a new enabled process with the given participants, all
starting unfinished. Without --participant or --file the shared "name"
pool from the config file seeds the list.

Examples:
  rollcall create --name="Team A" --participant=Alice --participant=Bob
  rollcall create --name="Team B" --participant=Carol --at=13800000000
  rollcall create --name="Team C" --config=config.json   # config pool
  rollcall create --file=standup.json       # from a template skeleton`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.File == "" && flags.Name == "" {
				return fmt.Errorf("either --name or --file is required")
			}
			return cmds.Create(*flags, global.ConfigPath)
		},
	}
	cmd.Flags().StringVar(&flags.Name, "name", "", "process name")
	cmd.Flags().StringArrayVar(&flags.Participants, "participant", nil, "participant name (repeatable)")
	cmd.Flags().StringArrayVar(&flags.AtNames, "at", nil, "mention handle for notifications (repeatable)")
	cmd.Flags().StringVar(&flags.Description, "description", "", "free-form description")
	cmd.Flags().StringVar(&flags.File, "file", "", "JSON create-request file (see 'rollcall template')")
	addAPIFlags(cmd, &flags.APIFlags)
	return cmd
}

func createModeCommand(cmds command) *cobra.Command {
	flags := &APIFlags{}
	cmd := &cobra.Command{
		Use:   "mode <name> <on|off>",
		Short: "Enable or disable a process",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmds.SetMode(args[0], args[1], *flags)
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

func createDeleteCommand(cmds command) *cobra.Command {
	flags := &APIFlags{}
	yes := false
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a process and its data",
		Long:  `Delete a process and its data. Irreversible; requires --yes.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete %q without --yes", args[0])
			}
			return cmds.Delete(args[0], *flags)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the irreversible delete")
	addAPIFlags(cmd, flags)
	return cmd
}
