package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PizzaHomicide/usercard/internal/config"
	"github.com/PizzaHomicide/usercard/internal/domain"
	"github.com/PizzaHomicide/usercard/internal/settings"
	"github.com/PizzaHomicide/usercard/internal/storage"
	"github.com/PizzaHomicide/usercard/internal/version"
	"github.com/spf13/cobra"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "usercard",
		Short:        "Show and edit the locally stored user profile",
		SilenceUsage: true,
	}

	root.AddCommand(
		newShowCmd(cfg),
		newSetCmd(cfg),
		newImportCmd(cfg),
		newResetCmd(cfg),
		newConfigCmd(),
		newEnvCmd(),
		newVersionCmd(),
	)
	return root
}

// withAccessor opens the configured store for the duration of fn
func withAccessor(cfg *config.Config, fn func(*settings.Accessor) error) error {
	store, err := storage.Open(cfg)
	if err != nil {
		return fmt.Errorf("unable to open storage: %w", err)
	}
	defer store.Close()

	return fn(settings.New(store))
}

func newShowCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current profile as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccessor(cfg, func(a *settings.Accessor) error {
				return writeState(cmd.OutOrStdout(), a.GetLocalState())
			})
		},
	}
}

func newSetCmd(cfg *config.Config) *cobra.Command {
	var info domain.UserInfo

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change individual profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.NFlag() == 0 {
				return errors.New("nothing to set, pass at least one of --avatar, --name, --description, --donate")
			}

			return withAccessor(cfg, func(a *settings.Accessor) error {
				// Refuse to write rather than overwrite a profile that could not be read
				state, err := a.LoadLocalState()
				if err != nil {
					return fmt.Errorf("%w (use import or reset to replace it)", err)
				}
				if flags.Changed("avatar") {
					state.UserInfo.Avatar = info.Avatar
				}
				if flags.Changed("name") {
					state.UserInfo.Name = info.Name
				}
				if flags.Changed("description") {
					state.UserInfo.Description = info.Description
				}
				if flags.Changed("donate") {
					state.UserInfo.Donate = info.Donate
				}

				if err := a.SetLocalState(state); err != nil {
					return err
				}
				return writeState(cmd.OutOrStdout(), state)
			})
		},
	}

	cmd.Flags().StringVar(&info.Avatar, "avatar", "", "avatar image URL")
	cmd.Flags().StringVar(&info.Name, "name", "", "display name")
	cmd.Flags().StringVar(&info.Description, "description", "", "description, may contain markup")
	cmd.Flags().StringVar(&info.Donate, "donate", "", "donation link, may contain markup")
	return cmd
}

func newImportCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the profile with the contents of a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("unable to read %s: %w", args[0], err)
			}

			state, err := settings.ParseState(data)
			if err != nil {
				return err
			}

			return withAccessor(cfg, func(a *settings.Accessor) error {
				return a.SetLocalState(state)
			})
		},
	}
}

func newResetCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccessor(cfg, func(a *settings.Accessor) error {
				return a.ResetLocalState()
			})
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change the config file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Save a config value, one of: " + strings.Join(config.SettableKeys(), ", "),
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return config.SetValue(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the location of the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := config.Path()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
				return err
			},
		},
	)
	return cmd
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables that override the config",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, v := range config.EnvVars() {
				_, _ = fmt.Fprintf(out, "%s\n    %s\n", v.Name, v.Desc)
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionInfo())
		},
	}
}

func writeState(w io.Writer, state domain.UserState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	// Description and donate hold markup
	enc.SetEscapeHTML(false)
	return enc.Encode(state)
}
