// cmd/gitlet/main.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlet/internal/config"
	"gitlet/internal/errors"
	"gitlet/internal/logging"
	"gitlet/internal/repository"
	"gitlet/internal/watch"
	"gitlet/internal/workspace"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/message"
)

const msgIncorrectOperands = "Incorrect operands."

var (
	cfgFile   string
	logLevel  string
	settings  = config.Default()
	logger    = logging.Nop().Logger
	numFormat = message.NewPrinter(message.MatchLanguage("en"))
)

var rootCmd = &cobra.Command{
	Use:   "gitlet",
	Short: "Gitlet is a small local version control system",
	Long: `Gitlet snapshots the files of a working directory into commits,
keeps them in a history graph, and lets you branch, switch and merge.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			settings.LogLevel = logLevel
		}

		base, err := logging.NewLogger(settings.LogLevel, settings.Development)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = base.WithOperation(uuid.NewString()).With(zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// operands rejects calls with the wrong number of arguments.
func operands(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < lo || len(args) > hi {
			return errors.PreconditionFailed(msgIncorrectOperands)
		}
		return nil
	}
}

func options() *repository.Options {
	return &repository.Options{Settings: settings, Logger: logger}
}

// withRepo opens the repository enclosing the current directory for the
// duration of fn.
func withRepo(fn func(r *repository.Repository, cwd string) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	root, err := workspace.FindRoot(cwd)
	if err != nil {
		return errors.PreconditionFailed(repository.MsgNotInitialized)
	}

	r, err := repository.Open(root, options())
	if err != nil {
		return err
	}
	defer r.Close()
	return fn(r, cwd)
}

// names maps command line paths onto working tree names.
func names(r *repository.Repository, cwd string, args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		name, err := r.Normalize(cwd, arg)
		if err != nil {
			logger.Debug("path rejected", zap.String("arg", arg), zap.Error(err))
			return nil, errors.NotFound(repository.MsgFileNotFound)
		}
		out = append(out, name)
	}
	return out, nil
}

func init() {
	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a repository in the current directory",
		Args:  operands(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			r, err := repository.Init(dir, options())
			if err != nil {
				return err
			}
			return r.Close()
		},
	}

	var addCmd = &cobra.Command{
		Use:   "add <file>...",
		Short: "Stage files for the next commit",
		Args:  operands(1, 1<<16),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				files, err := names(r, cwd, args)
				if err != nil {
					return err
				}
				return r.Add(files...)
			})
		},
	}

	var commitCmd = &cobra.Command{
		Use:   "commit <message>",
		Short: "Record the staged changes",
		Args:  operands(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := ""
			if len(args) == 1 {
				msg = args[0]
			}
			return withRepo(func(r *repository.Repository, cwd string) error {
				_, err := r.Commit(msg)
				return err
			})
		},
	}

	var rmCmd = &cobra.Command{
		Use:   "rm <file>...",
		Short: "Unstage a file, or stage its removal if it is tracked",
		Args:  operands(1, 1<<16),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				files, err := names(r, cwd, args)
				if err != nil {
					return err
				}
				return r.Rm(files...)
			})
		},
	}

	var logCmd = &cobra.Command{
		Use:   "log",
		Short: "Show the history of the current commit",
		Args:  operands(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				entries, err := r.Log()
				if err != nil {
					return err
				}
				printLog(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}

	var globalLogCmd = &cobra.Command{
		Use:   "global-log",
		Short: "Show every commit ever made",
		Args:  operands(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				entries, err := r.GlobalLog()
				if err != nil {
					return err
				}
				printLog(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}

	var findCmd = &cobra.Command{
		Use:   "find <message>",
		Short: "Print the ids of commits with the given message",
		Args:  operands(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				ids, err := r.Find(args[0])
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show branches, staged files and working tree changes",
		Args:  operands(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			watching, _ := cmd.Flags().GetBool("watch")
			return withRepo(func(r *repository.Repository, cwd string) error {
				status, err := r.Status()
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), status)
				if !watching {
					return nil
				}
				return watchStatus(cmd, r)
			})
		},
	}
	statusCmd.Flags().BoolP("watch", "w", false, "reprint the status whenever the working tree changes")

	var checkoutCmd = &cobra.Command{
		Use:   "checkout [<commit id>] -- <file> | <branch>",
		Short: "Restore a file or switch branches",
		Example: `  gitlet checkout -- notes.txt
  gitlet checkout a0c4f1e -- notes.txt
  gitlet checkout feature`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash := cmd.ArgsLenAtDash()
			return withRepo(func(r *repository.Repository, cwd string) error {
				switch {
				case dash == 0 && len(args) == 1:
					files, err := names(r, cwd, args)
					if err != nil {
						return err
					}
					return r.CheckoutFile(files[0])
				case dash == 1 && len(args) == 2:
					files, err := names(r, cwd, args[1:])
					if err != nil {
						return err
					}
					return r.CheckoutFileAt(args[0], files[0])
				case dash == -1 && len(args) == 1:
					return r.CheckoutBranch(args[0])
				}
				return errors.PreconditionFailed(msgIncorrectOperands)
			})
		},
	}

	var branchCmd = &cobra.Command{
		Use:   "branch <name>",
		Short: "Create a branch at the current commit",
		Args:  operands(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				return r.BranchCreate(args[0])
			})
		},
	}

	var rmBranchCmd = &cobra.Command{
		Use:   "rm-branch <name>",
		Short: "Delete a branch pointer",
		Args:  operands(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				return r.BranchRemove(args[0])
			})
		},
	}

	var resetCmd = &cobra.Command{
		Use:   "reset <commit id>",
		Short: "Check out a commit and move the current branch to it",
		Args:  operands(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				return r.Reset(args[0])
			})
		},
	}

	var mergeCmd = &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  operands(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				result, err := r.Merge(args[0])
				if err != nil {
					return err
				}
				printMerge(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}

	var diffCmd = &cobra.Command{
		Use:   "diff [file...]",
		Short: "Show working tree changes against the current commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				files, err := names(r, cwd, args)
				if err != nil {
					return err
				}
				diffs, err := r.Diff(files...)
				if err != nil {
					return err
				}
				printDiffs(cmd.OutOrStdout(), diffs)
				return nil
			})
		},
	}

	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Read or write repository settings",
	}

	var configGetCmd = &cobra.Command{
		Use:   "get <section.key>",
		Short: "Print a repository setting",
		Args:  operands(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				value, err := r.ConfigGet(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	}

	var configSetCmd = &cobra.Command{
		Use:   "set <section.key> <value>",
		Short: "Change a repository setting",
		Args:  operands(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				return r.ConfigSet(args[0], args[1])
			})
		},
	}

	var statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Summarise the object store",
		Args:  operands(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(func(r *repository.Repository, cwd string) error {
				stats, err := r.Stats()
				if err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "",
		"settings file (default is $HOME/.gitlet/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level on stderr: debug, info, warn or error")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(globalLogCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(rmBranchCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statsCmd)

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

// watchStatus reprints the status after every burst of working tree
// changes until interrupted.
func watchStatus(cmd *cobra.Command, r *repository.Repository) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(r.Root, watch.DefaultDebounce, logger)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	return w.Run(ctx, func(changed []string) {
		logger.Debug("refreshing status", zap.Strings("changed", changed))
		status, err := r.Status()
		if err != nil {
			logger.Warn("status refresh failed", zap.Error(err))
			return
		}
		fmt.Fprintln(cmd.OutOrStdout())
		printStatus(cmd.OutOrStdout(), status)
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(errors.Message(err))
		os.Exit(1)
	}
}
