package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"hoard/internal/app"
	"hoard/internal/config"
	"hoard/internal/hoard"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error (%s): %v\n", category(err), err)
		os.Exit(exitCode(err))
	}
}

// loadConfig reads the config file from its default location.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a HoardApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "MakeDirectory", "PutFile").
func newApp(ctx context.Context, operation string) (*app.HoardApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewHoardApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// currentUser is the owner of the repository a command works on.
func currentUser(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		return "", fmt.Errorf("no user given: pass --user or set HOARD_USER: %w", hoard.ErrInvalidArgument)
	}
	return user, nil
}

// readPassphrase prompts on the terminal without echo. Input that is not a
// terminal is read as a single line.
func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(data), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func wantJSON(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON
}

func printRepository(cmd *cobra.Command, info *hoard.RepositoryInfo) error {
	if wantJSON(cmd) {
		return printJSON(info)
	}
	fmt.Printf("Owner:     %s\n", info.Owner)
	fmt.Printf("Capacity:  %d\n", info.Capacity)
	fmt.Printf("Used:      %d\n", info.Used)
	fmt.Printf("Remaining: %d\n", info.Remaining)
	fmt.Printf("Created:   %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func printDirectory(cmd *cobra.Command, info *hoard.DirectoryInfo) error {
	if wantJSON(cmd) {
		return printJSON(info)
	}
	fmt.Printf("%s/  %d bytes%s\n", info.Path, info.Used, publicMark(info.IsPublic))
	return nil
}

func printFile(cmd *cobra.Command, info *hoard.FileInfo) error {
	if wantJSON(cmd) {
		return printJSON(info)
	}
	fmt.Printf("%s  %d bytes%s\n", info.Path, info.Size, publicMark(info.IsPublic))
	return nil
}

func publicMark(public bool) string {
	if public {
		return "  [public]"
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:           "hoard",
	Short:         "Per-user file repositories with quotas",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		cfg.LogDir = defaults["log_dir"]

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Working Dir: %s\n", cfg.WorkingDir)
		fmt.Printf("Storage:     %s\n", cfg.Storage.Root)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		m := &config.Manager{}
		return m.Write(os.Stdout, cfg)
	},
}

var configVaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage snapshot vaults",
}

var configVaultCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every configured vault is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := app.CheckVaults(cmd.Context(), cfg); err != nil {
			return err
		}
		fmt.Printf("%d vault(s) OK\n", len(cfg.Vaults))
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the metadata database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		status, err := app.Migrate(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Schema at version %d\n", status.Current)
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		status, err := app.SchemaStatus(cfg)
		if err != nil {
			return err
		}
		dirty := ""
		if status.Dirty {
			dirty = " (dirty)"
		}
		fmt.Printf("Schema at version %d of %d%s\n", status.Current, status.Latest, dirty)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return errors.New("passphrases do not match")
		}

		recipient, err := app.SetupKeys(cfg, passphrase)
		if err != nil {
			return err
		}
		if recipient != "" {
			fmt.Printf("Public key: %s\n", recipient)
		}
		return nil
	},
}

// repo command
var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage the user's repository",
}

var repoCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the user's repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		capacity, _ := cmd.Flags().GetInt64("capacity")

		a, err := newApp(cmd.Context(), "CreateRepository")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.CreateRepository(cmd.Context(), user, capacity)
		if err != nil {
			return err
		}
		return printRepository(cmd, info)
	},
}

var repoInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show capacity and usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "RepositoryInfo")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.RepositoryInfo(cmd.Context(), user)
		if err != nil {
			return err
		}
		return printRepository(cmd, info)
	},
}

var repoResizeCmd = &cobra.Command{
	Use:   "resize CAPACITY",
	Short: "Change the repository capacity in bytes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		capacity, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("capacity %q: %w", args[0], hoard.ErrInvalidArgument)
		}

		a, err := newApp(cmd.Context(), "ResizeRepository")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.ResizeRepository(cmd.Context(), user, capacity)
		if err != nil {
			return err
		}
		return printRepository(cmd, info)
	},
}

var repoRmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Remove the repository and everything in it",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "RemoveRepository")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveRepository(cmd.Context(), user); err != nil {
			return err
		}
		fmt.Printf("Removed repository of %s\n", user)
		return nil
	},
}

var repoFsckCmd = &cobra.Command{
	Use:   "fsck",
	Short: "Compare the repository's rows with its files on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "Reconcile")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Reconcile(cmd.Context(), user)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(report)
		}
		if report.Clean() {
			fmt.Println("Repository is consistent.")
			return nil
		}
		for _, p := range report.Orphans {
			fmt.Printf("orphan   %s\n", p)
		}
		for _, p := range report.Missing {
			fmt.Printf("missing  %s\n", p)
		}
		for _, m := range report.SizeMismatches {
			fmt.Printf("size     %s  recorded %d, on disk %d\n", m.Path, m.Recorded, m.Actual)
		}
		return nil
	},
}

// ls command
var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		dirPath := ""
		if len(args) > 0 {
			dirPath = args[0]
		}

		a, err := newApp(cmd.Context(), "List")
		if err != nil {
			return err
		}
		defer a.Close()

		content, err := a.List(cmd.Context(), user, dirPath)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(content)
		}
		for _, d := range content.Directories {
			fmt.Printf("%s/%s\n", d.Name, publicMark(d.IsPublic))
		}
		for _, f := range content.Files {
			fmt.Printf("%s  %d%s\n", f.Name, f.Size, publicMark(f.IsPublic))
		}
		return nil
	},
}

// dir command
var dirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Manage directories",
}

var dirMkdirCmd = &cobra.Command{
	Use:   "mkdir PATH",
	Short: "Create a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		a, err := newApp(cmd.Context(), "MakeDirectory")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.MakeDirectory(cmd.Context(), user, args[0], force)
		if err != nil {
			return err
		}
		return printDirectory(cmd, info)
	},
}

var dirInfoCmd = &cobra.Command{
	Use:   "info PATH",
	Short: "Show a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "DirectoryInfo")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.DirectoryInfo(cmd.Context(), user, args[0])
		if err != nil {
			return err
		}
		return printDirectory(cmd, info)
	},
}

var dirRenameCmd = &cobra.Command{
	Use:   "rename PATH NAME",
	Short: "Rename a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		a, err := newApp(cmd.Context(), "RenameDirectory")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.RenameDirectory(cmd.Context(), user, args[0], args[1], force)
		if err != nil {
			return err
		}
		return printDirectory(cmd, info)
	},
}

var dirMvCmd = &cobra.Command{
	Use:   "mv PATH TARGET",
	Short: "Move a directory into TARGET (\"/\" for the root)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		a, err := newApp(cmd.Context(), "MoveDirectory")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.MoveDirectory(cmd.Context(), user, args[0], args[1], force)
		if err != nil {
			return err
		}
		return printDirectory(cmd, info)
	},
}

var dirCpCmd = &cobra.Command{
	Use:   "cp PATH TARGET",
	Short: "Copy a directory and its content into TARGET",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		a, err := newApp(cmd.Context(), "CopyDirectory")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.CopyDirectory(cmd.Context(), user, args[0], args[1], force)
		if err != nil {
			return err
		}
		return printDirectory(cmd, info)
	},
}

var dirRmCmd = &cobra.Command{
	Use:   "rm PATH",
	Short: "Remove a directory and its content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "RemoveDirectory")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveDirectory(cmd.Context(), user, args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

// file command
var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Manage files",
}

var filePutCmd = &cobra.Command{
	Use:   "put LOCAL PATH",
	Short: "Upload LOCAL (\"-\" for stdin) as PATH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()
			r = f
		}

		a, err := newApp(cmd.Context(), "PutFile")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.PutFile(cmd.Context(), user, args[1], r, force)
		if err != nil {
			return err
		}
		return printFile(cmd, info)
	},
}

var fileGetCmd = &cobra.Command{
	Use:   "get PATH [LOCAL]",
	Short: "Download PATH to LOCAL (stdout when omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if len(args) == 2 {
			f, err := os.OpenFile(args[1], os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[1], err)
			}
			defer f.Close()
			w = f
		}

		a, err := newApp(cmd.Context(), "GetFile")
		if err != nil {
			return err
		}
		defer a.Close()

		_, err = a.GetFile(cmd.Context(), user, args[0], w)
		return err
	},
}

var fileInfoCmd = &cobra.Command{
	Use:   "info PATH",
	Short: "Show a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "FileInfo")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.FileInfo(cmd.Context(), user, args[0])
		if err != nil {
			return err
		}
		return printFile(cmd, info)
	},
}

var fileRenameCmd = &cobra.Command{
	Use:   "rename PATH NAME",
	Short: "Rename a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		a, err := newApp(cmd.Context(), "RenameFile")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.RenameFile(cmd.Context(), user, args[0], args[1], force)
		if err != nil {
			return err
		}
		return printFile(cmd, info)
	},
}

var fileMvCmd = &cobra.Command{
	Use:   "mv PATH TARGET",
	Short: "Move a file into TARGET (\"/\" for the root)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		a, err := newApp(cmd.Context(), "MoveFile")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.MoveFile(cmd.Context(), user, args[0], args[1], force)
		if err != nil {
			return err
		}
		return printFile(cmd, info)
	},
}

var fileCpCmd = &cobra.Command{
	Use:   "cp PATH TARGET",
	Short: "Copy a file into TARGET",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		a, err := newApp(cmd.Context(), "CopyFile")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.CopyFile(cmd.Context(), user, args[0], args[1], force)
		if err != nil {
			return err
		}
		return printFile(cmd, info)
	},
}

var fileRmCmd = &cobra.Command{
	Use:   "rm PATH",
	Short: "Remove a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "RemoveFile")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveFile(cmd.Context(), user, args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

// link command
var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Manage public share links",
}

func printLink(cmd *cobra.Command, link *app.SharedLink) error {
	if wantJSON(cmd) {
		return printJSON(link)
	}
	fmt.Printf("Token: %s\n", link.Token)
	fmt.Printf("Owner: %s\n", link.Owner)
	if link.Directory != nil {
		return printDirectory(cmd, link.Directory)
	}
	return printFile(cmd, link.File)
}

var linkDirCmd = &cobra.Command{
	Use:   "dir PATH",
	Short: "Share a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "ShareDirectory")
		if err != nil {
			return err
		}
		defer a.Close()

		link, err := a.ShareDirectory(cmd.Context(), user, args[0])
		if err != nil {
			return err
		}
		return printLink(cmd, link)
	},
}

var linkFileCmd = &cobra.Command{
	Use:   "file PATH",
	Short: "Share a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "ShareFile")
		if err != nil {
			return err
		}
		defer a.Close()

		link, err := a.ShareFile(cmd.Context(), user, args[0])
		if err != nil {
			return err
		}
		return printLink(cmd, link)
	},
}

var linkResolveCmd = &cobra.Command{
	Use:   "resolve TOKEN",
	Short: "Show what a share token points to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ResolveLink")
		if err != nil {
			return err
		}
		defer a.Close()

		link, err := a.ResolveLink(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printLink(cmd, link)
	},
}

var linkRevokeCmd = &cobra.Command{
	Use:   "revoke PATH",
	Short: "Revoke the share link of a file or directory (--dir)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		isDir, _ := cmd.Flags().GetBool("dir")

		a, err := newApp(cmd.Context(), "RevokeLink")
		if err != nil {
			return err
		}
		defer a.Close()

		if isDir {
			err = a.RevokeDirectory(cmd.Context(), user, args[0])
		} else {
			err = a.RevokeFile(cmd.Context(), user, args[0])
		}
		if err != nil {
			return err
		}
		fmt.Printf("Revoked %s\n", args[0])
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "History")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-18s  %s  %-8s  %-8s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Push or pull metadata snapshots",
}

var snapshotPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload an encrypted snapshot of the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "PushSnapshot")
		if err != nil {
			return err
		}
		defer a.Close()

		version, err := a.PushSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Pushed snapshot version %d\n", version)
		return nil
	},
}

var snapshotPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local database with the latest snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		passphrase := ""
		if cfg.Encryption.Type != "none" {
			passphrase, err = readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
		}

		version, err := app.PullSnapshot(cmd.Context(), cfg, passphrase, force)
		if err != nil {
			return err
		}
		fmt.Printf("Restored snapshot version %d\n", version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("user", "u", os.Getenv("HOARD_USER"), "Owner of the repository to work on")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configVaultCmd)
	configVaultCmd.AddCommand(configVaultCheckCmd)

	// db subcommands
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)

	keysCmd.AddCommand(keysInitCmd)

	// repo subcommands
	repoCmd.AddCommand(repoCreateCmd)
	repoCreateCmd.Flags().Int64("capacity", 0, "Capacity in bytes (default from config)")
	repoCmd.AddCommand(repoInfoCmd)
	repoCmd.AddCommand(repoResizeCmd)
	repoCmd.AddCommand(repoRmCmd)
	repoCmd.AddCommand(repoFsckCmd)

	// dir subcommands
	for _, c := range []*cobra.Command{dirMkdirCmd, dirRenameCmd, dirMvCmd, dirCpCmd} {
		c.Flags().BoolP("force", "f", false, "Pick a free name instead of failing on a collision")
		dirCmd.AddCommand(c)
	}
	dirCmd.AddCommand(dirInfoCmd)
	dirCmd.AddCommand(dirRmCmd)

	// file subcommands
	for _, c := range []*cobra.Command{filePutCmd, fileRenameCmd, fileMvCmd, fileCpCmd} {
		c.Flags().BoolP("force", "f", false, "Pick a free name instead of failing on a collision")
		fileCmd.AddCommand(c)
	}
	fileCmd.AddCommand(fileGetCmd)
	fileCmd.AddCommand(fileInfoCmd)
	fileCmd.AddCommand(fileRmCmd)

	// link subcommands
	linkCmd.AddCommand(linkDirCmd)
	linkCmd.AddCommand(linkFileCmd)
	linkCmd.AddCommand(linkResolveCmd)
	linkCmd.AddCommand(linkRevokeCmd)
	linkRevokeCmd.Flags().Bool("dir", false, "PATH is a directory")

	snapshotCmd.AddCommand(snapshotPushCmd)
	snapshotCmd.AddCommand(snapshotPullCmd)
	snapshotPullCmd.Flags().BoolP("force", "f", false, "Replace an existing local database")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(dirCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(snapshotCmd)
}
