package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abdulehsan/Jarvis/internal/google"
)

// errAborted is returned when the user declines to overwrite an alias.
var errAborted = errors.New("aborted")

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage connected Google accounts",
	}
	cmd.AddCommand(newAccountsAddCmd())
	cmd.AddCommand(newAccountsListCmd())
	return cmd
}

func newAccountsAddCmd() *cobra.Command {
	var (
		force   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "add [alias]",
		Short: "Connect a Google account under an alias",
		Long: `Run the Google consent flow in your browser and store the resulting
credentials under the given alias (e.g. 'personal' or 'work').

The OAuth client secrets file (CLIENT_SECRETS_FILE, default credentials.json)
must be downloaded from the Google Cloud Console first. Aliases are lower-cased
and spaces become underscores.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			err := runAccountsAdd(cmd.InOrStdin(), cmd.OutOrStdout(), raw, force, timeout)
			if errors.Is(err, errAborted) {
				cmd.Println("Aborting authentication.")
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing alias without asking")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for consent")

	return cmd
}

func runAccountsAdd(in io.Reader, out io.Writer, rawAlias string, force bool, timeout time.Duration) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	conf, err := google.LoadClientConfig(cfg.Google.ClientSecretsFile)
	if err != nil {
		return err
	}
	store, err := newCredentialStore(cfg)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(in)
	alias, err := resolveAlias(reader, out, rawAlias, isTerminal(in))
	if err != nil {
		return err
	}
	if store.Exists(alias) && !force {
		if err := confirmOverwrite(reader, out, alias, store.Path(alias)); err != nil {
			return err
		}
	}

	enroller := &google.Enroller{
		Config:  conf,
		Store:   store,
		Out:     out,
		Logger:  logger,
		Timeout: timeout,
	}
	if _, err := enroller.Enroll(ctx, alias); err != nil {
		return fmt.Errorf("failed to complete the OAuth flow: %w", err)
	}

	fmt.Fprintf(out, "Successfully authenticated and saved credentials for '%s' to: %s\n", alias, store.Path(alias))
	return nil
}

// resolveAlias normalises raw, prompting for it when empty.
func resolveAlias(r *bufio.Reader, out io.Writer, raw string, interactive bool) (string, error) {
	if strings.TrimSpace(raw) == "" {
		if !interactive {
			return "", fmt.Errorf("account alias is required")
		}
		fmt.Fprint(out, "Enter a short, unique alias for this account (e.g., 'personal', 'student', 'work1'): ")
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read alias: %w", err)
		}
		raw = line
	}

	alias := google.NormalizeAlias(raw)
	if alias == "" {
		return "", fmt.Errorf("account alias cannot be empty")
	}
	if err := google.ValidateAlias(alias); err != nil {
		return "", err
	}
	return alias, nil
}

// isTerminal reports whether in is an interactive terminal. Readers that
// are not files, such as test input, count as interactive.
func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return true
	}
	return term.IsTerminal(int(f.Fd()))
}

// confirmOverwrite asks before replacing an existing record. Only "yes"
// proceeds.
func confirmOverwrite(r *bufio.Reader, out io.Writer, alias, path string) error {
	fmt.Fprintf(out, "A token file already exists for alias '%s' at %s.\n", alias, path)
	fmt.Fprint(out, "Do you want to overwrite it? (yes/no): ")
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read answer: %w", err)
	}
	if strings.ToLower(strings.TrimSpace(line)) != "yes" {
		return errAborted
	}
	fmt.Fprintf(out, "Proceeding to overwrite %s.\n", path)
	return nil
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connected Google accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := newCredentialStore(cfg)
			if err != nil {
				return err
			}
			resolver, err := google.NewResolver(google.ResolverConfig{Store: store})
			if err != nil {
				return err
			}
			statuses, err := resolver.Audit()
			if err != nil {
				return err
			}
			printAccounts(cmd.OutOrStdout(), statuses, time.Now())
			return nil
		},
	}
}

func printAccounts(out io.Writer, statuses []google.AccountStatus, now time.Time) {
	if len(statuses) == 0 {
		fmt.Fprintln(out, "No accounts connected. Run 'jarvis accounts add <alias>' to add one.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALIAS\tSTATUS\tEXPIRY\tPATH")
	for _, st := range statuses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.Alias, accountState(st, now), formatExpiry(st.Expiry), st.Path)
	}
	_ = tw.Flush()
}

func accountState(st google.AccountStatus, now time.Time) string {
	switch {
	case st.Err != nil:
		return "error: " + st.Err.Error()
	case len(st.MissingScopes) > 0:
		return "missing scopes: " + strings.Join(st.MissingScopes, ", ")
	case !st.Expiry.IsZero() && st.Expiry.Before(now) && !st.Refreshable:
		return "expired"
	case st.Refreshable:
		return "ok"
	default:
		return "ok (no refresh token)"
	}
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
