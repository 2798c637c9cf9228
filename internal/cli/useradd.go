package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/sheetgraph/internal/auth"
	"github.com/dgallion1/sheetgraph/internal/store"
)

func newUserAddCommand() *cobra.Command {
	var (
		dbPath string
		acct   auth.Account
	)
	cmd := &cobra.Command{
		Use:   "useradd",
		Short: "Create or update a server-mode user",
		Long: `Store a user with a bcrypt password hash in the server-mode database.
Running it again for an existing username replaces the password and profile.`,
		Example: `  sheetgraph useradd --db sheetgraph.db --username analyst_1 --password s3cret --role Analyst`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.OpenSQLite(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			u, err := auth.Provision(cmd.Context(), st, acct)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "user %s ready (id %s, role %s)\n", u.Username, u.ID, u.Role)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&dbPath, "db", "sheetgraph.db", "Path to the SQLite database")
	f.StringVarP(&acct.Username, "username", "u", "", "Login name (3-20 letters, digits or underscores)")
	f.StringVarP(&acct.Password, "password", "p", "", "Password")
	f.StringVar(&acct.Role, "role", "user", "Role shown in the dashboard")
	f.StringVar(&acct.Name, "name", "", "Display name")
	f.StringVar(&acct.Email, "email", "", "Contact email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
