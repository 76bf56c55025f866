package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toeicpractice/toeic/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save an access token as the current session",
	Long: `Save an access token issued by the practice site.

JWT tokens fill in the user id, email and role from their claims. Opaque
tokens are accepted as-is; pass --email or --id to name the account.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		email, _ := cmd.Flags().GetString("email")
		id, _ := cmd.Flags().GetString("id")

		u, err := auth.UserFromToken(token, auth.User{ID: id, Email: email})
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.sessions.Save(cmd.Context(), u); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", u.DisplayName())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.sessions.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		out := cmd.OutOrStdout()
		u, ok := e.sessions.Current(cmd.Context())
		if !ok {
			fmt.Fprintln(out, "Not signed in.")
			return nil
		}
		fmt.Fprintf(out, "User:   %s\n", u.DisplayName())
		if u.ID != "" {
			fmt.Fprintf(out, "ID:     %s\n", u.ID)
		}
		if u.Role != "" {
			fmt.Fprintf(out, "Role:   %s\n", u.Role)
		}
		if claims, err := auth.ParseClaims(u.Token); err == nil && !claims.ExpiresAt.IsZero() {
			fmt.Fprintf(out, "Expires: %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("token", "", "Access token (required)")
	loginCmd.Flags().String("email", "", "Account email, for opaque tokens")
	loginCmd.Flags().String("id", "", "Account id, for opaque tokens")
	_ = loginCmd.MarkFlagRequired("token")
}
