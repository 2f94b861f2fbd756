package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// loginCmd signs in and caches the token set under the state directory.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the digitization service",
	Run: func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" {
			email = promptLine("Email: ")
		}
		if password == "" {
			password = promptLine("Password: ")
		}

		app := newApp()
		defer app.Close()

		if err := identitySession(app).SignIn(cmd.Context(), email, password); err != nil {
			exitf("Sign-in failed: %v", err)
		}
		fmt.Println("Signed in.")
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account; a confirmation code is sent by email",
	Run: func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" {
			email = promptLine("Email: ")
		}
		if password == "" {
			password = promptLine("Password: ")
		}

		app := newApp()
		defer app.Close()

		if err := identityClient(app).SignUp(cmd.Context(), email, password); err != nil {
			exitf("Sign-up failed: %v", err)
		}
		fmt.Println("Account created. Check your email for the confirmation code,")
		fmt.Println("then run: scandesk confirm --email", email, "--code <code>")
	},
}

var confirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Confirm a new account with the emailed code",
	Run: func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		code, _ := cmd.Flags().GetString("code")
		if email == "" {
			email = promptLine("Email: ")
		}
		if code == "" {
			code = promptLine("Confirmation code: ")
		}

		app := newApp()
		defer app.Close()

		if err := identityClient(app).ConfirmSignUp(cmd.Context(), email, code); err != nil {
			exitf("Confirmation failed: %v", err)
		}
		fmt.Println("Account confirmed. You can now run: scandesk login")
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and drop the cached tokens",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		defer app.Close()

		if err := identitySession(app).SignOut(cmd.Context()); err != nil {
			exitf("Sign-out failed: %v", err)
		}
		fmt.Println("Signed out.")
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prompted when omitted)")
	signupCmd.Flags().String("email", "", "account email")
	signupCmd.Flags().String("password", "", "account password (prompted when omitted)")
	confirmCmd.Flags().String("email", "", "account email")
	confirmCmd.Flags().String("code", "", "confirmation code from the email")

	rootCmd.AddCommand(loginCmd, signupCmd, confirmCmd, logoutCmd)
}
