package main

import (
	"fmt"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/spf13/cobra"
)

var (
	tokenEmail   string
	tokenName    string
	tokenPicture string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a session token for local development",
	Long: `Signs a bearer token for the given identity with JWT_SECRET, so saved resumes and
analysis history can be exercised without the identity provider in front of the server.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Identity email")
	tokenCmd.Flags().StringVarP(&tokenName, "name", "n", "", "Display name")
	tokenCmd.Flags().StringVar(&tokenPicture, "picture", "", "Avatar URL")

	if err := tokenCmd.MarkFlagRequired("email"); err != nil {
		panic(fmt.Sprintf("failed to mark email flag as required: %v", err))
	}

	rootCmd.AddCommand(tokenCmd)
}

// issueToken signs a token for identity with the environment's JWT settings.
func issueToken(identity middleware.Identity) (string, error) {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return "", err
	}
	return server.NewJWTService(jwtConfig).GenerateToken(identity)
}

func runToken(cmd *cobra.Command, _ []string) error {
	token, err := issueToken(middleware.Identity{
		Email:   tokenEmail,
		Name:    tokenName,
		Picture: tokenPicture,
	})
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
