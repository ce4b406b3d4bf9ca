package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/internal/infrastructure/crypto"
	"github.com/turtacn/jwtauth/internal/infrastructure/kms"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/utils"
)

func newTokenCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or inspect bearer tokens",
	}
	cmd.AddCommand(newTokenIssueCmd(root), newTokenInspectCmd(root))
	return cmd
}

func newTokenIssueCmd(root *rootOptions) *cobra.Command {
	var (
		subject  string
		roles    string
		validity time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a token for a subject without a password check",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(subject) == "" {
				return errors.ErrInvalidRequest.WithDescription("--subject is required")
			}
			codec, err := root.codec()
			if err != nil {
				return err
			}
			if validity <= 0 {
				validity = root.validity
			}

			token, err := codec.Encode(subject, utils.SplitAuthorities(roles), validity)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (username)")
	cmd.Flags().StringVar(&roles, "roles", "", "comma separated roles, e.g. ROLE_USER,ROLE_ADMIN")
	cmd.Flags().DurationVar(&validity, "validity", 0, "token lifetime (defaults to jwt.token_validity_seconds)")
	return cmd
}

func newTokenInspectCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Verify a token and print its principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := root.codec()
			if err != nil {
				return err
			}

			claims, err := codec.Decode(strings.TrimPrefix(args[0], "Bearer "))
			if err != nil {
				return fmt.Errorf("token rejected: %s", errors.CodeOf(err))
			}

			principal := service.ResolvePrincipal(claims)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "subject: %s\n", principal.Subject)
			fmt.Fprintf(out, "roles:   %s\n", strings.Join(principal.Roles, ","))
			fmt.Fprintf(out, "expires: %s\n", claims.ExpiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
}

// codec builds the token codec from the configured signing secret.
func (o *rootOptions) codec() (*crypto.JWTCodec, error) {
	cfg, log, err := o.load()
	if err != nil {
		return nil, err
	}
	src, err := kms.NewSecretSource(cfg, log)
	if err != nil {
		return nil, err
	}
	secret, err := src.FetchSigningSecret(context.Background())
	if err != nil {
		return nil, err
	}
	key, err := crypto.NewSigningKey(secret)
	if err != nil {
		return nil, err
	}
	o.validity = cfg.JWT.TokenValidity()
	return crypto.NewJWTCodec(key, o.validity, log), nil
}
