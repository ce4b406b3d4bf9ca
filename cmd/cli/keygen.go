package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/jwtauth/internal/infrastructure/crypto"
	"github.com/turtacn/jwtauth/internal/infrastructure/kms"
	"github.com/turtacn/jwtauth/pkg/constants"
)

func newKeygenCmd(root *rootOptions) *cobra.Command {
	var (
		size       int
		storeVault bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a base64 HS512 signing secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if size < constants.MinSigningKeyBytes {
				return fmt.Errorf("--bytes must be at least %d", constants.MinSigningKeyBytes)
			}
			secret, err := crypto.GenerateSigningSecret(size)
			if err != nil {
				return err
			}

			if !storeVault {
				fmt.Fprintln(cmd.OutOrStdout(), secret)
				return nil
			}

			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			src, err := kms.NewVaultSecretSource(&cfg.Vault, log)
			if err != nil {
				return err
			}
			if err := src.StoreSigningSecret(context.Background(), secret); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signing secret stored at %s/%s\n", cfg.Vault.MountPath, cfg.Vault.SecretPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", constants.MinSigningKeyBytes, "secret length in bytes")
	cmd.Flags().BoolVar(&storeVault, "store-vault", false, "write the secret to Vault instead of printing it")
	return cmd
}
