package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tyemirov/eventmetrics/pkg/ingesttoken"
)

const configCodeInvalidTokenTTL = "config.invalid_token_ttl"

// newMintTokenCommand issues bearer tokens for event pushers sharing the ingest secret.
func newMintTokenCommand() *cobra.Command {
	mintCmd := &cobra.Command{
		Use:   "mint-token",
		Short: "Print a bearer token accepted by the event ingest routes",
		Args:  cobra.NoArgs,
		RunE:  runMintToken,
	}
	mintCmd.Flags().String("source", "", "Identifier of the pushing node, stored as the token subject")
	mintCmd.Flags().Duration("ttl", 30*24*time.Hour, "Token lifetime")
	return mintCmd
}

func runMintToken(command *cobra.Command, arguments []string) error {
	signingKey := viper.GetString("ingest_signing_key")
	if signingKey == "" {
		return configError(configCodeMissingIngestSigningKey, "ingest_signing_key must be provided")
	}
	issuer := strings.TrimSpace(viper.GetString("ingest_issuer"))
	if issuer == "" {
		issuer = defaultIngestIssuer
	}
	source, _ := command.Flags().GetString("source")
	ttl, _ := command.Flags().GetDuration("ttl")
	if ttl <= 0 {
		return configError(configCodeInvalidTokenTTL, "ttl must be greater than zero")
	}

	token, expiresAt, err := ingesttoken.Mint(ingesttoken.Config{
		SigningKey: []byte(signingKey),
		Issuer:     issuer,
	}, source, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(command.OutOrStdout(), "%s\n# expires %s\n", token, expiresAt.UTC().Format(time.RFC3339))
	return err
}
