package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/LiamTF/hubsync/internal/hubspot"
	"github.com/LiamTF/hubsync/internal/reconcile"
	"github.com/LiamTF/hubsync/internal/transport"
	"github.com/LiamTF/hubsync/pkg/errors"
	"github.com/LiamTF/hubsync/pkg/logging"
)

var syncCmd = &cobra.Command{
	Use:   "sync <location-id>",
	Short: "Reconcile the parent/child hierarchy for one location",
	Long: `Sync performs a fresh read-reconcile-write cycle against HubSpot for
the given Client Company Location ID:

1. Fetch all child companies tagged with the location id
2. Find the parent company, or create one from the first child's name
3. Refresh the parent's name from the imported-name staging field
4. Associate every child with the parent (both directions)

The run is not transactional: a failure partway through association
leaves earlier associations in place.`,
	Example: `  hubsync sync loc-1
  hubsync sync loc-1 --verbose
  hubsync sync loc-1 --token pat-na1-xxxx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locationID := args[0]

		token, err := resolveToken()
		if err != nil {
			return err
		}

		opts := []hubspot.Option{hubspot.WithLogger(logging.Default())}
		if verboseFlag {
			opts = append(opts, hubspot.WithObserver(&transport.EchoObserver{Out: os.Stderr}))
		}
		client := hubspot.New(token, opts...)

		parent, err := reconcile.New(client, logging.Default()).Run(cmd.Context(), locationID)
		if err != nil {
			return err
		}

		// Always print the resulting parent record as JSON.
		out, err := json.MarshalIndent(parent, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		if !quietFlag {
			fmt.Fprintln(cmd.OutOrStdout(), "\nSync completed successfully.")
		}
		return nil
	},
}

// resolveToken returns the API access token, preferring the --token
// flag over the environment. Missing both is a configuration error
// surfaced before any remote call.
func resolveToken() (string, error) {
	if tokenFlag != "" {
		return tokenFlag, nil
	}
	if token := viper.GetString(tokenEnvVar); token != "" {
		return token, nil
	}
	return "", errors.NewConfigError("credentials",
		"a HubSpot API access token is required: provide it via --token or set "+
			tokenEnvVar+" in the environment or a .env file in the project root", nil)
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
