package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civicprep/civicprep/internal/push"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Web Push utilities",
}

var pushKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate a VAPID key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, priv, err := push.GenerateKeys()
		if err != nil {
			return fmt.Errorf("generate VAPID keys: %w", err)
		}
		fmt.Printf("CIVICPREP_PUSH_VAPID_PUBLIC_KEY=%s\n", pub)
		fmt.Printf("CIVICPREP_PUSH_VAPID_PRIVATE_KEY=%s\n", priv)
		return nil
	},
}

func init() {
	pushCmd.AddCommand(pushKeysCmd)
}
