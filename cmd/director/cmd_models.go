package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/director/capability"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models the API key can reach",
	Long:  `Run capability detection and print the cached model identifiers.`,
	RunE:  runModels,
}

var tierCmd = &cobra.Command{
	Use:   "tier",
	Short: "Detect the image tier of the API key",
	Long:  `Resolve the preferred image model and report PRO or FLASH with the model that will be used.`,
	RunE:  runTier,
}

func runModels(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ids, err := a.client.Models(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		marker := " "
		if a.client.Resolver().Tier(id) == capability.TierAdvanced {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, id)
	}
	return nil
}

func runTier(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report := a.client.DetectTier(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", report.Tier, report.Model)
	return nil
}
